package geometry

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"
)

const eps = 1e-9

func near(a, b float64) bool { return math.Abs(a-b) <= eps*math.Max(1, math.Abs(b)) }

func TestFit_PortraitFrameOnPortraitSurface(t *testing.T) {
	fit := Fit(FrameSize{Width: 300, Height: 400}, SurfaceSize{Width: 1080, Height: 1920})
	if !near(fit.Scale, 3.6) {
		t.Fatalf("expected scale 3.6, got %v", fit.Scale)
	}
	if !near(fit.OffsetX, 0) || !near(fit.OffsetY, 240) {
		t.Fatalf("expected offsets (0,240), got (%v,%v)", fit.OffsetX, fit.OffsetY)
	}
}

func TestFit_AspectAndCenteringInvariants(t *testing.T) {
	frames := []FrameSize{{300, 400}, {640, 480}, {1, 1}, {1920, 1080}, {7, 1000}, {333, 333}}
	surfaces := []SurfaceSize{{1080, 1920}, {800, 600}, {1, 1}, {50, 4000}, {1234, 567}}
	for _, f := range frames {
		for _, s := range surfaces {
			fit := Fit(f, s)
			w, h := fit.ScaledSize(f)
			sw, sh := float64(s.Width), float64(s.Height)
			if w > sw+1e-6 || h > sh+1e-6 {
				t.Fatalf("%v on %v: scaled %vx%v exceeds surface", f, s, w, h)
			}
			touchW := math.Abs(w-sw) < 1e-6
			touchH := math.Abs(h-sh) < 1e-6
			if !touchW && !touchH {
				t.Fatalf("%v on %v: no axis touches (scaled %vx%v)", f, s, w, h)
			}
			if fit.OffsetX < -1e-9 || fit.OffsetY < -1e-9 {
				t.Fatalf("%v on %v: negative offset (%v,%v)", f, s, fit.OffsetX, fit.OffsetY)
			}
			centeredX := math.Abs(fit.OffsetX*2+w-sw) < 1e-6
			centeredY := math.Abs(fit.OffsetY*2+h-sh) < 1e-6
			if !centeredX || !centeredY {
				t.Fatalf("%v on %v: not centered (%v,%v)", f, s, fit.OffsetX, fit.OffsetY)
			}
		}
	}
}

func TestFit_DegenerateInputsStayFinite(t *testing.T) {
	cases := []struct {
		f FrameSize
		s SurfaceSize
	}{
		{FrameSize{0, 0}, SurfaceSize{100, 100}},
		{FrameSize{100, 100}, SurfaceSize{0, 0}},
		{FrameSize{-5, 10}, SurfaceSize{10, -5}},
	}
	for _, c := range cases {
		fit := Fit(c.f, c.s)
		if !fit.Valid() {
			t.Fatalf("fit(%v,%v) not finite: %+v", c.f, c.s, fit)
		}
	}
	if fit := Fit(FrameSize{}, SurfaceSize{100, 50}); !near(fit.Scale, 50) {
		t.Fatalf("zero frame should clamp to 1x1, got scale %v", fit.Scale)
	}
}

func TestFit_Apply(t *testing.T) {
	fit := Fit(FrameSize{Width: 300, Height: 400}, SurfaceSize{Width: 1080, Height: 1920})
	got := fit.Apply(r2.Vec{X: 100, Y: 100})
	if !near(got.X, 360) || !near(got.Y, 600) {
		t.Fatalf("expected (360,600), got %v", got)
	}
}

func TestRotateAbout_NinetyDegrees(t *testing.T) {
	// Clockwise on screen: top-left moves to top-right.
	got := RotateAbout(r2.Vec{X: 10, Y: 10}, Rotate90, FrameSize{100, 100}.Center())
	if got != (r2.Vec{X: 90, Y: 10}) {
		t.Fatalf("expected exactly (90,10), got %v", got)
	}
}

func TestRotateAbout_RightAnglesAreExact(t *testing.T) {
	c := r2.Vec{X: 50, Y: 50}
	p := r2.Vec{X: 10, Y: 20}
	want := map[Rotation]r2.Vec{
		Rotate0:   {X: 10, Y: 20},
		Rotate90:  {X: 80, Y: 10},
		Rotate180: {X: 90, Y: 80},
		Rotate270: {X: 20, Y: 90},
	}
	for rot, w := range want {
		if got := RotateAbout(p, rot, c); got != w {
			t.Fatalf("rotation %d: expected %v, got %v", rot, w, got)
		}
	}
}

func TestRotateAbout_RoundTrip(t *testing.T) {
	c := r2.Vec{X: 37.5, Y: 12.25}
	pts := []r2.Vec{{X: 0, Y: 0}, {X: 10, Y: 10}, {X: -3.5, Y: 99}, {X: 1234.5, Y: -8}}
	for _, rot := range []Rotation{0, 90, 180, 270, 30, 45, -90, 450} {
		for _, p := range pts {
			back := RotateAbout(RotateAbout(p, rot, c), rot.Inverse(), c)
			if math.Abs(back.X-p.X) > 1e-9 || math.Abs(back.Y-p.Y) > 1e-9 {
				t.Fatalf("rotation %d round trip of %v gave %v", rot, p, back)
			}
		}
	}
}

func TestRotation_Normalize(t *testing.T) {
	if Rotation(-90).Normalize() != Rotate270 {
		t.Fatalf("-90 should normalize to 270")
	}
	if Rotation(450).Normalize() != Rotate90 {
		t.Fatalf("450 should normalize to 90")
	}
	if !Rotate270.SwapsAxes() || Rotate180.SwapsAxes() {
		t.Fatalf("unexpected axis swap classification")
	}
}

func TestFrameSize_Rotated(t *testing.T) {
	f := FrameSize{Width: 640, Height: 480}
	if got := f.Rotated(Rotate90); got != (FrameSize{480, 640}) {
		t.Fatalf("expected swapped size, got %v", got)
	}
	if got := f.Rotated(Rotate180); got != f {
		t.Fatalf("expected unchanged size, got %v", got)
	}
}

func TestMapDetected_RotatesThenScales(t *testing.T) {
	detect := FrameSize{Width: 100, Height: 100}
	got := MapDetected([]r2.Vec{{X: 10, Y: 10}}, Rotate90, detect, 4)
	if len(got) != 1 || got[0] != (r2.Vec{X: 360, Y: 40}) {
		t.Fatalf("expected (360,40), got %v", got)
	}
	// Non-square frames land inside the rotated frame: the top-left corner of
	// a 200x100 image becomes the top-right corner of the 100x200 result.
	got = MapDetected([]r2.Vec{{X: 0, Y: 0}}, Rotate90, FrameSize{Width: 200, Height: 100}, 1)
	if got[0] != (r2.Vec{X: 100, Y: 0}) {
		t.Fatalf("expected (100,0), got %v", got[0])
	}
	// Invalid factors fall back to identity scaling.
	got = MapDetected([]r2.Vec{{X: 10, Y: 10}}, Rotate0, detect, math.NaN())
	if got[0] != (r2.Vec{X: 10, Y: 10}) {
		t.Fatalf("expected identity for NaN factor, got %v", got[0])
	}
}

func TestClampPoints(t *testing.T) {
	pts := []r2.Vec{{X: -1, Y: 2}, {X: 1000, Y: 3.33}, {X: 500, Y: 1.5}}
	got := ClampPoints(pts, FrameSize{Width: 1000, Height: 3})
	want := []r2.Vec{{X: 0, Y: 2}, {X: 1000, Y: 3}, {X: 500, Y: 1.5}}
	for i, w := range want {
		if got[i] != w {
			t.Fatalf("point %d: expected %v, got %v", i, w, got[i])
		}
	}
}
