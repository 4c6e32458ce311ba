package overlay

import (
	"image"
	"image/color"
	"math"
	"testing"
	"time"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/soocke/quadscan/domain/geometry"
)

func quad(n int) []r2.Vec {
	pts := make([]r2.Vec, n)
	for i := range pts {
		pts[i] = r2.Vec{X: float64(10 * i), Y: float64(5 * i)}
	}
	return pts
}

func TestBuild_SuppressesWrongPointCounts(t *testing.T) {
	fit := geometry.Fit(geometry.FrameSize{Width: 100, Height: 100}, geometry.SurfaceSize{Width: 200, Height: 200})
	for _, n := range []int{0, 1, 2, 3, 5} {
		if path, ok := Build(quad(n), fit); ok || len(path.Points) != 0 {
			t.Fatalf("%d points should produce no geometry, got %v", n, path)
		}
	}
	path, ok := Build(quad(4), fit)
	if !ok || len(path.Points) != 4 {
		t.Fatalf("4 points should produce a path, got ok=%v %v", ok, path)
	}
	closed := path.Closed()
	if len(closed) != 5 || closed[0] != closed[4] {
		t.Fatalf("expected closed 4-sided path, got %v", closed)
	}
}

func TestBuild_AppliesFit(t *testing.T) {
	fit := geometry.Fit(geometry.FrameSize{Width: 300, Height: 400}, geometry.SurfaceSize{Width: 1080, Height: 1920})
	pts := []r2.Vec{{X: 0, Y: 0}, {X: 300, Y: 0}, {X: 300, Y: 400}, {X: 0, Y: 400}}
	path, ok := Build(pts, fit)
	if !ok {
		t.Fatalf("expected path")
	}
	want := []r2.Vec{{X: 0, Y: 240}, {X: 1080, Y: 240}, {X: 1080, Y: 1680}, {X: 0, Y: 1680}}
	for i, w := range want {
		if math.Abs(path.Points[i].X-w.X) > 1e-6 || math.Abs(path.Points[i].Y-w.Y) > 1e-6 {
			t.Fatalf("vertex %d: expected %v, got %v", i, w, path.Points[i])
		}
	}
}

func TestBuild_RejectsInvalidFit(t *testing.T) {
	if _, ok := Build(quad(4), geometry.FitTransform{Scale: math.NaN()}); ok {
		t.Fatalf("NaN fit should not produce geometry")
	}
}

func TestBuild_AfterMapDetected(t *testing.T) {
	detect := geometry.FrameSize{Width: 100, Height: 100}
	fit := geometry.FitTransform{Scale: 0.5, OffsetX: 10, OffsetY: 20}
	raw := []r2.Vec{{X: 10, Y: 10}, {X: 90, Y: 10}, {X: 90, Y: 90}, {X: 10, Y: 90}}
	path, ok := Build(geometry.MapDetected(raw, geometry.Rotate90, detect, 2), fit)
	if !ok {
		t.Fatalf("expected path")
	}
	// (10,10) -> rotate (90,10) -> x2 (180,20) -> fit (100,30)
	if path.Points[0] != (r2.Vec{X: 100, Y: 30}) {
		t.Fatalf("unexpected first vertex %v", path.Points[0])
	}
	if _, ok := Build(geometry.MapDetected(raw[:3], geometry.Rotate90, detect, 2), fit); ok {
		t.Fatalf("3 raw points should not build a path")
	}
}

func TestRender_StrokesEdgesWithZoom(t *testing.T) {
	dst := image.NewRGBA(image.Rect(0, 0, 200, 200))
	path := Path{Points: []r2.Vec{{X: 50, Y: 50}, {X: 150, Y: 50}, {X: 150, Y: 150}, {X: 50, Y: 150}}}
	red := color.RGBA{R: 0xff, A: 0xff}
	if !Render(dst, path, Style{Color: red, Width: 4, Zoom: 1.05}) {
		t.Fatalf("expected render")
	}
	// top edge moves from y=50 to y=47.5 under a 1.05 zoom about (100,100)
	if got := dst.RGBAAt(100, 47); got != red {
		t.Fatalf("expected stroke at zoomed top edge, got %v", got)
	}
	if got := dst.RGBAAt(100, 52); got.A != 0 {
		t.Fatalf("expected no stroke below zoomed edge, got %v", got)
	}
	if got := dst.RGBAAt(100, 100); got.A != 0 {
		t.Fatalf("interior should stay empty, got %v", got)
	}
	// the path itself is untouched by the cosmetic zoom
	if path.Points[0] != (r2.Vec{X: 50, Y: 50}) {
		t.Fatalf("render mutated path: %v", path.Points)
	}
}

func TestRender_EmptyPathDrawsNothing(t *testing.T) {
	dst := image.NewRGBA(image.Rect(0, 0, 20, 20))
	if Render(dst, Path{}, DefaultStyle()) {
		t.Fatalf("empty path should not render")
	}
	for _, v := range dst.Pix {
		if v != 0 {
			t.Fatalf("dst modified")
		}
	}
}

func TestInterpolate(t *testing.T) {
	a, b := r2.Vec{X: 0, Y: 0}, r2.Vec{X: 10, Y: -20}
	if got := Interpolate(a, b, 0.5); got != (r2.Vec{X: 5, Y: -10}) {
		t.Fatalf("unexpected midpoint %v", got)
	}
	if got := Interpolate(a, b, 2); got != b {
		t.Fatalf("t>1 should clamp to target, got %v", got)
	}
	if EaseInOutCubic(0) != 0 || EaseInOutCubic(1) != 1 || EaseInOutCubic(0.5) != 0.5 {
		t.Fatalf("unexpected easing endpoints")
	}
}

func TestMarkerAnimator_GlidesAndHides(t *testing.T) {
	a := NewMarkerAnimator(100 * time.Millisecond)
	a.Ease = Linear
	t0 := time.Unix(0, 0)
	start := []r2.Vec{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}, {X: 0, Y: 10}}
	a.SetTargets(start, t0)
	if got := a.Positions(t0); len(got) != 4 || got[1] != start[1] {
		t.Fatalf("new markers should appear at target, got %v", got)
	}
	moved := make([]r2.Vec, 4)
	for i, p := range start {
		moved[i] = r2.Vec{X: p.X + 10, Y: p.Y}
	}
	a.SetTargets(moved, t0)
	mid := a.Positions(t0.Add(50 * time.Millisecond))
	if math.Abs(mid[0].X-5) > 1e-9 {
		t.Fatalf("expected halfway position 5, got %v", mid[0])
	}
	if !a.Animating(t0.Add(50 * time.Millisecond)) {
		t.Fatalf("expected animation in progress")
	}
	end := a.Positions(t0.Add(200 * time.Millisecond))
	if end[0] != moved[0] {
		t.Fatalf("expected target after duration, got %v", end[0])
	}
	a.SetTargets(nil, t0.Add(300*time.Millisecond))
	if got := a.Positions(t0.Add(300 * time.Millisecond)); len(got) != 0 {
		t.Fatalf("empty point set should hide markers, got %v", got)
	}
}

func TestRenderMarkers_DrawsRing(t *testing.T) {
	dst := image.NewRGBA(image.Rect(0, 0, 100, 100))
	fit := geometry.FitTransform{Scale: 1}
	st := MarkerStyle{Border: color.RGBA{G: 0xff, A: 0xff}, Radius: 10, Width: 4}
	if n := RenderMarkers(dst, []r2.Vec{{X: 50, Y: 50}}, fit, st); n != 1 {
		t.Fatalf("expected 1 marker, got %d", n)
	}
	if got := dst.RGBAAt(50, 40); got.G != 0xff {
		t.Fatalf("expected ring pixel, got %v", got)
	}
	if got := dst.RGBAAt(50, 50); got.G != 0 {
		t.Fatalf("expected hollow center, got %v", got)
	}
}
