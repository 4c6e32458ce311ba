package presenter

import (
	"image"
	"image/color"
	"image/draw"
	"testing"
	"time"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/soocke/quadscan/config"
	"github.com/soocke/quadscan/domain/analyzer"
	"github.com/soocke/quadscan/domain/geometry"
	"github.com/soocke/quadscan/domain/overlay"
)

type fakeResults struct{ res analyzer.Result }

func (f *fakeResults) Latest() analyzer.Result { return f.res }

type fakeSurface struct{ size geometry.SurfaceSize }

func (f *fakeSurface) Size() geometry.SurfaceSize { return f.size }

type fakeOverlayView struct{ frames []*image.RGBA }

func (v *fakeOverlayView) UpdatePreview(img image.Image) {
	v.frames = append(v.frames, img.(*image.RGBA))
}

func (v *fakeOverlayView) last() *image.RGBA { return v.frames[len(v.frames)-1] }

var red = color.RGBA{R: 0xff, A: 0xff}

func grayFrame(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.RGBA{R: 0x40, G: 0x40, B: 0x40, A: 0xff}), image.Point{}, draw.Src)
	return img
}

func square(seq uint64) analyzer.Result {
	return analyzer.Result{
		Points:   []r2.Vec{{X: 20, Y: 20}, {X: 80, Y: 20}, {X: 80, Y: 80}, {X: 20, Y: 80}},
		Frame:    geometry.FrameSize{Width: 100, Height: 100},
		Image:    grayFrame(100, 100),
		Sequence: seq,
	}
}

func polygonSettings() OverlaySettings {
	return OverlaySettings{Mode: config.OverlayPolygon, Stroke: overlay.Style{Color: red, Width: 4, Zoom: 1}}
}

func TestOverlayPresenter_DrawsPolygonThroughFit(t *testing.T) {
	results := &fakeResults{res: square(1)}
	surface := &fakeSurface{size: geometry.SurfaceSize{Width: 200, Height: 200}}
	view := &fakeOverlayView{}
	p := NewOverlayPresenter(func() bool { return true }, results, surface, view, polygonSettings(), nil)

	p.Tick(time.Now())
	if len(view.frames) != 1 {
		t.Fatalf("expected one preview, got %d", len(view.frames))
	}
	img := view.last()
	if img.Bounds().Dx() != 200 || img.Bounds().Dy() != 200 {
		t.Fatalf("preview should match surface, got %v", img.Bounds())
	}
	// (50,20) in the frame maps to (100,40) at scale 2
	if got := img.RGBAAt(100, 40); got != red {
		t.Fatalf("expected stroke on top edge, got %v", got)
	}
	if got := img.RGBAAt(100, 100); got == red {
		t.Fatalf("interior should show the frame, got %v", got)
	}

	// nothing changed: no redraw
	p.Tick(time.Now())
	if len(view.frames) != 1 {
		t.Fatalf("unchanged state should not redraw, got %d frames", len(view.frames))
	}

	// resize: redraw with a new fit
	surface.size = geometry.SurfaceSize{Width: 400, Height: 200}
	p.Tick(time.Now())
	if len(view.frames) != 2 {
		t.Fatalf("resize should redraw")
	}
	// scale 2, offsetX 100: top edge at y=40 from x=140 to x=260
	if got := view.last().RGBAAt(200, 40); got != red {
		t.Fatalf("expected stroke after resize, got %v", got)
	}
	if got := view.last().RGBAAt(50, 100); got != (color.RGBA{A: 0xff}) {
		t.Fatalf("expected letterbox bar, got %v", got)
	}
}

func TestOverlayPresenter_WrongPointCountDrawsNoPolygon(t *testing.T) {
	res := square(1)
	res.Points = res.Points[:3]
	results := &fakeResults{res: res}
	view := &fakeOverlayView{}
	p := NewOverlayPresenter(func() bool { return true }, results, &fakeSurface{size: geometry.SurfaceSize{Width: 200, Height: 200}}, view, polygonSettings(), nil)
	p.Tick(time.Now())
	if len(view.frames) != 1 {
		t.Fatalf("frame should still be previewed")
	}
	for y := 0; y < 200; y++ {
		for x := 0; x < 200; x++ {
			if view.last().RGBAAt(x, y) == red {
				t.Fatalf("unexpected stroke pixel at (%d,%d)", x, y)
			}
		}
	}
}

func TestOverlayPresenter_SkipsWhenDisabledOrEmpty(t *testing.T) {
	enabled := false
	results := &fakeResults{res: square(1)}
	surface := &fakeSurface{}
	view := &fakeOverlayView{}
	p := NewOverlayPresenter(func() bool { return enabled }, results, surface, view, polygonSettings(), nil)
	p.Tick(time.Now())
	enabled = true
	p.Tick(time.Now()) // empty surface
	results.res = analyzer.Result{}
	surface.size = geometry.SurfaceSize{Width: 10, Height: 10}
	p.Tick(time.Now()) // no result yet
	if len(view.frames) != 0 {
		t.Fatalf("expected no previews, got %d", len(view.frames))
	}
	var nilPresenter *OverlayPresenter
	nilPresenter.Tick(time.Now())
	nilPresenter.Reset()
}

func TestOverlayPresenter_MarkerModeAnimatesThenSettles(t *testing.T) {
	results := &fakeResults{res: square(1)}
	view := &fakeOverlayView{}
	settings := OverlaySettings{
		Mode:    config.OverlayMarkers,
		Markers: overlay.MarkerStyle{Border: color.RGBA{G: 0xff, A: 0xff}, Radius: 6, Width: 2},
		Anim:    100 * time.Millisecond,
	}
	p := NewOverlayPresenter(func() bool { return true }, results, &fakeSurface{size: geometry.SurfaceSize{Width: 100, Height: 100}}, view, settings, nil)
	t0 := time.Unix(100, 0)

	p.Tick(t0)
	if len(view.frames) != 1 {
		t.Fatalf("expected first render")
	}
	p.Tick(t0.Add(10 * time.Millisecond))
	if len(view.frames) != 1 {
		t.Fatalf("markers appear at their targets; no animation expected")
	}

	moved := square(2)
	for i := range moved.Points {
		moved.Points[i].X += 10
	}
	results.res = moved
	t1 := t0.Add(time.Second)
	p.Tick(t1)
	p.Tick(t1.Add(50 * time.Millisecond))
	if len(view.frames) != 3 {
		t.Fatalf("expected renders while animating, got %d", len(view.frames))
	}
	p.Tick(t1.Add(200 * time.Millisecond))
	if len(view.frames) != 4 {
		t.Fatalf("expected a settling render after the animation, got %d", len(view.frames))
	}
	// settled: top-left marker ring sits on (30,20)
	if got := view.last().RGBAAt(30, 14); got.G != 0xff {
		t.Fatalf("expected marker ring above (30,20), got %v", got)
	}
	p.Tick(t1.Add(300 * time.Millisecond))
	if len(view.frames) != 4 {
		t.Fatalf("idle markers should not redraw, got %d", len(view.frames))
	}
}

func TestSettingsFromConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.OverlayMode = config.OverlayMarkers
	cfg.StrokeColor = "#0000ff"
	s := SettingsFromConfig(cfg)
	if s.Mode != config.OverlayMarkers || s.Stroke.Color != (color.RGBA{B: 0xff, A: 0xff}) || s.Stroke.Zoom != 1.05 || s.Anim != 300*time.Millisecond {
		t.Fatalf("unexpected settings %+v", s)
	}
	if SettingsFromConfig(nil).Mode != config.OverlayPolygon {
		t.Fatalf("nil config should use defaults")
	}
}
