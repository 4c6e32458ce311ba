package presenter

import (
	"image"
	"log/slog"
	"time"

	"github.com/soocke/quadscan/config"
	"github.com/soocke/quadscan/domain/analyzer"
	"github.com/soocke/quadscan/domain/geometry"
	"github.com/soocke/quadscan/domain/overlay"
	"github.com/soocke/quadscan/ui/images"
)

// ResultSource supplies the most recently published analyzer result.
type ResultSource interface {
	Latest() analyzer.Result
}

// SurfaceSource reports the current preview surface size.
type SurfaceSource interface {
	Size() geometry.SurfaceSize
}

// OverlayView receives composed preview frames.
type OverlayView interface {
	UpdatePreview(img image.Image)
}

// OverlaySettings selects and styles the overlay.
type OverlaySettings struct {
	Mode    string
	Stroke  overlay.Style
	Markers overlay.MarkerStyle
	Anim    time.Duration
}

// SettingsFromConfig maps config fields to overlay settings.
func SettingsFromConfig(cfg *config.Config) OverlaySettings {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	markers := overlay.DefaultMarkerStyle()
	markers.Border = cfg.Marker()
	markers.Radius = cfg.MarkerRadius
	return OverlaySettings{
		Mode:    cfg.OverlayMode,
		Stroke:  overlay.Style{Color: cfg.Stroke(), Width: cfg.StrokeWidth, Zoom: cfg.OverlayZoom},
		Markers: markers,
		Anim:    time.Duration(cfg.MarkerAnimMs) * time.Millisecond,
	}
}

// OverlayPresenter turns the latest analyzer result into a preview image:
// the frame letterboxed onto the surface plus the quad drawn through the
// same fit. It redraws only when the result, the surface size or a marker
// animation changes. Tick runs on the UI goroutine.
type OverlayPresenter struct {
	Enabled func() bool
	Results ResultSource
	Surface SurfaceSource
	View    OverlayView
	logger  *slog.Logger

	settings OverlaySettings
	markers  *overlay.MarkerAnimator

	lastSeq     uint64
	lastSurface geometry.SurfaceSize
	animating   bool
	renders     uint64
}

// NewOverlayPresenter constructs an overlay presenter.
func NewOverlayPresenter(enabled func() bool, results ResultSource, surface SurfaceSource, view OverlayView, settings OverlaySettings, logger *slog.Logger) *OverlayPresenter {
	p := &OverlayPresenter{
		Enabled: enabled,
		Results: results,
		Surface: surface,
		View:    view,
		logger:  logger,
	}
	p.SetSettings(settings)
	return p
}

// SetSettings replaces the overlay settings and forces a redraw.
func (p *OverlayPresenter) SetSettings(s OverlaySettings) {
	if p == nil {
		return
	}
	if s.Mode == "" {
		s.Mode = config.OverlayPolygon
	}
	p.settings = s
	p.markers = overlay.NewMarkerAnimator(s.Anim)
	p.lastSeq = 0
}

// Reset forgets the last drawn state.
func (p *OverlayPresenter) Reset() {
	if p == nil {
		return
	}
	p.lastSeq = 0
	p.lastSurface = geometry.SurfaceSize{}
	p.animating = false
	if p.markers != nil {
		p.markers.SetTargets(nil, time.Now())
	}
}

// Renders returns how many preview frames were pushed to the view.
func (p *OverlayPresenter) Renders() uint64 {
	if p == nil {
		return 0
	}
	return p.renders
}

// Tick composes and pushes a new preview when something changed.
func (p *OverlayPresenter) Tick(now time.Time) {
	if p == nil || p.Enabled == nil || p.Results == nil || p.Surface == nil || p.View == nil {
		return
	}
	if !p.Enabled() {
		return
	}
	res := p.Results.Latest()
	surface := p.Surface.Size()
	if res.Sequence == 0 || res.Image == nil || surface.Empty() {
		return
	}
	markerMode := p.settings.Mode == config.OverlayMarkers
	newResult := res.Sequence != p.lastSeq
	if newResult && markerMode {
		if res.Found() {
			p.markers.SetTargets(res.Points, now)
		} else {
			p.markers.SetTargets(nil, now)
		}
	}
	// one more draw after an animation ends lands markers on their targets
	animating := markerMode && p.markers.Animating(now)
	settle := p.animating && !animating
	p.animating = animating
	if !newResult && surface == p.lastSurface && !animating && !settle {
		return
	}
	p.lastSeq = res.Sequence
	p.lastSurface = surface

	img := p.compose(res, surface, now)
	if img == nil {
		return
	}
	p.renders++
	p.View.UpdatePreview(img)
}

// compose never panics: a failure degrades to no preview for this tick.
func (p *OverlayPresenter) compose(res analyzer.Result, surface geometry.SurfaceSize, now time.Time) (img *image.RGBA) {
	defer func() {
		if r := recover(); r != nil {
			img = nil
			if p.logger != nil {
				p.logger.Error("overlay compose", "sequence", res.Sequence, "panic", r)
			}
		}
	}()
	fit := geometry.Fit(res.Frame, surface)
	canvas := images.Letterbox(res.Image, res.Rotation, surface, fit)
	if p.settings.Mode == config.OverlayMarkers {
		overlay.RenderMarkers(canvas, p.markers.Positions(now), fit, p.settings.Markers)
		return canvas
	}
	if path, ok := overlay.Build(res.Points, fit); ok {
		overlay.Render(canvas, path, p.settings.Stroke)
	}
	return canvas
}
