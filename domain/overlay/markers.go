package overlay

import (
	"image"
	"image/color"
	"sync"
	"time"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/soocke/quadscan/domain/geometry"
)

// Easing maps linear progress t in [0,1] to eased progress.
type Easing func(t float64) float64

// EaseInOutCubic accelerates then decelerates.
func EaseInOutCubic(t float64) float64 {
	t = clamp01(t)
	if t < 0.5 {
		return 4 * t * t * t
	}
	u := -2*t + 2
	return 1 - u*u*u/2
}

// Linear is the identity easing.
func Linear(t float64) float64 { return clamp01(t) }

// Interpolate returns the point between prev and target at progress t.
func Interpolate(prev, target r2.Vec, t float64) r2.Vec {
	t = clamp01(t)
	return r2.Add(prev, r2.Scale(t, r2.Sub(target, prev)))
}

func clamp01(t float64) float64 {
	if t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}

type marker struct {
	from, to r2.Vec
	start    time.Time
	visible  bool
}

// MarkerAnimator tracks one animated circle per quad corner. Unlike the
// polygon, markers glide from their previous position to the new target.
// A corner missing from the latest point set hides its marker.
type MarkerAnimator struct {
	Duration time.Duration
	Ease     Easing

	mu      sync.Mutex
	markers [QuadSize]marker
}

// NewMarkerAnimator returns an animator using EaseInOutCubic.
func NewMarkerAnimator(d time.Duration) *MarkerAnimator {
	return &MarkerAnimator{Duration: d, Ease: EaseInOutCubic}
}

// SetTargets retargets every marker at time now. A marker that was hidden
// appears directly at its target.
func (a *MarkerAnimator) SetTargets(points []r2.Vec, now time.Time) {
	if a == nil {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	for i := range a.markers {
		m := &a.markers[i]
		if i >= len(points) {
			m.visible = false
			continue
		}
		if !m.visible {
			*m = marker{from: points[i], to: points[i], start: now, visible: true}
			continue
		}
		if m.to == points[i] {
			continue
		}
		m.from = a.positionLocked(*m, now)
		m.to = points[i]
		m.start = now
	}
}

// Positions returns the current position of each visible marker.
func (a *MarkerAnimator) Positions(now time.Time) []r2.Vec {
	if a == nil {
		return nil
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	var out []r2.Vec
	for _, m := range a.markers {
		if m.visible {
			out = append(out, a.positionLocked(m, now))
		}
	}
	return out
}

// Animating reports whether any visible marker has not reached its target.
func (a *MarkerAnimator) Animating(now time.Time) bool {
	if a == nil {
		return false
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, m := range a.markers {
		if m.visible && m.from != m.to && now.Sub(m.start) < a.Duration {
			return true
		}
	}
	return false
}

func (a *MarkerAnimator) positionLocked(m marker, now time.Time) r2.Vec {
	if a.Duration <= 0 {
		return m.to
	}
	t := float64(now.Sub(m.start)) / float64(a.Duration)
	ease := a.Ease
	if ease == nil {
		ease = Linear
	}
	return Interpolate(m.from, m.to, ease(t))
}

// MarkerStyle configures marker circles.
type MarkerStyle struct {
	Border color.RGBA
	Fill   color.RGBA
	Radius float64
	Width  float64
}

// DefaultMarkerStyle is a green ring over a faint white disc.
func DefaultMarkerStyle() MarkerStyle {
	return MarkerStyle{
		Border: color.RGBA{G: 0xff, A: 0xff},
		Fill:   color.RGBA{R: 40, G: 40, B: 40, A: 40}, // white at alpha 40, premultiplied
		Radius: 10,
		Width:  2,
	}
}

// RenderMarkers maps frame-space marker positions through fit and draws them.
// It returns the number of markers drawn.
func RenderMarkers(dst *image.RGBA, positions []r2.Vec, fit geometry.FitTransform, st MarkerStyle) (n int) {
	if dst == nil || len(positions) == 0 || !fit.Valid() {
		return 0
	}
	defer func() {
		if r := recover(); r != nil {
			n = 0
		}
	}()
	for _, p := range positions {
		c := fit.Apply(p)
		if !finite(c) {
			continue
		}
		fillCircle(dst, c, st.Radius, st.Fill)
		strokeCircle(dst, c, st.Radius, st.Width, st.Border)
		n++
	}
	return n
}
