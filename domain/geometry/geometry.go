// Package geometry maps detected image-space points onto a letterboxed
// display surface: fit-center scaling and right-angle rotation.
package geometry

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// FrameSize is the pixel size of an analyzed image after rotation normalization.
type FrameSize struct {
	Width, Height int
}

// SurfaceSize is the pixel size of the display viewport.
type SurfaceSize struct {
	Width, Height int
}

// Empty reports whether either dimension is non-positive.
func (f FrameSize) Empty() bool { return f.Width <= 0 || f.Height <= 0 }

// Empty reports whether either dimension is non-positive.
func (s SurfaceSize) Empty() bool { return s.Width <= 0 || s.Height <= 0 }

// Center returns the frame center in pixel coordinates.
func (f FrameSize) Center() r2.Vec {
	return r2.Vec{X: float64(f.Width) / 2, Y: float64(f.Height) / 2}
}

// Center returns the surface center in pixel coordinates.
func (s SurfaceSize) Center() r2.Vec {
	return r2.Vec{X: float64(s.Width) / 2, Y: float64(s.Height) / 2}
}

// Rotated returns the size after rotating by rot; 90 and 270 swap the axes.
func (f FrameSize) Rotated(rot Rotation) FrameSize {
	if rot.Normalize().SwapsAxes() {
		return FrameSize{Width: f.Height, Height: f.Width}
	}
	return f
}

// FitTransform maps image pixels onto a surface, preserving aspect ratio and
// centering the scaled image (fit-center letterboxing).
type FitTransform struct {
	Scale   float64
	OffsetX float64
	OffsetY float64
}

// Fit computes the fit-center transform of frame onto surface. Dimensions
// below 1 are clamped to 1 so the result is always finite.
func Fit(frame FrameSize, surface SurfaceSize) FitTransform {
	fw, fh := clampDim(frame.Width), clampDim(frame.Height)
	sw, sh := clampDim(surface.Width), clampDim(surface.Height)
	scale := math.Min(sh/fh, sw/fw)
	return FitTransform{
		Scale:   scale,
		OffsetX: (sw - fw*scale) / 2,
		OffsetY: (sh - fh*scale) / 2,
	}
}

func clampDim(v int) float64 {
	if v < 1 {
		return 1
	}
	return float64(v)
}

// Offset returns the centering offset as a vector.
func (t FitTransform) Offset() r2.Vec { return r2.Vec{X: t.OffsetX, Y: t.OffsetY} }

// Apply maps an image-space point to surface coordinates.
func (t FitTransform) Apply(p r2.Vec) r2.Vec {
	return r2.Add(t.Offset(), r2.Scale(t.Scale, p))
}

// ScaledSize returns the size the frame occupies on the surface.
func (t FitTransform) ScaledSize(frame FrameSize) (w, h float64) {
	return clampDim(frame.Width) * t.Scale, clampDim(frame.Height) * t.Scale
}

// Valid reports whether every field is a finite number and the scale positive.
func (t FitTransform) Valid() bool {
	for _, v := range []float64{t.Scale, t.OffsetX, t.OffsetY} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return t.Scale > 0
}
