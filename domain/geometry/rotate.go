package geometry

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Rotation is a clockwise (on screen, y pointing down) rotation in degrees
// that brings a raw sensor frame into display orientation.
type Rotation int

// Right-angle rotations reported by frame sources.
const (
	Rotate0   Rotation = 0
	Rotate90  Rotation = 90
	Rotate180 Rotation = 180
	Rotate270 Rotation = 270
)

// Normalize maps any angle into [0, 360).
func (r Rotation) Normalize() Rotation {
	return Rotation((int(r)%360 + 360) % 360)
}

// RightAngle reports whether the normalized rotation is a multiple of 90.
func (r Rotation) RightAngle() bool { return r.Normalize()%90 == 0 }

// SwapsAxes reports whether the rotation exchanges width and height.
func (r Rotation) SwapsAxes() bool {
	n := r.Normalize()
	return n == Rotate90 || n == Rotate270
}

// Inverse returns the rotation that undoes r.
func (r Rotation) Inverse() Rotation { return (360 - r.Normalize()).Normalize() }

// sinCos returns exact values for right angles so axis-aligned rotations do
// not pick up floating point drift.
func (r Rotation) sinCos() (sin, cos float64) {
	switch r.Normalize() {
	case Rotate0:
		return 0, 1
	case Rotate90:
		return 1, 0
	case Rotate180:
		return 0, -1
	case Rotate270:
		return -1, 0
	}
	return math.Sincos(float64(r.Normalize()) * math.Pi / 180)
}

// RotateAbout rotates p by r around center:
//
//	x' = cx + (x-cx)*cos - (y-cy)*sin
//	y' = cy + (x-cx)*sin + (y-cy)*cos
func RotateAbout(p r2.Vec, r Rotation, center r2.Vec) r2.Vec {
	if !r.RightAngle() {
		return r2.Rotate(p, float64(r.Normalize())*math.Pi/180, center)
	}
	sin, cos := r.sinCos()
	d := r2.Sub(p, center)
	return r2.Vec{
		X: center.X + d.X*cos - d.Y*sin,
		Y: center.Y + d.X*sin + d.Y*cos,
	}
}

// RotatePoints rotates every point about center and returns a new slice.
func RotatePoints(pts []r2.Vec, r Rotation, center r2.Vec) []r2.Vec {
	out := make([]r2.Vec, len(pts))
	for i, p := range pts {
		out[i] = RotateAbout(p, r, center)
	}
	return out
}

// MapDetected converts points found on a downscaled detection image into
// full-resolution display-oriented frame coordinates: rotate about the
// detection image center, move that center onto the rotated image's center
// (a no-op for square images), then scale up by factor.
func MapDetected(pts []r2.Vec, r Rotation, detect FrameSize, factor float64) []r2.Vec {
	if factor <= 0 || math.IsNaN(factor) || math.IsInf(factor, 0) {
		factor = 1
	}
	center := detect.Center()
	shift := r2.Sub(detect.Rotated(r).Center(), center)
	out := RotatePoints(pts, r, center)
	for i := range out {
		out[i] = r2.Scale(factor, r2.Add(out[i], shift))
	}
	return out
}

// ClampPoints limits each point in place to [0,W]x[0,H] of frame. A single
// downscale factor rounds the short axis of very elongated frames, which can
// push mapped points slightly past the edge.
func ClampPoints(pts []r2.Vec, frame FrameSize) []r2.Vec {
	w, h := float64(max(frame.Width, 0)), float64(max(frame.Height, 0))
	for i, p := range pts {
		pts[i] = r2.Vec{X: min(max(p.X, 0), w), Y: min(max(p.Y, 0), h)}
	}
	return pts
}
