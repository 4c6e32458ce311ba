package overlay

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"golang.org/x/image/vector"
	"gonum.org/v1/gonum/spatial/r2"
)

// circleSegments controls how round joins and markers are approximated.
const circleSegments = 24

// Style configures how the polygon is stroked.
type Style struct {
	Color color.RGBA
	Width float64
	// Zoom is a cosmetic scale about the surface center applied at draw time
	// only. Values <= 0 mean 1.
	Zoom float64
}

// DefaultStyle is a red 8px stroke zoomed by 5%.
func DefaultStyle() Style {
	return Style{Color: color.RGBA{R: 0xff, A: 0xff}, Width: 8, Zoom: 1.05}
}

// Render strokes path onto dst. It reports whether anything was drawn; an
// empty path or a failure inside the rasterizer draws nothing.
func Render(dst *image.RGBA, path Path, st Style) (drawn bool) {
	if dst == nil || len(path.Points) != QuadSize {
		return false
	}
	b := dst.Bounds()
	if b.Empty() {
		return false
	}
	defer func() {
		if r := recover(); r != nil {
			drawn = false
		}
	}()

	zoom := st.Zoom
	if zoom <= 0 {
		zoom = 1
	}
	width := st.Width
	if width <= 0 {
		width = 1
	}
	pivot := r2.Vec{X: float64(b.Dx()) / 2, Y: float64(b.Dy()) / 2}
	pts := make([]r2.Vec, len(path.Points))
	for i, p := range path.Points {
		// surface coordinates are relative to dst's origin
		pts[i] = Zoom(r2.Sub(p, r2.Vec{X: float64(b.Min.X), Y: float64(b.Min.Y)}), zoom, pivot)
	}

	z := vector.NewRasterizer(b.Dx(), b.Dy())
	half := width * zoom / 2
	for i := range pts {
		a, c := pts[i], pts[(i+1)%len(pts)]
		addSegment(z, a, c, half)
		addCircle(z, a, half, false)
	}
	z.Draw(dst, b, image.NewUniform(st.Color), image.Point{})
	return true
}

// addSegment adds a rectangle of half-width hw around a-b. All shapes share
// the same winding so overlapping joins do not cancel out.
func addSegment(z *vector.Rasterizer, a, b r2.Vec, hw float64) {
	d := r2.Sub(b, a)
	l := r2.Norm(d)
	if l == 0 {
		return
	}
	n := r2.Scale(hw/l, r2.Vec{X: -d.Y, Y: d.X})
	p0, p1 := r2.Add(a, n), r2.Add(b, n)
	p2, p3 := r2.Sub(b, n), r2.Sub(a, n)
	z.MoveTo(float32(p0.X), float32(p0.Y))
	z.LineTo(float32(p1.X), float32(p1.Y))
	z.LineTo(float32(p2.X), float32(p2.Y))
	z.LineTo(float32(p3.X), float32(p3.Y))
	z.ClosePath()
}

// addCircle approximates a circle. reverse flips the winding, which lets an
// inner circle punch a hole into an outer one.
func addCircle(z *vector.Rasterizer, c r2.Vec, r float64, reverse bool) {
	if r <= 0 {
		return
	}
	dir := -1.0
	if reverse {
		dir = 1
	}
	for k := 0; k <= circleSegments; k++ {
		a := dir * 2 * math.Pi * float64(k%circleSegments) / circleSegments
		x := float32(c.X + r*math.Cos(a))
		y := float32(c.Y + r*math.Sin(a))
		if k == 0 {
			z.MoveTo(x, y)
			continue
		}
		z.LineTo(x, y)
	}
	z.ClosePath()
}

// fillCircle and strokeCircle back marker rendering.
func fillCircle(dst *image.RGBA, c r2.Vec, r float64, col color.Color) {
	b := dst.Bounds()
	z := vector.NewRasterizer(b.Dx(), b.Dy())
	z.DrawOp = draw.Over
	addCircle(z, r2.Sub(c, r2.Vec{X: float64(b.Min.X), Y: float64(b.Min.Y)}), r, false)
	z.Draw(dst, b, image.NewUniform(col), image.Point{})
}

func strokeCircle(dst *image.RGBA, c r2.Vec, r, width float64, col color.Color) {
	b := dst.Bounds()
	z := vector.NewRasterizer(b.Dx(), b.Dy())
	local := r2.Sub(c, r2.Vec{X: float64(b.Min.X), Y: float64(b.Min.Y)})
	addCircle(z, local, r+width/2, false)
	addCircle(z, local, math.Max(0, r-width/2), true)
	z.Draw(dst, b, image.NewUniform(col), image.Point{})
}
