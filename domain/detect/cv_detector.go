//go:build gocv

package detect

import (
	"context"
	"image"
	"image/draw"

	"gocv.io/x/gocv"
	"gonum.org/v1/gonum/spatial/r2"
)

// CVDetector finds the quad with OpenCV: Canny edges, dilated, external
// contours, then polygon approximation of the largest candidate.
type CVDetector struct {
	opts Options
}

// NewCVDetector returns an OpenCV backed detector.
func NewCVDetector(opts Options) (*CVDetector, error) {
	return &CVDetector{opts: opts}, nil
}

// Detect implements Detector.
func (d *CVDetector) Detect(ctx context.Context, img image.Image) ([]r2.Vec, error) {
	if img == nil {
		return nil, ErrNilImage
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rgba := packedRGBA(img)
	w, h := rgba.Rect.Dx(), rgba.Rect.Dy()
	if w < 4 || h < 4 {
		return nil, nil
	}
	src, err := gocv.NewMatFromBytes(h, w, gocv.MatTypeCV8UC4, rgba.Pix)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(src, &gray, gocv.ColorRGBAToGray)

	blurred := gocv.NewMat()
	defer blurred.Close()
	k := 2*int(d.opts.BlurRadius+0.5) + 1
	gocv.GaussianBlur(gray, &blurred, image.Pt(k, k), 0, 0, gocv.BorderDefault)

	edges := gocv.NewMat()
	defer edges.Close()
	gocv.Canny(blurred, &edges, float32(d.opts.CannyLow), float32(d.opts.CannyHigh))

	kernel := gocv.GetStructuringElement(gocv.MorphRect, image.Pt(3, 3))
	defer kernel.Close()
	gocv.Dilate(edges, &edges, kernel)

	contours := gocv.FindContours(edges, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	imgArea := float64(w * h)
	var best []r2.Vec
	bestArea := 0.0
	for i := 0; i < contours.Size(); i++ {
		c := contours.At(i)
		area := gocv.ContourArea(c)
		if area < imgArea*d.opts.MinAreaRatio || area <= bestArea {
			continue
		}
		approx := gocv.ApproxPolyDP(c, d.opts.ApproxEpsilon*gocv.ArcLength(c, true), true)
		n := approx.Size()
		if n >= 4 && n <= 6 {
			pts := make([]r2.Vec, 0, n)
			for _, p := range approx.ToPoints() {
				pts = append(pts, r2.Vec{X: float64(p.X), Y: float64(p.Y)})
			}
			if corners := orderCorners(pts); corners != nil {
				best, bestArea = corners, area
			}
		}
		approx.Close()
	}
	return best, nil
}

// packedRGBA returns img as an RGBA whose Pix has no row padding and starts at
// the origin.
func packedRGBA(img image.Image) *image.RGBA {
	if r, ok := img.(*image.RGBA); ok && r.Rect.Min == (image.Point{}) && r.Stride == 4*r.Rect.Dx() {
		return r
	}
	b := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), img, b.Min, draw.Src)
	return out
}
