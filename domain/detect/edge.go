package detect

import (
	"context"
	"image"

	"github.com/anthonynsimon/bild/blend"
	"github.com/anthonynsimon/bild/blur"
	"github.com/anthonynsimon/bild/effect"
	"github.com/anthonynsimon/bild/segment"
	"gonum.org/v1/gonum/spatial/r2"
)

// borderMargin edge pixels are ignored along the image border.
const borderMargin = 2

// EdgeDetector is the pure Go quad detector. It blurs a grayscale copy,
// takes a Laplacian edge response on both the image and its inverse (bild
// clamps negative responses), thresholds it and keeps the largest connected
// edge component whose convex hull simplifies to a quadrilateral.
type EdgeDetector struct {
	opts Options
}

// NewEdgeDetector returns a detector using opts.
func NewEdgeDetector(opts Options) *EdgeDetector {
	return &EdgeDetector{opts: opts}
}

// Detect implements Detector.
func (d *EdgeDetector) Detect(ctx context.Context, img image.Image) ([]r2.Vec, error) {
	if img == nil {
		return nil, ErrNilImage
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b := img.Bounds()
	if b.Dx() < 4 || b.Dy() < 4 {
		return nil, nil
	}
	var gray image.Image = effect.Grayscale(img)
	if d.opts.BlurRadius > 0 {
		gray = blur.Gaussian(gray, d.opts.BlurRadius)
	}
	edges := blend.Add(effect.EdgeDetection(gray, 1), effect.EdgeDetection(effect.Invert(gray), 1))
	threshold := d.opts.CannyLow
	if threshold < 1 {
		threshold = 1
	}
	if threshold > 255 {
		threshold = 255
	}
	mask := segment.Threshold(edges, uint8(threshold))
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	comp := largestComponent(mask)
	if len(comp) < 4 {
		return nil, nil
	}
	hull := convexHull(comp)
	area := float64(mask.Bounds().Dx() * mask.Bounds().Dy())
	return acceptQuad(hull, area, d.opts), nil
}

// largestComponent returns the 8-connected set of on pixels in mask with the
// largest bounding box, ignoring a margin along the border. Points are
// relative to mask.Bounds().Min.
func largestComponent(mask *image.Gray) []r2.Vec {
	b := mask.Bounds()
	w, h := b.Dx(), b.Dy()
	on := func(x, y int) bool {
		if x < borderMargin || y < borderMargin || x >= w-borderMargin || y >= h-borderMargin {
			return false
		}
		return mask.Pix[mask.PixOffset(b.Min.X+x, b.Min.Y+y)] != 0
	}
	seen := make([]bool, w*h)
	var best []r2.Vec
	bestArea := -1
	stack := make([]image.Point, 0, 256)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if seen[y*w+x] || !on(x, y) {
				continue
			}
			var comp []r2.Vec
			minX, minY, maxX, maxY := x, y, x, y
			seen[y*w+x] = true
			stack = append(stack[:0], image.Point{X: x, Y: y})
			for len(stack) > 0 {
				p := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				comp = append(comp, r2.Vec{X: float64(p.X), Y: float64(p.Y)})
				minX, maxX = min(minX, p.X), max(maxX, p.X)
				minY, maxY = min(minY, p.Y), max(maxY, p.Y)
				for dy := -1; dy <= 1; dy++ {
					for dx := -1; dx <= 1; dx++ {
						nx, ny := p.X+dx, p.Y+dy
						if nx < 0 || ny < 0 || nx >= w || ny >= h || seen[ny*w+nx] || !on(nx, ny) {
							continue
						}
						seen[ny*w+nx] = true
						stack = append(stack, image.Point{X: nx, Y: ny})
					}
				}
			}
			if a := (maxX - minX + 1) * (maxY - minY + 1); a > bestArea {
				best, bestArea = comp, a
			}
		}
	}
	return best
}
