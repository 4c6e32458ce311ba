package detect

import (
	"image"
	"image/draw"
	"math"
	"sync"
	"sync/atomic"

	xdraw "golang.org/x/image/draw"
)

// Detection copies are short lived: one per analyzed frame, recycled as soon
// as detection returns. Pooling them keeps the analyzer from allocating a
// fresh backing slice per frame.
var (
	bufferPool  sync.Pool // stores *image.RGBA
	outstanding atomic.Int64
)

// acquireBuffer returns a reusable RGBA image sized to rect. The returned Pix
// length exactly matches rect area * 4, and Stride is width*4.
func acquireBuffer(rect image.Rectangle) *image.RGBA {
	w, h := rect.Dx(), rect.Dy()
	needed := w * h * 4
	var img *image.RGBA
	if v := bufferPool.Get(); v != nil {
		img = v.(*image.RGBA)
	}
	if img == nil || cap(img.Pix) < needed {
		img = &image.RGBA{Pix: make([]byte, needed), Stride: w * 4, Rect: rect}
	} else {
		img.Stride = w * 4
		img.Rect = rect
		img.Pix = img.Pix[:needed]
	}
	outstanding.Add(1)
	return img
}

// Recycle returns a buffer obtained from ResizeMax to the pool. The image
// must not be used after Recycle. Nil is ignored.
func Recycle(img *image.RGBA) {
	if img == nil || img.Pix == nil {
		return
	}
	outstanding.Add(-1)
	bufferPool.Put(img)
}

// Outstanding reports how many ResizeMax buffers have not been recycled.
func Outstanding() int64 { return outstanding.Load() }

// ResizeMax copies src into a pooled buffer whose longest side is at most
// maxDim, preserving aspect ratio. factor is the multiplier that maps points
// on the copy back to src (>= 1). Images already within maxDim are copied
// unscaled with factor 1. The returned image must be passed to Recycle.
func ResizeMax(src image.Image, maxDim int) (resized *image.RGBA, factor float64) {
	if src == nil {
		return nil, 1
	}
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= 0 || h <= 0 {
		return nil, 1
	}
	longest := max(w, h)
	nw, nh := w, h
	factor = 1
	if maxDim > 0 && longest > maxDim {
		r := float64(maxDim) / float64(longest)
		nw = max(1, int(math.Round(float64(w)*r)))
		nh = max(1, int(math.Round(float64(h)*r)))
		factor = float64(longest) / float64(max(nw, nh))
	}
	dst := acquireBuffer(image.Rect(0, 0, nw, nh))
	if nw == w && nh == h {
		draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	} else {
		xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, b, xdraw.Src, nil)
	}
	return dst, factor
}
