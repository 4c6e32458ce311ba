package images

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"

	"github.com/disintegration/imaging"

	"github.com/soocke/quadscan/domain/geometry"
)

// Background fills the letterbox bars.
var Background = color.RGBA{A: 0xff}

// EncodePNG encodes an image to PNG bytes. Errors are ignored and may return an empty slice.
func EncodePNG(img image.Image) []byte {
	if img == nil {
		return nil
	}
	var buf bytes.Buffer
	_ = png.Encode(&buf, img)
	return buf.Bytes()
}

// Orient rotates src clockwise by rot. Non right angles are returned
// unchanged.
func Orient(src image.Image, rot geometry.Rotation) image.Image {
	switch rot.Normalize() {
	case geometry.Rotate90:
		return imaging.Rotate270(src) // imaging rotates counter-clockwise
	case geometry.Rotate180:
		return imaging.Rotate180(src)
	case geometry.Rotate270:
		return imaging.Rotate90(src)
	}
	return src
}

// Letterbox draws src, oriented by rot, onto a surface-sized canvas at the
// position and scale given by fit. The frame is resized before it is
// rotated, so only the displayed pixels are touched.
func Letterbox(src image.Image, rot geometry.Rotation, surface geometry.SurfaceSize, fit geometry.FitTransform) *image.RGBA {
	w, h := max(1, surface.Width), max(1, surface.Height)
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(Background), image.Point{}, draw.Src)
	if src == nil || !fit.Valid() {
		return dst
	}
	b := src.Bounds()
	frame := geometry.FrameSize{Width: b.Dx(), Height: b.Dy()}.Rotated(rot)
	if frame.Empty() {
		return dst
	}
	fw, fh := fit.ScaledSize(frame)
	sw, sh := max(1, int(math.Round(fw))), max(1, int(math.Round(fh)))
	if rot.SwapsAxes() {
		sw, sh = sh, sw
	}
	scaled := imaging.Resize(src, sw, sh, imaging.Linear)
	oriented := Orient(scaled, rot)
	at := image.Pt(int(math.Round(fit.OffsetX)), int(math.Round(fit.OffsetY)))
	draw.Draw(dst, oriented.Bounds().Sub(oriented.Bounds().Min).Add(at), oriented, oriented.Bounds().Min, draw.Src)
	return dst
}
