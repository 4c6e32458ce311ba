package view

import (
	"image"
	"strconv"
	"strings"

	"github.com/soocke/quadscan/domain/geometry"
	"github.com/soocke/quadscan/ui/images"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

// OverlayPreview is the render surface: a frame that stretches with the
// window and a label showing the composed preview. It reports its pixel
// size whenever Tk reconfigures it.
type OverlayPreview interface {
	UpdatePreview(img image.Image)
	Reset()
}

type overlayPreview struct {
	frame    *FrameWidget
	label    *LabelWidget
	photo    *Img // last Tk photo; deleted before replacement
	onResize func(w, h int)
	w, h     int
}

// NewOverlayPreview creates the preview at row spanning all columns with an
// initial size of w x h. onResize receives the usable surface size.
func NewOverlayPreview(row, w, h int, onResize func(w, h int)) OverlayPreview {
	frame := Frame(Width(w), Height(h), Borderwidth(0))
	Grid(frame, Row(row), Column(0), Columnspan(5), Sticky("nsew"), Padx("0.4m"), Pady("0.4m"))
	GridRowConfigure(App, row, Weight(1))
	GridColumnConfigure(App, 0, Weight(1))
	photo := NewPhoto(Data(images.EncodePNG(placeholder(w, h))))
	label := frame.Label(Image(photo), Borderwidth(0))
	Grid(label, Row(0), Column(0), Sticky("nsew"))
	v := &overlayPreview{frame: frame, label: label, photo: photo, onResize: onResize, w: w, h: h}
	Bind(frame, "<Configure>", Command(v.measure))
	if onResize != nil {
		onResize(w, h)
	}
	return v
}

// measure reads the frame's current size. Changes of a pixel or two are
// ignored so a preview that nudges the frame cannot start a resize loop.
func (v *overlayPreview) measure() {
	if v == nil || v.frame == nil {
		return
	}
	defer func() { _ = recover() }()
	w := winfoInt(WinfoWidth(v.frame.Window))
	h := winfoInt(WinfoHeight(v.frame.Window))
	if w <= 1 || h <= 1 {
		return
	}
	if abs(w-v.w) <= 2 && abs(h-v.h) <= 2 {
		return
	}
	v.w, v.h = w, h
	if v.onResize != nil {
		v.onResize(w, h)
	}
}

func (v *overlayPreview) UpdatePreview(img image.Image) {
	if v == nil || v.label == nil || img == nil {
		return
	}
	defer func() { _ = recover() }()
	pngBytes := images.EncodePNG(img)
	if v.photo != nil {
		v.photo.Delete()
	}
	v.photo = NewPhoto(Data(pngBytes))
	v.label.Configure(Image(v.photo))
}

func (v *overlayPreview) Reset() {
	if v == nil || v.label == nil {
		return
	}
	defer func() { _ = recover() }()
	if v.photo != nil {
		v.photo.Delete()
	}
	v.photo = NewPhoto(Data(images.EncodePNG(placeholder(v.w, v.h))))
	v.label.Configure(Image(v.photo))
}

func placeholder(w, h int) *image.RGBA {
	return images.Letterbox(nil, geometry.Rotate0, geometry.SurfaceSize{Width: w, Height: h}, geometry.FitTransform{})
}

func winfoInt(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
