package capture

import (
	"image"

	"github.com/vova616/screenshot"
)

// ScreenGrabber captures the user's selection rectangle when one is set and
// the full primary screen otherwise.
type ScreenGrabber struct {
	Selection func() *image.Rectangle
}

// NewScreenGrabber returns a grabber reading the selection from selFn, which
// may be nil.
func NewScreenGrabber(selFn func() *image.Rectangle) *ScreenGrabber {
	return &ScreenGrabber{Selection: selFn}
}

// Grab implements Grabber.
func (g *ScreenGrabber) Grab() (*image.RGBA, string, error) {
	if g.Selection != nil {
		if r := g.Selection(); r != nil && !r.Empty() {
			img, err := screenshot.CaptureRect(*r)
			if err != nil {
				return nil, "", err
			}
			return img, "selection", nil
		}
	}
	img, err := screenshot.CaptureScreen()
	if err != nil {
		return nil, "", err
	}
	return img, "screen", nil
}
