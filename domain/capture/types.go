package capture

import (
	"image"
	"time"

	"github.com/soocke/quadscan/domain/geometry"
)

// FrameSnapshot carries the latest captured frame and metadata. Image is
// shared with other readers and must not be modified.
type FrameSnapshot struct {
	Image      *image.RGBA
	Width      int
	Height     int
	Rotation   geometry.Rotation
	Origin     string
	CapturedAt time.Time
	Sequence   uint64
}

// Empty reports whether the snapshot holds no image.
func (f FrameSnapshot) Empty() bool { return f.Image == nil || f.Width <= 0 || f.Height <= 0 }

// Frame returns the display-oriented frame size, with axes swapped for 90
// and 270 degree rotations.
func (f FrameSnapshot) Frame() geometry.FrameSize {
	return geometry.FrameSize{Width: f.Width, Height: f.Height}.Rotated(f.Rotation)
}

// FrameSource provides read-only access to captured frames.
// LatestFrame returns the freshest snapshot while Running reports activity.
type FrameSource interface {
	LatestFrame() FrameSnapshot
	Running() bool
}

// FrameHandler receives every captured frame on the capture goroutine. It
// must not block.
type FrameHandler func(FrameSnapshot)

// Grabber produces one frame per call. origin names where it came from
// ("screen", a file name).
type Grabber interface {
	Grab() (img *image.RGBA, origin string, err error)
}

// ServiceContract exposes basic lifecycle control for capture services.
type ServiceContract interface {
	Start()
	Stop()
	Running() bool
}
