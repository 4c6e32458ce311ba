// Package detect finds the four corners of a document-like quadrilateral in
// a frame. Detection runs on a downscaled copy; see ResizeMax.
package detect

import (
	"context"
	"errors"
	"image"
	"log/slog"

	"gonum.org/v1/gonum/spatial/r2"
)

// ErrNilImage is returned when Detect is called without an image.
var ErrNilImage = errors.New("detect: nil image")

// Detector returns either no points or exactly four corners ordered
// top-left, top-right, bottom-right, bottom-left in img's pixel space
// (relative to img.Bounds().Min). Not finding a quad is not an error.
type Detector interface {
	Detect(ctx context.Context, img image.Image) ([]r2.Vec, error)
}

// Func adapts a function to Detector.
type Func func(ctx context.Context, img image.Image) ([]r2.Vec, error)

// Detect calls f.
func (f Func) Detect(ctx context.Context, img image.Image) ([]r2.Vec, error) { return f(ctx, img) }

// Options tunes both detector implementations.
type Options struct {
	BlurRadius float64
	// CannyLow is the edge response threshold. The pure Go detector uses only
	// this value; the OpenCV detector uses both for hysteresis.
	CannyLow  int
	CannyHigh int
	// MinAreaRatio rejects quads covering less than this share of the image.
	MinAreaRatio float64
	// ApproxEpsilon is the polygon simplification tolerance as a fraction of
	// the contour perimeter.
	ApproxEpsilon float64
}

// DefaultOptions mirrors config defaults.
func DefaultOptions() Options {
	return Options{BlurRadius: 1, CannyLow: 50, CannyHigh: 150, MinAreaRatio: 0.1, ApproxEpsilon: 0.02}
}

// NewDefault returns the OpenCV detector when the binary was built with the
// gocv tag, and the pure Go edge detector otherwise.
func NewDefault(opts Options, logger *slog.Logger) Detector {
	cv, err := NewCVDetector(opts)
	if err == nil {
		if logger != nil {
			logger.Info("detector", "impl", "opencv")
		}
		return cv
	}
	if logger != nil {
		logger.Info("detector", "impl", "edge", "reason", err)
	}
	return NewEdgeDetector(opts)
}
