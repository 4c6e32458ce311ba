//go:build !gocv

package detect

import (
	"context"
	"errors"
	"image"

	"gonum.org/v1/gonum/spatial/r2"
)

// ErrCVUnavailable is returned when the binary was built without the gocv tag.
var ErrCVUnavailable = errors.New("detect: opencv support not compiled in (build with -tags gocv)")

// CVDetector is unavailable in this build.
type CVDetector struct{}

// NewCVDetector always fails without the gocv tag.
func NewCVDetector(Options) (*CVDetector, error) { return nil, ErrCVUnavailable }

// Detect always fails without the gocv tag.
func (*CVDetector) Detect(context.Context, image.Image) ([]r2.Vec, error) {
	return nil, ErrCVUnavailable
}
