package main

import (
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/HugoSmits86/nativewebp"
	"github.com/disintegration/imaging"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/soocke/quadscan/config"
	"github.com/soocke/quadscan/domain/capture"
	"github.com/soocke/quadscan/domain/detect"
	"github.com/soocke/quadscan/domain/geometry"
	"github.com/soocke/quadscan/domain/overlay"
	"github.com/soocke/quadscan/ui/images"
	"github.com/soocke/quadscan/ui/presenter"
)

// job describes one offline render.
type job struct {
	Rotation geometry.Rotation
	Surface  geometry.SurfaceSize // zero means the rotated frame size
	Settings presenter.OverlaySettings
	MaxDim   int
}

// outcome is what one render produced.
type outcome struct {
	Image   *image.RGBA
	Points  []r2.Vec // frame coordinates, empty when no quad was found
	Frame   geometry.FrameSize
	Elapsed time.Duration
}

// render detects a quad in src and draws it over the letterboxed frame the
// same way the live preview does.
func render(ctx context.Context, d detect.Detector, src *image.RGBA, j job) (outcome, error) {
	start := time.Now()
	small, factor := detect.ResizeMax(src, j.MaxDim)
	if small == nil {
		return outcome{}, detect.ErrNilImage
	}
	defer detect.Recycle(small)
	raw, err := d.Detect(ctx, small)
	if err != nil {
		return outcome{}, err
	}
	b := src.Bounds()
	frame := geometry.FrameSize{Width: b.Dx(), Height: b.Dy()}.Rotated(j.Rotation)
	surface := j.Surface
	if surface.Empty() {
		surface = geometry.SurfaceSize{Width: frame.Width, Height: frame.Height}
	}
	fit := geometry.Fit(frame, surface)
	canvas := images.Letterbox(src, j.Rotation, surface, fit)

	out := outcome{Image: canvas, Frame: frame}
	if len(raw) == overlay.QuadSize {
		sb := small.Bounds()
		detectSize := geometry.FrameSize{Width: sb.Dx(), Height: sb.Dy()}
		out.Points = geometry.ClampPoints(geometry.MapDetected(raw, j.Rotation, detectSize, factor), frame)
		if j.Settings.Mode == config.OverlayMarkers {
			overlay.RenderMarkers(canvas, out.Points, fit, j.Settings.Markers)
		} else if path, ok := overlay.Build(out.Points, fit); ok {
			overlay.Render(canvas, path, j.Settings.Stroke)
		}
	}
	out.Elapsed = time.Since(start)
	return out, nil
}

// writeImage encodes img by the extension of path: WebP for .webp, anything
// imaging can save otherwise.
func writeImage(path string, img image.Image) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	if strings.EqualFold(filepath.Ext(path), ".webp") {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		if err := nativewebp.Encode(f, img, nil); err != nil {
			return fmt.Errorf("webp encode: %w", err)
		}
		return nil
	}
	return imaging.Save(img, path)
}

// renderFile loads src, renders it with j and writes the result to dst.
func renderFile(ctx context.Context, d detect.Detector, j job, src, dst string) (outcome, error) {
	img, err := capture.LoadRGBA(src)
	if err != nil {
		return outcome{}, err
	}
	res, err := render(ctx, d, img, j)
	if err != nil {
		return outcome{}, fmt.Errorf("render %s: %w", src, err)
	}
	if err := writeImage(dst, res.Image); err != nil {
		return outcome{}, fmt.Errorf("write %s: %w", dst, err)
	}
	return res, nil
}

// inputs expands in into (source path, output path) pairs. A directory is
// replayed in name order with outputs written under out using ext.
func inputs(in, out, ext string) ([][2]string, error) {
	st, err := os.Stat(in)
	if err != nil {
		return nil, err
	}
	if !st.IsDir() {
		return [][2]string{{in, out}}, nil
	}
	g, err := capture.NewDirGrabber(in)
	if err != nil {
		return nil, err
	}
	pairs := make([][2]string, 0, g.Len())
	for _, p := range g.Paths() {
		base := strings.TrimSuffix(filepath.Base(p), filepath.Ext(p))
		pairs = append(pairs, [2]string{p, filepath.Join(out, base+ext)})
	}
	return pairs, nil
}
