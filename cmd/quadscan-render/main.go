// Command quadscan-render runs quad detection on still images and writes the
// overlay the live preview would show. It takes a single file or a directory
// of frames.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/soocke/quadscan/config"
	"github.com/soocke/quadscan/domain/detect"
	"github.com/soocke/quadscan/domain/geometry"
	"github.com/soocke/quadscan/domain/pipeline"
	"github.com/soocke/quadscan/ui/presenter"
)

func main() {
	in := flag.String("in", "", "input image or directory (png, jpg, bmp, tif, gif, tga)")
	out := flag.String("out", "out.png", "output file, or directory when -in is a directory")
	ext := flag.String("ext", ".webp", "output extension used for directory input")
	cfgPath := flag.String("config", "", "optional JSON config file")
	rotation := flag.Int("rotation", -1, "source rotation in degrees (overrides config)")
	width := flag.Int("width", 0, "surface width; 0 keeps the frame size")
	height := flag.Int("height", 0, "surface height; 0 keeps the frame size")
	mode := flag.String("mode", "", "overlay mode: polygon or markers")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))
	if *in == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg := config.DefaultConfig()
	if *cfgPath != "" {
		var err error
		if cfg, err = config.Load(*cfgPath); err != nil {
			logger.Warn("config load", "path", *cfgPath, "error", err)
		}
	}
	if *rotation >= 0 {
		cfg.SourceRotation = *rotation
	}
	if *mode != "" {
		cfg.OverlayMode = *mode
	}
	_ = cfg.Validate()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	pairs, err := inputs(*in, *out, *ext)
	if err != nil {
		fmt.Fprintln(os.Stderr, "quadscan-render:", err)
		os.Exit(1)
	}
	d := detect.NewDefault(pipeline.DetectOptions(cfg), logger)
	j := job{
		Rotation: geometry.Rotation(cfg.SourceRotation),
		Surface:  geometry.SurfaceSize{Width: *width, Height: *height},
		Settings: presenter.SettingsFromConfig(cfg),
		MaxDim:   cfg.MaxDetectDim,
	}
	failed := 0
	for _, p := range pairs {
		if ctx.Err() != nil {
			break
		}
		res, err := renderFile(ctx, d, j, p[0], p[1])
		if err != nil {
			logger.Error("render failed", "in", p[0], "error", err)
			failed++
			continue
		}
		logger.Info("rendered",
			"in", p[0],
			"out", p[1],
			"found", len(res.Points) == 4,
			"points", res.Points,
			"elapsed", res.Elapsed,
		)
	}
	if failed > 0 {
		os.Exit(1)
	}
}
