// Package pipeline wires a frame source, the analyzer and its detector into
// one unit the application can drive and reconfigure.
package pipeline

import (
	"errors"
	"fmt"
	"image"
	"log/slog"
	"time"

	"github.com/soocke/quadscan/config"
	"github.com/soocke/quadscan/domain/analyzer"
	"github.com/soocke/quadscan/domain/capture"
	"github.com/soocke/quadscan/domain/detect"
	"github.com/soocke/quadscan/domain/geometry"
)

// ErrNoSourceDir is returned when the directory source is selected without
// a directory.
var ErrNoSourceDir = errors.New("pipeline: dir source needs source_dir")

// Pipeline owns the capture service and the analyzer it feeds.
type Pipeline struct {
	Capture  capture.CaptureService
	Analyzer *analyzer.Analyzer
	Source   string
	logger   *slog.Logger
}

// DetectOptions maps config fields onto detector options.
func DetectOptions(cfg *config.Config) detect.Options {
	if cfg == nil {
		return detect.DefaultOptions()
	}
	return detect.Options{
		BlurRadius:    cfg.BlurRadius,
		CannyLow:      cfg.CannyLow,
		CannyHigh:     cfg.CannyHigh,
		MinAreaRatio:  cfg.MinAreaRatio,
		ApproxEpsilon: cfg.ApproxEpsilon,
	}
}

// NewGrabber returns the frame source named by cfg.Source. selection is
// only consulted by the screen source and may be nil.
func NewGrabber(cfg *config.Config, selection func() *image.Rectangle) (capture.Grabber, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	switch cfg.Source {
	case config.SourceDir:
		if cfg.SourceDir == "" {
			return nil, ErrNoSourceDir
		}
		g, err := capture.NewDirGrabber(cfg.SourceDir)
		if err != nil {
			return nil, fmt.Errorf("pipeline: %w", err)
		}
		return g, nil
	default:
		return capture.NewScreenGrabber(selection), nil
	}
}

// New builds the pipeline for cfg around g. Every captured frame is handed
// to the analyzer.
func New(cfg *config.Config, g capture.Grabber, logger *slog.Logger) *Pipeline {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	d := detect.NewDefault(DetectOptions(cfg), logger)
	p := &Pipeline{
		Capture:  capture.NewCaptureService(logger, g, interval(cfg)),
		Analyzer: analyzer.New(d, cfg.MaxDetectDim, logger),
		Source:   cfg.Source,
		logger:   logger,
	}
	p.Capture.SetRotation(geometry.Rotation(cfg.SourceRotation))
	p.Capture.SetFrameHandler(func(snap capture.FrameSnapshot) { p.Analyzer.Submit(snap) })
	return p
}

func interval(cfg *config.Config) time.Duration {
	return time.Duration(cfg.CaptureIntervalMs) * time.Millisecond
}

// Apply pushes cfg into the running components. Rotation and pacing take
// effect immediately; detector settings only while analysis is stopped.
func (p *Pipeline) Apply(cfg *config.Config) error {
	if p == nil || cfg == nil {
		return nil
	}
	p.Capture.SetRotation(geometry.Rotation(cfg.SourceRotation))
	p.Capture.SetInterval(interval(cfg))
	if err := p.Analyzer.Configure(detect.NewDefault(DetectOptions(cfg), p.logger), cfg.MaxDetectDim); err != nil {
		return fmt.Errorf("pipeline: apply: %w", err)
	}
	return nil
}
