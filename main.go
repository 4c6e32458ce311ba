package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/soocke/quadscan/app"
	"github.com/soocke/quadscan/config"
	"github.com/soocke/quadscan/ui/theme"
)

func main() {
	cfgPath := flag.String("config", "quadscan.json", "path to the JSON config file")
	debugFlag := flag.Bool("debug", false, "enable debug logging and runtime metrics")
	source := flag.String("source", "", "frame source: screen or dir (overrides config)")
	dir := flag.String("dir", "", "directory of images to replay (implies -source dir)")
	rotation := flag.Int("rotation", -1, "source rotation in degrees: 0, 90, 180 or 270")
	mode := flag.String("mode", "", "overlay mode: polygon or markers")
	logFile := flag.String("log-file", "", "also write JSON logs to this rotating file")
	dark := flag.Bool("dark", false, "use the dark theme")
	flag.Parse()

	// Base config from file, falling back to defaults
	cfg, cfgErr := config.Load(*cfgPath)
	applyFlags(cfg, *debugFlag, *source, *dir, *rotation, *mode)

	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	logger := NewLogger(level, *logFile)
	if cfgErr != nil {
		logger.Warn("config load", "path", *cfgPath, "error", cfgErr)
	}
	theme.SetDark(*dark)

	application, err := app.NewApp("Quadscan", 960, 720, cfg, logger, *cfgPath)
	if err != nil {
		logger.Error("startup failed", "error", err)
		fmt.Fprintln(os.Stderr, "quadscan:", err)
		os.Exit(1)
	}
	application.Start()
}

// applyFlags overrides config values with explicitly set flags.
func applyFlags(cfg *config.Config, debug bool, source, dir string, rotation int, mode string) {
	if debug {
		cfg.Debug = true
	}
	if source != "" {
		cfg.Source = source
	}
	if dir != "" {
		cfg.SourceDir = dir
		cfg.Source = config.SourceDir
	}
	if rotation >= 0 {
		cfg.SourceRotation = rotation
	}
	if mode != "" {
		cfg.OverlayMode = mode
	}
	_ = cfg.Validate()
}
