package main

import (
	"io"
	"log/slog"
	"os"

	"github.com/mattn/go-isatty"
	"gopkg.in/natefinch/lumberjack.v2"
)

// NewLogger returns a structured slog.Logger with the given level. Output is
// text on an interactive terminal and JSON otherwise. When file is set the
// JSON stream is also written to a rotating log file.
func NewLogger(level slog.Leveler, file string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	if file == "" {
		if isatty.IsTerminal(os.Stdout.Fd()) {
			return slog.New(slog.NewTextHandler(os.Stdout, opts))
		}
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	rotating := &lumberjack.Logger{
		Filename:   file,
		LocalTime:  true,
		Compress:   true,
		MaxSize:    20, // megabytes
		MaxAge:     7,
		MaxBackups: 3,
	}
	return slog.New(slog.NewJSONHandler(io.MultiWriter(os.Stdout, rotating), opts))
}
