// Package logger builds the application's slog logger from configuration.
package logger

import (
	"io"
	"log/slog"
	"os"
)

// Config holds the logger configuration.
type Config struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// New initializes a slog logger from cfg. A non-nil output overrides the
// configured destination, which tests use to capture records.
func New(cfg Config, output io.Writer) *slog.Logger {
	if output == nil {
		output = resolveOutput(cfg.Output)
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(output, opts)
	} else {
		handler = slog.NewTextHandler(output, opts)
	}
	return slog.New(handler)
}

func resolveOutput(name string) io.Writer {
	switch name {
	case "stderr":
		return os.Stderr
	case "file":
		file, err := os.OpenFile("smart-review.log", os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
		if err != nil {
			slog.Warn("failed to open log file, falling back to stdout", "error", err)
			return os.Stdout
		}
		return file
	default:
		return os.Stdout
	}
}
