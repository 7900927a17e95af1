// Package wire assembles the server application with google/wire.
package wire

import (
	"io"
	"log/slog"
	"os"

	"github.com/smart-review/smart-review/internal/config"
	"github.com/smart-review/smart-review/internal/logger"
)

func provideLoggerConfig(cfg *config.Config) logger.Config {
	return cfg.Logging
}

func provideLogWriter(cfg *config.Config) io.Writer {
	switch cfg.Logging.Output {
	case "stderr":
		return os.Stderr
	case "file":
		f, err := os.OpenFile("smart-review.log", os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o600)
		if err != nil {
			return os.Stdout
		}
		return f
	default:
		return os.Stdout
	}
}

func provideSlogLogger(loggerConfig logger.Config, writer io.Writer) *slog.Logger {
	return logger.New(loggerConfig, writer)
}
