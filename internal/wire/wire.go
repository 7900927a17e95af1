//go:build wireinject
// +build wireinject

package wire

import (
	"context"

	"github.com/google/wire"

	"github.com/smart-review/smart-review/internal/app"
	"github.com/smart-review/smart-review/internal/config"
)

// InitializeApp creates and wires all server dependencies.
func InitializeApp(ctx context.Context) (*app.App, error) {
	wire.Build(
		config.LoadConfig,
		provideLoggerConfig,
		provideLogWriter,
		provideSlogLogger,
		app.NewApp,
	)
	return nil, nil
}
