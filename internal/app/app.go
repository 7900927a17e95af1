// Package app wires the webhook server's components together and manages
// their lifecycle.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/smart-review/smart-review/internal/config"
	"github.com/smart-review/smart-review/internal/core"
	"github.com/smart-review/smart-review/internal/db"
	"github.com/smart-review/smart-review/internal/jobs"
	"github.com/smart-review/smart-review/internal/llm"
	"github.com/smart-review/smart-review/internal/server"
	"github.com/smart-review/smart-review/internal/storage"
)

// App holds the main application components.
type App struct {
	ctx        context.Context
	cfg        *config.Config
	server     *server.Server
	logger     *slog.Logger
	dispatcher core.JobDispatcher
	dbCleanup  func()
}

// NewApp sets up the application with all its dependencies.
func NewApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	logger.Info("initializing smart-review server",
		"llm_provider", cfg.LLM.Provider,
		"llm_model", cfg.LLM.Model,
		"max_workers", cfg.Review.MaxWorkers)

	llmGateway, err := llm.NewGateway(ctx, cfg.LLM, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM gateway: %w", err)
	}

	dbConn, dbCleanup, err := db.NewDatabase(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	store := storage.NewStore(dbConn.DB)

	reviewJob := jobs.NewReviewJob(cfg, llmGateway, store, logger)
	dispatcher := jobs.NewDispatcher(reviewJob, cfg.Review.MaxWorkers, logger)
	httpServer := server.NewServer(ctx, cfg, dispatcher, logger)

	logger.Info("smart-review server initialized")
	return &App{
		ctx:        ctx,
		cfg:        cfg,
		server:     httpServer,
		logger:     logger,
		dispatcher: dispatcher,
		dbCleanup:  dbCleanup,
	}, nil
}

// Start runs the HTTP server and blocks until it stops.
func (a *App) Start() error {
	a.logger.Info("starting smart-review",
		"server_port", a.cfg.Server.Port,
		"max_workers", a.cfg.Review.MaxWorkers)

	if err := a.server.Start(); err != nil {
		a.logger.Error("failed to start HTTP server", "error", err)
		return err
	}
	return nil
}

// Stop shuts down the application cleanly: server first so no new events
// arrive, then the dispatcher so in-flight reviews finish, then the database.
func (a *App) Stop() error {
	a.logger.Info("shutting down smart-review services")

	serverErr := a.server.Stop()
	if serverErr != nil {
		a.logger.Error("error during HTTP server shutdown", "error", serverErr)
	}

	a.dispatcher.Stop()
	a.dbCleanup()

	if serverErr != nil {
		return serverErr
	}
	a.logger.Info("smart-review stopped")
	return nil
}
