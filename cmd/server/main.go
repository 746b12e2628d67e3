// Package main implements the entry point for the dispatch API server,
// which manages per-user daily dispatches, template-driven task
// materialization, and task rollover.
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"

	"github.com/dayfold/dispatch-api/internal/config"
	"github.com/dayfold/dispatch-api/internal/platform/logger"
)

// main is the entry point for the dispatch-api server. It loads
// configuration, sets up logging, connects to the database, applies
// migrations, wires the application, and starts the HTTP server.
func main() {
	if err := run(); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}

	slog.Info("Server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel)

	db, err := setupDatabase(cfg, appLogger)
	if err != nil {
		return fmt.Errorf("failed to set up database: %w", err)
	}

	ctx := context.Background()
	if err := runMigrations(ctx, db, cfg.Database.MigrationsDir, appLogger); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	app, err := newApplication(cfg, appLogger, db)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	router := app.setupRouter()
	return app.startHTTPServer(ctx, router)
}
