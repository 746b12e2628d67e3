package main

import (
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/dayfold/dispatch-api/internal/config"
	"github.com/dayfold/dispatch-api/internal/events"
	"github.com/dayfold/dispatch-api/internal/platform/postgres"
	"github.com/dayfold/dispatch-api/internal/service"
	"github.com/dayfold/dispatch-api/internal/service/auth"
	"github.com/dayfold/dispatch-api/internal/store"
)

// application holds the wired dependencies of the server: configuration,
// stores, services, and the event emitter.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	dispatchStore     store.DispatchStore
	taskStore         store.TaskStore
	noteStore         store.NoteStore
	dispatchTaskStore store.DispatchTaskStore

	jwtService      auth.JWTService
	dispatchService service.DispatchService
	taskService     service.TaskService
}

// newApplication wires the stores, services, and event handlers from the
// loaded configuration and database connection.
func newApplication(cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	dispatchStore := postgres.NewPostgresDispatchStore(db, logger)
	taskStore := postgres.NewPostgresTaskStore(db, logger)
	noteStore := postgres.NewPostgresNoteStore(db, logger)
	dispatchTaskStore := postgres.NewPostgresDispatchTaskStore(db, logger)

	jwtService, err := auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to create JWT service: %w", err)
	}

	materializer, err := service.NewMaterializer(noteStore, taskStore, dispatchTaskStore, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create materializer: %w", err)
	}

	// Journal note mirroring runs as a synchronous post-commit event handler.
	emitter := events.NewInMemoryEventEmitter(logger)
	journalHandler, err := service.NewJournalNoteHandler(noteStore, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create journal note handler: %w", err)
	}
	emitter.RegisterHandler(journalHandler)

	dispatchService, err := service.NewDispatchService(
		&store.DBTransactor{DB: db},
		dispatchStore,
		taskStore,
		dispatchTaskStore,
		materializer,
		emitter,
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create dispatch service: %w", err)
	}

	taskService, err := service.NewTaskService(taskStore, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create task service: %w", err)
	}

	return &application{
		config:            cfg,
		logger:            logger,
		db:                db,
		dispatchStore:     dispatchStore,
		taskStore:         taskStore,
		noteStore:         noteStore,
		dispatchTaskStore: dispatchTaskStore,
		jwtService:        jwtService,
		dispatchService:   dispatchService,
		taskService:       taskService,
	}, nil
}

// cleanup releases application resources during shutdown.
func (app *application) cleanup() {
	if err := app.db.Close(); err != nil {
		app.logger.Error("Failed to close database connection", "error", err)
	}
}
