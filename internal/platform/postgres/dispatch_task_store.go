package postgres

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/google/uuid"

	"github.com/dayfold/dispatch-api/internal/domain"
	"github.com/dayfold/dispatch-api/internal/platform/logger"
	"github.com/dayfold/dispatch-api/internal/store"
)

// PostgresDispatchTaskStore implements the store.DispatchTaskStore interface
// using a PostgreSQL database as the storage backend. The composite primary
// key on (dispatch_id, task_id) turns the link table into a set, which is
// what makes rollover re-runs and duplicate link requests harmless.
type PostgresDispatchTaskStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresDispatchTaskStore creates a new PostgreSQL implementation of
// the DispatchTaskStore interface. If logger is nil, a default logger will
// be used.
func NewPostgresDispatchTaskStore(db store.DBTX, logger *slog.Logger) *PostgresDispatchTaskStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresDispatchTaskStore{
		db:     db,
		logger: logger.With(slog.String("component", "dispatch_task_store")),
	}
}

// Ensure PostgresDispatchTaskStore implements store.DispatchTaskStore
var _ store.DispatchTaskStore = (*PostgresDispatchTaskStore)(nil)

// WithTx implements store.DispatchTaskStore.WithTx
func (s *PostgresDispatchTaskStore) WithTx(tx *sql.Tx) store.DispatchTaskStore {
	return &PostgresDispatchTaskStore{
		db:     tx,
		logger: s.logger,
	}
}

// Link implements store.DispatchTaskStore.Link
// Inserting an already-present pair is a no-op, not an error.
func (s *PostgresDispatchTaskStore) Link(ctx context.Context, dispatchID, taskID uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		INSERT INTO dispatch_tasks (dispatch_id, task_id, created_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (dispatch_id, task_id) DO NOTHING
	`
	_, err := s.db.ExecContext(ctx, query, dispatchID, taskID)
	if err != nil {
		log.Error("failed to link task to dispatch",
			slog.String("error", err.Error()),
			slog.String("dispatch_id", dispatchID.String()),
			slog.String("task_id", taskID.String()))
		return MapError(err)
	}

	log.Debug("task linked to dispatch",
		slog.String("dispatch_id", dispatchID.String()),
		slog.String("task_id", taskID.String()))
	return nil
}

// Unlink implements store.DispatchTaskStore.Unlink
// Returns store.ErrNotFound if the pair was not linked.
func (s *PostgresDispatchTaskStore) Unlink(ctx context.Context, dispatchID, taskID uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		DELETE FROM dispatch_tasks
		WHERE dispatch_id = $1 AND task_id = $2
	`
	result, err := s.db.ExecContext(ctx, query, dispatchID, taskID)
	if err != nil {
		log.Error("failed to unlink task from dispatch",
			slog.String("error", err.Error()),
			slog.String("dispatch_id", dispatchID.String()),
			slog.String("task_id", taskID.String()))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, "dispatch task link"); err != nil {
		log.Debug("link not found for unlink",
			slog.String("dispatch_id", dispatchID.String()),
			slog.String("task_id", taskID.String()))
		return err
	}

	log.Debug("task unlinked from dispatch",
		slog.String("dispatch_id", dispatchID.String()),
		slog.String("task_id", taskID.String()))
	return nil
}

// Exists implements store.DispatchTaskStore.Exists
func (s *PostgresDispatchTaskStore) Exists(
	ctx context.Context,
	dispatchID, taskID uuid.UUID,
) (bool, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT EXISTS (
			SELECT 1 FROM dispatch_tasks
			WHERE dispatch_id = $1 AND task_id = $2
		)
	`
	var exists bool
	if err := s.db.QueryRowContext(ctx, query, dispatchID, taskID).Scan(&exists); err != nil {
		log.Error("failed to check dispatch task link",
			slog.String("error", err.Error()),
			slog.String("dispatch_id", dispatchID.String()),
			slog.String("task_id", taskID.String()))
		return false, MapError(err)
	}

	return exists, nil
}

// ListTasks implements store.DispatchTaskStore.ListTasks
// Returns an empty slice when the dispatch has no linked tasks.
func (s *PostgresDispatchTaskStore) ListTasks(
	ctx context.Context,
	dispatchID uuid.UUID,
) ([]*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT t.id, t.user_id, t.title, t.description, t.status, t.priority, t.due_date, t.project_id, t.created_at, t.updated_at
		FROM tasks t
		JOIN dispatch_tasks dt ON dt.task_id = t.id
		WHERE dt.dispatch_id = $1
		ORDER BY dt.created_at ASC
	`

	rows, err := s.db.QueryContext(ctx, query, dispatchID)
	if err != nil {
		log.Error("failed to query tasks for dispatch",
			slog.String("error", err.Error()),
			slog.String("dispatch_id", dispatchID.String()))
		return nil, MapError(err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	tasks := make([]*domain.Task, 0)
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			log.Error("failed to scan task row",
				slog.String("error", err.Error()))
			return nil, err
		}
		tasks = append(tasks, task)
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows",
			slog.String("error", err.Error()))
		return nil, err
	}

	log.Debug("listed tasks for dispatch",
		slog.String("dispatch_id", dispatchID.String()),
		slog.Int("count", len(tasks)))
	return tasks, nil
}
