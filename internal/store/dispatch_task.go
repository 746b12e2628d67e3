package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/dayfold/dispatch-api/internal/domain"
)

// DispatchTaskStore defines the interface for the many-to-many link between
// dispatches and tasks. Links are a set: inserting an existing pair is a
// no-op, which is what makes rollover idempotent and safe to re-run.
type DispatchTaskStore interface {
	// Link records that the task is linked to the dispatch.
	// Inserting an already-present pair is not an error.
	Link(ctx context.Context, dispatchID, taskID uuid.UUID) error

	// Unlink removes the link between the dispatch and the task.
	// Removing an absent pair returns ErrNotFound.
	Unlink(ctx context.Context, dispatchID, taskID uuid.UUID) error

	// Exists reports whether the (dispatchID, taskID) pair is linked.
	Exists(ctx context.Context, dispatchID, taskID uuid.UUID) (bool, error)

	// ListTasks returns all tasks linked to the dispatch, oldest link first.
	// Returns an empty slice when the dispatch has no linked tasks.
	ListTasks(ctx context.Context, dispatchID uuid.UUID) ([]*domain.Task, error)

	// WithTx returns a new DispatchTaskStore instance that uses the provided
	// transaction.
	WithTx(tx *sql.Tx) DispatchTaskStore
}
