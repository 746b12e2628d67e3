package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/dayfold/dispatch-api/internal/domain"
)

// DispatchStore defines the interface for dispatch data persistence.
// At most one dispatch exists per (userID, date); implementations enforce
// this with a uniqueness constraint and report violations as
// ErrDispatchExists so that getOrCreate races resolve by refetching.
type DispatchStore interface {
	// Create saves a new dispatch to the store.
	// Returns ErrDispatchExists if a dispatch already exists for the
	// dispatch's (userID, date) pair.
	Create(ctx context.Context, dispatch *domain.Dispatch) error

	// GetByID retrieves a dispatch by its unique ID.
	// Returns ErrDispatchNotFound if the dispatch does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Dispatch, error)

	// GetByUserAndDate retrieves the dispatch for a user and calendar date.
	// Returns ErrDispatchNotFound if none exists.
	GetByUserAndDate(ctx context.Context, userID uuid.UUID, date domain.Date) (*domain.Dispatch, error)

	// Update saves changes to an existing dispatch (summary, finalized).
	// Returns ErrDispatchNotFound if the dispatch does not exist.
	Update(ctx context.Context, dispatch *domain.Dispatch) error

	// WithTx returns a new DispatchStore instance that uses the provided
	// transaction. The transaction is created and managed by the caller.
	WithTx(tx *sql.Tx) DispatchStore
}
