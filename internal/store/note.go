package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/dayfold/dispatch-api/internal/domain"
)

// NoteStore defines the interface for note data persistence. Note titles are
// unique per user, which is what makes upsert-by-title well defined.
type NoteStore interface {
	// GetByTitle retrieves a note by its title within the user's scope.
	// Returns ErrNoteNotFound if no such note exists. Absence of the
	// template note is an expected condition, not a failure.
	GetByTitle(ctx context.Context, userID uuid.UUID, title string) (*domain.Note, error)

	// Upsert inserts the note, or replaces the content of the existing note
	// with the same (userID, title).
	Upsert(ctx context.Context, note *domain.Note) error

	// WithTx returns a new NoteStore instance that uses the provided
	// transaction.
	WithTx(tx *sql.Tx) NoteStore
}
