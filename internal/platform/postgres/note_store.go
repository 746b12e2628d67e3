package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/dayfold/dispatch-api/internal/domain"
	"github.com/dayfold/dispatch-api/internal/platform/logger"
	"github.com/dayfold/dispatch-api/internal/store"
)

// PostgresNoteStore implements the store.NoteStore interface
// using a PostgreSQL database as the storage backend.
type PostgresNoteStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresNoteStore creates a new PostgreSQL implementation of the
// NoteStore interface. If logger is nil, a default logger will be used.
func NewPostgresNoteStore(db store.DBTX, logger *slog.Logger) *PostgresNoteStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresNoteStore{
		db:     db,
		logger: logger.With(slog.String("component", "note_store")),
	}
}

// Ensure PostgresNoteStore implements store.NoteStore interface
var _ store.NoteStore = (*PostgresNoteStore)(nil)

// WithTx implements store.NoteStore.WithTx
func (s *PostgresNoteStore) WithTx(tx *sql.Tx) store.NoteStore {
	return &PostgresNoteStore{
		db:     tx,
		logger: s.logger,
	}
}

// GetByTitle implements store.NoteStore.GetByTitle
// Returns store.ErrNoteNotFound if no note with that title exists for the
// user. Callers looking up the template note treat absence as "no template",
// never as a failure.
func (s *PostgresNoteStore) GetByTitle(
	ctx context.Context,
	userID uuid.UUID,
	title string,
) (*domain.Note, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, user_id, title, content, created_at, updated_at
		FROM notes
		WHERE user_id = $1 AND title = $2
	`

	var note domain.Note
	err := s.db.QueryRowContext(ctx, query, userID, title).Scan(
		&note.ID,
		&note.UserID,
		&note.Title,
		&note.Content,
		&note.CreatedAt,
		&note.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("note not found",
				slog.String("user_id", userID.String()),
				slog.String("title", title))
			return nil, store.ErrNoteNotFound
		}
		log.Error("failed to get note by title",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()),
			slog.String("title", title))
		return nil, MapError(err)
	}

	return &note, nil
}

// Upsert implements store.NoteStore.Upsert
// It inserts the note, or replaces the content of the existing note with the
// same (user_id, title). The per-user title uniqueness constraint makes this
// a single atomic statement.
func (s *PostgresNoteStore) Upsert(ctx context.Context, note *domain.Note) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := note.Validate(); err != nil {
		log.Warn("note validation failed during upsert",
			slog.String("error", err.Error()),
			slog.String("note_id", note.ID.String()))
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO notes (id, user_id, title, content, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id, title)
		DO UPDATE SET content = EXCLUDED.content, updated_at = EXCLUDED.updated_at
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		note.ID,
		note.UserID,
		note.Title,
		note.Content,
		note.CreatedAt,
		note.UpdatedAt,
	)

	if err != nil {
		log.Error("failed to upsert note",
			slog.String("error", err.Error()),
			slog.String("user_id", note.UserID.String()),
			slog.String("title", note.Title))
		return MapError(err)
	}

	log.Info("note upserted successfully",
		slog.String("user_id", note.UserID.String()),
		slog.String("title", note.Title))
	return nil
}
