package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dayfold/dispatch-api/internal/domain"
	"github.com/dayfold/dispatch-api/internal/platform/logger"
	"github.com/dayfold/dispatch-api/internal/store"
)

// PostgresDispatchStore implements the store.DispatchStore interface
// using a PostgreSQL database as the storage backend.
type PostgresDispatchStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresDispatchStore creates a new PostgreSQL implementation of the
// DispatchStore interface. It accepts a database connection or transaction
// that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresDispatchStore(db store.DBTX, logger *slog.Logger) *PostgresDispatchStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresDispatchStore{
		db:     db,
		logger: logger.With(slog.String("component", "dispatch_store")),
	}
}

// Ensure PostgresDispatchStore implements store.DispatchStore interface
var _ store.DispatchStore = (*PostgresDispatchStore)(nil)

// WithTx implements store.DispatchStore.WithTx
func (s *PostgresDispatchStore) WithTx(tx *sql.Tx) store.DispatchStore {
	return &PostgresDispatchStore{
		db:     tx,
		logger: s.logger,
	}
}

// Create implements store.DispatchStore.Create
// It saves a new dispatch to the database, handling domain validation.
// Returns store.ErrDispatchExists if a dispatch already exists for the
// (userID, date) pair; the unique constraint on that pair is the sole
// arbiter of concurrent creation attempts.
func (s *PostgresDispatchStore) Create(ctx context.Context, dispatch *domain.Dispatch) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := dispatch.Validate(); err != nil {
		log.Warn("dispatch validation failed during create",
			slog.String("error", err.Error()),
			slog.String("dispatch_id", dispatch.ID.String()))
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO dispatches (id, user_id, date, summary, finalized, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		dispatch.ID,
		dispatch.UserID,
		dispatch.Date.String(),
		dispatch.Summary,
		dispatch.Finalized,
		dispatch.CreatedAt,
		dispatch.UpdatedAt,
	)

	if err != nil {
		if IsUniqueViolation(err) {
			log.Debug("dispatch already exists for user and date",
				slog.String("user_id", dispatch.UserID.String()),
				slog.String("date", dispatch.Date.String()))
			return fmt.Errorf("%w: %v", store.ErrDispatchExists, err)
		}

		log.Error("failed to create dispatch",
			slog.String("error", err.Error()),
			slog.String("dispatch_id", dispatch.ID.String()),
			slog.String("user_id", dispatch.UserID.String()))
		return MapError(err)
	}

	log.Info("dispatch created successfully",
		slog.String("dispatch_id", dispatch.ID.String()),
		slog.String("user_id", dispatch.UserID.String()),
		slog.String("date", dispatch.Date.String()))
	return nil
}

// GetByID implements store.DispatchStore.GetByID
// Returns store.ErrDispatchNotFound if the dispatch does not exist.
func (s *PostgresDispatchStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Dispatch, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, user_id, date, summary, finalized, created_at, updated_at
		FROM dispatches
		WHERE id = $1
	`

	dispatch, err := s.scanDispatch(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("dispatch not found", slog.String("dispatch_id", id.String()))
			return nil, store.ErrDispatchNotFound
		}
		log.Error("failed to get dispatch by ID",
			slog.String("error", err.Error()),
			slog.String("dispatch_id", id.String()))
		return nil, MapError(err)
	}

	return dispatch, nil
}

// GetByUserAndDate implements store.DispatchStore.GetByUserAndDate
// Returns store.ErrDispatchNotFound if no dispatch exists for the pair.
func (s *PostgresDispatchStore) GetByUserAndDate(
	ctx context.Context,
	userID uuid.UUID,
	date domain.Date,
) (*domain.Dispatch, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, user_id, date, summary, finalized, created_at, updated_at
		FROM dispatches
		WHERE user_id = $1 AND date = $2
	`

	dispatch, err := s.scanDispatch(s.db.QueryRowContext(ctx, query, userID, date.String()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("dispatch not found for user and date",
				slog.String("user_id", userID.String()),
				slog.String("date", date.String()))
			return nil, store.ErrDispatchNotFound
		}
		log.Error("failed to get dispatch by user and date",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()),
			slog.String("date", date.String()))
		return nil, MapError(err)
	}

	return dispatch, nil
}

// Update implements store.DispatchStore.Update
// It saves the dispatch's summary, finalized flag, and updated_at timestamp.
// Returns store.ErrDispatchNotFound if the dispatch does not exist.
func (s *PostgresDispatchStore) Update(ctx context.Context, dispatch *domain.Dispatch) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := dispatch.Validate(); err != nil {
		log.Warn("dispatch validation failed during update",
			slog.String("error", err.Error()),
			slog.String("dispatch_id", dispatch.ID.String()))
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		UPDATE dispatches
		SET summary = $1, finalized = $2, updated_at = $3
		WHERE id = $4
	`

	result, err := s.db.ExecContext(
		ctx,
		query,
		dispatch.Summary,
		dispatch.Finalized,
		dispatch.UpdatedAt,
		dispatch.ID,
	)

	if err != nil {
		log.Error("failed to update dispatch",
			slog.String("error", err.Error()),
			slog.String("dispatch_id", dispatch.ID.String()))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, "dispatch"); err != nil {
		log.Debug("dispatch not found for update",
			slog.String("dispatch_id", dispatch.ID.String()))
		return store.ErrDispatchNotFound
	}

	log.Info("dispatch updated successfully",
		slog.String("dispatch_id", dispatch.ID.String()),
		slog.Bool("finalized", dispatch.Finalized))
	return nil
}

// rowScanner abstracts *sql.Row and *sql.Rows for shared scanning.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanDispatch reads one dispatch row, converting the stored DATE column
// back into a domain.Date calendar key.
func (s *PostgresDispatchStore) scanDispatch(row rowScanner) (*domain.Dispatch, error) {
	var dispatch domain.Dispatch
	var dateVal time.Time

	err := row.Scan(
		&dispatch.ID,
		&dispatch.UserID,
		&dateVal,
		&dispatch.Summary,
		&dispatch.Finalized,
		&dispatch.CreatedAt,
		&dispatch.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	dispatch.Date = domain.DateOf(dateVal)

	return &dispatch, nil
}
