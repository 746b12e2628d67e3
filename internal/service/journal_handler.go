package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dayfold/dispatch-api/internal/domain"
	"github.com/dayfold/dispatch-api/internal/events"
	"github.com/dayfold/dispatch-api/internal/platform/logger"
	"github.com/dayfold/dispatch-api/internal/store"
)

// JournalNoteHandler consumes journal upsert events and mirrors dispatch
// summaries into the per-day journal note ("Daily Dispatch - YYYY-MM-DD").
// The note is replaced wholesale on every summary change.
type JournalNoteHandler struct {
	notes  store.NoteStore
	logger *slog.Logger
}

// Ensure JournalNoteHandler implements events.EventHandler
var _ events.EventHandler = (*JournalNoteHandler)(nil)

// NewJournalNoteHandler creates a new JournalNoteHandler.
func NewJournalNoteHandler(notes store.NoteStore, logger *slog.Logger) (*JournalNoteHandler, error) {
	if notes == nil {
		return nil, errors.New("note store cannot be nil")
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	return &JournalNoteHandler{
		notes:  notes,
		logger: logger.With(slog.String("component", "journal_note_handler")),
	}, nil
}

// HandleEvent implements events.EventHandler. Events of other types are
// ignored.
func (h *JournalNoteHandler) HandleEvent(ctx context.Context, event *events.Event) error {
	log := logger.FromContextOrDefault(ctx, h.logger)

	if event.Type != events.EventTypeJournalUpsert {
		log.Debug("ignoring event of unrelated type",
			slog.String("event_type", event.Type))
		return nil
	}

	var payload events.JournalUpsertPayload
	if err := event.UnmarshalPayload(&payload); err != nil {
		return fmt.Errorf("failed to decode journal upsert payload: %w", err)
	}

	date, err := domain.ParseDate(payload.Date)
	if err != nil {
		return fmt.Errorf("invalid date in journal upsert payload: %w", err)
	}

	note, err := domain.NewNote(payload.UserID, domain.JournalNoteTitle(date), payload.Summary)
	if err != nil {
		return fmt.Errorf("failed to build journal note: %w", err)
	}

	if err := h.notes.Upsert(ctx, note); err != nil {
		return fmt.Errorf("failed to upsert journal note: %w", err)
	}

	log.Debug("journal note upserted",
		slog.String("user_id", payload.UserID.String()),
		slog.String("date", payload.Date))
	return nil
}
