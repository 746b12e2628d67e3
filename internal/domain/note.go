package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// TemplateNoteTitle is the reserved title of the note whose content defines
// the conditional task template. The engine only ever reads this note.
const TemplateNoteTitle = "Dispatch Template"

// journalNoteTitlePrefix is the title prefix for the per-day journal note
// that mirrors a dispatch summary.
const journalNoteTitlePrefix = "Daily Dispatch - "

// JournalNoteTitle returns the reserved journal note title for a date,
// e.g. "Daily Dispatch - 2025-06-14".
func JournalNoteTitle(date Date) string {
	return journalNoteTitlePrefix + date.String()
}

// Common validation errors for Note
var (
	ErrEmptyNoteID     = errors.New("note ID cannot be empty")
	ErrEmptyNoteUserID = errors.New("note user ID cannot be empty")
	ErrEmptyNoteTitle  = errors.New("note title cannot be empty")
)

// Note is a titled free-text document owned by a user. Titles are unique per
// user, which is what makes the reserved template note addressable and the
// journal note upsertable.
type Note struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewNote creates a new Note with the given user ID, title, and content.
// Returns an error if validation fails.
func NewNote(userID uuid.UUID, title, content string) (*Note, error) {
	note := &Note{
		ID:        uuid.New(),
		UserID:    userID,
		Title:     title,
		Content:   content,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}

	if err := note.Validate(); err != nil {
		return nil, err
	}

	return note, nil
}

// Validate checks if the Note has valid data.
func (n *Note) Validate() error {
	if n.ID == uuid.Nil {
		return ErrEmptyNoteID
	}

	if n.UserID == uuid.Nil {
		return ErrEmptyNoteUserID
	}

	if n.Title == "" {
		return ErrEmptyNoteTitle
	}

	return nil
}
