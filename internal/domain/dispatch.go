package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Common validation errors for Dispatch
var (
	ErrEmptyDispatchID     = errors.New("dispatch ID cannot be empty")
	ErrEmptyDispatchUserID = errors.New("dispatch user ID cannot be empty")
	ErrEmptyDispatchDate   = errors.New("dispatch date cannot be empty")
)

// Dispatch is a per-user, per-calendar-day container aggregating a free-text
// daily summary and a set of linked tasks. At most one Dispatch exists per
// (UserID, Date); the storage layer enforces this with a uniqueness
// constraint. A dispatch is created lazily on first access to a date and is
// Open (Finalized=false) until completed.
type Dispatch struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Date      Date      `json:"date"`
	Summary   *string   `json:"summary"`
	Finalized bool      `json:"finalized"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewDispatch creates a new open Dispatch for the given user and date.
// It generates a new UUID for the dispatch ID and sets the timestamps.
// Returns an error if validation fails.
func NewDispatch(userID uuid.UUID, date Date) (*Dispatch, error) {
	dispatch := &Dispatch{
		ID:        uuid.New(),
		UserID:    userID,
		Date:      date,
		Finalized: false,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}

	if err := dispatch.Validate(); err != nil {
		return nil, err
	}

	return dispatch, nil
}

// Validate checks if the Dispatch has valid data.
// Returns an error if any field fails validation.
func (d *Dispatch) Validate() error {
	if d.ID == uuid.Nil {
		return ErrEmptyDispatchID
	}

	if d.UserID == uuid.Nil {
		return ErrEmptyDispatchUserID
	}

	if d.Date.IsZero() {
		return ErrEmptyDispatchDate
	}

	return nil
}

// UpdateSummary replaces the dispatch summary and bumps UpdatedAt.
// Returns ErrDispatchFinalized if the dispatch is no longer open.
func (d *Dispatch) UpdateSummary(summary string) error {
	if d.Finalized {
		return ErrDispatchFinalized
	}

	d.Summary = &summary
	d.UpdatedAt = time.Now().UTC()
	return nil
}

// Finalize transitions the dispatch from Open to Finalized.
// Returns ErrDispatchFinalized if it is already finalized.
func (d *Dispatch) Finalize() error {
	if d.Finalized {
		return ErrDispatchFinalized
	}

	d.Finalized = true
	d.UpdatedAt = time.Now().UTC()
	return nil
}

// Reopen transitions the dispatch from Finalized back to Open.
// Returns ErrDispatchNotFinalized if it is not finalized.
func (d *Dispatch) Reopen() error {
	if !d.Finalized {
		return ErrDispatchNotFinalized
	}

	d.Finalized = false
	d.UpdatedAt = time.Now().UTC()
	return nil
}
