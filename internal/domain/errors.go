package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidDate is returned when a calendar key is not a valid
	// YYYY-MM-DD date.
	ErrInvalidDate = errors.New("invalid date")

	// ErrDispatchFinalized is returned when a mutating operation is attempted
	// on a dispatch that has already been finalized.
	ErrDispatchFinalized = errors.New("dispatch already finalized")

	// ErrDispatchNotFinalized is returned when unfinalize is attempted on a
	// dispatch that is still open.
	ErrDispatchNotFinalized = errors.New("dispatch not finalized")
)
