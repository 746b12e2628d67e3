package service

import (
	"errors"
	"fmt"

	"github.com/dayfold/dispatch-api/internal/domain"
	"github.com/dayfold/dispatch-api/internal/store"
)

// Common sentinel errors for the dispatch and task services.
var (
	// ErrDispatchNotFound indicates that the dispatch does not exist.
	ErrDispatchNotFound = errors.New("dispatch not found")

	// ErrTaskNotFound indicates that the task does not exist or is not
	// visible to the requesting user.
	ErrTaskNotFound = errors.New("task not found")
)

// DispatchServiceError wraps errors from the dispatch service with context.
type DispatchServiceError struct {
	// Operation is the operation that failed (e.g., "get_or_create", "complete")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for DispatchServiceError.
func (e *DispatchServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("dispatch service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("dispatch service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *DispatchServiceError) Unwrap() error {
	return e.Err
}

// NewDispatchServiceError creates a new DispatchServiceError.
// It returns known sentinel errors directly without wrapping, so that
// callers can match on them with errors.Is.
func NewDispatchServiceError(operation, message string, err error) error {
	if err == nil {
		return nil
	}

	// Service-defined sentinels pass through untouched
	if errors.Is(err, ErrDispatchNotFound) || errors.Is(err, ErrTaskNotFound) {
		return err
	}

	// Domain lifecycle errors carry their own meaning for the API layer
	if errors.Is(err, domain.ErrDispatchFinalized) ||
		errors.Is(err, domain.ErrDispatchNotFinalized) {
		return err
	}

	// Map store-level sentinels to service-level ones
	if errors.Is(err, store.ErrDispatchNotFound) {
		return ErrDispatchNotFound
	}
	if errors.Is(err, store.ErrTaskNotFound) {
		return ErrTaskNotFound
	}

	return &DispatchServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
