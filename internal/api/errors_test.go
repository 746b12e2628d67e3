package api

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dayfold/dispatch-api/internal/domain"
	"github.com/dayfold/dispatch-api/internal/service"
	"github.com/dayfold/dispatch-api/internal/service/auth"
	"github.com/dayfold/dispatch-api/internal/store"
)

func TestMapErrorToStatusCode(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"invalid token", auth.ErrInvalidToken, http.StatusUnauthorized},
		{"expired token", auth.ErrExpiredToken, http.StatusUnauthorized},
		{"dispatch finalized", domain.ErrDispatchFinalized, http.StatusConflict},
		{"dispatch not finalized", domain.ErrDispatchNotFinalized, http.StatusConflict},
		{"dispatch not found", service.ErrDispatchNotFound, http.StatusNotFound},
		{"task not found", service.ErrTaskNotFound, http.StatusNotFound},
		{"store not found", store.ErrNoteNotFound, http.StatusNotFound},
		{"invalid date", domain.ErrInvalidDate, http.StatusBadRequest},
		{"empty title", domain.ErrEmptyTaskTitle, http.StatusBadRequest},
		{"invalid status", domain.ErrInvalidTaskStatus, http.StatusBadRequest},
		{"unknown error", errors.New("boom"), http.StatusInternalServerError},
		{
			"wrapped finalized error",
			fmt.Errorf("complete failed: %w", domain.ErrDispatchFinalized),
			http.StatusConflict,
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, MapErrorToStatusCode(tc.err))
		})
	}
}

func TestGetSafeErrorMessage(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "An unexpected error occurred", GetSafeErrorMessage(nil))
	assert.Equal(t, "Dispatch is already finalized", GetSafeErrorMessage(domain.ErrDispatchFinalized))
	assert.Equal(t, "Dispatch not found", GetSafeErrorMessage(service.ErrDispatchNotFound))
	assert.Equal(t, "Task not found", GetSafeErrorMessage(service.ErrTaskNotFound))
	assert.Equal(t, "Invalid date, expected YYYY-MM-DD", GetSafeErrorMessage(domain.ErrInvalidDate))

	// Internal details never leak through
	internal := errors.New("pq: connection refused on 10.0.0.5")
	msg := GetSafeErrorMessage(internal)
	assert.Equal(t, "An unexpected error occurred", msg)
	assert.NotContains(t, msg, "10.0.0.5")
}
