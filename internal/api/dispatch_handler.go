package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dayfold/dispatch-api/internal/api/shared"
	"github.com/dayfold/dispatch-api/internal/domain"
	"github.com/dayfold/dispatch-api/internal/service"
)

// DispatchHandler handles dispatch-related HTTP requests. All routes are
// keyed by the calendar date in the URL; the dispatch row ID never appears
// in a route.
type DispatchHandler struct {
	dispatchService service.DispatchService
}

// NewDispatchHandler creates a new DispatchHandler.
func NewDispatchHandler(dispatchService service.DispatchService) *DispatchHandler {
	return &DispatchHandler{
		dispatchService: dispatchService,
	}
}

// userIDFromRequest extracts the authenticated user ID set by the auth
// middleware.
func userIDFromRequest(r *http.Request) (uuid.UUID, bool) {
	userID, ok := r.Context().Value(shared.UserIDContextKey).(uuid.UUID)
	if !ok || userID == uuid.Nil {
		return uuid.Nil, false
	}
	return userID, true
}

// dateFromRequest parses the {date} URL parameter.
func dateFromRequest(r *http.Request) (domain.Date, error) {
	return domain.ParseDate(chi.URLParam(r, "date"))
}

// GetDispatch handles GET /api/dispatches/{date} requests.
// Reading a date that has no dispatch yet creates and materializes one, so
// this endpoint never returns 404 for a valid date.
func (h *DispatchHandler) GetDispatch(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromRequest(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	date, err := dateFromRequest(r)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, GetSafeErrorMessage(err))
		return
	}

	dispatch, err := h.dispatchService.GetOrCreate(r.Context(), userID, date)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, dispatchToResponse(dispatch))
}

// UpdateSummary handles PUT /api/dispatches/{date}/summary requests.
func (h *DispatchHandler) UpdateSummary(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromRequest(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	date, err := dateFromRequest(r)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, GetSafeErrorMessage(err))
		return
	}

	var req UpdateSummaryRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	dispatch, err := h.dispatchService.UpdateSummary(r.Context(), userID, date, req.Summary)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, dispatchToResponse(dispatch))
}

// CompleteDispatch handles POST /api/dispatches/{date}/complete requests.
func (h *DispatchHandler) CompleteDispatch(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromRequest(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	date, err := dateFromRequest(r)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, GetSafeErrorMessage(err))
		return
	}

	result, err := h.dispatchService.Complete(r.Context(), userID, date)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, completeResultToResponse(result))
}

// UnfinalizeDispatch handles POST /api/dispatches/{date}/unfinalize requests.
func (h *DispatchHandler) UnfinalizeDispatch(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromRequest(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	date, err := dateFromRequest(r)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, GetSafeErrorMessage(err))
		return
	}

	result, err := h.dispatchService.Unfinalize(r.Context(), userID, date)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, unfinalizeResultToResponse(result))
}

// ListTasks handles GET /api/dispatches/{date}/tasks requests.
func (h *DispatchHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromRequest(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	date, err := dateFromRequest(r)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, GetSafeErrorMessage(err))
		return
	}

	tasks, err := h.dispatchService.ListTasks(r.Context(), userID, date)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, tasksToListResponse(tasks))
}

// LinkTask handles PUT /api/dispatches/{date}/tasks/{taskID} requests.
// Linking an already-linked task succeeds without change.
func (h *DispatchHandler) LinkTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromRequest(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	date, err := dateFromRequest(r)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, GetSafeErrorMessage(err))
		return
	}

	taskID, err := uuid.Parse(chi.URLParam(r, "taskID"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid task ID")
		return
	}

	if err := h.dispatchService.LinkTask(r.Context(), userID, date, taskID); err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// UnlinkTask handles DELETE /api/dispatches/{date}/tasks/{taskID} requests.
func (h *DispatchHandler) UnlinkTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromRequest(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	date, err := dateFromRequest(r)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, GetSafeErrorMessage(err))
		return
	}

	taskID, err := uuid.Parse(chi.URLParam(r, "taskID"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid task ID")
		return
	}

	if err := h.dispatchService.UnlinkTask(r.Context(), userID, date, taskID); err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
