package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dayfold/dispatch-api/internal/api/shared"
	"github.com/dayfold/dispatch-api/internal/domain"
	"github.com/dayfold/dispatch-api/internal/service"
)

// mockDispatchService implements service.DispatchService with overridable
// function fields.
type mockDispatchService struct {
	getOrCreateFn   func(ctx context.Context, userID uuid.UUID, date domain.Date) (*domain.Dispatch, error)
	updateSummaryFn func(ctx context.Context, userID uuid.UUID, date domain.Date, summary string) (*domain.Dispatch, error)
	completeFn      func(ctx context.Context, userID uuid.UUID, date domain.Date) (*service.CompleteResult, error)
	unfinalizeFn    func(ctx context.Context, userID uuid.UUID, date domain.Date) (*service.UnfinalizeResult, error)
	linkTaskFn      func(ctx context.Context, userID uuid.UUID, date domain.Date, taskID uuid.UUID) error
	unlinkTaskFn    func(ctx context.Context, userID uuid.UUID, date domain.Date, taskID uuid.UUID) error
	listTasksFn     func(ctx context.Context, userID uuid.UUID, date domain.Date) ([]*domain.Task, error)
}

func (m *mockDispatchService) GetOrCreate(
	ctx context.Context, userID uuid.UUID, date domain.Date,
) (*domain.Dispatch, error) {
	return m.getOrCreateFn(ctx, userID, date)
}

func (m *mockDispatchService) UpdateSummary(
	ctx context.Context, userID uuid.UUID, date domain.Date, summary string,
) (*domain.Dispatch, error) {
	return m.updateSummaryFn(ctx, userID, date, summary)
}

func (m *mockDispatchService) Complete(
	ctx context.Context, userID uuid.UUID, date domain.Date,
) (*service.CompleteResult, error) {
	return m.completeFn(ctx, userID, date)
}

func (m *mockDispatchService) Unfinalize(
	ctx context.Context, userID uuid.UUID, date domain.Date,
) (*service.UnfinalizeResult, error) {
	return m.unfinalizeFn(ctx, userID, date)
}

func (m *mockDispatchService) LinkTask(
	ctx context.Context, userID uuid.UUID, date domain.Date, taskID uuid.UUID,
) error {
	return m.linkTaskFn(ctx, userID, date, taskID)
}

func (m *mockDispatchService) UnlinkTask(
	ctx context.Context, userID uuid.UUID, date domain.Date, taskID uuid.UUID,
) error {
	return m.unlinkTaskFn(ctx, userID, date, taskID)
}

func (m *mockDispatchService) ListTasks(
	ctx context.Context, userID uuid.UUID, date domain.Date,
) ([]*domain.Task, error) {
	return m.listTasksFn(ctx, userID, date)
}

// newDispatchTestRouter mounts the dispatch routes behind a middleware that
// injects the given user ID, standing in for the auth middleware.
func newDispatchTestRouter(svc service.DispatchService, userID uuid.UUID) http.Handler {
	handler := NewDispatchHandler(svc)

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := context.WithValue(req.Context(), shared.UserIDContextKey, userID)
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
	r.Route("/api/dispatches/{date}", func(r chi.Router) {
		r.Get("/", handler.GetDispatch)
		r.Put("/summary", handler.UpdateSummary)
		r.Post("/complete", handler.CompleteDispatch)
		r.Post("/unfinalize", handler.UnfinalizeDispatch)
		r.Get("/tasks", handler.ListTasks)
		r.Put("/tasks/{taskID}", handler.LinkTask)
		r.Delete("/tasks/{taskID}", handler.UnlinkTask)
	})
	return r
}

func TestGetDispatchHandler(t *testing.T) {
	t.Parallel()
	userID := uuid.New()
	date := domain.MustParseDate("2025-06-14")
	dispatch, err := domain.NewDispatch(userID, date)
	require.NoError(t, err)

	svc := &mockDispatchService{
		getOrCreateFn: func(ctx context.Context, gotUser uuid.UUID, gotDate domain.Date) (*domain.Dispatch, error) {
			assert.Equal(t, userID, gotUser)
			assert.True(t, gotDate.Equal(date))
			return dispatch, nil
		},
	}
	router := newDispatchTestRouter(svc, userID)

	req := httptest.NewRequest(http.MethodGet, "/api/dispatches/2025-06-14", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp DispatchResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, dispatch.ID.String(), resp.ID)
	assert.Equal(t, "2025-06-14", resp.Date)
	assert.False(t, resp.Finalized)
}

func TestGetDispatchHandlerInvalidDate(t *testing.T) {
	t.Parallel()
	svc := &mockDispatchService{}
	router := newDispatchTestRouter(svc, uuid.New())

	req := httptest.NewRequest(http.MethodGet, "/api/dispatches/not-a-date", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateSummaryHandler(t *testing.T) {
	t.Parallel()
	userID := uuid.New()
	date := domain.MustParseDate("2025-06-14")
	dispatch, err := domain.NewDispatch(userID, date)
	require.NoError(t, err)
	require.NoError(t, dispatch.UpdateSummary("shipped the release"))

	svc := &mockDispatchService{
		updateSummaryFn: func(ctx context.Context, _ uuid.UUID, _ domain.Date, summary string) (*domain.Dispatch, error) {
			assert.Equal(t, "shipped the release", summary)
			return dispatch, nil
		},
	}
	router := newDispatchTestRouter(svc, userID)

	body := strings.NewReader(`{"summary": "shipped the release"}`)
	req := httptest.NewRequest(http.MethodPut, "/api/dispatches/2025-06-14/summary", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp DispatchResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.NotNil(t, resp.Summary)
	assert.Equal(t, "shipped the release", *resp.Summary)
}

func TestUpdateSummaryHandlerFinalizedConflict(t *testing.T) {
	t.Parallel()
	svc := &mockDispatchService{
		updateSummaryFn: func(ctx context.Context, _ uuid.UUID, _ domain.Date, _ string) (*domain.Dispatch, error) {
			return nil, domain.ErrDispatchFinalized
		},
	}
	router := newDispatchTestRouter(svc, uuid.New())

	body := strings.NewReader(`{"summary": "too late"}`)
	req := httptest.NewRequest(http.MethodPut, "/api/dispatches/2025-06-14/summary", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)

	var resp shared.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "Dispatch is already finalized", resp.Error)
}

func TestCompleteDispatchHandler(t *testing.T) {
	t.Parallel()
	userID := uuid.New()
	date := domain.MustParseDate("2025-06-14")
	dispatch, err := domain.NewDispatch(userID, date)
	require.NoError(t, err)
	require.NoError(t, dispatch.Finalize())
	nextID := uuid.New()

	svc := &mockDispatchService{
		completeFn: func(ctx context.Context, _ uuid.UUID, _ domain.Date) (*service.CompleteResult, error) {
			return &service.CompleteResult{
				Dispatch:       dispatch,
				RolledOver:     2,
				NextDispatchID: &nextID,
			}, nil
		},
	}
	router := newDispatchTestRouter(svc, userID)

	req := httptest.NewRequest(http.MethodPost, "/api/dispatches/2025-06-14/complete", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp CompleteDispatchResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.True(t, resp.Dispatch.Finalized)
	assert.Equal(t, 2, resp.RolledOverCount)
	require.NotNil(t, resp.NextDispatchID)
	assert.Equal(t, nextID.String(), *resp.NextDispatchID)
}

func TestUnfinalizeDispatchHandler(t *testing.T) {
	t.Parallel()
	userID := uuid.New()
	date := domain.MustParseDate("2025-06-14")
	dispatch, err := domain.NewDispatch(userID, date)
	require.NoError(t, err)
	nextDate := date.AddDays(1)

	svc := &mockDispatchService{
		unfinalizeFn: func(ctx context.Context, _ uuid.UUID, _ domain.Date) (*service.UnfinalizeResult, error) {
			return &service.UnfinalizeResult{
				Dispatch:         dispatch,
				HasNextDispatch:  true,
				NextDispatchDate: &nextDate,
			}, nil
		},
	}
	router := newDispatchTestRouter(svc, userID)

	req := httptest.NewRequest(http.MethodPost, "/api/dispatches/2025-06-14/unfinalize", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp UnfinalizeDispatchResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.True(t, resp.HasNextDispatch)
	require.NotNil(t, resp.NextDispatchDate)
	assert.Equal(t, "2025-06-15", *resp.NextDispatchDate)
}

func TestListTasksHandler(t *testing.T) {
	t.Parallel()
	userID := uuid.New()
	task, err := domain.NewTask(userID, "Water plants", nil, nil)
	require.NoError(t, err)

	svc := &mockDispatchService{
		listTasksFn: func(ctx context.Context, _ uuid.UUID, _ domain.Date) ([]*domain.Task, error) {
			return []*domain.Task{task}, nil
		},
	}
	router := newDispatchTestRouter(svc, userID)

	req := httptest.NewRequest(http.MethodGet, "/api/dispatches/2025-06-14/tasks", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp TaskListResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.Tasks, 1)
	assert.Equal(t, "Water plants", resp.Tasks[0].Title)
	assert.Equal(t, string(domain.TaskStatusOpen), resp.Tasks[0].Status)
}

func TestLinkAndUnlinkTaskHandlers(t *testing.T) {
	t.Parallel()
	userID := uuid.New()
	taskID := uuid.New()

	linked := false
	svc := &mockDispatchService{
		linkTaskFn: func(ctx context.Context, _ uuid.UUID, _ domain.Date, gotTask uuid.UUID) error {
			assert.Equal(t, taskID, gotTask)
			linked = true
			return nil
		},
		unlinkTaskFn: func(ctx context.Context, _ uuid.UUID, _ domain.Date, gotTask uuid.UUID) error {
			return service.ErrTaskNotFound
		},
	}
	router := newDispatchTestRouter(svc, userID)

	req := httptest.NewRequest(
		http.MethodPut, "/api/dispatches/2025-06-14/tasks/"+taskID.String(), nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.True(t, linked)

	// Malformed task IDs are rejected before reaching the service
	req = httptest.NewRequest(http.MethodPut, "/api/dispatches/2025-06-14/tasks/not-a-uuid", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req = httptest.NewRequest(
		http.MethodDelete, "/api/dispatches/2025-06-14/tasks/"+taskID.String(), nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
