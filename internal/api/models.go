package api

import (
	"time"

	"github.com/dayfold/dispatch-api/internal/domain"
	"github.com/dayfold/dispatch-api/internal/service"
)

// Common request/response structures

// UpdateSummaryRequest defines the payload for the summary update endpoint.
// An empty summary is allowed; it clears the day's summary text.
type UpdateSummaryRequest struct {
	Summary string `json:"summary"`
}

// CreateTaskRequest defines the payload for the task creation endpoint.
type CreateTaskRequest struct {
	Title       string  `json:"title"       validate:"required,min=1"`
	Description string  `json:"description"`
	Priority    int     `json:"priority"    validate:"min=0,max=3"`
	DueDate     *string `json:"due_date"    validate:"omitempty"`
	ProjectID   *string `json:"project_id"  validate:"omitempty,uuid"`
}

// UpdateTaskStatusRequest defines the payload for the task status endpoint.
type UpdateTaskStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=open in_progress done"`
}

// DispatchResponse represents the response data for a dispatch.
type DispatchResponse struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Date      string    `json:"date"`
	Summary   *string   `json:"summary"`
	Finalized bool      `json:"finalized"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TaskResponse represents the response data for a task.
type TaskResponse struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	Priority    int       `json:"priority"`
	DueDate     *string   `json:"due_date"`
	ProjectID   *string   `json:"project_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TaskListResponse wraps the tasks linked to a dispatch.
type TaskListResponse struct {
	Tasks []TaskResponse `json:"tasks"`
}

// CompleteDispatchResponse is the response for the complete endpoint.
type CompleteDispatchResponse struct {
	Dispatch        DispatchResponse `json:"dispatch"`
	RolledOverCount int              `json:"rolled_over_count"`
	NextDispatchID  *string          `json:"next_dispatch_id,omitempty"`
}

// UnfinalizeDispatchResponse is the response for the unfinalize endpoint.
type UnfinalizeDispatchResponse struct {
	Dispatch         DispatchResponse `json:"dispatch"`
	HasNextDispatch  bool             `json:"has_next_dispatch"`
	NextDispatchDate *string          `json:"next_dispatch_date,omitempty"`
}

// dispatchToResponse converts a domain.Dispatch to a DispatchResponse.
func dispatchToResponse(dispatch *domain.Dispatch) DispatchResponse {
	return DispatchResponse{
		ID:        dispatch.ID.String(),
		UserID:    dispatch.UserID.String(),
		Date:      dispatch.Date.String(),
		Summary:   dispatch.Summary,
		Finalized: dispatch.Finalized,
		CreatedAt: dispatch.CreatedAt,
		UpdatedAt: dispatch.UpdatedAt,
	}
}

// taskToResponse converts a domain.Task to a TaskResponse.
func taskToResponse(task *domain.Task) TaskResponse {
	resp := TaskResponse{
		ID:          task.ID.String(),
		UserID:      task.UserID.String(),
		Title:       task.Title,
		Description: task.Description,
		Status:      string(task.Status),
		Priority:    task.Priority,
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}

	if task.DueDate != nil {
		due := task.DueDate.String()
		resp.DueDate = &due
	}
	if task.ProjectID != nil {
		projectID := task.ProjectID.String()
		resp.ProjectID = &projectID
	}

	return resp
}

// tasksToListResponse converts a slice of tasks to a TaskListResponse.
func tasksToListResponse(tasks []*domain.Task) TaskListResponse {
	resp := TaskListResponse{Tasks: make([]TaskResponse, 0, len(tasks))}
	for _, task := range tasks {
		resp.Tasks = append(resp.Tasks, taskToResponse(task))
	}
	return resp
}

// completeResultToResponse converts a service.CompleteResult to its DTO.
func completeResultToResponse(result *service.CompleteResult) CompleteDispatchResponse {
	resp := CompleteDispatchResponse{
		Dispatch:        dispatchToResponse(result.Dispatch),
		RolledOverCount: result.RolledOver,
	}
	if result.NextDispatchID != nil {
		id := result.NextDispatchID.String()
		resp.NextDispatchID = &id
	}
	return resp
}

// unfinalizeResultToResponse converts a service.UnfinalizeResult to its DTO.
func unfinalizeResultToResponse(result *service.UnfinalizeResult) UnfinalizeDispatchResponse {
	resp := UnfinalizeDispatchResponse{
		Dispatch:        dispatchToResponse(result.Dispatch),
		HasNextDispatch: result.HasNextDispatch,
	}
	if result.NextDispatchDate != nil {
		date := result.NextDispatchDate.String()
		resp.NextDispatchDate = &date
	}
	return resp
}
