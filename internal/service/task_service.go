package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/dayfold/dispatch-api/internal/domain"
	"github.com/dayfold/dispatch-api/internal/platform/logger"
	"github.com/dayfold/dispatch-api/internal/store"
)

// TaskService provides task-related operations outside the dispatch
// lifecycle: creating ad-hoc tasks and updating task status.
type TaskService interface {
	// CreateTask creates a new open task for the user.
	CreateTask(
		ctx context.Context,
		userID uuid.UUID,
		title string,
		description string,
		priority int,
		dueDate *domain.Date,
		projectID *uuid.UUID,
	) (*domain.Task, error)

	// GetTask retrieves a task owned by the user.
	// Returns ErrTaskNotFound if the task does not exist or belongs to
	// another user.
	GetTask(ctx context.Context, userID, taskID uuid.UUID) (*domain.Task, error)

	// UpdateTaskStatus transitions the task to the given status.
	UpdateTaskStatus(
		ctx context.Context,
		userID uuid.UUID,
		taskID uuid.UUID,
		status domain.TaskStatus,
	) (*domain.Task, error)
}

// taskServiceImpl implements the TaskService interface.
type taskServiceImpl struct {
	tasks  store.TaskStore
	logger *slog.Logger
}

// NewTaskService creates a new TaskService with the given dependencies.
func NewTaskService(tasks store.TaskStore, logger *slog.Logger) (TaskService, error) {
	if tasks == nil {
		return nil, errors.New("task store cannot be nil")
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	return &taskServiceImpl{
		tasks:  tasks,
		logger: logger.With(slog.String("component", "task_service")),
	}, nil
}

// CreateTask implements TaskService.CreateTask.
func (s *taskServiceImpl) CreateTask(
	ctx context.Context,
	userID uuid.UUID,
	title string,
	description string,
	priority int,
	dueDate *domain.Date,
	projectID *uuid.UUID,
) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	task, err := domain.NewTask(userID, title, dueDate, projectID)
	if err != nil {
		return nil, NewDispatchServiceError("create_task", "invalid task", err)
	}
	task.Description = description
	task.Priority = priority

	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, NewDispatchServiceError("create_task", "failed to save task", err)
	}

	log.Debug("task created",
		slog.String("task_id", task.ID.String()),
		slog.String("user_id", userID.String()))
	return task, nil
}

// GetTask implements TaskService.GetTask.
func (s *taskServiceImpl) GetTask(
	ctx context.Context,
	userID, taskID uuid.UUID,
) (*domain.Task, error) {
	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, NewDispatchServiceError("get_task", "failed to get task", err)
	}

	if task.UserID != userID {
		return nil, ErrTaskNotFound
	}

	return task, nil
}

// UpdateTaskStatus implements TaskService.UpdateTaskStatus.
func (s *taskServiceImpl) UpdateTaskStatus(
	ctx context.Context,
	userID uuid.UUID,
	taskID uuid.UUID,
	status domain.TaskStatus,
) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	task, err := s.GetTask(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}

	if err := task.UpdateStatus(status); err != nil {
		return nil, NewDispatchServiceError("update_task_status", "invalid status", err)
	}

	if err := s.tasks.Update(ctx, task); err != nil {
		return nil, NewDispatchServiceError("update_task_status", "failed to save task", err)
	}

	log.Debug("task status updated",
		slog.String("task_id", task.ID.String()),
		slog.String("status", string(status)))
	return task, nil
}
