package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/dayfold/dispatch-api/internal/domain"
	"github.com/dayfold/dispatch-api/internal/events"
	"github.com/dayfold/dispatch-api/internal/platform/logger"
	"github.com/dayfold/dispatch-api/internal/store"
)

// CompleteResult describes the outcome of completing a dispatch.
type CompleteResult struct {
	// Dispatch is the finalized dispatch.
	Dispatch *domain.Dispatch

	// RolledOver is the number of unfinished tasks carried to the next day.
	RolledOver int

	// NextDispatchID identifies the next-day dispatch that received the
	// rolled-over tasks. Nil when nothing rolled over.
	NextDispatchID *uuid.UUID
}

// UnfinalizeResult describes the outcome of reopening a dispatch.
type UnfinalizeResult struct {
	// Dispatch is the reopened dispatch.
	Dispatch *domain.Dispatch

	// HasNextDispatch reports whether a dispatch already exists for the
	// following day. Rolled-over links on that dispatch are left in place;
	// this flag lets the caller tell the user about them.
	HasNextDispatch bool

	// NextDispatchDate is the date of that dispatch, when present.
	NextDispatchDate *domain.Date
}

// DispatchService provides the dispatch lifecycle operations. All operations
// are keyed by (userID, date): callers never address dispatches by row ID.
type DispatchService interface {
	// GetOrCreate returns the dispatch for the user and date, creating and
	// materializing it first if it does not exist yet.
	GetOrCreate(ctx context.Context, userID uuid.UUID, date domain.Date) (*domain.Dispatch, error)

	// UpdateSummary replaces the summary of an open dispatch and mirrors it
	// into the day's journal note.
	// Returns domain.ErrDispatchFinalized if the dispatch is finalized.
	UpdateSummary(
		ctx context.Context,
		userID uuid.UUID,
		date domain.Date,
		summary string,
	) (*domain.Dispatch, error)

	// Complete finalizes the dispatch and rolls unfinished tasks over to the
	// next day's dispatch.
	// Returns domain.ErrDispatchFinalized if it is already finalized.
	Complete(ctx context.Context, userID uuid.UUID, date domain.Date) (*CompleteResult, error)

	// Unfinalize reopens a finalized dispatch. Rolled-over links created by
	// Complete are not undone; the result reports whether a next-day
	// dispatch exists so the caller can surface that.
	// Returns domain.ErrDispatchNotFinalized if the dispatch is open.
	Unfinalize(ctx context.Context, userID uuid.UUID, date domain.Date) (*UnfinalizeResult, error)

	// LinkTask links an existing task to the dispatch. Linking a task that
	// is already linked is a no-op.
	LinkTask(ctx context.Context, userID uuid.UUID, date domain.Date, taskID uuid.UUID) error

	// UnlinkTask removes a task link from the dispatch. The task itself is
	// not deleted.
	// Returns ErrTaskNotFound if the task was not linked.
	UnlinkTask(ctx context.Context, userID uuid.UUID, date domain.Date, taskID uuid.UUID) error

	// ListTasks returns the tasks linked to the dispatch, oldest link first.
	ListTasks(ctx context.Context, userID uuid.UUID, date domain.Date) ([]*domain.Task, error)
}

// dispatchServiceImpl implements the DispatchService interface.
type dispatchServiceImpl struct {
	transactor   store.Transactor
	dispatches   store.DispatchStore
	tasks        store.TaskStore
	links        store.DispatchTaskStore
	materializer *Materializer
	emitter      events.EventEmitter
	logger       *slog.Logger
}

// NewDispatchService creates a new DispatchService with the given
// dependencies.
func NewDispatchService(
	transactor store.Transactor,
	dispatches store.DispatchStore,
	tasks store.TaskStore,
	links store.DispatchTaskStore,
	materializer *Materializer,
	emitter events.EventEmitter,
	logger *slog.Logger,
) (DispatchService, error) {
	if transactor == nil {
		return nil, errors.New("transactor cannot be nil")
	}
	if dispatches == nil {
		return nil, errors.New("dispatch store cannot be nil")
	}
	if tasks == nil {
		return nil, errors.New("task store cannot be nil")
	}
	if links == nil {
		return nil, errors.New("dispatch task store cannot be nil")
	}
	if materializer == nil {
		return nil, errors.New("materializer cannot be nil")
	}
	if emitter == nil {
		return nil, errors.New("event emitter cannot be nil")
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	return &dispatchServiceImpl{
		transactor:   transactor,
		dispatches:   dispatches,
		tasks:        tasks,
		links:        links,
		materializer: materializer,
		emitter:      emitter,
		logger:       logger.With(slog.String("component", "dispatch_service")),
	}, nil
}

// GetOrCreate implements DispatchService.GetOrCreate.
//
// The fast path is a plain read. On the miss path the dispatch row and its
// materialized tasks are created in one transaction; a concurrent creator
// losing the race gets store.ErrDuplicate from the uniqueness constraint and
// refetches the winner's row, so both callers observe the same dispatch.
func (s *dispatchServiceImpl) GetOrCreate(
	ctx context.Context,
	userID uuid.UUID,
	date domain.Date,
) (*domain.Dispatch, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	dispatch, err := s.dispatches.GetByUserAndDate(ctx, userID, date)
	if err == nil {
		return dispatch, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, NewDispatchServiceError("get_or_create", "failed to look up dispatch", err)
	}

	created, err := domain.NewDispatch(userID, date)
	if err != nil {
		return nil, NewDispatchServiceError("get_or_create", "invalid dispatch", err)
	}

	txErr := s.transactor.RunInTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		dispatches := s.dispatches
		if tx != nil {
			dispatches = dispatches.WithTx(tx)
		}

		if err := dispatches.Create(ctx, created); err != nil {
			return err
		}

		count, err := s.materializer.Materialize(ctx, tx, userID, created.ID, date)
		if err != nil {
			return err
		}

		log.Info("dispatch created",
			slog.String("dispatch_id", created.ID.String()),
			slog.String("date", date.String()),
			slog.Int("materialized_tasks", count))
		return nil
	})
	if txErr != nil {
		if errors.Is(txErr, store.ErrDuplicate) {
			// Lost the creation race. The winner already materialized.
			winner, err := s.dispatches.GetByUserAndDate(ctx, userID, date)
			if err != nil {
				return nil, NewDispatchServiceError(
					"get_or_create", "failed to fetch dispatch after create race", err)
			}
			log.Debug("dispatch create race lost, returning existing dispatch",
				slog.String("dispatch_id", winner.ID.String()),
				slog.String("date", date.String()))
			return winner, nil
		}
		return nil, NewDispatchServiceError("get_or_create", "failed to create dispatch", txErr)
	}

	return created, nil
}

// UpdateSummary implements DispatchService.UpdateSummary.
//
// The journal note mirror runs after the summary write as an event-driven
// side effect: a journal failure is logged but never rolls back or fails the
// summary update.
func (s *dispatchServiceImpl) UpdateSummary(
	ctx context.Context,
	userID uuid.UUID,
	date domain.Date,
	summary string,
) (*domain.Dispatch, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	dispatch, err := s.dispatches.GetByUserAndDate(ctx, userID, date)
	if err != nil {
		return nil, NewDispatchServiceError("update_summary", "failed to get dispatch", err)
	}

	if err := dispatch.UpdateSummary(summary); err != nil {
		return nil, NewDispatchServiceError("update_summary", "dispatch is finalized", err)
	}

	if err := s.dispatches.Update(ctx, dispatch); err != nil {
		return nil, NewDispatchServiceError("update_summary", "failed to save dispatch", err)
	}

	s.emitJournalUpsert(ctx, log, userID, date, summary)

	return dispatch, nil
}

// emitJournalUpsert publishes the journal mirror event. Failures are logged
// and swallowed: the summary is already committed.
func (s *dispatchServiceImpl) emitJournalUpsert(
	ctx context.Context,
	log *slog.Logger,
	userID uuid.UUID,
	date domain.Date,
	summary string,
) {
	payload := events.JournalUpsertPayload{
		UserID:  userID,
		Date:    date.String(),
		Summary: summary,
	}

	event, err := events.NewEvent(events.EventTypeJournalUpsert, payload)
	if err != nil {
		log.Error("failed to build journal upsert event",
			slog.String("error", err.Error()),
			slog.String("date", date.String()))
		return
	}

	if err := s.emitter.EmitEvent(ctx, event); err != nil {
		log.Error("journal note upsert failed, summary remains saved",
			slog.String("error", err.Error()),
			slog.String("date", date.String()))
	}
}

// Complete implements DispatchService.Complete.
//
// The finalized flag is the sole concurrency guard: completing is not
// atomic with the rollover, but rollover links are idempotent set inserts,
// so a retry after a partial failure converges.
func (s *dispatchServiceImpl) Complete(
	ctx context.Context,
	userID uuid.UUID,
	date domain.Date,
) (*CompleteResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	dispatch, err := s.dispatches.GetByUserAndDate(ctx, userID, date)
	if err != nil {
		return nil, NewDispatchServiceError("complete", "failed to get dispatch", err)
	}

	// Partition linked tasks before flipping the flag so the rollover set
	// reflects the state being finalized.
	tasks, err := s.links.ListTasks(ctx, dispatch.ID)
	if err != nil {
		return nil, NewDispatchServiceError("complete", "failed to list dispatch tasks", err)
	}

	unfinished := make([]*domain.Task, 0, len(tasks))
	for _, task := range tasks {
		if !task.IsDone() {
			unfinished = append(unfinished, task)
		}
	}

	if err := dispatch.Finalize(); err != nil {
		return nil, NewDispatchServiceError("complete", "dispatch is already finalized", err)
	}

	if err := s.dispatches.Update(ctx, dispatch); err != nil {
		return nil, NewDispatchServiceError("complete", "failed to save dispatch", err)
	}

	result := &CompleteResult{Dispatch: dispatch}

	if len(unfinished) > 0 {
		next, err := s.rollover(ctx, userID, date.AddDays(1), unfinished)
		if err != nil {
			return nil, NewDispatchServiceError("complete", "rollover failed", err)
		}
		result.RolledOver = len(unfinished)
		nextID := next.ID
		result.NextDispatchID = &nextID
	}

	log.Info("dispatch completed",
		slog.String("dispatch_id", dispatch.ID.String()),
		slog.String("date", date.String()),
		slog.Int("rolled_over", result.RolledOver))

	return result, nil
}

// rollover links the unfinished tasks to the next day's dispatch, creating
// and materializing it first if needed. Pairs already linked are left alone,
// so re-running after a partial failure never duplicates links.
func (s *dispatchServiceImpl) rollover(
	ctx context.Context,
	userID uuid.UUID,
	targetDate domain.Date,
	unfinished []*domain.Task,
) (*domain.Dispatch, error) {
	next, err := s.GetOrCreate(ctx, userID, targetDate)
	if err != nil {
		return nil, err
	}

	for _, task := range unfinished {
		linked, err := s.links.Exists(ctx, next.ID, task.ID)
		if err != nil {
			return nil, err
		}
		if linked {
			continue
		}
		if err := s.links.Link(ctx, next.ID, task.ID); err != nil {
			return nil, err
		}
	}

	return next, nil
}

// Unfinalize implements DispatchService.Unfinalize.
func (s *dispatchServiceImpl) Unfinalize(
	ctx context.Context,
	userID uuid.UUID,
	date domain.Date,
) (*UnfinalizeResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	dispatch, err := s.dispatches.GetByUserAndDate(ctx, userID, date)
	if err != nil {
		return nil, NewDispatchServiceError("unfinalize", "failed to get dispatch", err)
	}

	if err := dispatch.Reopen(); err != nil {
		return nil, NewDispatchServiceError("unfinalize", "dispatch is not finalized", err)
	}

	if err := s.dispatches.Update(ctx, dispatch); err != nil {
		return nil, NewDispatchServiceError("unfinalize", "failed to save dispatch", err)
	}

	result := &UnfinalizeResult{Dispatch: dispatch}

	// Advisory only: the lookup tells the caller whether rolled-over links
	// may exist on the next day. A failure here never blocks the reopen.
	next, err := s.dispatches.GetByUserAndDate(ctx, userID, date.AddDays(1))
	switch {
	case err == nil:
		result.HasNextDispatch = true
		nextDate := next.Date
		result.NextDispatchDate = &nextDate
	case errors.Is(err, store.ErrNotFound):
		// No next-day dispatch, nothing to report.
	default:
		log.Warn("failed to check next-day dispatch after unfinalize",
			slog.String("error", err.Error()),
			slog.String("date", date.String()))
	}

	log.Info("dispatch reopened",
		slog.String("dispatch_id", dispatch.ID.String()),
		slog.String("date", date.String()),
		slog.Bool("has_next_dispatch", result.HasNextDispatch))

	return result, nil
}

// LinkTask implements DispatchService.LinkTask.
func (s *dispatchServiceImpl) LinkTask(
	ctx context.Context,
	userID uuid.UUID,
	date domain.Date,
	taskID uuid.UUID,
) error {
	dispatch, err := s.dispatches.GetByUserAndDate(ctx, userID, date)
	if err != nil {
		return NewDispatchServiceError("link_task", "failed to get dispatch", err)
	}

	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return NewDispatchServiceError("link_task", "failed to get task", err)
	}

	// Tasks belonging to other users are indistinguishable from absent ones.
	if task.UserID != userID {
		return ErrTaskNotFound
	}

	if err := s.links.Link(ctx, dispatch.ID, task.ID); err != nil {
		return NewDispatchServiceError("link_task", "failed to link task", err)
	}

	return nil
}

// UnlinkTask implements DispatchService.UnlinkTask.
func (s *dispatchServiceImpl) UnlinkTask(
	ctx context.Context,
	userID uuid.UUID,
	date domain.Date,
	taskID uuid.UUID,
) error {
	dispatch, err := s.dispatches.GetByUserAndDate(ctx, userID, date)
	if err != nil {
		return NewDispatchServiceError("unlink_task", "failed to get dispatch", err)
	}

	if err := s.links.Unlink(ctx, dispatch.ID, taskID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrTaskNotFound
		}
		return NewDispatchServiceError("unlink_task", "failed to unlink task", err)
	}

	return nil
}

// ListTasks implements DispatchService.ListTasks.
func (s *dispatchServiceImpl) ListTasks(
	ctx context.Context,
	userID uuid.UUID,
	date domain.Date,
) ([]*domain.Task, error) {
	dispatch, err := s.dispatches.GetByUserAndDate(ctx, userID, date)
	if err != nil {
		return nil, NewDispatchServiceError("list_tasks", "failed to get dispatch", err)
	}

	tasks, err := s.links.ListTasks(ctx, dispatch.ID)
	if err != nil {
		return nil, NewDispatchServiceError("list_tasks", "failed to list dispatch tasks", err)
	}

	return tasks, nil
}
