package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/dayfold/dispatch-api/internal/domain"
	"github.com/dayfold/dispatch-api/internal/domain/template"
	"github.com/dayfold/dispatch-api/internal/platform/logger"
	"github.com/dayfold/dispatch-api/internal/store"
)

// Materializer turns the user's template note into concrete tasks for a
// dispatch. It runs exactly once per dispatch, inside the transaction that
// creates it, so a dispatch either exists with its materialized tasks or not
// at all. Later edits to the template never touch existing dispatches.
type Materializer struct {
	notes  store.NoteStore
	tasks  store.TaskStore
	links  store.DispatchTaskStore
	logger *slog.Logger
}

// NewMaterializer creates a new Materializer with the given dependencies.
func NewMaterializer(
	notes store.NoteStore,
	tasks store.TaskStore,
	links store.DispatchTaskStore,
	logger *slog.Logger,
) (*Materializer, error) {
	if notes == nil {
		return nil, errors.New("note store cannot be nil")
	}
	if tasks == nil {
		return nil, errors.New("task store cannot be nil")
	}
	if links == nil {
		return nil, errors.New("dispatch task store cannot be nil")
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	return &Materializer{
		notes:  notes,
		tasks:  tasks,
		links:  links,
		logger: logger.With(slog.String("component", "materializer")),
	}, nil
}

// Materialize parses the user's template note, evaluates each rule against
// the dispatch date, and creates a task linked to the dispatch for every
// matching rule. A missing template note means zero tasks, not an error.
// Returns the number of tasks created.
//
// When tx is non-nil all writes go through it, so they commit or roll back
// together with the dispatch row.
func (m *Materializer) Materialize(
	ctx context.Context,
	tx *sql.Tx,
	userID uuid.UUID,
	dispatchID uuid.UUID,
	date domain.Date,
) (int, error) {
	log := logger.FromContextOrDefault(ctx, m.logger)

	notes := m.notes
	tasks := m.tasks
	links := m.links
	if tx != nil {
		notes = notes.WithTx(tx)
		tasks = tasks.WithTx(tx)
		links = links.WithTx(tx)
	}

	note, err := notes.GetByTitle(ctx, userID, domain.TemplateNoteTitle)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Debug("no template note, dispatch starts empty",
				slog.String("user_id", userID.String()))
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read template note: %w", err)
	}

	rules := template.Parse(note.Content)

	created := 0
	for _, rule := range rules {
		if !rule.Condition.Matches(date) {
			continue
		}

		var dueDate *domain.Date
		if rule.DueOnTarget {
			d := date
			dueDate = &d
		}

		task, err := domain.NewTask(userID, rule.Title, dueDate, nil)
		if err != nil {
			return created, fmt.Errorf("failed to build task from template rule: %w", err)
		}

		if err := tasks.Create(ctx, task); err != nil {
			return created, fmt.Errorf("failed to create materialized task: %w", err)
		}

		if err := links.Link(ctx, dispatchID, task.ID); err != nil {
			return created, fmt.Errorf("failed to link materialized task: %w", err)
		}

		created++
	}

	log.Debug("materialized template tasks",
		slog.String("dispatch_id", dispatchID.String()),
		slog.String("date", date.String()),
		slog.Int("rule_count", len(rules)),
		slog.Int("task_count", created))

	return created, nil
}
