package service

import (
	"context"
	"database/sql"
	"sync"

	"github.com/google/uuid"

	"github.com/dayfold/dispatch-api/internal/domain"
	"github.com/dayfold/dispatch-api/internal/store"
)

// fakeTransactor runs the function directly with a nil transaction. The
// fake stores below ignore WithTx, so transactional flows execute against
// the same in-memory state.
type fakeTransactor struct{}

func (fakeTransactor) RunInTransaction(ctx context.Context, fn store.TxFn) error {
	return fn(ctx, nil)
}

// fakeDispatchStore is an in-memory store.DispatchStore.
type fakeDispatchStore struct {
	mu     sync.Mutex
	byID   map[uuid.UUID]*domain.Dispatch
	byKey  map[string]*domain.Dispatch
	getErr error

	// createErr, when set, fails the next Create once and installs
	// raceWinner as the existing row, simulating a lost creation race.
	createErr  error
	raceWinner *domain.Dispatch
}

func newFakeDispatchStore() *fakeDispatchStore {
	return &fakeDispatchStore{
		byID:  make(map[uuid.UUID]*domain.Dispatch),
		byKey: make(map[string]*domain.Dispatch),
	}
}

func dispatchKey(userID uuid.UUID, date domain.Date) string {
	return userID.String() + "|" + date.String()
}

func (s *fakeDispatchStore) put(dispatch *domain.Dispatch) {
	s.byID[dispatch.ID] = dispatch
	s.byKey[dispatchKey(dispatch.UserID, dispatch.Date)] = dispatch
}

func (s *fakeDispatchStore) Create(ctx context.Context, dispatch *domain.Dispatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.createErr != nil {
		err := s.createErr
		s.createErr = nil
		if s.raceWinner != nil {
			s.put(s.raceWinner)
		}
		return err
	}

	if _, ok := s.byKey[dispatchKey(dispatch.UserID, dispatch.Date)]; ok {
		return store.ErrDispatchExists
	}
	s.put(dispatch)
	return nil
}

func (s *fakeDispatchStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Dispatch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	dispatch, ok := s.byID[id]
	if !ok {
		return nil, store.ErrDispatchNotFound
	}
	return dispatch, nil
}

func (s *fakeDispatchStore) GetByUserAndDate(
	ctx context.Context,
	userID uuid.UUID,
	date domain.Date,
) (*domain.Dispatch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.getErr != nil {
		return nil, s.getErr
	}

	dispatch, ok := s.byKey[dispatchKey(userID, date)]
	if !ok {
		return nil, store.ErrDispatchNotFound
	}
	return dispatch, nil
}

func (s *fakeDispatchStore) Update(ctx context.Context, dispatch *domain.Dispatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[dispatch.ID]; !ok {
		return store.ErrDispatchNotFound
	}
	s.put(dispatch)
	return nil
}

func (s *fakeDispatchStore) WithTx(tx *sql.Tx) store.DispatchStore { return s }

// fakeTaskStore is an in-memory store.TaskStore.
type fakeTaskStore struct {
	mu   sync.Mutex
	byID map[uuid.UUID]*domain.Task
}

func newFakeTaskStore() *fakeTaskStore {
	return &fakeTaskStore{byID: make(map[uuid.UUID]*domain.Task)}
}

func (s *fakeTaskStore) Create(ctx context.Context, task *domain.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID[task.ID] = task
	return nil
}

func (s *fakeTaskStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, ok := s.byID[id]
	if !ok {
		return nil, store.ErrTaskNotFound
	}
	return task, nil
}

func (s *fakeTaskStore) Update(ctx context.Context, task *domain.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[task.ID]; !ok {
		return store.ErrTaskNotFound
	}
	s.byID[task.ID] = task
	return nil
}

func (s *fakeTaskStore) WithTx(tx *sql.Tx) store.TaskStore { return s }

// fakeNoteStore is an in-memory store.NoteStore keyed by (user, title).
type fakeNoteStore struct {
	mu        sync.Mutex
	notes     map[string]*domain.Note
	upsertErr error
}

func newFakeNoteStore() *fakeNoteStore {
	return &fakeNoteStore{notes: make(map[string]*domain.Note)}
}

func noteKey(userID uuid.UUID, title string) string {
	return userID.String() + "|" + title
}

func (s *fakeNoteStore) GetByTitle(
	ctx context.Context,
	userID uuid.UUID,
	title string,
) (*domain.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	note, ok := s.notes[noteKey(userID, title)]
	if !ok {
		return nil, store.ErrNoteNotFound
	}
	return note, nil
}

func (s *fakeNoteStore) Upsert(ctx context.Context, note *domain.Note) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.upsertErr != nil {
		return s.upsertErr
	}
	s.notes[noteKey(note.UserID, note.Title)] = note
	return nil
}

func (s *fakeNoteStore) WithTx(tx *sql.Tx) store.NoteStore { return s }

// fakeLinkStore is an in-memory store.DispatchTaskStore. ListTasks resolves
// tasks through the task store, preserving link insertion order.
type fakeLinkStore struct {
	mu    sync.Mutex
	links map[uuid.UUID][]uuid.UUID // dispatchID -> taskIDs in link order
	tasks *fakeTaskStore
}

func newFakeLinkStore(tasks *fakeTaskStore) *fakeLinkStore {
	return &fakeLinkStore{
		links: make(map[uuid.UUID][]uuid.UUID),
		tasks: tasks,
	}
}

func (s *fakeLinkStore) Link(ctx context.Context, dispatchID, taskID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range s.links[dispatchID] {
		if id == taskID {
			return nil // insert-if-absent
		}
	}
	s.links[dispatchID] = append(s.links[dispatchID], taskID)
	return nil
}

func (s *fakeLinkStore) Unlink(ctx context.Context, dispatchID, taskID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := s.links[dispatchID]
	for i, id := range ids {
		if id == taskID {
			s.links[dispatchID] = append(ids[:i], ids[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}

func (s *fakeLinkStore) Exists(ctx context.Context, dispatchID, taskID uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range s.links[dispatchID] {
		if id == taskID {
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeLinkStore) ListTasks(
	ctx context.Context,
	dispatchID uuid.UUID,
) ([]*domain.Task, error) {
	s.mu.Lock()
	ids := append([]uuid.UUID(nil), s.links[dispatchID]...)
	s.mu.Unlock()

	tasks := make([]*domain.Task, 0, len(ids))
	for _, id := range ids {
		task, err := s.tasks.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return tasks, nil
}

func (s *fakeLinkStore) linkCount(dispatchID, taskID uuid.UUID) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, id := range s.links[dispatchID] {
		if id == taskID {
			count++
		}
	}
	return count
}

func (s *fakeLinkStore) WithTx(tx *sql.Tx) store.DispatchTaskStore { return s }
