package service

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dayfold/dispatch-api/internal/domain"
)

func newTestMaterializer(t *testing.T) (*Materializer, *fakeNoteStore, *fakeTaskStore, *fakeLinkStore) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	notes := newFakeNoteStore()
	tasks := newFakeTaskStore()
	links := newFakeLinkStore(tasks)

	m, err := NewMaterializer(notes, tasks, links, logger)
	require.NoError(t, err)
	return m, notes, tasks, links
}

func TestMaterializeWithoutTemplateNote(t *testing.T) {
	t.Parallel()
	m, _, _, links := newTestMaterializer(t)

	dispatchID := uuid.New()
	count, err := m.Materialize(
		context.Background(), nil, uuid.New(), dispatchID, domain.MustParseDate("2025-06-14"))
	require.NoError(t, err, "missing template note is not an error")
	assert.Zero(t, count)
	assert.Empty(t, links.links[dispatchID])
}

func TestMaterializeCreatesAndLinksMatchingTasks(t *testing.T) {
	t.Parallel()
	m, notes, _, links := newTestMaterializer(t)
	ctx := context.Background()

	userID := uuid.New()
	content := strings.Join([]string{
		"{{if:day=sat}}- [ ] Weekend chores #home",
		"{{if:day=weekday}}- [ ] Commute",
		"{{if:day=everyday}}- [ ] Journal >{{date:YYYY-MM-DD}}",
	}, "\n")
	note, err := domain.NewNote(userID, domain.TemplateNoteTitle, content)
	require.NoError(t, err)
	require.NoError(t, notes.Upsert(ctx, note))

	dispatchID := uuid.New()
	saturday := domain.MustParseDate("2025-06-14")
	count, err := m.Materialize(ctx, nil, userID, dispatchID, saturday)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	tasks, err := links.ListTasks(ctx, dispatchID)
	require.NoError(t, err)
	require.Len(t, tasks, 2)

	for _, task := range tasks {
		assert.Equal(t, userID, task.UserID)
		assert.Equal(t, domain.TaskStatusOpen, task.Status)
		switch task.Title {
		case "Weekend chores":
			assert.Nil(t, task.DueDate)
		case "Journal":
			require.NotNil(t, task.DueDate)
			assert.True(t, task.DueDate.Equal(saturday))
		default:
			t.Errorf("unexpected task %q", task.Title)
		}
	}
}

func TestMaterializeDuplicateTitlesProduceSeparateTasks(t *testing.T) {
	t.Parallel()
	m, notes, _, links := newTestMaterializer(t)
	ctx := context.Background()

	userID := uuid.New()
	content := strings.Join([]string{
		"{{if:day=everyday}}- [ ] Same title",
		"{{if:day=everyday}}- [ ] Same title",
	}, "\n")
	note, err := domain.NewNote(userID, domain.TemplateNoteTitle, content)
	require.NoError(t, err)
	require.NoError(t, notes.Upsert(ctx, note))

	dispatchID := uuid.New()
	count, err := m.Materialize(ctx, nil, userID, dispatchID, domain.MustParseDate("2025-06-14"))
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	tasks, err := links.ListTasks(ctx, dispatchID)
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.NotEqual(t, tasks[0].ID, tasks[1].ID)
}
