package command

import (
	"testing"
	"time"

	"github.com/runoshun/tasktree/internal/domain"
	"github.com/runoshun/tasktree/internal/event"
	"github.com/runoshun/tasktree/internal/relation"
	"github.com/runoshun/tasktree/internal/settings"
	"github.com/runoshun/tasktree/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var monday = time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC)

func TestMarkCompleted_CascadesAndUndoes(t *testing.T) {
	// Setup
	f := newFixture()
	relation.New(f.bus, settings.New(f.bus), nil)
	clock := &testutil.MockClock{NowTime: monday}
	t1 := f.task("T1", nil)
	t2 := f.task("T2", t1)
	effort := domain.NewEffort(f.bus, t1, monday.Add(-time.Hour), time.Time{})
	t1.AddEffort(effort)

	// Execute & Assert
	require.NoError(t, f.history.Do(NewMarkCompleted(clock, t1)))
	assert.True(t, t1.CompletionDate().Equal(monday))
	assert.True(t, t2.CompletionDate().Equal(monday))
	assert.False(t, effort.IsTracking())

	require.NoError(t, f.history.Undo())
	assert.False(t, t1.IsCompleted())
	assert.False(t, t2.IsCompleted())
	assert.True(t, effort.IsTracking())

	clock.Advance(time.Hour)
	require.NoError(t, f.history.Redo())
	assert.True(t, t1.CompletionDate().Equal(monday), "redo replays the original date")
	assert.True(t, t2.CompletionDate().Equal(monday))
	assert.True(t, effort.Stop().Equal(monday))
}

func TestMarkCompleted_BubblesUpWhenAllChildrenCompleted(t *testing.T) {
	// Setup
	f := newFixture()
	relation.New(f.bus, settings.New(f.bus), nil)
	clock := &testutil.MockClock{NowTime: monday}
	parent := f.task("parent", nil)
	a := f.task("a", parent)
	b := f.task("b", parent)
	require.NoError(t, f.history.Do(NewMarkCompleted(clock, a)))
	require.False(t, parent.IsCompleted())

	// Execute
	require.NoError(t, f.history.Do(NewMarkCompleted(clock, b)))

	// Assert
	assert.True(t, parent.IsCompleted())
	require.NoError(t, f.history.Undo())
	assert.False(t, parent.IsCompleted())
	assert.False(t, b.IsCompleted())
	assert.True(t, a.IsCompleted())
}

func TestMarkNotCompleted_ReopensParent(t *testing.T) {
	// Setup
	f := newFixture()
	relation.New(f.bus, settings.New(f.bus), nil)
	clock := &testutil.MockClock{NowTime: monday}
	parent := f.task("parent", nil)
	child := f.task("child", parent)
	require.NoError(t, f.history.Do(NewMarkCompleted(clock, parent)))

	// Execute
	cmd := NewMarkNotCompleted(child)
	require.True(t, cmd.CanDo())
	require.NoError(t, f.history.Do(cmd))

	// Assert
	assert.False(t, child.IsCompleted())
	assert.False(t, parent.IsCompleted())
	require.NoError(t, f.history.Undo())
	assert.True(t, child.IsCompleted())
	assert.True(t, parent.IsCompleted())
}

func TestMarkCompleted_CannotDoWhenAlreadyCompleted(t *testing.T) {
	f := newFixture()
	task := f.task("done", nil)
	task.SetCompletionDate(monday)

	assert.False(t, NewMarkCompleted(&testutil.MockClock{NowTime: monday}, task).CanDo())
	assert.True(t, NewMarkNotCompleted(task).CanDo())
}

func TestTracking_StartStop(t *testing.T) {
	// Setup
	f := newFixture()
	clock := &testutil.MockClock{NowTime: monday}
	task := f.task("task", nil)
	rec := testutil.NewRecorder(f.bus, task, event.TaskTracking)
	start := NewStartTracking(f.bus, clock, task)

	// Execute & Assert: start
	require.NoError(t, f.history.Do(start))
	require.Len(t, start.Efforts(), 1)
	effort := start.Efforts()[0]
	assert.True(t, task.IsBeingTracked(false))
	assert.False(t, NewStartTracking(f.bus, clock, task).CanDo())

	// stop
	clock.Advance(30 * time.Minute)
	require.NoError(t, f.history.Do(NewStopTracking(clock, task)))
	assert.False(t, task.IsBeingTracked(false))
	assert.Equal(t, 30*time.Minute, effort.Duration(clock.Now()))

	// undo both
	require.NoError(t, f.history.Undo())
	assert.True(t, effort.IsTracking())
	require.NoError(t, f.history.Undo())
	assert.Empty(t, task.Efforts())

	// redo start reuses the effort
	require.NoError(t, f.history.Redo())
	assert.Equal(t, []*domain.Effort{effort}, task.Efforts())
	assert.Positive(t, rec.Count(event.TaskTracking))
}

func TestStopTracking_NothingTracked(t *testing.T) {
	f := newFixture()
	task := f.task("idle", nil)

	assert.False(t, NewStopTracking(&testutil.MockClock{}, task).CanDo())
}

func TestStartTracking_SkipsCompletedTasks(t *testing.T) {
	f := newFixture()
	task := f.task("done", nil)
	task.SetCompletionDate(monday)

	assert.False(t, NewStartTracking(f.bus, &testutil.MockClock{NowTime: monday}, task).CanDo())
}

func TestEffortCommands(t *testing.T) {
	// Setup
	f := newFixture()
	task := f.task("task", nil)
	other := f.task("other", nil)
	add := NewNewEffort(f.bus, task, monday, monday.Add(time.Hour))
	require.NoError(t, f.history.Do(add))
	effort := add.Effort()
	require.Equal(t, []*domain.Effort{effort}, task.Efforts())

	t.Run("edit moves between tasks", func(t *testing.T) {
		require.NoError(t, f.history.Do(NewEditEffort(effort, func(e *domain.Effort) error {
			e.SetTask(other)
			e.SetDescription("moved")
			return nil
		})))
		assert.Empty(t, task.Efforts())
		assert.Equal(t, []*domain.Effort{effort}, other.Efforts())

		require.NoError(t, f.history.Undo())
		assert.Equal(t, []*domain.Effort{effort}, task.Efforts())
		assert.Empty(t, other.Efforts())
		assert.Empty(t, effort.Description())
	})

	t.Run("delete detaches and tombstones", func(t *testing.T) {
		require.NoError(t, f.history.Do(NewDeleteEfforts(effort)))
		assert.Empty(t, task.Efforts())
		assert.True(t, effort.IsDeleted())

		require.NoError(t, f.history.Undo())
		assert.Equal(t, []*domain.Effort{effort}, task.Efforts())
		assert.False(t, effort.IsDeleted())
	})

	t.Run("undo new effort", func(t *testing.T) {
		require.NoError(t, f.history.Undo())
		assert.Empty(t, task.Efforts())
	})
}
