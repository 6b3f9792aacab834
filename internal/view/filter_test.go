package view

import (
	"strings"
	"testing"

	"github.com/runoshun/tasktree/internal/collection"
	"github.com/runoshun/tasktree/internal/domain"
	"github.com/runoshun/tasktree/internal/event"
	"github.com/runoshun/tasktree/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startsWithA(t *domain.Task) bool {
	return strings.HasPrefix(t.Subject(), "a")
}

func TestFilter_FollowsSource(t *testing.T) {
	// Setup
	bus := event.NewBus(nil)
	tasks := collection.NewCompositeList[*domain.Task](bus)
	a1 := domain.NewTask(bus, "a1")
	b1 := domain.NewTask(bus, "b1")
	require.NoError(t, tasks.Extend(a1))
	f := NewFilter[*domain.Task](tasks, startsWithA)
	rec := testutil.NewRecorder(bus, f, event.ItemsAdded, event.ItemsRemoved)

	// Execute
	a2 := domain.NewTask(bus, "a2")
	require.NoError(t, tasks.Extend(b1, a2))
	require.NoError(t, tasks.RemoveItems(a1, b1))

	// Assert
	assert.Equal(t, []*domain.Task{a2}, f.Items())
	require.Len(t, rec.Events, 2)
	assert.Equal(t, []any{a2}, rec.Events[0].Values(f))
	assert.Equal(t, []any{a1}, rec.Events[1].Values(f))
}

func TestFilter_ResetAnnouncesDeltaOnly(t *testing.T) {
	// Setup
	bus := event.NewBus(nil)
	tasks := collection.NewCompositeList[*domain.Task](bus)
	a1 := domain.NewTask(bus, "a1")
	a2 := domain.NewTask(bus, "a2")
	b1 := domain.NewTask(bus, "b1")
	require.NoError(t, tasks.Extend(a1, a2, b1))
	f := NewFilter[*domain.Task](tasks, startsWithA)
	rec := testutil.NewRecorder(bus, f, event.ItemsAdded, event.ItemsRemoved)

	// Execute: rename behind the filter's back, then reset.
	a2.SetSubject("b2")
	b1.SetSubject("a3")
	require.NoError(t, f.Reset())

	// Assert
	assert.Equal(t, []*domain.Task{a1, b1}, f.Items())
	require.Len(t, rec.Events, 2)
	assert.Equal(t, []any{a2}, rec.Events[0].Values(f))
	assert.Equal(t, []any{b1}, rec.Events[1].Values(f))

	rec.Reset()
	require.NoError(t, f.Reset())
	assert.Empty(t, rec.Events, "unchanged reset announces nothing")
}

func TestFilter_RefreshOnAttributeChange(t *testing.T) {
	bus := event.NewBus(nil)
	tasks := collection.NewCompositeList[*domain.Task](bus)
	task := domain.NewTask(bus, "b")
	outsider := domain.NewTask(bus, "a-outsider")
	require.NoError(t, tasks.Extend(task))
	f := NewFilter[*domain.Task](tasks, startsWithA)
	f.RefreshOn(event.TaskSubject)

	task.SetSubject("a")
	outsider.SetSubject("a-still-outside")

	assert.Equal(t, []*domain.Task{task}, f.Items())
	assert.False(t, f.Contains(outsider))
}

func TestFilter_Chains(t *testing.T) {
	bus := event.NewBus(nil)
	tasks := collection.NewCompositeList[*domain.Task](bus)
	first := NewFilter[*domain.Task](tasks, startsWithA)
	second := NewFilter[*domain.Task](first, func(t *domain.Task) bool {
		return strings.HasSuffix(t.Subject(), "1")
	})

	a1 := domain.NewTask(bus, "a1")
	require.NoError(t, tasks.Extend(a1, domain.NewTask(bus, "a2"), domain.NewTask(bus, "b1")))

	assert.Equal(t, []*domain.Task{a1}, second.Items())

	require.NoError(t, tasks.RemoveItems(a1))
	assert.Zero(t, second.Len())
}

func TestFilter_CompletenessAfterMixedChanges(t *testing.T) {
	bus := event.NewBus(nil)
	tasks := collection.NewCompositeList[*domain.Task](bus)
	f := NewFilter[*domain.Task](tasks, startsWithA)
	f.RefreshOn(event.TaskSubject)

	var all []*domain.Task
	for _, s := range []string{"a", "b", "ab", "ba", "aa"} {
		task := domain.NewTask(bus, s)
		all = append(all, task)
		require.NoError(t, tasks.Extend(task))
	}
	all[1].SetSubject("a-b")
	all[0].SetSubject("z")
	require.NoError(t, tasks.RemoveItems(all[4]))
	require.NoError(t, f.Reset())

	var want []*domain.Task
	for _, task := range tasks.Items() {
		if startsWithA(task) {
			want = append(want, task)
		}
	}
	assert.Equal(t, want, f.Items())
}

func TestFilter_Dispose(t *testing.T) {
	bus := event.NewBus(nil)
	tasks := collection.NewCompositeList[*domain.Task](bus)
	f := NewFilter[*domain.Task](tasks, startsWithA)

	f.Dispose()
	require.NoError(t, tasks.Extend(domain.NewTask(bus, "a")))

	assert.Zero(t, f.Len())
}

func TestTreeFilter_PseudoRoots(t *testing.T) {
	bus := event.NewBus(nil)
	tasks := collection.NewCompositeList[*domain.Task](bus)
	parent := domain.NewTask(bus, "b-parent")
	child := domain.NewTask(bus, "a-child")
	parent.AddChild(child)
	require.NoError(t, tasks.Extend(parent))

	tf := NewTreeFilter[*domain.Task](tasks, startsWithA)

	assert.Equal(t, []*domain.Task{child}, tf.RootItems())
}
