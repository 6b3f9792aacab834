package view

import (
	"testing"
	"time"

	"github.com/runoshun/tasktree/internal/collection"
	"github.com/runoshun/tasktree/internal/domain"
	"github.com/runoshun/tasktree/internal/event"
	"github.com/runoshun/tasktree/internal/settings"
	"github.com/runoshun/tasktree/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func subjects(tasks []*domain.Task) []string {
	out := make([]string, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.Subject())
	}
	return out
}

func newSorterFixture(t *testing.T, names ...string) (*event.Bus, *settings.Settings, *collection.CompositeList[*domain.Task], *TaskSorter) {
	t.Helper()
	bus := event.NewBus(nil)
	s := settings.New(bus)
	tasks := collection.NewCompositeList[*domain.Task](bus)
	for _, name := range names {
		task := domain.NewTask(bus, name)
		task.SetStartDate(monday.Add(-time.Hour))
		require.NoError(t, tasks.Extend(task))
	}
	return bus, s, tasks, NewTaskSorter(tasks, s, &testutil.MockClock{NowTime: monday})
}

func TestTaskSorter_SortsBySubject(t *testing.T) {
	_, _, _, ts := newSorterFixture(t, "b", "C", "a")

	assert.Equal(t, []string{"a", "b", "C"}, subjects(ts.Items()))
}

func TestTaskSorter_AddKeepsOrderAndRemoveDoesNotResort(t *testing.T) {
	bus, _, tasks, ts := newSorterFixture(t, "b", "d")
	rec := testutil.NewRecorder(bus, ts, event.ItemsAdded, event.ItemsRemoved, event.Sorted)

	c := domain.NewTask(bus, "c")
	c.SetStartDate(monday.Add(-time.Hour))
	require.NoError(t, tasks.Extend(c))
	assert.Equal(t, []string{"b", "c", "d"}, subjects(ts.Items()))

	require.NoError(t, tasks.RemoveItems(c))
	assert.Equal(t, []string{"b", "d"}, subjects(ts.Items()))

	assert.Equal(t, []event.Type{event.ItemsAdded, event.ItemsRemoved}, rec.Types())
}

func TestTaskSorter_ResortsOnKeyChange(t *testing.T) {
	bus, _, tasks, ts := newSorterFixture(t, "a", "b")
	rec := testutil.NewRecorder(bus, ts, event.Sorted)
	first := tasks.Items()[0]

	first.SetSubject("c")
	assert.Equal(t, []string{"b", "c"}, subjects(ts.Items()))
	assert.Equal(t, 1, rec.Count(event.Sorted))

	first.SetDescription("irrelevant")
	first.SetSubject("d")
	assert.Equal(t, 1, rec.Count(event.Sorted), "same order announces nothing")
}

func TestTaskSorter_FollowsSettings(t *testing.T) {
	bus, s, tasks, ts := newSorterFixture(t, "a", "b", "c")
	items := tasks.Items()
	items[0].SetPriority(1)
	items[1].SetPriority(3)
	items[2].SetPriority(2)

	_, err := s.Set(settings.KeySortBy, "priority")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "c", "b"}, subjects(ts.Items()))
	assert.Contains(t, ts.KeyTypes(), event.TaskPriority)
	assert.NotContains(t, ts.KeyTypes(), event.TaskSubject)

	_, err = s.SetBool(settings.KeySortAscending, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "c", "a"}, subjects(ts.Items()))

	// The old key no longer triggers a resort.
	rec := testutil.NewRecorder(bus, ts, event.Sorted)
	items[0].SetSubject("zzz")
	assert.Empty(t, rec.Events)
}

func TestTaskSorter_StatusFirst(t *testing.T) {
	_, s, tasks, ts := newSorterFixture(t, "a", "b", "c")
	items := tasks.Items()
	items[0].SetCompletionDate(monday)
	items[1].SetStartDate(time.Time{})

	assert.Equal(t, []string{"c", "b", "a"}, subjects(ts.Items()), "active, inactive, completed")

	_, err := s.SetBool(settings.KeySortAscending, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, subjects(ts.Items()), "descending reverses status too")

	_, err = s.SetBool(settings.KeySortByStatusFirst, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "b", "a"}, subjects(ts.Items()))
}

func TestSorter_IsPermutationOfSource(t *testing.T) {
	_, _, tasks, ts := newSorterFixture(t, "e", "a", "d", "b", "c")

	assert.ElementsMatch(t, tasks.Items(), ts.Items())
	assert.Equal(t, tasks.Len(), ts.Len())
	for _, task := range tasks.Items() {
		assert.True(t, ts.Contains(task))
	}
}

func TestCompareDates_UnsetLast(t *testing.T) {
	assert.Equal(t, -1, compareDates(monday, time.Time{}))
	assert.Equal(t, 1, compareDates(time.Time{}, monday))
	assert.Equal(t, 0, compareDates(time.Time{}, time.Time{}))
}

// steppingClock moves forward by step on every reading.
type steppingClock struct {
	now   time.Time
	step  time.Duration
	reads int
}

func (c *steppingClock) Now() time.Time {
	now := c.now
	c.now = c.now.Add(c.step)
	c.reads++
	return now
}

func TestTaskSorter_ReadsClockOncePerSort(t *testing.T) {
	// Setup: read per comparison, the clock would pass every start date.
	bus := event.NewBus(nil)
	s := settings.New(bus)
	tasks := collection.NewCompositeList[*domain.Task](bus)
	clock := &steppingClock{now: monday, step: time.Hour}
	for i, name := range []string{"a", "b", "c", "d"} {
		task := domain.NewTask(bus, name)
		task.SetStartDate(monday.Add(time.Duration(i)*time.Hour + 30*time.Minute))
		require.NoError(t, tasks.Extend(task))
	}

	// Execute
	ts := NewTaskSorter(tasks, s, clock)
	defer ts.Dispose()

	// Assert: every task is inactive at the single reading, so subject order holds.
	assert.Equal(t, 1, clock.reads)
	assert.Equal(t, []string{"a", "b", "c", "d"}, subjects(ts.Items()))

	// Execute: an order change is one more pass.
	_, err := s.SetBool(settings.KeySortAscending, false)
	require.NoError(t, err)

	// Assert
	assert.Equal(t, 2, clock.reads)
	assert.Equal(t, []string{"d", "c", "b", "a"}, subjects(ts.Items()))
}

func TestSorter_FixedOrdering(t *testing.T) {
	bus := event.NewBus(nil)
	tasks := collection.NewList[*domain.Task](bus)
	for _, p := range []int{3, 1, 2} {
		task := domain.NewTask(bus, "t")
		task.SetPriority(p)
		require.NoError(t, tasks.Extend(task))
	}
	byPriority := func(a, b *domain.Task) int { return a.Priority() - b.Priority() }

	sorter := NewSorter[*domain.Task](tasks, Fixed(byPriority), event.TaskPriority)
	defer sorter.Dispose()

	var got []int
	for _, task := range sorter.Items() {
		got = append(got, task.Priority())
	}
	assert.Equal(t, []int{1, 2, 3}, got)
}
