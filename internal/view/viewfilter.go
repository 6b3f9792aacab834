package view

import (
	"time"

	"github.com/runoshun/tasktree/internal/collection"
	"github.com/runoshun/tasktree/internal/domain"
	"github.com/runoshun/tasktree/internal/event"
	"github.com/runoshun/tasktree/internal/settings"
)

// Due-date horizons accepted by the view.tasksdue setting.
const (
	DueUnlimited = "unlimited"
	DueToday     = "today"
	DueTomorrow  = "tomorrow"
	DueWorkweek  = "workweek"
	DueWeek      = "week"
	DueMonth     = "month"
	DueYear      = "year"
)

// ViewFilter applies the task view preferences: hiding completed, inactive
// or composite tasks and limiting tasks to a due-date horizon.
type ViewFilter struct {
	*TreeFilter[*domain.Task]
	settings *settings.Settings
	clock    domain.Clock
}

// NewViewFilter creates a view filter over tasks.
func NewViewFilter(tasks collection.Source[*domain.Task], s *settings.Settings, clock domain.Clock) *ViewFilter {
	vf := &ViewFilter{settings: s, clock: clock}
	vf.TreeFilter = NewTreeFilter[*domain.Task](tasks, vf.matches)
	vf.owner = vf
	vf.RefreshOn(
		event.TaskCompletionDate, event.TaskStartDate, event.TaskDueDate,
		event.TaskChildAdded, event.TaskChildRemoved, event.TaskDeleted,
	)
	vf.ObserveSettings(s,
		settings.KeyHideCompleted, settings.KeyHideInactive,
		settings.KeyHideComposite, settings.KeyTasksDue,
	)
	return vf
}

func (vf *ViewFilter) matches(task *domain.Task) bool {
	now := vf.clock.Now()
	if task.IsDeleted() {
		return false
	}
	if vf.settings.Bool(settings.KeyHideCompleted) && task.IsCompleted() {
		return false
	}
	if vf.settings.Bool(settings.KeyHideInactive) && task.IsInactive(now) {
		return false
	}
	if vf.settings.Bool(settings.KeyHideComposite) && len(domain.Live(task.ChildTasks(false))) > 0 {
		return false
	}
	horizon, limited := DueHorizon(vf.settings.Get(settings.KeyTasksDue), now)
	if limited && (task.DueDate().IsZero() || !task.DueDate().Before(horizon)) {
		return false
	}
	return true
}

// DueHorizon returns the moment before which a task must be due to be
// shown for the given tasksdue value. Unknown values and "unlimited" do not
// limit the view.
func DueHorizon(value string, now time.Time) (time.Time, bool) {
	today := domain.StartOfDay(now)
	switch value {
	case DueToday:
		return today.AddDate(0, 0, 1), true
	case DueTomorrow:
		return today.AddDate(0, 0, 2), true
	case DueWorkweek:
		return domain.StartOfWeek(now).AddDate(0, 0, 5), true
	case DueWeek:
		return today.AddDate(0, 0, 7), true
	case DueMonth:
		return today.AddDate(0, 1, 0), true
	case DueYear:
		return today.AddDate(1, 0, 0), true
	default:
		return time.Time{}, false
	}
}
