// Package relation keeps related tasks consistent by reacting to task
// events: completing a task stops its tracking and completes its
// children, and reopening a task reopens its completed parent.
package relation

import (
	"time"

	"github.com/runoshun/tasktree/internal/domain"
	"github.com/runoshun/tasktree/internal/event"
	"github.com/runoshun/tasktree/internal/settings"
)

// Manager observes completion date changes of every task on the bus.
// Its reactions are setter calls, so they emit their own events and are
// undone by the snapshot of the command that triggered them.
type Manager struct {
	bus      *event.Bus
	settings *settings.Settings
	logger   domain.Logger
	observer event.Observer
}

// New creates a manager and starts observing bus.
func New(bus *event.Bus, s *settings.Settings, logger domain.Logger) *Manager {
	if logger == nil {
		logger = domain.NopLogger{}
	}
	m := &Manager{bus: bus, settings: s, logger: logger}
	m.observer = event.Func(m.onCompletionDate)
	bus.Register(m.observer, event.TaskCompletionDate)
	return m
}

// Dispose stops observing.
func (m *Manager) Dispose() {
	m.bus.Remove(m.observer)
}

func (m *Manager) onCompletionDate(ev *event.Event) error {
	for _, src := range ev.Sources() {
		task, ok := src.(*domain.Task)
		if !ok || task.IsDeleted() {
			continue
		}
		if task.IsCompleted() {
			m.completed(task)
		} else {
			m.reopened(task)
		}
	}
	return nil
}

func (m *Manager) completed(task *domain.Task) {
	date := task.CompletionDate()

	for _, e := range task.ActiveEfforts() {
		stop := date
		if stop.Before(e.Start()) {
			stop = e.Start()
		}
		e.SetStop(stop)
		m.logger.Debug(task.ID(), "relation", "stopped tracking on completion")
	}

	for _, child := range task.ChildTasks(false) {
		if !child.IsDeleted() && !child.IsCompleted() {
			child.SetCompletionDate(date)
		}
	}

	parent := task.ParentTask()
	if parent == nil || parent.IsCompleted() || !m.markParentCompleted() {
		return
	}
	if allCompleted(parent.ChildTasks(false)) {
		m.logger.Debug(parent.ID(), "relation", "all children completed")
		parent.SetCompletionDate(date)
	}
}

func (m *Manager) reopened(task *domain.Task) {
	parent := task.ParentTask()
	if parent != nil && parent.IsCompleted() {
		parent.SetCompletionDate(time.Time{})
	}
}

func (m *Manager) markParentCompleted() bool {
	return m.settings != nil && m.settings.Bool(settings.KeyMarkParentCompleted)
}

func allCompleted(tasks []*domain.Task) bool {
	for _, t := range domain.Live(tasks) {
		if !t.IsCompleted() {
			return false
		}
	}
	return true
}
