package command

import (
	"time"

	"github.com/runoshun/tasktree/internal/domain"
	"github.com/runoshun/tasktree/internal/event"
)

// NewTask creates a command adding a root task with subject to tasks.
func NewTask(bus *event.Bus, tasks Target[*domain.Task], subject string) *Add[*domain.Task] {
	return NewAdd("New task", tasks, domain.NewTask(bus, subject))
}

// NewSubTask creates a command adding a task with subject under parent.
func NewSubTask(bus *event.Bus, tasks Target[*domain.Task], parent *domain.Task, subject string) *AddSub[*domain.Task] {
	return NewAddSub("New subtask", tasks, parent, domain.NewTask(bus, subject))
}

// NewEditTasks creates a command applying edit to every task.
func NewEditTasks(name string, tasks []*domain.Task, edit func(t *domain.Task) error) *Edit {
	return NewEdit(name, entities(tasks), func() error {
		for _, t := range tasks {
			if err := edit(t); err != nil {
				return err
			}
		}
		return nil
	})
}

// NewAddCategory creates a command putting tasks in category.
func NewAddCategory(category *domain.Category, tasks ...*domain.Task) *Edit {
	return NewEdit("Add category", entities(tasks), func() error {
		for _, t := range tasks {
			t.AddCategory(category)
		}
		return nil
	})
}

// NewRemoveCategory creates a command taking tasks out of category.
func NewRemoveCategory(category *domain.Category, tasks ...*domain.Task) *Edit {
	return NewEdit("Remove category", entities(tasks), func() error {
		for _, t := range tasks {
			t.RemoveCategory(category)
		}
		return nil
	})
}

// MarkCompleted sets or clears the completion date of tasks.
//
// Cascades such as stopping tracked efforts or completing children are
// reactions of observers to the completion event. The snapshot therefore
// covers the whole family of every task and all their efforts, so undo
// reverts the reactions too.
type MarkCompleted struct {
	clock     domain.Clock
	tasks     []*domain.Task
	snapshot  Snapshot
	completed bool
}

// NewMarkCompleted creates a command completing tasks at the current time.
func NewMarkCompleted(clock domain.Clock, tasks ...*domain.Task) *MarkCompleted {
	return &MarkCompleted{clock: clock, tasks: tasks, completed: true}
}

// NewMarkNotCompleted creates a command reopening tasks.
func NewMarkNotCompleted(tasks ...*domain.Task) *MarkCompleted {
	return &MarkCompleted{tasks: tasks}
}

// Name implements Command.
func (c *MarkCompleted) Name() string {
	if c.completed {
		return "Mark completed"
	}
	return "Mark not completed"
}

// CanDo implements Command.
func (c *MarkCompleted) CanDo() bool {
	for _, t := range c.tasks {
		if !t.IsDeleted() && t.IsCompleted() != c.completed {
			return true
		}
	}
	return false
}

// Do implements Command.
func (c *MarkCompleted) Do() error {
	c.snapshot = Snapshot{}
	for _, t := range c.tasks {
		for _, member := range t.Family() {
			c.snapshot.Capture(member)
			if task, ok := member.(*domain.Task); ok {
				c.snapshot.Capture(entities(task.Efforts())...)
			}
		}
	}

	var date time.Time
	if c.completed {
		date = c.clock.Now()
	}
	for _, t := range c.tasks {
		if !t.IsDeleted() {
			t.SetCompletionDate(date)
		}
	}
	c.snapshot.CaptureAfter()
	return nil
}

// Undo implements Command.
func (c *MarkCompleted) Undo() error { return c.snapshot.Restore() }

// Redo implements Command.
func (c *MarkCompleted) Redo() error { return c.snapshot.Replay() }

// StartTracking starts a new effort on every task that is not completed
// and not tracked yet.
type StartTracking struct {
	bus     *event.Bus
	clock   domain.Clock
	tasks   []*domain.Task
	efforts []*domain.Effort
}

// NewStartTracking creates a command starting to track tasks.
func NewStartTracking(bus *event.Bus, clock domain.Clock, tasks ...*domain.Task) *StartTracking {
	return &StartTracking{bus: bus, clock: clock, tasks: tasks}
}

// Name implements Command.
func (c *StartTracking) Name() string { return "Start tracking" }

// Efforts returns the efforts the command started.
func (c *StartTracking) Efforts() []*domain.Effort { return c.efforts }

// CanDo implements Command.
func (c *StartTracking) CanDo() bool {
	for _, t := range c.tasks {
		if trackable(t) {
			return true
		}
	}
	return false
}

// Do implements Command.
func (c *StartTracking) Do() error {
	now := c.clock.Now()
	c.efforts = nil
	for _, t := range c.tasks {
		if !trackable(t) {
			continue
		}
		e := domain.NewEffort(c.bus, t, now, time.Time{})
		c.efforts = append(c.efforts, e)
		t.AddEffort(e)
	}
	return nil
}

// Undo implements Command.
func (c *StartTracking) Undo() error {
	for _, e := range c.efforts {
		e.Task().RemoveEffort(e)
	}
	return nil
}

// Redo implements Command.
func (c *StartTracking) Redo() error {
	for _, e := range c.efforts {
		e.Task().AddEffort(e)
	}
	return nil
}

func trackable(t *domain.Task) bool {
	return !t.IsDeleted() && !t.IsCompleted() && len(t.ActiveEfforts()) == 0
}

// StopTracking stops every tracked effort of tasks at the current time.
type StopTracking struct {
	clock    domain.Clock
	tasks    []*domain.Task
	snapshot Snapshot
}

// NewStopTracking creates a command stopping to track tasks.
func NewStopTracking(clock domain.Clock, tasks ...*domain.Task) *StopTracking {
	return &StopTracking{clock: clock, tasks: tasks}
}

// Name implements Command.
func (c *StopTracking) Name() string { return "Stop tracking" }

// CanDo implements Command.
func (c *StopTracking) CanDo() bool {
	for _, t := range c.tasks {
		if len(t.ActiveEfforts()) > 0 {
			return true
		}
	}
	return false
}

// Do implements Command.
func (c *StopTracking) Do() error {
	c.snapshot = Snapshot{}
	for _, t := range c.tasks {
		c.snapshot.Capture(entities(t.ActiveEfforts())...)
	}
	now := c.clock.Now()
	for _, t := range c.tasks {
		t.StopTracking(now)
	}
	c.snapshot.CaptureAfter()
	return nil
}

// Undo implements Command.
func (c *StopTracking) Undo() error { return c.snapshot.Restore() }

// Redo implements Command.
func (c *StopTracking) Redo() error { return c.snapshot.Replay() }
