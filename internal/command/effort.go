package command

import (
	"time"

	"github.com/runoshun/tasktree/internal/domain"
	"github.com/runoshun/tasktree/internal/event"
)

// NewEffort adds an effort to a task.
type NewEffort struct {
	effort *domain.Effort
}

// NewNewEffort creates a command adding an effort from start to stop to
// task. A zero stop starts tracking.
func NewNewEffort(bus *event.Bus, task *domain.Task, start, stop time.Time) *NewEffort {
	return &NewEffort{effort: domain.NewEffort(bus, task, start, stop)}
}

// Name implements Command.
func (c *NewEffort) Name() string { return "New effort" }

// Effort returns the effort the command adds.
func (c *NewEffort) Effort() *domain.Effort { return c.effort }

// CanDo implements Command.
func (c *NewEffort) CanDo() bool {
	t := c.effort.Task()
	return t != nil && !t.IsDeleted()
}

// Do implements Command.
func (c *NewEffort) Do() error {
	c.effort.Task().AddEffort(c.effort)
	return nil
}

// Undo implements Command.
func (c *NewEffort) Undo() error {
	c.effort.Task().RemoveEffort(c.effort)
	return nil
}

// Redo implements Command.
func (c *NewEffort) Redo() error { return c.Do() }

// DeleteEfforts detaches efforts from their tasks and sets their
// tombstone flag.
type DeleteEfforts struct {
	efforts []*domain.Effort
	tasks   []*domain.Task
}

// NewDeleteEfforts creates a command deleting efforts.
func NewDeleteEfforts(efforts ...*domain.Effort) *DeleteEfforts {
	return &DeleteEfforts{efforts: efforts}
}

// Name implements Command.
func (c *DeleteEfforts) Name() string { return "Delete effort" }

// CanDo implements Command.
func (c *DeleteEfforts) CanDo() bool {
	for _, e := range c.efforts {
		if !e.IsDeleted() {
			return true
		}
	}
	return false
}

// Do implements Command.
func (c *DeleteEfforts) Do() error {
	c.efforts = domain.Live(c.efforts)
	c.tasks = make([]*domain.Task, len(c.efforts))
	for i, e := range c.efforts {
		c.tasks[i] = e.Task()
	}
	return c.Redo()
}

// Undo implements Command.
func (c *DeleteEfforts) Undo() error {
	for i, e := range c.efforts {
		e.MarkDeleted(false)
		if c.tasks[i] != nil {
			c.tasks[i].AddEffort(e)
		}
	}
	return nil
}

// Redo implements Command.
func (c *DeleteEfforts) Redo() error {
	for i, e := range c.efforts {
		if c.tasks[i] != nil {
			c.tasks[i].RemoveEffort(e)
		}
		e.MarkDeleted(true)
	}
	return nil
}

// NewEditEffort creates a command applying edit to effort. Moving the
// effort to another task is undone through the effort state.
func NewEditEffort(effort *domain.Effort, edit func(e *domain.Effort) error) *Edit {
	return NewEdit("Edit effort", []domain.Entity{effort}, func() error {
		return edit(effort)
	})
}
