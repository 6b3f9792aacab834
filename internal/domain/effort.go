package domain

import (
	"time"

	"github.com/runoshun/tasktree/internal/event"
)

// Effort is a time-tracking record of a task. A zero stop time means the
// effort is being tracked.
type Effort struct {
	base
	start time.Time
	stop  time.Time
	task  *Task
}

// EffortState is the restorable state of an effort.
type EffortState struct {
	Start       time.Time
	Stop        time.Time
	Task        *Task
	ID          string
	Description string
	Deleted     bool
}

// StateKind implements State.
func (EffortState) StateKind() Kind { return KindEffort }

// NewEffort creates an effort for task. The effort is not added to the
// task's effort list; use Task.AddEffort or a command for that.
func NewEffort(bus *event.Bus, task *Task, start, stop time.Time) *Effort {
	return NewEffortWithID(bus, "", task, start, stop)
}

// NewEffortWithID creates an effort with the given ID.
func NewEffortWithID(bus *event.Bus, id string, task *Task, start, stop time.Time) *Effort {
	e := &Effort{
		task:  task,
		start: start.Round(0),
		stop:  stop.Round(0),
	}
	e.base = newBase(bus, KindEffort, id, "")
	e.self = e
	return e
}

// Task returns the task the effort belongs to.
func (e *Effort) Task() *Task { return e.task }

// SetTask moves the effort to another task.
func (e *Effort) SetTask(task *Task) bool {
	if e.task == task {
		return false
	}
	old := e.task
	e.task = task

	ev := event.New(e, event.EffortTask, task)
	if old != nil {
		old.RemoveEffortIn(ev, e)
	}
	if task != nil {
		task.AddEffortIn(ev, e)
	}
	e.send(ev)
	return true
}

// Start returns the start time.
func (e *Effort) Start() time.Time { return e.start }

// SetStart changes the start time.
func (e *Effort) SetStart(at time.Time) bool {
	return setTime(&e.base, &e.start, at, AttrStart)
}

// Stop returns the stop time; zero while tracking.
func (e *Effort) Stop() time.Time { return e.stop }

// SetStop changes the stop time. Starting or stopping tracking also
// announces a tracking change on the task.
func (e *Effort) SetStop(at time.Time) bool {
	at = at.Round(0)
	if e.stop.Equal(at) {
		return false
	}
	wasTracking := e.IsTracking()
	e.stop = at

	ev := event.New(e, event.EffortStop, at)
	if e.task != nil && wasTracking != e.IsTracking() {
		ev.AddSource(e.task, event.TaskTracking, e)
	}
	e.send(ev)
	return true
}

// IsTracking returns true while the effort has no stop time.
func (e *Effort) IsTracking() bool {
	return e.stop.IsZero()
}

// Duration returns stop minus start, or now minus start while tracking.
func (e *Effort) Duration(now time.Time) time.Duration {
	if e.IsTracking() {
		return now.Sub(e.start)
	}
	return e.stop.Sub(e.start)
}

// Revenue returns the share of the task's hourly fee earned by this effort.
func (e *Effort) Revenue(now time.Time) float64 {
	if e.task == nil {
		return 0
	}
	return e.task.HourlyFee() * e.Duration(now).Hours()
}

// MarkDeleted sets the tombstone flag. The owning task announces that its
// effort list changed.
func (e *Effort) MarkDeleted(deleted bool) bool {
	if e.deleted == deleted {
		return false
	}
	e.deleted = deleted

	ev := event.New(e, event.EffortDeleted, deleted)
	if e.task != nil {
		ev.AddSource(e.task, event.TaskEfforts, e)
		if e.IsTracking() {
			ev.AddSource(e.task, event.TaskTracking, e)
		}
	}
	e.send(ev)
	return true
}

// State captures the effort attributes.
func (e *Effort) State() State {
	return EffortState{
		ID:          e.id,
		Description: e.description,
		Deleted:     e.deleted,
		Task:        e.task,
		Start:       e.start,
		Stop:        e.stop,
	}
}

// SetState writes back a state captured from this effort.
func (e *Effort) SetState(state State) error {
	s, ok := state.(EffortState)
	if !ok || s.ID != e.id {
		return ErrStateMismatch
	}
	e.SetDescription(s.Description)
	e.MarkDeleted(s.Deleted)
	e.SetTask(s.Task)
	e.SetStart(s.Start)
	e.SetStop(s.Stop)
	return nil
}

// Copy returns an unattached copy with a new ID.
func (e *Effort) Copy() Entity {
	c := NewEffort(e.bus, e.task, e.start, e.stop)
	c.description = e.description
	return c
}
