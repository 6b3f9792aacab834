package domain

import (
	"slices"
	"time"

	"github.com/runoshun/tasktree/internal/event"
)

// Task is a unit of work. Tasks form a tree, own their efforts and are
// linked to categories.
// Fields are ordered to minimize memory padding.
type Task struct {
	compositeBase
	startDate      time.Time
	dueDate        time.Time
	completionDate time.Time
	categories     []*Category
	efforts        []*Effort
	budget         time.Duration
	hourlyFee      float64
	fixedFee       float64
	priority       int
}

// TaskState is the restorable state of a task.
type TaskState struct {
	StartDate      time.Time
	DueDate        time.Time
	CompletionDate time.Time
	Parent         Composite
	ID             string
	Subject        string
	Description    string
	Children       []Composite
	Efforts        []*Effort
	Categories     []*Category
	Budget         time.Duration
	HourlyFee      float64
	FixedFee       float64
	Priority       int
	Deleted        bool
}

// StateKind implements State.
func (TaskState) StateKind() Kind { return KindTask }

// NewTask creates a task with a new ID.
func NewTask(bus *event.Bus, subject string) *Task {
	return NewTaskWithID(bus, "", subject)
}

// NewTaskWithID creates a task with the given ID. An empty ID generates one.
func NewTaskWithID(bus *event.Bus, id, subject string) *Task {
	t := &Task{}
	t.base = newBase(bus, KindTask, id, subject)
	t.self = t
	return t
}

// ParentTask returns the parent task, or nil.
func (t *Task) ParentTask() *Task {
	p, _ := t.parent.(*Task)
	return p
}

// ChildTasks returns the child tasks, or every descendant when recursive is
// set.
func (t *Task) ChildTasks(recursive bool) []*Task {
	return castAll[*Task](t.Children(recursive))
}

// StartDate returns the planned start date; zero means unset.
func (t *Task) StartDate() time.Time { return t.startDate }

// SetStartDate changes the planned start date.
func (t *Task) SetStartDate(d time.Time) bool {
	return setTime(&t.base, &t.startDate, d, AttrStartDate)
}

// DueDate returns the due date; zero means unset.
func (t *Task) DueDate() time.Time { return t.dueDate }

// SetDueDate changes the due date.
func (t *Task) SetDueDate(d time.Time) bool {
	return setTime(&t.base, &t.dueDate, d, AttrDueDate)
}

// CompletionDate returns the completion date; zero means not completed.
func (t *Task) CompletionDate() time.Time { return t.completionDate }

// SetCompletionDate changes the completion date. A zero date reopens the
// task. Cascading to children, parents and efforts is done by the relation
// manager in reaction to the emitted event.
func (t *Task) SetCompletionDate(d time.Time) bool {
	return setTime(&t.base, &t.completionDate, d, AttrCompletionDate)
}

// Priority returns the priority; higher is more important.
func (t *Task) Priority() int { return t.priority }

// SetPriority changes the priority.
func (t *Task) SetPriority(p int) bool {
	return setValue(&t.base, &t.priority, p, AttrPriority)
}

// Budget returns the time budget.
func (t *Task) Budget() time.Duration { return t.budget }

// SetBudget changes the time budget.
func (t *Task) SetBudget(d time.Duration) bool {
	return setValue(&t.base, &t.budget, d, AttrBudget)
}

// HourlyFee returns the hourly fee.
func (t *Task) HourlyFee() float64 { return t.hourlyFee }

// SetHourlyFee changes the hourly fee.
func (t *Task) SetHourlyFee(fee float64) bool {
	return setValue(&t.base, &t.hourlyFee, fee, AttrHourlyFee)
}

// FixedFee returns the fixed fee.
func (t *Task) FixedFee() float64 { return t.fixedFee }

// SetFixedFee changes the fixed fee.
func (t *Task) SetFixedFee(fee float64) bool {
	return setValue(&t.base, &t.fixedFee, fee, AttrFixedFee)
}

// IsCompleted returns true if the task has a completion date.
func (t *Task) IsCompleted() bool {
	return !t.completionDate.IsZero()
}

// IsInactive returns true if the task is not completed and has no start
// date or a start date after now.
func (t *Task) IsInactive(now time.Time) bool {
	return !t.IsCompleted() && (t.startDate.IsZero() || t.startDate.After(now))
}

// IsActive returns true if the task has started and is not completed.
func (t *Task) IsActive(now time.Time) bool {
	return !t.IsCompleted() && !t.IsInactive(now)
}

// IsOverdue returns true if the task is not completed and its due date has
// passed.
func (t *Task) IsOverdue(now time.Time) bool {
	return !t.IsCompleted() && !t.dueDate.IsZero() && t.dueDate.Before(now)
}

// IsDueSoon returns true if the task is not completed, not overdue and due
// within the given number of days.
func (t *Task) IsDueSoon(now time.Time, days int) bool {
	if t.IsCompleted() || t.dueDate.IsZero() || t.IsOverdue(now) {
		return false
	}
	return t.dueDate.Before(now.AddDate(0, 0, days))
}

// Efforts returns the live efforts of this task.
func (t *Task) Efforts() []*Effort {
	return Live(t.efforts)
}

// AllEfforts returns the efforts of this task and, when recursive is set,
// of every descendant.
func (t *Task) AllEfforts(recursive bool) []*Effort {
	efforts := t.Efforts()
	if recursive {
		for _, child := range t.ChildTasks(true) {
			efforts = append(efforts, child.Efforts()...)
		}
	}
	return efforts
}

// AddEffort attaches e to this task and reports whether it was added.
func (t *Task) AddEffort(e *Effort) bool {
	ev := &event.Event{}
	added := t.AddEffortIn(ev, e)
	t.send(ev)
	return added
}

// AddEffortIn is AddEffort recording its entries in ev.
func (t *Task) AddEffortIn(ev *event.Event, e *Effort) bool {
	if slices.Contains(t.efforts, e) {
		return false
	}
	t.efforts = append(t.efforts, e)
	ev.AddSource(t, event.TaskEfforts, e)
	if e.IsTracking() && !e.IsDeleted() {
		ev.AddSource(t, event.TaskTracking, e)
	}
	return true
}

// RemoveEffort detaches e from this task and reports whether it was
// present.
func (t *Task) RemoveEffort(e *Effort) bool {
	ev := &event.Event{}
	removed := t.RemoveEffortIn(ev, e)
	t.send(ev)
	return removed
}

// RemoveEffortIn is RemoveEffort recording its entries in ev.
func (t *Task) RemoveEffortIn(ev *event.Event, e *Effort) bool {
	idx := slices.Index(t.efforts, e)
	if idx < 0 {
		return false
	}
	t.efforts = slices.Delete(slices.Clone(t.efforts), idx, idx+1)
	ev.AddSource(t, event.TaskEfforts, e)
	if e.IsTracking() && !e.IsDeleted() {
		ev.AddSource(t, event.TaskTracking, e)
	}
	return true
}

// ActiveEfforts returns the efforts that are being tracked.
func (t *Task) ActiveEfforts() []*Effort {
	var active []*Effort
	for _, e := range t.Efforts() {
		if e.IsTracking() {
			active = append(active, e)
		}
	}
	return active
}

// IsBeingTracked returns true if an effort of this task, or of a
// descendant when recursive is set, is being tracked.
func (t *Task) IsBeingTracked(recursive bool) bool {
	for _, e := range t.AllEfforts(recursive) {
		if e.IsTracking() {
			return true
		}
	}
	return false
}

// StopTracking stops every tracked effort of this task at the given time
// and returns the stopped efforts.
func (t *Task) StopTracking(at time.Time) []*Effort {
	active := t.ActiveEfforts()
	for _, e := range active {
		e.SetStop(at)
	}
	return active
}

// TimeSpent sums the durations of the efforts, including descendants when
// recursive is set. Tracked efforts count up to now.
func (t *Task) TimeSpent(now time.Time, recursive bool) time.Duration {
	var total time.Duration
	for _, e := range t.AllEfforts(recursive) {
		total += e.Duration(now)
	}
	return total
}

// BudgetLeft returns the budget minus the recursive time spent. It is zero
// when no budget is set.
func (t *Task) BudgetLeft(now time.Time) time.Duration {
	if t.budget == 0 {
		return 0
	}
	return t.budget - t.TimeSpent(now, true)
}

// Revenue returns the fixed fee plus the hourly fee for the time spent on
// this task itself.
func (t *Task) Revenue(now time.Time) float64 {
	return t.fixedFee + t.hourlyFee*t.TimeSpent(now, false).Hours()
}

// Categories returns the live categories of this task.
func (t *Task) Categories() []*Category {
	return Live(t.categories)
}

// AddCategory links the task and c in both directions.
func (t *Task) AddCategory(c *Category) bool {
	if slices.Contains(t.categories, c) {
		return false
	}
	ev := &event.Event{}
	t.linkCategoryIn(ev, c)
	t.send(ev)
	return true
}

// RemoveCategory unlinks the task and c in both directions.
func (t *Task) RemoveCategory(c *Category) bool {
	if !slices.Contains(t.categories, c) {
		return false
	}
	ev := &event.Event{}
	t.unlinkCategoryIn(ev, c)
	t.send(ev)
	return true
}

func (t *Task) linkCategoryIn(ev *event.Event, c *Category) {
	t.categories = append(slices.Clone(t.categories), c)
	c.addCategorizable(t)
	ev.AddSource(t, event.TaskCategories, c)
	ev.AddSource(c, event.CategoryCategorizables, t)
}

func (t *Task) unlinkCategoryIn(ev *event.Event, c *Category) {
	t.categories = slices.DeleteFunc(slices.Clone(t.categories), func(other *Category) bool {
		return other == c
	})
	c.removeCategorizable(t)
	ev.AddSource(t, event.TaskCategories, c)
	ev.AddSource(c, event.CategoryCategorizables, t)
}

// State captures every attribute, the tree links, efforts and categories.
func (t *Task) State() State {
	return TaskState{
		ID:             t.id,
		Subject:        t.subject,
		Description:    t.description,
		Deleted:        t.deleted,
		StartDate:      t.startDate,
		DueDate:        t.dueDate,
		CompletionDate: t.completionDate,
		Priority:       t.priority,
		Budget:         t.budget,
		HourlyFee:      t.hourlyFee,
		FixedFee:       t.fixedFee,
		Parent:         t.parent,
		Children:       slices.Clone(t.children),
		Efforts:        slices.Clone(t.efforts),
		Categories:     slices.Clone(t.categories),
	}
}

// SetState writes back a state captured from this task. Only attributes
// that differ emit events.
func (t *Task) SetState(state State) error {
	s, ok := state.(TaskState)
	if !ok || s.ID != t.id {
		return ErrStateMismatch
	}
	t.restore(s.Subject, s.Description, s.Deleted)
	t.SetStartDate(s.StartDate)
	t.SetDueDate(s.DueDate)
	t.SetCompletionDate(s.CompletionDate)
	t.SetPriority(s.Priority)
	t.SetBudget(s.Budget)
	t.SetHourlyFee(s.HourlyFee)
	t.SetFixedFee(s.FixedFee)
	t.restoreEfforts(s.Efforts)
	t.restoreCategories(s.Categories)
	t.restoreTree(s.Parent, s.Children)
	return nil
}

func (t *Task) restoreEfforts(efforts []*Effort) {
	ev := &event.Event{}
	for _, e := range t.efforts {
		if !slices.Contains(efforts, e) {
			ev.AddSource(t, event.TaskEfforts, e)
		}
	}
	for _, e := range efforts {
		if !slices.Contains(t.efforts, e) {
			ev.AddSource(t, event.TaskEfforts, e)
		}
	}
	t.efforts = slices.Clone(efforts)
	t.send(ev)
}

func (t *Task) restoreCategories(categories []*Category) {
	ev := &event.Event{}
	for _, c := range t.categories {
		if !slices.Contains(categories, c) {
			t.unlinkCategoryIn(ev, c)
		}
	}
	for _, c := range categories {
		if !slices.Contains(t.categories, c) {
			t.linkCategoryIn(ev, c)
		}
	}
	t.send(ev)
}

// Copy returns an unattached copy with a new ID. Attribute values and
// copies of the children are carried over; efforts and category links are
// not.
func (t *Task) Copy() Entity {
	return t.copyTask()
}

func (t *Task) copyTask() *Task {
	c := NewTask(t.bus, t.subject)
	c.description = t.description
	c.startDate = t.startDate
	c.dueDate = t.dueDate
	c.completionDate = t.completionDate
	c.priority = t.priority
	c.budget = t.budget
	c.hourlyFee = t.hourlyFee
	c.fixedFee = t.fixedFee
	for _, child := range t.ChildTasks(false) {
		if child.IsDeleted() {
			continue
		}
		cc := child.copyTask()
		cc.parent = c
		c.children = append(c.children, cc)
	}
	return c
}
