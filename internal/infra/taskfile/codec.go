package taskfile

import (
	"fmt"

	"github.com/runoshun/tasktree/internal/domain"
)

// encode flattens snap into records. Deleted entities and links to
// entities outside the snapshot are left out.
func encode(snap domain.Snapshot) *fileData {
	data := &fileData{Version: FormatVersion}

	categories := make(map[*domain.Category]bool)
	for _, c := range domain.Live(snap.Categories) {
		categories[c] = true
	}
	for _, c := range domain.Live(snap.Categories) {
		data.Categories = append(data.Categories, categoryRecord{
			ID:          c.ID(),
			Parent:      parentIn(c, categories),
			Subject:     c.Subject(),
			Description: c.Description(),
			Filtered:    c.IsFiltered(),
		})
	}

	tasks := make(map[*domain.Task]bool)
	for _, t := range domain.Live(snap.Tasks) {
		tasks[t] = true
	}
	for _, t := range domain.Live(snap.Tasks) {
		rec := taskRecord{
			ID:          t.ID(),
			Parent:      parentIn(t, tasks),
			Subject:     t.Subject(),
			Description: t.Description(),
			Start:       t.StartDate(),
			Due:         t.DueDate(),
			Completed:   t.CompletionDate(),
			Priority:    t.Priority(),
			Budget:      t.Budget(),
			HourlyFee:   t.HourlyFee(),
			FixedFee:    t.FixedFee(),
		}
		for _, c := range t.Categories() {
			if categories[c] {
				rec.Categories = append(rec.Categories, c.ID())
			}
		}
		data.Tasks = append(data.Tasks, rec)

		for _, e := range t.Efforts() {
			data.Efforts = append(data.Efforts, effortRecord{
				ID:          e.ID(),
				Task:        t.ID(),
				Start:       e.Start(),
				Stop:        e.Stop(),
				Description: e.Description(),
			})
		}
	}

	notes := make(map[*domain.Note]bool)
	for _, n := range domain.Live(snap.Notes) {
		notes[n] = true
	}
	for _, n := range domain.Live(snap.Notes) {
		data.Notes = append(data.Notes, noteRecord{
			ID:          n.ID(),
			Parent:      parentIn(n, notes),
			Subject:     n.Subject(),
			Description: n.Description(),
		})
	}
	return data
}

type node interface {
	comparable
	domain.Composite
}

// parentIn returns the parent ID of item when the parent is saved too.
func parentIn[T node](item T, kept map[T]bool) string {
	p, ok := item.Parent().(T)
	if !ok || !kept[p] {
		return ""
	}
	return p.ID()
}

// decode rebuilds entities in two passes: create every entity, then link
// them. Any dangling or duplicate reference fails the whole load.
func decode(data *fileData) (domain.Snapshot, error) {
	var snap domain.Snapshot

	categories := make(map[string]*domain.Category, len(data.Categories))
	for _, rec := range data.Categories {
		if _, dup := categories[rec.ID]; dup || rec.ID == "" {
			return domain.Snapshot{}, corrupt("category", rec.ID, "duplicate or empty id")
		}
		c := domain.NewCategoryWithID(nil, rec.ID, rec.Subject)
		c.SetDescription(rec.Description)
		c.SetFiltered(rec.Filtered)
		categories[rec.ID] = c
		snap.Categories = append(snap.Categories, c)
	}

	tasks := make(map[string]*domain.Task, len(data.Tasks))
	for _, rec := range data.Tasks {
		if _, dup := tasks[rec.ID]; dup || rec.ID == "" {
			return domain.Snapshot{}, corrupt("task", rec.ID, "duplicate or empty id")
		}
		t := domain.NewTaskWithID(nil, rec.ID, rec.Subject)
		t.SetDescription(rec.Description)
		t.SetStartDate(rec.Start)
		t.SetDueDate(rec.Due)
		t.SetCompletionDate(rec.Completed)
		t.SetPriority(rec.Priority)
		t.SetBudget(rec.Budget)
		t.SetHourlyFee(rec.HourlyFee)
		t.SetFixedFee(rec.FixedFee)
		tasks[rec.ID] = t
		snap.Tasks = append(snap.Tasks, t)
	}

	notes := make(map[string]*domain.Note, len(data.Notes))
	for _, rec := range data.Notes {
		if _, dup := notes[rec.ID]; dup || rec.ID == "" {
			return domain.Snapshot{}, corrupt("note", rec.ID, "duplicate or empty id")
		}
		n := domain.NewNoteWithID(nil, rec.ID, rec.Subject)
		n.SetDescription(rec.Description)
		notes[rec.ID] = n
		snap.Notes = append(snap.Notes, n)
	}

	if err := link(data, categories, tasks, notes); err != nil {
		return domain.Snapshot{}, err
	}
	return snap, nil
}

func link(data *fileData, categories map[string]*domain.Category, tasks map[string]*domain.Task, notes map[string]*domain.Note) error {
	for _, rec := range data.Categories {
		if rec.Parent == "" {
			continue
		}
		parent, ok := categories[rec.Parent]
		if !ok {
			return corrupt("category", rec.ID, "unknown parent "+rec.Parent)
		}
		if err := linkChild(parent, categories[rec.ID]); err != nil {
			return err
		}
	}

	for _, rec := range data.Tasks {
		task := tasks[rec.ID]
		if rec.Parent != "" {
			parent, ok := tasks[rec.Parent]
			if !ok {
				return corrupt("task", rec.ID, "unknown parent "+rec.Parent)
			}
			if err := linkChild(parent, task); err != nil {
				return err
			}
		}
		for _, id := range rec.Categories {
			c, ok := categories[id]
			if !ok {
				return corrupt("task", rec.ID, "unknown category "+id)
			}
			task.AddCategory(c)
		}
	}

	seen := make(map[string]bool, len(data.Efforts))
	for _, rec := range data.Efforts {
		if seen[rec.ID] || rec.ID == "" {
			return corrupt("effort", rec.ID, "duplicate or empty id")
		}
		seen[rec.ID] = true
		task, ok := tasks[rec.Task]
		if !ok {
			return corrupt("effort", rec.ID, "unknown task "+rec.Task)
		}
		e := domain.NewEffortWithID(nil, rec.ID, task, rec.Start, rec.Stop)
		e.SetDescription(rec.Description)
		task.AddEffort(e)
	}

	for _, rec := range data.Notes {
		if rec.Parent == "" {
			continue
		}
		parent, ok := notes[rec.Parent]
		if !ok {
			return corrupt("note", rec.ID, "unknown parent "+rec.Parent)
		}
		if err := linkChild(parent, notes[rec.ID]); err != nil {
			return err
		}
	}
	return nil
}

// linkChild adds child to parent unless that would close a cycle.
func linkChild(parent, child domain.Composite) error {
	if parent == child || parent.IsDescendantOf(child) {
		return corrupt(child.Kind().String(), child.ID(), "parent cycle through "+parent.ID())
	}
	parent.AddChild(child)
	return nil
}

func corrupt(kind, id, reason string) error {
	return fmt.Errorf("%w: %s %q: %s", ErrCorruptFile, kind, id, reason)
}
