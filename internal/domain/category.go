package domain

import (
	"slices"

	"github.com/runoshun/tasktree/internal/event"
)

// Category groups tasks. Categories form a tree; a filtered category
// restricts the task views to the tasks it contains.
type Category struct {
	compositeBase
	categorizables []*Task
	filtered       bool
}

// CategoryState is the restorable state of a category. Task links are part
// of the task state and are restored from the task side.
type CategoryState struct {
	Parent      Composite
	ID          string
	Subject     string
	Description string
	Children    []Composite
	Filtered    bool
	Deleted     bool
}

// StateKind implements State.
func (CategoryState) StateKind() Kind { return KindCategory }

// NewCategory creates a category with a new ID.
func NewCategory(bus *event.Bus, subject string) *Category {
	return NewCategoryWithID(bus, "", subject)
}

// NewCategoryWithID creates a category with the given ID.
func NewCategoryWithID(bus *event.Bus, id, subject string) *Category {
	c := &Category{}
	c.base = newBase(bus, KindCategory, id, subject)
	c.self = c
	return c
}

// ChildCategories returns the child categories.
func (c *Category) ChildCategories(recursive bool) []*Category {
	return castAll[*Category](c.Children(recursive))
}

// IsFiltered returns true if the category restricts task views.
func (c *Category) IsFiltered() bool { return c.filtered }

// SetFiltered changes the filter flag.
func (c *Category) SetFiltered(filtered bool) bool {
	return setValue(&c.base, &c.filtered, filtered, AttrFiltered)
}

// Categorizables returns the live tasks in this category.
func (c *Category) Categorizables() []*Task {
	return Live(c.categorizables)
}

// Contains returns true if task is in this category or, when recursive is
// set, in one of its subcategories.
func (c *Category) Contains(task *Task, recursive bool) bool {
	if slices.Contains(c.categorizables, task) {
		return true
	}
	if recursive {
		for _, sub := range c.ChildCategories(true) {
			if slices.Contains(sub.categorizables, task) {
				return true
			}
		}
	}
	return false
}

func (c *Category) addCategorizable(t *Task) {
	if !slices.Contains(c.categorizables, t) {
		c.categorizables = append(slices.Clone(c.categorizables), t)
	}
}

func (c *Category) removeCategorizable(t *Task) {
	c.categorizables = slices.DeleteFunc(slices.Clone(c.categorizables), func(other *Task) bool {
		return other == t
	})
}

// State captures the category attributes and tree links.
func (c *Category) State() State {
	return CategoryState{
		ID:          c.id,
		Subject:     c.subject,
		Description: c.description,
		Deleted:     c.deleted,
		Filtered:    c.filtered,
		Parent:      c.parent,
		Children:    slices.Clone(c.children),
	}
}

// SetState writes back a state captured from this category.
func (c *Category) SetState(state State) error {
	s, ok := state.(CategoryState)
	if !ok || s.ID != c.id {
		return ErrStateMismatch
	}
	c.restore(s.Subject, s.Description, s.Deleted)
	c.SetFiltered(s.Filtered)
	c.restoreTree(s.Parent, s.Children)
	return nil
}

// Copy returns an unattached copy without task links.
func (c *Category) Copy() Entity {
	return c.copyCategory()
}

func (c *Category) copyCategory() *Category {
	cp := NewCategory(c.bus, c.subject)
	cp.description = c.description
	cp.filtered = c.filtered
	for _, child := range c.ChildCategories(false) {
		if child.IsDeleted() {
			continue
		}
		cc := child.copyCategory()
		cc.parent = cp
		cp.children = append(cp.children, cc)
	}
	return cp
}
