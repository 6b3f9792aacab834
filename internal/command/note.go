package command

import (
	"github.com/runoshun/tasktree/internal/domain"
	"github.com/runoshun/tasktree/internal/event"
)

// NewNote creates a command adding a root note with subject to notes.
func NewNote(bus *event.Bus, notes Target[*domain.Note], subject string) *Add[*domain.Note] {
	return NewAdd("New note", notes, domain.NewNote(bus, subject))
}

// NewSubNote creates a command adding a note with subject under parent.
func NewSubNote(bus *event.Bus, notes Target[*domain.Note], parent *domain.Note, subject string) *AddSub[*domain.Note] {
	return NewAddSub("New subnote", notes, parent, domain.NewNote(bus, subject))
}

// NewCategory creates a command adding a root category with subject.
func NewCategory(bus *event.Bus, categories Target[*domain.Category], subject string) *Add[*domain.Category] {
	return NewAdd("New category", categories, domain.NewCategory(bus, subject))
}

// NewSubCategory creates a command adding a category with subject under
// parent.
func NewSubCategory(bus *event.Bus, categories Target[*domain.Category], parent *domain.Category, subject string) *AddSub[*domain.Category] {
	return NewAddSub("New subcategory", categories, parent, domain.NewCategory(bus, subject))
}
