package view

import (
	"slices"

	"github.com/runoshun/tasktree/internal/collection"
	"github.com/runoshun/tasktree/internal/domain"
	"github.com/runoshun/tasktree/internal/event"
	"github.com/runoshun/tasktree/internal/settings"
)

// CategoryFilter keeps the tasks that belong to the filtered categories.
// The filtered categories are those flagged on the entities, or the ones
// passed to Select, which leaves the flags alone. With no filtered
// category every task passes. A task belongs to a
// category when it, or one of its ancestors, is in the category or one of
// its subcategories.
type CategoryFilter struct {
	*TreeFilter[*domain.Task]
	categories collection.Source[*domain.Category]
	settings   *settings.Settings
	selected   []*domain.Category
}

// NewCategoryFilter creates a category filter over tasks. Whether a task
// must match any or all filtered categories comes from settings.
func NewCategoryFilter(tasks collection.Source[*domain.Task], categories collection.Source[*domain.Category], s *settings.Settings) *CategoryFilter {
	cf := &CategoryFilter{categories: categories, settings: s}
	cf.TreeFilter = NewTreeFilter[*domain.Task](tasks, cf.matches)
	cf.owner = cf
	cf.ResetOn(event.CategoryFiltered, event.CategoryCategorizables, event.CategoryDeleted)
	cf.ResetOnSource(categories, event.ItemsAdded, event.ItemsRemoved)
	cf.RefreshOn(event.TaskCategories)
	cf.ObserveSettings(s, settings.KeyCategoryMatchAll)
	return cf
}

// Select restricts the view to categories instead of the flagged ones.
// Without arguments the flags apply again.
func (cf *CategoryFilter) Select(categories ...*domain.Category) error {
	cf.selected = slices.Clone(categories)
	return cf.Reset()
}

// Filtered returns the categories that currently restrict the view.
func (cf *CategoryFilter) Filtered() []*domain.Category {
	if len(cf.selected) > 0 {
		return domain.Live(cf.selected)
	}
	var filtered []*domain.Category
	for _, c := range cf.categories.Items() {
		if c.IsFiltered() && !c.IsDeleted() {
			filtered = append(filtered, c)
		}
	}
	return filtered
}

func (cf *CategoryFilter) matches(task *domain.Task) bool {
	filtered := cf.Filtered()
	if len(filtered) == 0 {
		return true
	}
	matchAll := cf.settings.Bool(settings.KeyCategoryMatchAll)
	for _, c := range filtered {
		in := belongsTo(task, c)
		if in && !matchAll {
			return true
		}
		if !in && matchAll {
			return false
		}
	}
	return matchAll
}

func belongsTo(task *domain.Task, c *domain.Category) bool {
	if c.Contains(task, true) {
		return true
	}
	for _, ancestor := range task.Ancestors() {
		if t, ok := ancestor.(*domain.Task); ok && c.Contains(t, true) {
			return true
		}
	}
	return false
}
