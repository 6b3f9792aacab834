package app

import (
	"github.com/runoshun/tasktree/internal/domain"
	"github.com/runoshun/tasktree/internal/settings"
	"github.com/runoshun/tasktree/internal/view"
)

// TaskView is the chain of decorators that produces the visible task
// tree: view preferences, category filter, search, then sorting.
type TaskView struct {
	Filter   *view.ViewFilter
	Category *view.CategoryFilter
	Search   *view.SearchFilter[*domain.Task]
	Sorter   *view.TaskSorter
}

// NewTaskView builds a task view over the task list.
func (c *Container) NewTaskView(search view.SearchOptions) (*TaskView, error) {
	filter := view.NewViewFilter(c.Tasks, c.Settings, c.Clock)
	category := view.NewCategoryFilter(filter, c.Categories, c.Settings)
	searchFilter, err := view.NewSearchFilter[*domain.Task](category, search)
	if err != nil {
		category.Dispose()
		filter.Dispose()
		return nil, err
	}
	return &TaskView{
		Filter:   filter,
		Category: category,
		Search:   searchFilter,
		Sorter:   view.NewTaskSorter(searchFilter, c.Settings, c.Clock),
	}, nil
}

// Items returns the visible tasks in display order.
func (v *TaskView) Items() []*domain.Task { return v.Sorter.Items() }

// RootItems returns the visible tasks without a visible parent.
func (v *TaskView) RootItems() []*domain.Task { return v.Sorter.RootItems() }

// Dispose detaches the chain from the bus, outermost first.
func (v *TaskView) Dispose() {
	v.Sorter.Dispose()
	v.Search.Dispose()
	v.Category.Dispose()
	v.Filter.Dispose()
}

// NewEffortView builds the effort aggregator for the configured period.
func (c *Container) NewEffortView() (*view.EffortAggregator, error) {
	period, err := domain.ParsePeriod(c.Settings.Get(settings.KeyEffortPeriod))
	if err != nil {
		return nil, err
	}
	agg := view.NewEffortAggregator(c.Efforts.Efforts(), period)
	agg.ObserveSettings(c.Settings)
	return agg, nil
}
