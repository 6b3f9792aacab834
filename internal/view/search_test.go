package view

import (
	"testing"

	"github.com/runoshun/tasktree/internal/collection"
	"github.com/runoshun/tasktree/internal/domain"
	"github.com/runoshun/tasktree/internal/event"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func searchFixture(t *testing.T) (*collection.CompositeList[*domain.Task], *domain.Task, *domain.Task, *domain.Task) {
	t.Helper()
	bus := event.NewBus(nil)
	tasks := collection.NewCompositeList[*domain.Task](bus)
	root := domain.NewTask(bus, "Groceries")
	child := domain.NewTask(bus, "Buy milk")
	other := domain.NewTask(bus, "Write report")
	root.AddChild(child)
	require.NoError(t, tasks.Extend(root, other))
	return tasks, root, child, other
}

func TestSearchFilter(t *testing.T) {
	tests := []struct {
		name string
		opts SearchOptions
		want []string
	}{
		{"empty search passes all", SearchOptions{}, []string{"Groceries", "Buy milk", "Write report"}},
		{"case insensitive", SearchOptions{Text: "MILK"}, []string{"Buy milk"}},
		{"case sensitive", SearchOptions{Text: "MILK", CaseSensitive: true}, nil},
		{"regex", SearchOptions{Text: "^(Buy|Write)", Regex: true}, []string{"Buy milk", "Write report"}},
		{"lookahead", SearchOptions{Text: `\w+(?= report)`, Regex: true}, []string{"Write report"}},
		{"literal text is not a regex", SearchOptions{Text: "^Buy"}, nil},
		{"sub items match through descendants", SearchOptions{Text: "milk", IncludeSubItems: true}, []string{"Groceries", "Buy milk"}},
		{"sub items match through ancestors", SearchOptions{Text: "groceries", IncludeSubItems: true}, []string{"Groceries", "Buy milk"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tasks, _, _, _ := searchFixture(t)

			sf, err := NewSearchFilter[*domain.Task](tasks, tt.opts)
			require.NoError(t, err)

			var got []string
			for _, task := range sf.Items() {
				got = append(got, task.Subject())
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSearchFilter_InvalidRegex(t *testing.T) {
	tasks, _, _, _ := searchFixture(t)

	_, err := NewSearchFilter[*domain.Task](tasks, SearchOptions{Text: "(", Regex: true})

	assert.Error(t, err)
}

func TestSearchFilter_FollowsRenames(t *testing.T) {
	tasks, root, child, other := searchFixture(t)
	sf, err := NewSearchFilter[*domain.Task](tasks, SearchOptions{Text: "report"})
	require.NoError(t, err)

	child.SetSubject("Print report")

	assert.Equal(t, []*domain.Task{child, other}, sf.Items())
	assert.Equal(t, []*domain.Task{child, other}, sf.RootItems())
	assert.False(t, sf.Contains(root))

	require.NoError(t, sf.SetOptions(SearchOptions{Text: "groceries"}))
	assert.Equal(t, []*domain.Task{root}, sf.Items())
}
