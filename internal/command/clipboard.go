package command

import (
	"slices"

	"github.com/runoshun/tasktree/internal/domain"
	"github.com/runoshun/tasktree/internal/event"
)

// Clipboard holds cut or copied entities until they are pasted.
// Changes announce event.ClipboardChanged with the clipboard as source.
type Clipboard struct {
	bus    *event.Bus
	source any // Collection the items were cut or copied from
	items  []domain.Entity
}

// NewClipboard creates an empty clipboard.
func NewClipboard(bus *event.Bus) *Clipboard {
	return &Clipboard{bus: bus}
}

// Items returns the clipboard contents.
func (c *Clipboard) Items() []domain.Entity {
	return slices.Clone(c.items)
}

// IsEmpty returns true if the clipboard holds nothing.
func (c *Clipboard) IsEmpty() bool {
	return len(c.items) == 0
}

// Source returns the collection the contents came from, or nil.
func (c *Clipboard) Source() any {
	return c.source
}

// Set replaces the contents.
func (c *Clipboard) Set(items []domain.Entity, source any) error {
	c.items = slices.Clone(items)
	c.source = source
	values := make([]any, len(items))
	for i, item := range items {
		values[i] = item
	}
	return event.New(c, event.ClipboardChanged, values...).Send(c.bus)
}

// Clear empties the clipboard.
func (c *Clipboard) Clear() error {
	return c.Set(nil, nil)
}

// clipboardState is the clipboard contents saved by commands that
// replace them.
type clipboardState struct {
	source any
	items  []domain.Entity
}

func (c *Clipboard) save() clipboardState {
	return clipboardState{source: c.source, items: slices.Clone(c.items)}
}

func (c *Clipboard) restore(s clipboardState) error {
	return c.Set(s.items, s.source)
}

// itemsOf returns the clipboard entries of type T.
func itemsOf[T domain.Entity](c *Clipboard) []T {
	var out []T
	for _, item := range c.items {
		if t, ok := item.(T); ok {
			out = append(out, t)
		}
	}
	return out
}

func entities[T domain.Entity](items []T) []domain.Entity {
	out := make([]domain.Entity, len(items))
	for i, item := range items {
		out[i] = item
	}
	return out
}
