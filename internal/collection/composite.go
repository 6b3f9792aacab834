package collection

import (
	"slices"

	"github.com/runoshun/tasktree/internal/domain"
	"github.com/runoshun/tasktree/internal/event"
)

// CompositeItem is a composite entity that can be held in a collection.
type CompositeItem interface {
	comparable
	domain.Composite
}

// TreeSource is a Source whose items form a tree.
type TreeSource[T CompositeItem] interface {
	Source[T]
	RootItems() []T
}

// CompositeList is a list of composite entities that keeps whole subtrees
// together. Extend and RemoveItems act on an item together with all its
// descendants, link or unlink items with parents that are in the list, and
// announce everything in a single event: the membership change on the list
// plus a child-added or child-removed entry per affected parent.
type CompositeList[T CompositeItem] struct {
	*List[T]
}

// NewCompositeList creates an empty composite list that notifies bus.
func NewCompositeList[T CompositeItem](bus *event.Bus) *CompositeList[T] {
	c := &CompositeList[T]{List: NewList[T](bus)}
	c.owner = c
	return c
}

// Extend adds items and all their descendants. Each given item whose
// parent is in the list and does not list it as a child yet is added to
// that parent.
func (c *CompositeList[T]) Extend(items ...T) error {
	if len(items) == 0 {
		return nil
	}
	ev := &event.Event{}
	c.extendIn(ev, withDescendants(items))
	for _, item := range items {
		parent, ok := c.memberParent(item)
		if !ok || slices.Contains(parent.Children(false), domain.Composite(item)) {
			continue
		}
		parent.AddChildIn(ev, item)
	}
	return c.send(ev)
}

// RemoveItems removes items and all their descendants. Items that are
// removed because an ancestor is removed too stay attached to that
// ancestor; the others are detached from their parent when the parent
// stays in the list.
func (c *CompositeList[T]) RemoveItems(items ...T) error {
	if len(items) == 0 {
		return nil
	}
	selected := make(map[T]struct{}, len(items))
	for _, item := range items {
		selected[item] = struct{}{}
	}
	var top []T
	for _, item := range items {
		if !hasSelectedAncestor(item, selected) {
			top = append(top, item)
		}
	}

	ev := &event.Event{}
	c.removeIn(ev, withDescendants(top))
	for _, item := range top {
		parent, ok := c.memberParent(item)
		if !ok || !slices.Contains(parent.Children(false), domain.Composite(item)) {
			continue
		}
		if err := parent.RemoveChildIn(ev, item); err != nil {
			return err
		}
	}
	return c.send(ev)
}

// Clear removes every item.
func (c *CompositeList[T]) Clear() error {
	return c.RemoveItems(c.items...)
}

// RootItems returns the items without a parent in the list.
func (c *CompositeList[T]) RootItems() []T {
	return RootItems[T](c)
}

func (c *CompositeList[T]) memberParent(item T) (T, bool) {
	p, ok := item.Parent().(T)
	if !ok || !c.Contains(p) {
		var zero T
		return zero, false
	}
	return p, true
}

// RootItems returns the items of src whose parent is nil or not in src.
// A child whose parent was filtered out is a root of the filtered view.
func RootItems[T CompositeItem](src Source[T]) []T {
	var roots []T
	for _, item := range src.Items() {
		parent, ok := item.Parent().(T)
		if !ok || !src.Contains(parent) {
			roots = append(roots, item)
		}
	}
	return roots
}

// withDescendants returns items followed by their descendants, depth first,
// without duplicates.
func withDescendants[T CompositeItem](items []T) []T {
	seen := make(map[T]struct{})
	var out []T
	add := func(item T) {
		if _, ok := seen[item]; !ok {
			seen[item] = struct{}{}
			out = append(out, item)
		}
	}
	for _, item := range items {
		add(item)
		for _, child := range item.Children(true) {
			if t, ok := child.(T); ok {
				add(t)
			}
		}
	}
	return out
}

func hasSelectedAncestor[T CompositeItem](item T, selected map[T]struct{}) bool {
	for _, ancestor := range item.Ancestors() {
		if t, ok := ancestor.(T); ok {
			if _, found := selected[t]; found {
				return true
			}
		}
	}
	return false
}
