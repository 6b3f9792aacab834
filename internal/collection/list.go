// Package collection provides the observable base collections that hold
// entities and announce membership changes on the event bus.
package collection

import (
	"slices"

	"github.com/runoshun/tasktree/internal/domain"
	"github.com/runoshun/tasktree/internal/event"
)

// Item is an entity that can be held in a collection.
type Item interface {
	comparable
	domain.Entity
}

// Source is a read-only observable collection. Decorators consume a Source
// and are Sources themselves, so they chain. A Source announces membership
// changes with event.ItemsAdded and event.ItemsRemoved, using itself as the
// event source.
type Source[T Item] interface {
	Bus() *event.Bus
	Items() []T
	Contains(item T) bool
	Len() int
}

// List is an ordered observable collection without duplicates.
//
// Notifications can be suspended; changes made meanwhile are merged and
// sent as one event on Resume.
type List[T Item] struct {
	bus     *event.Bus
	owner   any
	members map[T]struct{}
	pending *event.Event
	items   []T
	depth   int
}

// NewList creates an empty list that notifies bus.
func NewList[T Item](bus *event.Bus) *List[T] {
	l := &List[T]{
		bus:     bus,
		members: make(map[T]struct{}),
	}
	l.owner = l
	return l
}

// Bus returns the bus the list notifies.
func (l *List[T]) Bus() *event.Bus {
	return l.bus
}

// Items returns a copy of the items in order.
func (l *List[T]) Items() []T {
	return slices.Clone(l.items)
}

// Len returns the number of items.
func (l *List[T]) Len() int {
	return len(l.items)
}

// Contains returns true if item is in the list.
func (l *List[T]) Contains(item T) bool {
	_, ok := l.members[item]
	return ok
}

// Index returns the position of item, or -1.
func (l *List[T]) Index(item T) int {
	if !l.Contains(item) {
		return -1
	}
	return slices.Index(l.items, item)
}

// Extend appends the items that are not in the list yet and announces them
// in one event.
func (l *List[T]) Extend(items ...T) error {
	ev := &event.Event{}
	l.extendIn(ev, items)
	return l.send(ev)
}

// RemoveItems removes the items that are in the list and announces them in
// one event.
func (l *List[T]) RemoveItems(items ...T) error {
	ev := &event.Event{}
	l.removeIn(ev, items)
	return l.send(ev)
}

// Clear removes every item.
func (l *List[T]) Clear() error {
	return l.RemoveItems(l.items...)
}

// SortStable reorders the items with cmp, keeping the relative order of
// equal items. It announces event.Sorted and returns true only when the
// order changed.
func (l *List[T]) SortStable(cmp func(a, b T) int) (bool, error) {
	sorted := slices.Clone(l.items)
	slices.SortStableFunc(sorted, cmp)
	if slices.Equal(sorted, l.items) {
		return false, nil
	}
	l.items = sorted
	return true, l.send(event.New(l.owner, event.Sorted))
}

// Suspend holds back notifications until the matching Resume.
func (l *List[T]) Suspend() {
	l.depth++
}

// Resume ends a Suspend. The outermost Resume sends everything that changed
// meanwhile as one event.
func (l *List[T]) Resume() error {
	if l.depth == 0 {
		return nil
	}
	l.depth--
	if l.depth > 0 || l.pending == nil {
		return nil
	}
	ev := l.pending
	l.pending = nil
	return ev.Send(l.bus)
}

func (l *List[T]) extendIn(ev *event.Event, items []T) []T {
	var added []T
	for _, item := range items {
		if l.Contains(item) {
			continue
		}
		l.members[item] = struct{}{}
		l.items = append(l.items, item)
		added = append(added, item)
	}
	if len(added) > 0 {
		ev.AddSource(l.owner, event.ItemsAdded, anys(added)...)
	}
	return added
}

func (l *List[T]) removeIn(ev *event.Event, items []T) []T {
	var removed []T
	for _, item := range items {
		if !l.Contains(item) {
			continue
		}
		delete(l.members, item)
		removed = append(removed, item)
	}
	if len(removed) == 0 {
		return nil
	}
	l.items = slices.DeleteFunc(slices.Clone(l.items), func(item T) bool {
		_, ok := l.members[item]
		return !ok
	})
	ev.AddSource(l.owner, event.ItemsRemoved, anys(removed)...)
	return removed
}

func (l *List[T]) send(ev *event.Event) error {
	if ev.IsEmpty() {
		return nil
	}
	if l.depth > 0 {
		if l.pending == nil {
			l.pending = &event.Event{}
		}
		l.pending.Merge(ev)
		return nil
	}
	return ev.Send(l.bus)
}

func anys[T any](items []T) []any {
	out := make([]any, len(items))
	for i, item := range items {
		out[i] = item
	}
	return out
}
