// Package view provides decorators that derive read-only collections from a
// source collection purely by observing events: filters, sorters and the
// effort aggregator. Every decorator is itself a collection.Source, so
// decorators chain.
package view

import (
	"github.com/runoshun/tasktree/internal/collection"
	"github.com/runoshun/tasktree/internal/event"
	"github.com/runoshun/tasktree/internal/settings"
)

// Predicate decides whether an item passes a filter.
type Predicate[T any] func(item T) bool

// Filter holds exactly the items of its source that pass a predicate, in
// source order.
//
// Membership changes of the source are applied incrementally. Attribute
// changes are picked up through RefreshOn (re-evaluate the changed items)
// or ResetOn (re-evaluate everything). Either way only the difference is
// announced.
type Filter[T collection.Item] struct {
	source   collection.Source[T]
	bus      *event.Bus
	owner    any
	match    Predicate[T]
	members  map[T]struct{}
	observer event.Observer
	refresh  event.Observer
	reset    event.Observer
}

// NewFilter creates a filter over source and fills it.
func NewFilter[T collection.Item](source collection.Source[T], match Predicate[T]) *Filter[T] {
	f := &Filter[T]{
		source:  source,
		bus:     source.Bus(),
		match:   match,
		members: make(map[T]struct{}),
	}
	f.owner = f
	f.observer = event.Func(f.onSourceChanged)
	f.refresh = event.Func(f.onItemChanged)
	f.reset = event.Func(func(*event.Event) error { return f.Reset() })

	f.bus.Register(f.observer, event.ItemsAdded, source)
	f.bus.Register(f.observer, event.ItemsRemoved, source)
	_ = f.Reset()
	return f
}

// Bus returns the bus the filter notifies.
func (f *Filter[T]) Bus() *event.Bus {
	return f.bus
}

// Source returns the decorated collection.
func (f *Filter[T]) Source() collection.Source[T] {
	return f.source
}

// Items returns the passing items in source order.
func (f *Filter[T]) Items() []T {
	var items []T
	for _, item := range f.source.Items() {
		if _, ok := f.members[item]; ok {
			items = append(items, item)
		}
	}
	return items
}

// Contains returns true if item passes the filter.
func (f *Filter[T]) Contains(item T) bool {
	_, ok := f.members[item]
	return ok
}

// Len returns the number of passing items.
func (f *Filter[T]) Len() int {
	return len(f.members)
}

// SetPredicate replaces the predicate and resets the filter.
func (f *Filter[T]) SetPredicate(match Predicate[T]) error {
	f.match = match
	return f.Reset()
}

// RefreshOn re-evaluates an item whenever it is the source of one of the
// given event types.
func (f *Filter[T]) RefreshOn(types ...event.Type) {
	for _, typ := range types {
		f.bus.Register(f.refresh, typ)
	}
}

// ResetOn re-evaluates every item whenever one of the given event types is
// announced, by any source.
func (f *Filter[T]) ResetOn(types ...event.Type) {
	for _, typ := range types {
		f.bus.Register(f.reset, typ)
	}
}

// ResetOnSource is ResetOn restricted to one source.
func (f *Filter[T]) ResetOnSource(source any, types ...event.Type) {
	for _, typ := range types {
		f.bus.Register(f.reset, typ, source)
	}
}

// ObserveSettings resets the filter whenever one of the keys changes.
func (f *Filter[T]) ObserveSettings(s *settings.Settings, keys ...settings.Key) {
	s.Observe(f.reset, keys...)
}

// Reset re-evaluates every source item and announces the difference only.
func (f *Filter[T]) Reset() error {
	var added, removed []T
	passing := make(map[T]struct{})
	for _, item := range f.source.Items() {
		if !f.match(item) {
			continue
		}
		passing[item] = struct{}{}
		if _, ok := f.members[item]; !ok {
			added = append(added, item)
		}
	}
	for item := range f.members {
		if _, ok := passing[item]; !ok {
			removed = append(removed, item)
		}
	}
	return f.apply(added, removed)
}

// Dispose stops observing.
func (f *Filter[T]) Dispose() {
	f.bus.Remove(f.observer)
	f.bus.Remove(f.refresh)
	f.bus.Remove(f.reset)
}

func (f *Filter[T]) onSourceChanged(ev *event.Event) error {
	items := event.ValuesAs[T](ev, f.source)
	var added, removed []T
	switch ev.Type() {
	case event.ItemsAdded:
		for _, item := range items {
			if _, ok := f.members[item]; !ok && f.match(item) {
				added = append(added, item)
			}
		}
	case event.ItemsRemoved:
		for _, item := range items {
			if _, ok := f.members[item]; ok {
				removed = append(removed, item)
			}
		}
	}
	return f.apply(added, removed)
}

func (f *Filter[T]) onItemChanged(ev *event.Event) error {
	var added, removed []T
	for _, src := range ev.Sources() {
		item, ok := src.(T)
		if !ok || !f.source.Contains(item) {
			continue
		}
		_, member := f.members[item]
		switch passes := f.match(item); {
		case passes && !member:
			added = append(added, item)
		case !passes && member:
			removed = append(removed, item)
		}
	}
	return f.apply(added, removed)
}

func (f *Filter[T]) apply(added, removed []T) error {
	ev := &event.Event{}
	if len(removed) > 0 {
		for _, item := range removed {
			delete(f.members, item)
		}
		ev.AddSource(f.owner, event.ItemsRemoved, anys(removed)...)
	}
	if len(added) > 0 {
		for _, item := range added {
			f.members[item] = struct{}{}
		}
		ev.AddSource(f.owner, event.ItemsAdded, anys(added)...)
	}
	return ev.Send(f.bus)
}

// TreeFilter is a Filter over composite items. A passing child whose
// parent does not pass is a root of the filtered tree.
type TreeFilter[T collection.CompositeItem] struct {
	*Filter[T]
}

// NewTreeFilter creates a tree filter over source.
func NewTreeFilter[T collection.CompositeItem](source collection.Source[T], match Predicate[T]) *TreeFilter[T] {
	tf := &TreeFilter[T]{Filter: NewFilter[T](source, match)}
	tf.owner = tf
	return tf
}

// RootItems returns the passing items whose parent does not pass.
func (tf *TreeFilter[T]) RootItems() []T {
	return collection.RootItems[T](tf)
}

func anys[T any](items []T) []any {
	out := make([]any, len(items))
	for i, item := range items {
		out[i] = item
	}
	return out
}
