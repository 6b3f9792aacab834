package domain

import (
	"fmt"
	"slices"

	"github.com/runoshun/tasktree/internal/event"
)

// Composite is an entity that takes part in a parent/child tree.
//
// The parent pointer is a back-reference only; children are owned and kept
// in insertion order. AddChild keeps both sides in agreement. RemoveChild
// only updates the children list and leaves the child's parent pointer as
// it was, so that undo can re-add the child without restoring the pointer.
type Composite interface {
	Entity
	Parent() Composite
	// SetParent updates the pointer only and emits nothing.
	SetParent(parent Composite)
	Children(recursive bool) []Composite
	AddChild(child Composite)
	// AddChildIn is AddChild that records the child-added entry in ev
	// instead of sending it.
	AddChildIn(ev *event.Event, child Composite)
	RemoveChild(child Composite) error
	RemoveChildIn(ev *event.Event, child Composite) error
	// Ancestors returns the ancestors from the root down to the parent.
	Ancestors() []Composite
	// Family returns ancestors, self and all descendants, depth first.
	Family() []Composite
	IsDescendantOf(other Composite) bool
}

// compositeBase implements Composite on top of base.
type compositeBase struct {
	base
	parent   Composite
	children []Composite
}

func (c *compositeBase) composite() Composite {
	return c.self.(Composite)
}

// Parent returns the parent, or nil for a root.
func (c *compositeBase) Parent() Composite {
	return c.parent
}

// SetParent sets the parent pointer without emitting an event.
func (c *compositeBase) SetParent(parent Composite) {
	c.parent = parent
}

// Children returns the direct children, or every descendant depth first
// when recursive is set.
func (c *compositeBase) Children(recursive bool) []Composite {
	if !recursive {
		return slices.Clone(c.children)
	}
	var out []Composite
	for _, child := range c.children {
		out = append(out, child)
		out = append(out, child.Children(true)...)
	}
	return out
}

// AddChild appends child, sets its parent and emits the child-added event.
func (c *compositeBase) AddChild(child Composite) {
	ev := &event.Event{}
	c.AddChildIn(ev, child)
	c.send(ev)
}

// AddChildIn appends child and records the child-added entry in ev.
func (c *compositeBase) AddChildIn(ev *event.Event, child Composite) {
	c.children = append(c.children, child)
	child.SetParent(c.composite())
	ev.AddSource(c.self, ChildAddedEvent(c.kind), child)
}

// RemoveChild removes child and emits the child-removed event.
func (c *compositeBase) RemoveChild(child Composite) error {
	ev := &event.Event{}
	if err := c.RemoveChildIn(ev, child); err != nil {
		return err
	}
	c.send(ev)
	return nil
}

// RemoveChildIn removes child and records the child-removed entry in ev.
// It returns ErrChildNotFound when child is not a child of c.
func (c *compositeBase) RemoveChildIn(ev *event.Event, child Composite) error {
	idx := slices.Index(c.children, child)
	if idx < 0 {
		return fmt.Errorf("remove %s %s from %s: %w", child.Kind(), child.ID(), c.id, ErrChildNotFound)
	}
	c.children = slices.Delete(slices.Clone(c.children), idx, idx+1)
	ev.AddSource(c.self, ChildRemovedEvent(c.kind), child)
	return nil
}

// Ancestors returns the ancestors ordered from the root to the parent.
func (c *compositeBase) Ancestors() []Composite {
	var out []Composite
	for p := c.parent; p != nil; p = p.Parent() {
		out = append(out, p)
	}
	slices.Reverse(out)
	return out
}

// Family returns ancestors, self and every descendant.
func (c *compositeBase) Family() []Composite {
	out := c.Ancestors()
	out = append(out, c.composite())
	return append(out, c.Children(true)...)
}

// IsDescendantOf returns true if other is an ancestor of c.
func (c *compositeBase) IsDescendantOf(other Composite) bool {
	for p := c.parent; p != nil; p = p.Parent() {
		if p == other {
			return true
		}
	}
	return false
}

// restoreTree writes back a parent pointer and children list captured in a
// state. Membership differences are announced in one event; the parent
// pointer of every restored child is set to c.
func (c *compositeBase) restoreTree(parent Composite, children []Composite) {
	c.parent = parent

	ev := &event.Event{}
	for _, old := range c.children {
		if !slices.Contains(children, old) {
			ev.AddSource(c.self, ChildRemovedEvent(c.kind), old)
		}
	}
	for _, child := range children {
		if !slices.Contains(c.children, child) {
			ev.AddSource(c.self, ChildAddedEvent(c.kind), child)
		}
	}
	c.children = slices.Clone(children)
	for _, child := range c.children {
		child.SetParent(c.composite())
	}
	c.send(ev)
}

// RootOf returns the topmost ancestor of item, or item itself.
func RootOf(item Composite) Composite {
	for item.Parent() != nil {
		item = item.Parent()
	}
	return item
}

// castAll converts a slice of composites to a concrete entity type,
// skipping values of other types.
func castAll[T Composite](items []Composite) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if t, ok := item.(T); ok {
			out = append(out, t)
		}
	}
	return out
}

// Composites converts typed entities to the Composite interface.
func Composites[T Composite](items []T) []Composite {
	out := make([]Composite, len(items))
	for i, item := range items {
		out[i] = item
	}
	return out
}
