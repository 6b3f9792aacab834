package command

import (
	"errors"
	"fmt"

	"github.com/runoshun/tasktree/internal/collection"
	"github.com/runoshun/tasktree/internal/domain"
)

// Target is the collection a command adds items to or removes them from.
// collection.List and collection.CompositeList satisfy it.
type Target[T collection.Item] interface {
	Extend(items ...T) error
	RemoveItems(items ...T) error
	Contains(item T) bool
}

// Add inserts new items into a collection. Redo inserts the same
// instances again.
type Add[T collection.Item] struct {
	target Target[T]
	name   string
	items  []T
}

// NewAdd creates a command adding items to target.
func NewAdd[T collection.Item](name string, target Target[T], items ...T) *Add[T] {
	return &Add[T]{name: name, target: target, items: items}
}

// Name implements Command.
func (c *Add[T]) Name() string { return c.name }

// Items returns the items the command adds.
func (c *Add[T]) Items() []T { return c.items }

// CanDo implements Command.
func (c *Add[T]) CanDo() bool { return len(c.items) > 0 }

// Do implements Command.
func (c *Add[T]) Do() error { return c.target.Extend(c.items...) }

// Undo implements Command.
func (c *Add[T]) Undo() error { return c.target.RemoveItems(c.items...) }

// Redo implements Command.
func (c *Add[T]) Redo() error { return c.Do() }

// AddSub inserts new items as children of a parent that is already in the
// collection.
type AddSub[T collection.CompositeItem] struct {
	*Add[T]
	parent T
}

// NewAddSub creates a command adding items under parent.
func NewAddSub[T collection.CompositeItem](name string, target Target[T], parent T, items ...T) *AddSub[T] {
	return &AddSub[T]{Add: NewAdd(name, target, items...), parent: parent}
}

// Parent returns the parent the items are added to.
func (c *AddSub[T]) Parent() T { return c.parent }

// CanDo implements Command.
func (c *AddSub[T]) CanDo() bool {
	return c.Add.CanDo() && c.target.Contains(c.parent)
}

// Do implements Command.
func (c *AddSub[T]) Do() error {
	for _, item := range c.items {
		item.SetParent(c.parent)
	}
	return c.target.Extend(c.items...)
}

// Redo implements Command. Undo left the parent pointers in place, so
// extending links the items to the parent again.
func (c *AddSub[T]) Redo() error { return c.target.Extend(c.items...) }

// Delete removes items with their descendants from a collection and sets
// their tombstone flag.
type Delete[T collection.CompositeItem] struct {
	target Target[T]
	name   string
	items  []T
	marked []T
}

// NewDelete creates a command deleting items from target.
func NewDelete[T collection.CompositeItem](target Target[T], items ...T) *Delete[T] {
	return &Delete[T]{name: "Delete", target: target, items: topLevel(items)}
}

// Name implements Command.
func (c *Delete[T]) Name() string { return c.name }

// Items returns the deleted items.
func (c *Delete[T]) Items() []T { return c.items }

// CanDo implements Command.
func (c *Delete[T]) CanDo() bool {
	for _, item := range c.items {
		if c.target.Contains(item) {
			return true
		}
	}
	return false
}

// Do implements Command.
func (c *Delete[T]) Do() error {
	c.marked = markDeleted(family(c.items), true)
	return c.target.RemoveItems(c.items...)
}

// Undo implements Command.
func (c *Delete[T]) Undo() error {
	markDeleted(c.marked, false)
	return c.target.Extend(c.items...)
}

// Redo implements Command.
func (c *Delete[T]) Redo() error {
	markDeleted(c.marked, true)
	return c.target.RemoveItems(c.items...)
}

// Cut deletes items and puts them on the clipboard. Undo restores the
// previous clipboard contents too.
type Cut[T collection.CompositeItem] struct {
	*Delete[T]
	clipboard *Clipboard
	saved     clipboardState
}

// NewCut creates a command cutting items from target.
func NewCut[T collection.CompositeItem](target Target[T], clipboard *Clipboard, items ...T) *Cut[T] {
	d := NewDelete(target, items...)
	d.name = "Cut"
	return &Cut[T]{Delete: d, clipboard: clipboard}
}

// Do implements Command.
func (c *Cut[T]) Do() error {
	c.saved = c.clipboard.save()
	if err := c.Delete.Do(); err != nil {
		return err
	}
	return c.clipboard.Set(entities(c.items), c.target)
}

// Undo implements Command.
func (c *Cut[T]) Undo() error {
	if err := c.Delete.Undo(); err != nil {
		return err
	}
	return c.clipboard.restore(c.saved)
}

// Redo implements Command.
func (c *Cut[T]) Redo() error {
	if err := c.Delete.Redo(); err != nil {
		return err
	}
	return c.clipboard.Set(entities(c.items), c.target)
}

// Copy puts copies of items on the clipboard. Collections are not
// touched; undo restores the previous clipboard contents.
type Copy[T collection.CompositeItem] struct {
	source    Target[T]
	clipboard *Clipboard
	saved     clipboardState
	items     []T
	copies    []domain.Entity
}

// NewCopy creates a command copying items of source.
func NewCopy[T collection.CompositeItem](source Target[T], clipboard *Clipboard, items ...T) *Copy[T] {
	return &Copy[T]{source: source, clipboard: clipboard, items: topLevel(items)}
}

// Name implements Command.
func (c *Copy[T]) Name() string { return "Copy" }

// CanDo implements Command.
func (c *Copy[T]) CanDo() bool { return len(c.items) > 0 }

// Do implements Command.
func (c *Copy[T]) Do() error {
	c.saved = c.clipboard.save()
	c.copies = c.copies[:0]
	for _, item := range c.items {
		copier, ok := any(item).(domain.Copier)
		if !ok {
			return fmt.Errorf("copy %s %s: not copyable", item.Kind(), item.ID())
		}
		c.copies = append(c.copies, copier.Copy())
	}
	return c.clipboard.Set(c.copies, c.source)
}

// Undo implements Command.
func (c *Copy[T]) Undo() error { return c.clipboard.restore(c.saved) }

// Redo implements Command.
func (c *Copy[T]) Redo() error { return c.clipboard.Set(c.copies, c.source) }

// Paste moves the clipboard contents into a collection, either as roots or
// under a parent. The clipboard is emptied; undo puts the items back on it.
type Paste[T collection.CompositeItem] struct {
	target    Target[T]
	clipboard *Clipboard
	saved     clipboardState
	parent    domain.Composite
	name      string
	items     []T
	parents   []domain.Composite
	undeleted []T
	hasParent bool
}

// NewPaste creates a command pasting the clipboard into target as root
// items.
func NewPaste[T collection.CompositeItem](target Target[T], clipboard *Clipboard) *Paste[T] {
	return &Paste[T]{name: "Paste", target: target, clipboard: clipboard}
}

// NewPasteAsSubItem creates a command pasting the clipboard under parent.
func NewPasteAsSubItem[T collection.CompositeItem](target Target[T], clipboard *Clipboard, parent T) *Paste[T] {
	return &Paste[T]{
		name:      "Paste as subitem",
		target:    target,
		clipboard: clipboard,
		parent:    parent,
		hasParent: true,
	}
}

// Name implements Command.
func (c *Paste[T]) Name() string { return c.name }

// Items returns the pasted items once the command ran.
func (c *Paste[T]) Items() []T { return c.items }

// CanDo implements Command.
func (c *Paste[T]) CanDo() bool {
	if len(itemsOf[T](c.clipboard)) == 0 {
		return false
	}
	if !c.hasParent {
		return true
	}
	parent, ok := c.parent.(T)
	return ok && c.target.Contains(parent)
}

// Do implements Command.
func (c *Paste[T]) Do() error {
	c.saved = c.clipboard.save()
	c.items = topLevel(itemsOf[T](c.clipboard))
	c.parents = make([]domain.Composite, len(c.items))
	for i, item := range c.items {
		c.parents[i] = item.Parent()
	}
	return c.Redo()
}

// Undo implements Command.
func (c *Paste[T]) Undo() error {
	if err := c.target.RemoveItems(c.items...); err != nil {
		return err
	}
	for i, item := range c.items {
		item.SetParent(c.parents[i])
	}
	markDeleted(c.undeleted, true)
	return c.clipboard.restore(c.saved)
}

// Redo implements Command.
func (c *Paste[T]) Redo() error {
	if err := c.clipboard.Clear(); err != nil {
		return err
	}
	c.undeleted = markDeleted(family(c.items), false)
	for _, item := range c.items {
		item.SetParent(c.parent)
	}
	return c.target.Extend(c.items...)
}

// Edit changes entity attributes through apply. The states of targets are
// captured around apply; undo and redo write them back. Collections are
// not touched.
type Edit struct {
	apply    func() error
	name     string
	targets  []domain.Entity
	snapshot Snapshot
}

// NewEdit creates a command running apply on targets.
func NewEdit(name string, targets []domain.Entity, apply func() error) *Edit {
	return &Edit{name: name, targets: targets, apply: apply}
}

// Name implements Command.
func (c *Edit) Name() string { return c.name }

// CanDo implements Command.
func (c *Edit) CanDo() bool { return len(c.targets) > 0 }

// Do implements Command. When apply fails the targets are restored.
func (c *Edit) Do() error {
	c.snapshot = Snapshot{}
	c.snapshot.Capture(c.targets...)
	if err := c.apply(); err != nil {
		return errors.Join(err, c.snapshot.Restore())
	}
	c.snapshot.CaptureAfter()
	return nil
}

// Undo implements Command.
func (c *Edit) Undo() error { return c.snapshot.Restore() }

// Redo implements Command.
func (c *Edit) Redo() error { return c.snapshot.Replay() }

// DragAndDrop moves items under a new parent, or to the root level when
// the parent is nil. Moving an item under itself or one of its
// descendants is refused.
type DragAndDrop[T collection.CompositeItem] struct {
	target     Target[T]
	newParent  domain.Composite
	items      []T
	oldParents []domain.Composite
}

// NewDragAndDrop creates a command moving items under parent. Pass nil
// to move the items to the root level.
func NewDragAndDrop[T collection.CompositeItem](target Target[T], parent domain.Composite, items ...T) *DragAndDrop[T] {
	return &DragAndDrop[T]{target: target, newParent: parent, items: topLevel(items)}
}

// Name implements Command.
func (c *DragAndDrop[T]) Name() string { return "Drag and drop" }

// Validate returns domain.ErrCycle when the move would put an item under
// itself or one of its descendants.
func (c *DragAndDrop[T]) Validate() error {
	if c.newParent == nil {
		return nil
	}
	for _, item := range c.items {
		if domain.Composite(item) == c.newParent || c.newParent.IsDescendantOf(item) {
			return fmt.Errorf("move %s under %s: %w", item.ID(), c.newParent.ID(), domain.ErrCycle)
		}
	}
	return nil
}

// CanDo implements Command.
func (c *DragAndDrop[T]) CanDo() bool {
	if len(c.items) == 0 || c.Validate() != nil {
		return false
	}
	for _, item := range c.items {
		if item.Parent() != c.newParent {
			return true
		}
	}
	return false
}

// Do implements Command.
func (c *DragAndDrop[T]) Do() error {
	if err := c.Validate(); err != nil {
		return err
	}
	c.oldParents = make([]domain.Composite, len(c.items))
	for i, item := range c.items {
		c.oldParents[i] = item.Parent()
	}
	return c.Redo()
}

// Undo implements Command.
func (c *DragAndDrop[T]) Undo() error {
	return c.move(func(i int) domain.Composite { return c.oldParents[i] })
}

// Redo implements Command.
func (c *DragAndDrop[T]) Redo() error {
	return c.move(func(int) domain.Composite { return c.newParent })
}

func (c *DragAndDrop[T]) move(parentOf func(i int) domain.Composite) error {
	if err := c.target.RemoveItems(c.items...); err != nil {
		return err
	}
	for i, item := range c.items {
		item.SetParent(parentOf(i))
	}
	return c.target.Extend(c.items...)
}

// topLevel drops items that have an ancestor among items.
func topLevel[T collection.CompositeItem](items []T) []T {
	selected := make(map[domain.Composite]struct{}, len(items))
	for _, item := range items {
		selected[item] = struct{}{}
	}
	out := make([]T, 0, len(items))
	for _, item := range items {
		nested := false
		for p := item.Parent(); p != nil; p = p.Parent() {
			if _, ok := selected[p]; ok {
				nested = true
				break
			}
		}
		if !nested {
			out = append(out, item)
		}
	}
	return out
}

// family returns items followed by their descendants of type T.
func family[T collection.CompositeItem](items []T) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		out = append(out, item)
		for _, child := range item.Children(true) {
			if t, ok := child.(T); ok {
				out = append(out, t)
			}
		}
	}
	return out
}

// markDeleted sets the tombstone flag of items and returns those whose
// flag changed.
func markDeleted[T domain.Entity](items []T, deleted bool) []T {
	var changed []T
	for _, item := range items {
		if item.MarkDeleted(deleted) {
			changed = append(changed, item)
		}
	}
	return changed
}
