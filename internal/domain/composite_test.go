package domain

import (
	"testing"

	"github.com/runoshun/tasktree/internal/event"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComposite_AddChildIsSymmetric(t *testing.T) {
	bus := event.NewBus(nil)
	log := watch(bus, event.TaskChildAdded)
	parent := NewTask(bus, "parent")
	child := NewTask(bus, "child")

	parent.AddChild(child)

	assert.Equal(t, []Composite{child}, parent.Children(false))
	assert.Same(t, parent, child.ParentTask())
	require.Len(t, log.events, 1)
	assert.Equal(t, []any{child}, log.events[0].Values(parent))
}

func TestComposite_RemoveChildLeavesParentPointer(t *testing.T) {
	bus := event.NewBus(nil)
	log := watch(bus, event.TaskChildRemoved)
	parent := NewTask(bus, "parent")
	child := NewTask(bus, "child")
	parent.AddChild(child)

	require.NoError(t, parent.RemoveChild(child))

	assert.Empty(t, parent.Children(false))
	assert.Same(t, parent, child.ParentTask(), "parent pointer is intentionally stale")
	assert.Len(t, log.events, 1)
}

func TestComposite_RemoveAbsentChild(t *testing.T) {
	parent := NewTask(nil, "parent")
	stranger := NewTask(nil, "stranger")

	err := parent.RemoveChild(stranger)

	assert.ErrorIs(t, err, ErrChildNotFound)
}

func TestComposite_AncestorsAndFamily(t *testing.T) {
	root := NewTask(nil, "root")
	mid := NewTask(nil, "mid")
	leaf := NewTask(nil, "leaf")
	sibling := NewTask(nil, "sibling")
	root.AddChild(mid)
	mid.AddChild(leaf)
	root.AddChild(sibling)

	assert.Equal(t, []Composite{root, mid}, leaf.Ancestors())
	assert.Empty(t, root.Ancestors())
	assert.Equal(t, []Composite{mid, leaf, sibling}, root.Children(true))
	assert.Equal(t, []Composite{root, mid, leaf}, mid.Family())
	assert.True(t, leaf.IsDescendantOf(root))
	assert.False(t, root.IsDescendantOf(leaf))
	assert.Same(t, root, RootOf(leaf))
}

func TestComposite_ChildrenIsACopy(t *testing.T) {
	parent := NewNote(nil, "parent")
	child := NewNote(nil, "child")
	parent.AddChild(child)

	children := parent.Children(false)
	children[0] = nil

	assert.Equal(t, []*Note{child}, parent.ChildNotes(false))
}

func TestComposite_RestoreTreeAnnouncesDifferences(t *testing.T) {
	bus := event.NewBus(nil)
	parent := NewNote(bus, "parent")
	a := NewNote(bus, "a")
	b := NewNote(bus, "b")
	parent.AddChild(a)
	saved := parent.State()
	require.NoError(t, parent.RemoveChild(a))
	parent.AddChild(b)
	log := watch(bus, event.NoteChildAdded, event.NoteChildRemoved)

	require.NoError(t, parent.SetState(saved))

	assert.Equal(t, []*Note{a}, parent.ChildNotes(false))
	assert.Equal(t, []event.Type{event.NoteChildRemoved, event.NoteChildAdded}, log.types())
}

func TestLive(t *testing.T) {
	a := NewNote(nil, "a")
	b := NewNote(nil, "b")
	b.MarkDeleted(true)

	assert.Equal(t, []*Note{a}, Live([]*Note{a, b}))
}
