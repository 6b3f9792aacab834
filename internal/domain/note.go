package domain

import (
	"slices"

	"github.com/runoshun/tasktree/internal/event"
)

// Note is a free-form text entry. Notes form their own tree.
type Note struct {
	compositeBase
}

// NoteState is the restorable state of a note.
type NoteState struct {
	Parent      Composite
	ID          string
	Subject     string
	Description string
	Children    []Composite
	Deleted     bool
}

// StateKind implements State.
func (NoteState) StateKind() Kind { return KindNote }

// NewNote creates a note with a new ID.
func NewNote(bus *event.Bus, subject string) *Note {
	return NewNoteWithID(bus, "", subject)
}

// NewNoteWithID creates a note with the given ID.
func NewNoteWithID(bus *event.Bus, id, subject string) *Note {
	n := &Note{}
	n.base = newBase(bus, KindNote, id, subject)
	n.self = n
	return n
}

// ChildNotes returns the child notes.
func (n *Note) ChildNotes(recursive bool) []*Note {
	return castAll[*Note](n.Children(recursive))
}

// State captures the note attributes and tree links.
func (n *Note) State() State {
	return NoteState{
		ID:          n.id,
		Subject:     n.subject,
		Description: n.description,
		Deleted:     n.deleted,
		Parent:      n.parent,
		Children:    slices.Clone(n.children),
	}
}

// SetState writes back a state captured from this note.
func (n *Note) SetState(state State) error {
	s, ok := state.(NoteState)
	if !ok || s.ID != n.id {
		return ErrStateMismatch
	}
	n.restore(s.Subject, s.Description, s.Deleted)
	n.restoreTree(s.Parent, s.Children)
	return nil
}

// Copy returns an unattached copy, including copies of the children.
func (n *Note) Copy() Entity {
	return n.copyNote()
}

func (n *Note) copyNote() *Note {
	c := NewNote(n.bus, n.subject)
	c.description = n.description
	for _, child := range n.ChildNotes(false) {
		if child.IsDeleted() {
			continue
		}
		cc := child.copyNote()
		cc.parent = c
		c.children = append(c.children, cc)
	}
	return c
}
