// Package domain contains the task-management entities and the ports the
// rest of the application depends on.
package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/runoshun/tasktree/internal/event"
)

// State is a snapshot of an entity's attributes. Commands capture it before
// mutating an entity and write it back on undo; persistence serializes it.
// SetState(State()) is always a no-op.
type State interface {
	StateKind() Kind
}

// Entity is anything that can be tracked, observed and undone.
type Entity interface {
	ID() string
	Kind() Kind
	IsDeleted() bool
	// MarkDeleted sets the tombstone flag and reports whether it changed.
	MarkDeleted(deleted bool) bool
	State() State
	SetState(state State) error
}

// Describable is an entity with a subject and a description.
type Describable interface {
	Entity
	Subject() string
	SetSubject(subject string) bool
	Description() string
	SetDescription(description string) bool
}

// Copier is an entity that can produce an unattached copy with a new ID.
type Copier interface {
	Entity
	Copy() Entity
}

// base holds the attributes shared by every entity.
// Fields are ordered to minimize memory padding.
type base struct {
	bus         *event.Bus
	self        Entity // Outer entity, used as event source
	id          string
	subject     string
	description string
	kind        Kind
	deleted     bool
}

func newBase(bus *event.Bus, kind Kind, id, subject string) base {
	if id == "" {
		id = uuid.NewString()
	}
	return base{
		bus:     bus,
		id:      id,
		subject: subject,
		kind:    kind,
	}
}

// ID returns the unique identifier.
func (b *base) ID() string {
	return b.id
}

// Kind returns the entity kind.
func (b *base) Kind() Kind {
	return b.kind
}

// Bus returns the bus the entity notifies.
func (b *base) Bus() *event.Bus {
	return b.bus
}

// Attach sets the bus of an entity built without one, typically by a
// loader that links entities before anyone observes them.
func (b *base) Attach(bus *event.Bus) {
	b.bus = bus
}

// Subject returns the subject.
func (b *base) Subject() string {
	return b.subject
}

// SetSubject changes the subject and reports whether it changed.
func (b *base) SetSubject(subject string) bool {
	return setValue(b, &b.subject, subject, AttrSubject)
}

// Description returns the description.
func (b *base) Description() string {
	return b.description
}

// SetDescription changes the description and reports whether it changed.
func (b *base) SetDescription(description string) bool {
	return setValue(b, &b.description, description, AttrDescription)
}

// IsDeleted returns the tombstone flag.
func (b *base) IsDeleted() bool {
	return b.deleted
}

// MarkDeleted sets the tombstone flag and reports whether it changed.
func (b *base) MarkDeleted(deleted bool) bool {
	return setValue(b, &b.deleted, deleted, AttrDeleted)
}

func (b *base) emit(attr Attribute, values ...any) {
	b.send(event.New(b.self, EventType(b.kind, attr), values...))
}

// send dispatches ev. Observer failures are logged by the bus and do not
// undo the change that caused them.
func (b *base) send(ev *event.Event) {
	if b.bus != nil {
		_ = b.bus.Notify(ev)
	}
}

// restore writes the shared attributes back through the setters, so only
// attributes that actually differ emit events.
func (b *base) restore(subject, description string, deleted bool) {
	b.SetSubject(subject)
	b.SetDescription(description)
	b.MarkDeleted(deleted)
}

// setValue assigns value to field and emits the attribute event when the
// value changed.
func setValue[V comparable](b *base, field *V, value V, attr Attribute) bool {
	if *field == value {
		return false
	}
	*field = value
	b.emit(attr, value)
	return true
}

// setTime is setValue for time.Time, compared with Equal.
func setTime(b *base, field *time.Time, value time.Time, attr Attribute) bool {
	value = value.Round(0)
	if field.Equal(value) {
		return false
	}
	*field = value
	b.emit(attr, value)
	return true
}

// Live filters out entities carrying the tombstone flag. It is the single
// place where deleted entities are hidden from owners and views.
func Live[T Entity](items []T) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if !item.IsDeleted() {
			out = append(out, item)
		}
	}
	return out
}

// FindByIDPrefix returns the single entity whose ID starts with prefix.
func FindByIDPrefix[T Entity](items []T, prefix string) (T, error) {
	var zero, found T
	matches := 0
	for _, item := range items {
		id := item.ID()
		if id == prefix {
			return item, nil
		}
		if len(prefix) > 0 && len(id) >= len(prefix) && id[:len(prefix)] == prefix {
			found = item
			matches++
		}
	}
	switch matches {
	case 0:
		return zero, ErrEntityNotFound
	case 1:
		return found, nil
	default:
		return zero, ErrAmbiguousID
	}
}
