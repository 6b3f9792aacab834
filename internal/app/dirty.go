package app

import (
	"github.com/runoshun/tasktree/internal/domain"
	"github.com/runoshun/tasktree/internal/event"
)

// Dirty tracks whether anything changed since the last load or save.
type Dirty struct {
	bus      *event.Bus
	observer event.Observer
	dirty    bool
}

// NewDirty observes every entity change and membership changes of the
// given collections.
func NewDirty(bus *event.Bus, collections ...any) *Dirty {
	d := &Dirty{bus: bus}
	d.observer = event.Func(func(*event.Event) error {
		d.dirty = true
		return nil
	})
	for _, kind := range []domain.Kind{domain.KindTask, domain.KindEffort, domain.KindNote, domain.KindCategory} {
		for _, typ := range domain.EventTypes(kind) {
			bus.Register(d.observer, typ)
		}
	}
	if len(collections) > 0 {
		bus.Register(d.observer, event.ItemsAdded, collections...)
		bus.Register(d.observer, event.ItemsRemoved, collections...)
	}
	return d
}

// IsDirty returns true if something changed since the last Reset.
func (d *Dirty) IsDirty() bool { return d.dirty }

// Reset marks the state as saved.
func (d *Dirty) Reset() { d.dirty = false }

// Dispose stops tracking.
func (d *Dirty) Dispose() { d.bus.Remove(d.observer) }
