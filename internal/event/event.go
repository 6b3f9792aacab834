// Package event provides the publish/subscribe core: the Event value that
// describes what changed for whom, and the Bus that delivers it synchronously
// to registered observers.
package event

// entry is one (source, type) pair with its attached values.
type entry struct {
	source any
	values []any
	typ    Type
}

// Event carries one or more (source, type, values) entries that are
// dispatched together. A single logical change, such as adding a child to a
// parent, may announce different types on different sources without
// observers seeing two separate dispatch passes.
//
// Sources must be comparable: entities and collections are pointers, setting
// keys are small structs.
type Event struct {
	entries []entry
}

// New creates an event with a single entry.
func New(source any, typ Type, values ...any) *Event {
	return (&Event{}).AddSource(source, typ, values...)
}

// AddSource attaches values for (source, typ). Values for a pair that is
// already present are appended, keeping their order. It returns the event to
// allow chaining.
func (e *Event) AddSource(source any, typ Type, values ...any) *Event {
	for i := range e.entries {
		if e.entries[i].typ == typ && e.entries[i].source == source {
			e.entries[i].values = append(e.entries[i].values, values...)
			return e
		}
	}
	e.entries = append(e.entries, entry{
		source: source,
		typ:    typ,
		values: append([]any(nil), values...),
	})
	return e
}

// IsEmpty returns true if the event has no entries.
func (e *Event) IsEmpty() bool {
	return e == nil || len(e.entries) == 0
}

// Type returns the type of the first entry. Observers receive sub-events
// restricted to a single type, so for them this is the type they observe.
func (e *Event) Type() Type {
	if e.IsEmpty() {
		return TypeNone
	}
	return e.entries[0].typ
}

// Source returns the source of the first entry.
func (e *Event) Source() any {
	if e.IsEmpty() {
		return nil
	}
	return e.entries[0].source
}

// Types returns the distinct types in order of first appearance.
func (e *Event) Types() []Type {
	if e == nil {
		return nil
	}
	var types []Type
	seen := make(map[Type]bool)
	for _, en := range e.entries {
		if !seen[en.typ] {
			seen[en.typ] = true
			types = append(types, en.typ)
		}
	}
	return types
}

// Sources returns the distinct sources in order of first appearance.
func (e *Event) Sources() []any {
	if e == nil {
		return nil
	}
	var sources []any
	for _, en := range e.entries {
		if !containsSource(sources, en.source) {
			sources = append(sources, en.source)
		}
	}
	return sources
}

// SourcesOf returns the sources that have an entry of the given type.
func (e *Event) SourcesOf(typ Type) []any {
	if e == nil {
		return nil
	}
	var sources []any
	for _, en := range e.entries {
		if en.typ == typ {
			sources = append(sources, en.source)
		}
	}
	return sources
}

// Values returns every value attached for source, across all types, in
// entry order.
func (e *Event) Values(source any) []any {
	if e == nil {
		return nil
	}
	var values []any
	for _, en := range e.entries {
		if en.source == source {
			values = append(values, en.values...)
		}
	}
	return values
}

// ValuesOf returns the values attached for (source, typ).
func (e *Event) ValuesOf(source any, typ Type) []any {
	if e == nil {
		return nil
	}
	for _, en := range e.entries {
		if en.typ == typ && en.source == source {
			return append([]any(nil), en.values...)
		}
	}
	return nil
}

// Value returns the first value attached for source, or nil.
func (e *Event) Value(source any) any {
	values := e.Values(source)
	if len(values) == 0 {
		return nil
	}
	return values[0]
}

// SubEvent returns a new event restricted to typ and the given sources.
// Without sources every source of typ is kept.
func (e *Event) SubEvent(typ Type, sources ...any) *Event {
	sub := &Event{}
	if e == nil {
		return sub
	}
	for _, en := range e.entries {
		if en.typ != typ {
			continue
		}
		if len(sources) > 0 && !containsSource(sources, en.source) {
			continue
		}
		sub.entries = append(sub.entries, entry{
			source: en.source,
			typ:    en.typ,
			values: append([]any(nil), en.values...),
		})
	}
	return sub
}

// Merge appends all entries of other into e.
func (e *Event) Merge(other *Event) *Event {
	if other == nil {
		return e
	}
	for _, en := range other.entries {
		e.AddSource(en.source, en.typ, en.values...)
	}
	return e
}

// Send dispatches the event on bus. A nil bus or an empty event is a no-op.
func (e *Event) Send(bus *Bus) error {
	if bus == nil || e.IsEmpty() {
		return nil
	}
	return bus.Notify(e)
}

// ValuesAs returns the values attached for source that have type T.
func ValuesAs[T any](e *Event, source any) []T {
	var out []T
	for _, v := range e.Values(source) {
		if t, ok := v.(T); ok {
			out = append(out, t)
		}
	}
	return out
}

// AllValuesAs returns the values of every entry that have type T, in entry
// order.
func AllValuesAs[T any](e *Event) []T {
	if e == nil {
		return nil
	}
	var out []T
	for _, en := range e.entries {
		for _, v := range en.values {
			if t, ok := v.(T); ok {
				out = append(out, t)
			}
		}
	}
	return out
}

func containsSource(sources []any, source any) bool {
	for _, s := range sources {
		if s == source {
			return true
		}
	}
	return false
}
