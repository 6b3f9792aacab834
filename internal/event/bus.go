package event

import (
	"errors"
	"fmt"
	"sync"
)

// ErrDisposed is returned by Notify after the bus has been disposed.
var ErrDisposed = errors.New("event bus disposed")

// Observer reacts to events it has been registered for.
// Observers must be comparable (typically pointers) so that registration
// can be idempotent and removal can find them.
type Observer interface {
	OnEvent(ev *Event) error
}

// ObserverFunc adapts a function to the Observer interface. Use Func to
// obtain a registrable value.
type ObserverFunc func(ev *Event) error

// Func wraps fn in a pointer so it can be registered and later removed by
// identity.
func Func(fn ObserverFunc) Observer {
	return &funcObserver{fn: fn}
}

type funcObserver struct {
	fn ObserverFunc
}

func (f *funcObserver) OnEvent(ev *Event) error {
	return f.fn(ev)
}

// ErrorLogger receives observer failures. domain.Logger satisfies it.
type ErrorLogger interface {
	Error(entityID, category, msg string)
}

// subscription is one observer registered for one type.
// Empty sources match every source.
type subscription struct {
	observer Observer
	sources  []any
}

func (s *subscription) match(sources []any) []any {
	if len(s.sources) == 0 {
		return sources
	}
	var matched []any
	for _, src := range sources {
		if containsSource(s.sources, src) {
			matched = append(matched, src)
		}
	}
	return matched
}

// Bus is the observer registry. One Bus is shared by everything in a
// running application; it is created by the application container and
// passed to every entity, collection and view.
//
// Dispatch is synchronous and depth-first: Notify does not return before
// every matching observer has run, and events sent by an observer are fully
// dispatched before the next observer of the outer event is called. The
// mutex only guards the subscription table; it is never held while an
// observer runs, so observers may register, remove or notify re-entrantly.
//
// An error returned by one observer does not stop the others. Each failure
// is logged and all failures are returned joined from Notify.
type Bus struct {
	logger   ErrorLogger
	subs     map[Type][]*subscription
	mu       sync.Mutex
	disposed bool
}

// NewBus creates a bus. logger may be nil.
func NewBus(logger ErrorLogger) *Bus {
	return &Bus{
		logger: logger,
		subs:   make(map[Type][]*subscription),
	}
}

// Register subscribes obs to events of type typ. With sources, only entries
// whose source equals one of them are delivered. Registering the same
// (observer, type, source) again has no effect; registering without sources
// widens an existing subscription to every source.
func (b *Bus) Register(obs Observer, typ Type, sources ...any) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.disposed {
		return
	}
	for _, sub := range b.subs[typ] {
		if sub.observer != obs {
			continue
		}
		if len(sources) == 0 || len(sub.sources) == 0 {
			sub.sources = nil
			return
		}
		for _, src := range sources {
			if !containsSource(sub.sources, src) {
				sub.sources = append(sub.sources, src)
			}
		}
		return
	}
	b.subs[typ] = append(b.subs[typ], &subscription{
		observer: obs,
		sources:  append([]any(nil), sources...),
	})
}

// Remove unsubscribes obs from the given types, or from every type when no
// type is given.
func (b *Bus) Remove(obs Observer, types ...Type) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(types) == 0 {
		for typ := range b.subs {
			b.removeLocked(obs, typ)
		}
		return
	}
	for _, typ := range types {
		b.removeLocked(obs, typ)
	}
}

// RemoveSource narrows the subscription of obs for typ by dropping source.
// A subscription left without sources is removed entirely instead of
// widening to every source.
func (b *Bus) RemoveSource(obs Observer, typ Type, source any) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, sub := range b.subs[typ] {
		if sub.observer != obs {
			continue
		}
		kept := make([]any, 0, len(sub.sources))
		for _, src := range sub.sources {
			if src != source {
				kept = append(kept, src)
			}
		}
		sub.sources = kept
		if len(sub.sources) == 0 {
			b.removeLocked(obs, typ)
		}
		return
	}
}

func (b *Bus) removeLocked(obs Observer, typ Type) {
	subs := b.subs[typ]
	for i, sub := range subs {
		if sub.observer == obs {
			// Copy so that snapshots taken by an ongoing dispatch stay intact.
			next := make([]*subscription, 0, len(subs)-1)
			next = append(next, subs[:i]...)
			next = append(next, subs[i+1:]...)
			if len(next) == 0 {
				delete(b.subs, typ)
			} else {
				b.subs[typ] = next
			}
			return
		}
	}
}

// Observers returns the observers registered for typ in registration order.
func (b *Bus) Observers(typ Type) []Observer {
	b.mu.Lock()
	defer b.mu.Unlock()

	observers := make([]Observer, 0, len(b.subs[typ]))
	for _, sub := range b.subs[typ] {
		observers = append(observers, sub.observer)
	}
	return observers
}

// IsRegistered returns true if obs observes typ for any source.
func (b *Bus) IsRegistered(obs Observer, typ Type) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, sub := range b.subs[typ] {
		if sub.observer == obs {
			return true
		}
	}
	return false
}

// Notify delivers ev. For every type in the event, in order of first
// appearance, each subscription of that type is called in registration
// order with the sub-event restricted to the type and its matching sources.
// Observers removed while the dispatch is running are not called anymore.
func (b *Bus) Notify(ev *Event) error {
	if ev.IsEmpty() {
		return nil
	}

	var errs []error
	for _, typ := range ev.Types() {
		subs, ok := b.snapshot(typ)
		if !ok {
			return ErrDisposed
		}
		sources := ev.SourcesOf(typ)
		for _, sub := range subs {
			if !b.active(typ, sub) {
				continue
			}
			matched := sub.match(sources)
			if len(matched) == 0 {
				continue
			}
			if err := sub.observer.OnEvent(ev.SubEvent(typ, matched...)); err != nil {
				b.logFailure(typ, err)
				errs = append(errs, fmt.Errorf("observe %s: %w", typ, err))
			}
		}
	}
	return errors.Join(errs...)
}

func (b *Bus) snapshot(typ Type) ([]*subscription, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.disposed {
		return nil, false
	}
	return b.subs[typ], true
}

func (b *Bus) active(typ Type, target *subscription) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, sub := range b.subs[typ] {
		if sub == target {
			return true
		}
	}
	return false
}

func (b *Bus) logFailure(typ Type, err error) {
	if b.logger == nil {
		return
	}
	b.logger.Error("", "event", fmt.Sprintf("observer of %s failed: %v", typ, err))
}

// Clear removes every subscription. Tests use it to reset state between
// cases.
func (b *Bus) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.subs = make(map[Type][]*subscription)
}

// Dispose clears the bus and makes it inert: later registrations are
// ignored and Notify returns ErrDisposed.
func (b *Bus) Dispose() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.subs = make(map[Type][]*subscription)
	b.disposed = true
}
