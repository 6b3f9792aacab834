package view

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"github.com/runoshun/tasktree/internal/collection"
	"github.com/runoshun/tasktree/internal/domain"
	"github.com/runoshun/tasktree/internal/event"
	"github.com/runoshun/tasktree/internal/settings"
)

// Comparator orders two items like cmp.Compare.
type Comparator[T any] func(a, b T) int

// Ordering builds the comparator for one sort pass. Comparators that read
// the clock capture it here, so every comparison of a pass sees the same
// instant.
type Ordering[T any] func() Comparator[T]

// Fixed returns an Ordering that always uses compare.
func Fixed[T any](compare Comparator[T]) Ordering[T] {
	return func() Comparator[T] { return compare }
}

// Sorter holds the items of its source in comparator order.
//
// The order is re-derived when items are added, when the comparator
// changes and when an item announces one of the key event types the
// comparator depends on. Removal never reorders the survivors. Reordering
// is stable and announces event.Sorted only when the order changed.
type Sorter[T collection.Item] struct {
	source      collection.Source[T]
	bus         *event.Bus
	owner       any
	ordering    Ordering[T]
	members     map[T]struct{}
	observer    event.Observer
	keyObserver event.Observer
	items       []T
	keyTypes    []event.Type
}

// NewSorter creates a sorter over source. keyTypes are the attribute
// events that can change the outcome of the comparators ordering builds.
func NewSorter[T collection.Item](source collection.Source[T], ordering Ordering[T], keyTypes ...event.Type) *Sorter[T] {
	s := &Sorter[T]{
		source:   source,
		bus:      source.Bus(),
		ordering: ordering,
		members:  make(map[T]struct{}),
	}
	s.owner = s
	s.observer = event.Func(s.onSourceChanged)
	s.keyObserver = event.Func(s.onKeyChanged)

	s.bus.Register(s.observer, event.ItemsAdded, source)
	s.bus.Register(s.observer, event.ItemsRemoved, source)
	for _, item := range source.Items() {
		s.members[item] = struct{}{}
		s.items = append(s.items, item)
	}
	s.sort(s.items)
	s.subscribe(keyTypes)
	return s
}

// Bus returns the bus the sorter notifies.
func (s *Sorter[T]) Bus() *event.Bus { return s.bus }

// Items returns the items in sorted order.
func (s *Sorter[T]) Items() []T { return slices.Clone(s.items) }

// Contains returns true if item is in the source.
func (s *Sorter[T]) Contains(item T) bool {
	_, ok := s.members[item]
	return ok
}

// Len returns the number of items.
func (s *Sorter[T]) Len() int { return len(s.items) }

// KeyTypes returns the event types the sorter currently observes for
// attribute changes.
func (s *Sorter[T]) KeyTypes() []event.Type {
	return slices.Clone(s.keyTypes)
}

// SetOrdering replaces the ordering and its key event types, then
// resorts.
func (s *Sorter[T]) SetOrdering(ordering Ordering[T], keyTypes ...event.Type) error {
	s.ordering = ordering
	s.subscribe(keyTypes)
	return s.Reset()
}

// Reset resorts the items and announces event.Sorted if the order changed.
func (s *Sorter[T]) Reset() error {
	sorted := slices.Clone(s.items)
	s.sort(sorted)
	if slices.Equal(sorted, s.items) {
		return nil
	}
	s.items = sorted
	return event.New(s.owner, event.Sorted).Send(s.bus)
}

// Dispose stops observing.
func (s *Sorter[T]) Dispose() {
	s.bus.Remove(s.observer)
	s.bus.Remove(s.keyObserver)
}

func (s *Sorter[T]) sort(items []T) {
	slices.SortStableFunc(items, s.ordering())
}

func (s *Sorter[T]) subscribe(keyTypes []event.Type) {
	if len(s.keyTypes) > 0 {
		s.bus.Remove(s.keyObserver, s.keyTypes...)
	}
	s.keyTypes = slices.Clone(keyTypes)
	for _, typ := range s.keyTypes {
		s.bus.Register(s.keyObserver, typ)
	}
}

func (s *Sorter[T]) onSourceChanged(ev *event.Event) error {
	items := event.ValuesAs[T](ev, s.source)
	var changed []T
	switch ev.Type() {
	case event.ItemsAdded:
		for _, item := range items {
			if _, ok := s.members[item]; !ok {
				s.members[item] = struct{}{}
				s.items = append(s.items, item)
				changed = append(changed, item)
			}
		}
		s.sort(s.items)
	case event.ItemsRemoved:
		for _, item := range items {
			if _, ok := s.members[item]; ok {
				delete(s.members, item)
				changed = append(changed, item)
			}
		}
		s.items = slices.DeleteFunc(s.items, func(item T) bool {
			_, ok := s.members[item]
			return !ok
		})
	}
	if len(changed) == 0 {
		return nil
	}
	return event.New(s.owner, ev.Type(), anys(changed)...).Send(s.bus)
}

// onKeyChanged resorts unless the event only concerns items of type T
// that are not in this sorter. Sources of other types, such as efforts
// changing a task's time spent, always resort.
func (s *Sorter[T]) onKeyChanged(ev *event.Event) error {
	for _, src := range ev.Sources() {
		item, ok := src.(T)
		if !ok || s.Contains(item) {
			return s.Reset()
		}
	}
	return nil
}

// TaskOrder describes how tasks are sorted.
type TaskOrder struct {
	Attribute     domain.Attribute
	Ascending     bool
	CaseSensitive bool
	StatusFirst   bool // Active before inactive before completed, whatever the key
}

// ParseTaskOrder reads the sort settings.
func ParseTaskOrder(s *settings.Settings) TaskOrder {
	attr, ok := domain.ParseAttribute(s.Get(settings.KeySortBy))
	if s.Get(settings.KeySortBy) == "timespent" {
		attr, ok = domain.AttrEfforts, true
	}
	if !ok || taskKeys[attr] == nil {
		attr = domain.AttrSubject
	}
	return TaskOrder{
		Attribute:     attr,
		Ascending:     s.Bool(settings.KeySortAscending),
		CaseSensitive: s.Bool(settings.KeySortCaseSensitive),
		StatusFirst:   s.Bool(settings.KeySortByStatusFirst),
	}
}

type taskKey func(a, b *domain.Task, o TaskOrder, now time.Time) int

var taskKeys = map[domain.Attribute]taskKey{
	domain.AttrSubject: func(a, b *domain.Task, o TaskOrder, _ time.Time) int {
		return compareText(a.Subject(), b.Subject(), o.CaseSensitive)
	},
	domain.AttrDescription: func(a, b *domain.Task, o TaskOrder, _ time.Time) int {
		return compareText(a.Description(), b.Description(), o.CaseSensitive)
	},
	domain.AttrStartDate: func(a, b *domain.Task, _ TaskOrder, _ time.Time) int {
		return compareDates(a.StartDate(), b.StartDate())
	},
	domain.AttrDueDate: func(a, b *domain.Task, _ TaskOrder, _ time.Time) int {
		return compareDates(a.DueDate(), b.DueDate())
	},
	domain.AttrCompletionDate: func(a, b *domain.Task, _ TaskOrder, _ time.Time) int {
		return compareDates(a.CompletionDate(), b.CompletionDate())
	},
	domain.AttrPriority: func(a, b *domain.Task, _ TaskOrder, _ time.Time) int {
		return cmp.Compare(a.Priority(), b.Priority())
	},
	domain.AttrBudget: func(a, b *domain.Task, _ TaskOrder, _ time.Time) int {
		return cmp.Compare(a.Budget(), b.Budget())
	},
	domain.AttrHourlyFee: func(a, b *domain.Task, _ TaskOrder, _ time.Time) int {
		return cmp.Compare(a.HourlyFee(), b.HourlyFee())
	},
	domain.AttrFixedFee: func(a, b *domain.Task, _ TaskOrder, _ time.Time) int {
		return cmp.Compare(a.FixedFee(), b.FixedFee())
	},
	domain.AttrEfforts: func(a, b *domain.Task, _ TaskOrder, now time.Time) int {
		return cmp.Compare(a.TimeSpent(now, true), b.TimeSpent(now, true))
	},
	domain.AttrCategories: func(a, b *domain.Task, o TaskOrder, _ time.Time) int {
		return compareText(categoryNames(a), categoryNames(b), o.CaseSensitive)
	},
}

// TaskComparator builds the comparator for o at now. With StatusFirst the
// (completed, inactive) pair is compared before the key, and descending
// order reverses the whole tuple.
func TaskComparator(o TaskOrder, now time.Time) Comparator[*domain.Task] {
	key := taskKeys[o.Attribute]
	if key == nil {
		key = taskKeys[domain.AttrSubject]
	}
	return func(a, b *domain.Task) int {
		c := 0
		if o.StatusFirst {
			c = cmp.Or(
				compareBool(a.IsCompleted(), b.IsCompleted()),
				compareBool(a.IsInactive(now), b.IsInactive(now)),
			)
		}
		if c == 0 {
			c = key(a, b, o, now)
		}
		if !o.Ascending {
			c = -c
		}
		return c
	}
}

// TaskOrdering reads the clock once per sort pass and compares with
// TaskComparator.
func TaskOrdering(o TaskOrder, clock domain.Clock) Ordering[*domain.Task] {
	return func() Comparator[*domain.Task] {
		return TaskComparator(o, clock.Now())
	}
}

// TaskKeyTypes returns the events that can change the outcome of the
// comparator for o.
func TaskKeyTypes(o TaskOrder) []event.Type {
	var types []event.Type
	switch o.Attribute {
	case domain.AttrEfforts:
		types = append(types, event.TaskEfforts, event.TaskTracking, event.EffortStart, event.EffortStop)
	default:
		types = append(types, domain.EventType(domain.KindTask, o.Attribute))
	}
	if o.StatusFirst {
		for _, typ := range []event.Type{event.TaskCompletionDate, event.TaskStartDate} {
			if !slices.Contains(types, typ) {
				types = append(types, typ)
			}
		}
	}
	return types
}

// TaskSorter is a Sorter of tasks configured from the sort settings.
type TaskSorter struct {
	*Sorter[*domain.Task]
	settings         *settings.Settings
	clock            domain.Clock
	settingsObserver event.Observer
	order            TaskOrder
}

// NewTaskSorter creates a task sorter over tasks that follows the sort
// settings as they change.
func NewTaskSorter(tasks collection.Source[*domain.Task], s *settings.Settings, clock domain.Clock) *TaskSorter {
	ts := &TaskSorter{settings: s, clock: clock, order: ParseTaskOrder(s)}
	ts.Sorter = NewSorter(tasks, TaskOrdering(ts.order, clock), TaskKeyTypes(ts.order)...)
	ts.owner = ts
	ts.settingsObserver = event.Func(func(*event.Event) error {
		return ts.SetOrder(ParseTaskOrder(s))
	})
	s.Observe(ts.settingsObserver,
		settings.KeySortBy, settings.KeySortAscending,
		settings.KeySortCaseSensitive, settings.KeySortByStatusFirst,
	)
	return ts
}

// Order returns the current order.
func (ts *TaskSorter) Order() TaskOrder {
	return ts.order
}

// SetOrder changes the order and resorts.
func (ts *TaskSorter) SetOrder(o TaskOrder) error {
	ts.order = o
	return ts.SetOrdering(TaskOrdering(o, ts.clock), TaskKeyTypes(o)...)
}

// RootItems returns the sorted tasks whose parent is not in the view.
func (ts *TaskSorter) RootItems() []*domain.Task {
	return collection.RootItems[*domain.Task](ts)
}

// Dispose stops observing.
func (ts *TaskSorter) Dispose() {
	ts.Sorter.Dispose()
	ts.bus.Remove(ts.settingsObserver)
}

func compareText(a, b string, caseSensitive bool) int {
	if !caseSensitive {
		a, b = strings.ToLower(a), strings.ToLower(b)
	}
	return strings.Compare(a, b)
}

// compareDates orders unset dates after every set date.
func compareDates(a, b time.Time) int {
	switch {
	case a.IsZero() && b.IsZero():
		return 0
	case a.IsZero():
		return 1
	case b.IsZero():
		return -1
	default:
		return a.Compare(b)
	}
}

func compareBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case a:
		return 1
	default:
		return -1
	}
}

func categoryNames(t *domain.Task) string {
	var names []string
	for _, c := range t.Categories() {
		names = append(names, c.Subject())
	}
	slices.Sort(names)
	return strings.Join(names, ", ")
}
