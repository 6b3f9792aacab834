package view

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/runoshun/tasktree/internal/collection"
	"github.com/runoshun/tasktree/internal/domain"
	"github.com/runoshun/tasktree/internal/event"
	"github.com/runoshun/tasktree/internal/settings"
)

// ErrBucketNotFound is returned when an effort that the aggregator never
// saw is removed from it.
var ErrBucketNotFound = errors.New("effort is not in any bucket")

// EffortFeed keeps a list of the live efforts of every task in a task
// source. It is the raw record collection the aggregator observes.
type EffortFeed struct {
	tasks    collection.Source[*domain.Task]
	efforts  *collection.List[*domain.Effort]
	observer event.Observer
}

// NewEffortFeed creates a feed over tasks and fills it.
func NewEffortFeed(tasks collection.Source[*domain.Task]) *EffortFeed {
	f := &EffortFeed{
		tasks:   tasks,
		efforts: collection.NewList[*domain.Effort](tasks.Bus()),
	}
	f.observer = event.Func(func(*event.Event) error { return f.sync() })
	bus := tasks.Bus()
	bus.Register(f.observer, event.ItemsAdded, tasks)
	bus.Register(f.observer, event.ItemsRemoved, tasks)
	bus.Register(f.observer, event.TaskEfforts)
	_ = f.sync()
	return f
}

// Efforts returns the effort list.
func (f *EffortFeed) Efforts() *collection.List[*domain.Effort] {
	return f.efforts
}

// Dispose stops observing.
func (f *EffortFeed) Dispose() {
	f.tasks.Bus().Remove(f.observer)
}

// sync brings the list in line with the efforts of the tasks. Removals and
// additions are announced in one event.
func (f *EffortFeed) sync() error {
	want := make(map[*domain.Effort]struct{})
	var ordered []*domain.Effort
	for _, task := range f.tasks.Items() {
		if task.IsDeleted() {
			continue
		}
		for _, e := range task.Efforts() {
			want[e] = struct{}{}
			ordered = append(ordered, e)
		}
	}
	var stale []*domain.Effort
	for _, e := range f.efforts.Items() {
		if _, ok := want[e]; !ok {
			stale = append(stale, e)
		}
	}

	f.efforts.Suspend()
	errRemove := f.efforts.RemoveItems(stale...)
	errAdd := f.efforts.Extend(ordered...)
	return errors.Join(errRemove, errAdd, f.efforts.Resume())
}

// Bucket is a derived composite effort: every effort of one task, or of
// its descendants, that starts in one period.
type Bucket struct {
	task    *domain.Task
	start   time.Time
	efforts []*domain.Effort
}

// BucketState is a snapshot of a bucket. Buckets are derived, so the state
// cannot be written back.
type BucketState struct {
	Task    *domain.Task
	Start   time.Time
	Efforts []*domain.Effort
}

// StateKind implements domain.State.
func (BucketState) StateKind() domain.Kind { return domain.KindBucket }

// ID identifies the bucket by task and period.
func (b *Bucket) ID() string {
	return b.task.ID() + "@" + b.start.Format(time.DateOnly)
}

// Kind implements domain.Entity.
func (b *Bucket) Kind() domain.Kind { return domain.KindBucket }

// IsDeleted implements domain.Entity; a bucket is never a tombstone.
func (b *Bucket) IsDeleted() bool { return false }

// MarkDeleted implements domain.Entity and never changes anything.
func (b *Bucket) MarkDeleted(bool) bool { return false }

// State implements domain.Entity.
func (b *Bucket) State() domain.State {
	return BucketState{Task: b.task, Start: b.start, Efforts: slices.Clone(b.efforts)}
}

// SetState implements domain.Entity. Buckets are rebuilt from efforts, so
// every state is rejected.
func (b *Bucket) SetState(domain.State) error {
	return domain.ErrStateMismatch
}

// Task returns the task the bucket aggregates for.
func (b *Bucket) Task() *domain.Task { return b.task }

// Start returns the start of the period.
func (b *Bucket) Start() time.Time { return b.start }

// Efforts returns the efforts in the bucket.
func (b *Bucket) Efforts() []*domain.Effort { return slices.Clone(b.efforts) }

// Duration sums the effort durations.
func (b *Bucket) Duration(now time.Time) time.Duration {
	var total time.Duration
	for _, e := range b.efforts {
		total += e.Duration(now)
	}
	return total
}

// Revenue sums the effort revenues.
func (b *Bucket) Revenue(now time.Time) float64 {
	var total float64
	for _, e := range b.efforts {
		total += e.Revenue(now)
	}
	return total
}

// IsTracking returns true if one of the efforts is being tracked.
func (b *Bucket) IsTracking() bool {
	for _, e := range b.efforts {
		if e.IsTracking() {
			return true
		}
	}
	return false
}

// bucketKey identifies a bucket by task and period start.
type bucketKey struct {
	task   *domain.Task
	period int64
}

// EffortAggregator groups efforts into buckets per (task, period). An
// effort is counted in the bucket of its own task and in the bucket of
// every ancestor, so totals roll up the tree.
//
// Creating a bucket announces event.ItemsAdded on the aggregator, a bucket
// gaining or losing efforts announces event.BucketChanged on the bucket,
// and a bucket left empty is removed with event.ItemsRemoved.
//
// Keys include the task, so the bucket of a task and those of its
// ancestors never coincide. The aggregator remembers, per effort, which
// keys it was filed under; removal walks those keys and skips a bucket
// that is already gone.
type EffortAggregator struct {
	source   collection.Source[*domain.Effort]
	bus      *event.Bus
	period   domain.PeriodFunc
	buckets  map[bucketKey]*Bucket
	filed    map[*domain.Effort][]bucketKey
	observer event.Observer
	order    []*Bucket

	settings         *settings.Settings
	settingsObserver event.Observer
}

// NewEffortAggregator creates an aggregator over efforts grouped by period.
func NewEffortAggregator(efforts collection.Source[*domain.Effort], period domain.PeriodFunc) *EffortAggregator {
	a := &EffortAggregator{
		source:  efforts,
		bus:     efforts.Bus(),
		period:  period,
		buckets: make(map[bucketKey]*Bucket),
		filed:   make(map[*domain.Effort][]bucketKey),
	}
	a.observer = event.Func(a.onEvent)
	a.bus.Register(a.observer, event.ItemsAdded, efforts)
	a.bus.Register(a.observer, event.ItemsRemoved, efforts)
	for _, typ := range []event.Type{
		event.EffortStart, event.EffortStop, event.EffortTask, event.EffortDescription,
		event.TaskChildAdded, event.TaskChildRemoved,
	} {
		a.bus.Register(a.observer, typ)
	}

	ev := &event.Event{}
	for _, e := range efforts.Items() {
		a.addIn(ev, e)
	}
	_ = ev.Send(a.bus)
	return a
}

// ObserveSettings regroups the buckets whenever the effort period setting
// changes, until Dispose.
func (a *EffortAggregator) ObserveSettings(s *settings.Settings) {
	if a.settingsObserver != nil {
		a.settings.Unobserve(a.settingsObserver)
	}
	a.settings = s
	a.settingsObserver = event.Func(func(*event.Event) error {
		period, err := domain.ParsePeriod(s.Get(settings.KeyEffortPeriod))
		if err != nil {
			return err
		}
		return a.SetPeriod(period)
	})
	s.Observe(a.settingsObserver, settings.KeyEffortPeriod)
}

// Bus returns the bus the aggregator notifies.
func (a *EffortAggregator) Bus() *event.Bus { return a.bus }

// Items returns the buckets in creation order.
func (a *EffortAggregator) Items() []*Bucket { return slices.Clone(a.order) }

// Contains returns true if b is a current bucket.
func (a *EffortAggregator) Contains(b *Bucket) bool {
	return slices.Contains(a.order, b)
}

// Len returns the number of buckets.
func (a *EffortAggregator) Len() int { return len(a.order) }

// Bucket returns the bucket of task for the period containing at.
func (a *EffortAggregator) Bucket(task *domain.Task, at time.Time) (*Bucket, bool) {
	b, ok := a.buckets[bucketKey{task: task, period: a.period(at).UnixNano()}]
	return b, ok
}

// SetPeriod regroups every effort with a new period function.
func (a *EffortAggregator) SetPeriod(period domain.PeriodFunc) error {
	ev := &event.Event{}
	efforts := a.source.Items()
	for _, e := range efforts {
		if err := a.removeIn(ev, e); err != nil && !errors.Is(err, ErrBucketNotFound) {
			return err
		}
	}
	a.period = period
	for _, e := range efforts {
		a.addIn(ev, e)
	}
	return ev.Send(a.bus)
}

// Dispose stops observing the efforts and the settings.
func (a *EffortAggregator) Dispose() {
	a.bus.Remove(a.observer)
	if a.settingsObserver != nil {
		a.settings.Unobserve(a.settingsObserver)
		a.settingsObserver = nil
	}
}

func (a *EffortAggregator) onEvent(ev *event.Event) error {
	out := &event.Event{}
	switch ev.Type() {
	case event.ItemsAdded:
		for _, e := range event.ValuesAs[*domain.Effort](ev, a.source) {
			if _, known := a.filed[e]; !known {
				a.addIn(out, e)
			}
		}
	case event.ItemsRemoved:
		for _, e := range event.ValuesAs[*domain.Effort](ev, a.source) {
			if err := a.removeIn(out, e); err != nil {
				return err
			}
		}
	case event.TaskChildAdded, event.TaskChildRemoved:
		for _, e := range a.source.Items() {
			if _, known := a.filed[e]; !known {
				continue
			}
			if err := a.refileIn(out, e); err != nil {
				return err
			}
		}
	default:
		for _, src := range ev.Sources() {
			e, ok := src.(*domain.Effort)
			if !ok {
				continue
			}
			if _, known := a.filed[e]; !known {
				continue
			}
			if err := a.refileIn(out, e); err != nil {
				return err
			}
		}
	}
	return out.Send(a.bus)
}

// keysFor returns the keys of the buckets e belongs to: its task's and
// every ancestor's, for the period of its start.
func (a *EffortAggregator) keysFor(e *domain.Effort) []bucketKey {
	task := e.Task()
	if task == nil {
		return nil
	}
	period := a.period(e.Start()).UnixNano()
	keys := []bucketKey{{task: task, period: period}}
	for _, ancestor := range task.Ancestors() {
		if t, ok := ancestor.(*domain.Task); ok {
			keys = append(keys, bucketKey{task: t, period: period})
		}
	}
	return keys
}

func (a *EffortAggregator) addIn(ev *event.Event, e *domain.Effort) {
	keys := a.keysFor(e)
	for _, key := range keys {
		b, ok := a.buckets[key]
		if !ok {
			b = &Bucket{task: key.task, start: time.Unix(0, key.period).In(e.Start().Location())}
			b.efforts = append(b.efforts, e)
			a.buckets[key] = b
			a.order = append(a.order, b)
			ev.AddSource(a, event.ItemsAdded, b)
			continue
		}
		b.efforts = append(b.efforts, e)
		ev.AddSource(b, event.BucketChanged, e)
	}
	a.filed[e] = keys
}

func (a *EffortAggregator) removeIn(ev *event.Event, e *domain.Effort) error {
	keys, ok := a.filed[e]
	if !ok {
		return fmt.Errorf("remove effort %s: %w", e.ID(), ErrBucketNotFound)
	}
	delete(a.filed, e)
	for _, key := range keys {
		b, ok := a.buckets[key]
		if !ok {
			// Already removed earlier in the same regrouping.
			continue
		}
		idx := slices.Index(b.efforts, e)
		if idx < 0 {
			continue
		}
		b.efforts = slices.Delete(b.efforts, idx, idx+1)
		if len(b.efforts) > 0 {
			ev.AddSource(b, event.BucketChanged, e)
			continue
		}
		delete(a.buckets, key)
		a.order = slices.DeleteFunc(a.order, func(other *Bucket) bool { return other == b })
		ev.AddSource(a, event.ItemsRemoved, b)
	}
	return nil
}

// refileIn moves e to the buckets it belongs to now. When the keys did not
// change, its buckets announce a change instead.
func (a *EffortAggregator) refileIn(ev *event.Event, e *domain.Effort) error {
	if slices.Equal(a.filed[e], a.keysFor(e)) {
		for _, key := range a.filed[e] {
			if b, ok := a.buckets[key]; ok {
				ev.AddSource(b, event.BucketChanged, e)
			}
		}
		return nil
	}
	if err := a.removeIn(ev, e); err != nil {
		return err
	}
	a.addIn(ev, e)
	return nil
}
