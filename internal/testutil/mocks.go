// Package testutil provides test doubles shared by package tests.
package testutil

import (
	"fmt"
	"time"

	"github.com/runoshun/tasktree/internal/domain"
	"github.com/runoshun/tasktree/internal/event"
)

// MockClock is a test double for domain.Clock.
type MockClock struct {
	NowTime time.Time
}

// Now returns the configured time.
func (m *MockClock) Now() time.Time {
	return m.NowTime
}

// Advance moves the clock forward.
func (m *MockClock) Advance(d time.Duration) {
	m.NowTime = m.NowTime.Add(d)
}

// Recorder is an event.Observer that records what it receives.
type Recorder struct {
	Err    error // Returned from every OnEvent call
	Events []*event.Event
}

// NewRecorder creates a recorder registered for the given types on bus.
// With a non-nil source only events from that source are recorded.
func NewRecorder(bus *event.Bus, source any, types ...event.Type) *Recorder {
	r := &Recorder{}
	for _, typ := range types {
		if source == nil {
			bus.Register(r, typ)
		} else {
			bus.Register(r, typ, source)
		}
	}
	return r
}

// OnEvent records ev.
func (r *Recorder) OnEvent(ev *event.Event) error {
	r.Events = append(r.Events, ev)
	return r.Err
}

// Types returns the type of every recorded event in order.
func (r *Recorder) Types() []event.Type {
	types := make([]event.Type, 0, len(r.Events))
	for _, ev := range r.Events {
		types = append(types, ev.Type())
	}
	return types
}

// Count returns how many events of typ were recorded.
func (r *Recorder) Count(typ event.Type) int {
	n := 0
	for _, ev := range r.Events {
		if ev.Type() == typ {
			n++
		}
	}
	return n
}

// Reset forgets recorded events.
func (r *Recorder) Reset() {
	r.Events = nil
}

// MockLogger is a test double for domain.Logger.
type MockLogger struct {
	Lines []string
}

func (m *MockLogger) log(level, entityID, category, msg string) {
	m.Lines = append(m.Lines, fmt.Sprintf("[%s] [%s] [%s] %s", level, entityID, category, msg))
}

// Info records an info line.
func (m *MockLogger) Info(entityID, category, msg string) { m.log("INFO", entityID, category, msg) }

// Debug records a debug line.
func (m *MockLogger) Debug(entityID, category, msg string) { m.log("DEBUG", entityID, category, msg) }

// Warn records a warning line.
func (m *MockLogger) Warn(entityID, category, msg string) { m.log("WARN", entityID, category, msg) }

// Error records an error line.
func (m *MockLogger) Error(entityID, category, msg string) { m.log("ERROR", entityID, category, msg) }

// MockRepository is a test double for domain.Repository.
// Fields are ordered to minimize memory padding.
type MockRepository struct {
	LoadErr  error
	SaveErr  error
	Snapshot domain.Snapshot
	Saved    []domain.Snapshot
}

// Load returns the configured snapshot.
func (m *MockRepository) Load() (domain.Snapshot, error) {
	if m.LoadErr != nil {
		return domain.Snapshot{}, m.LoadErr
	}
	return m.Snapshot, nil
}

// Save records snap.
func (m *MockRepository) Save(snap domain.Snapshot) error {
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.Saved = append(m.Saved, snap)
	return nil
}
