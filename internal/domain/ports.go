package domain

import (
	"time"

	"github.com/runoshun/tasktree/internal/event"
)

// Clock provides time operations for testability.
type Clock interface {
	// Now returns the current time.
	Now() time.Time
}

// RealClock implements Clock using the system clock.
type RealClock struct{}

// Now returns the current time.
func (RealClock) Now() time.Time {
	return time.Now()
}

// Logger writes categorized log lines, optionally scoped to an entity.
// An empty entityID means the line is not about a particular entity.
type Logger interface {
	Info(entityID, category, msg string)
	Debug(entityID, category, msg string)
	Warn(entityID, category, msg string)
	Error(entityID, category, msg string)
}

// NopLogger discards everything.
type NopLogger struct{}

func (NopLogger) Info(string, string, string)  {}
func (NopLogger) Debug(string, string, string) {}
func (NopLogger) Warn(string, string, string)  {}
func (NopLogger) Error(string, string, string) {}

// Snapshot is the persisted content of a task file. Efforts are reached
// through their tasks.
type Snapshot struct {
	Tasks      []*Task
	Categories []*Category
	Notes      []*Note
}

// Attach sets bus on every entity of the snapshot, including efforts.
func (s Snapshot) Attach(bus *event.Bus) {
	for _, t := range s.Tasks {
		t.Attach(bus)
		for _, e := range t.efforts {
			e.Attach(bus)
		}
	}
	for _, c := range s.Categories {
		c.Attach(bus)
	}
	for _, n := range s.Notes {
		n.Attach(bus)
	}
}

// Repository persists snapshots.
type Repository interface {
	Load() (Snapshot, error)
	Save(snap Snapshot) error
}
