package command

import (
	"errors"
	"fmt"

	"github.com/runoshun/tasktree/internal/domain"
)

// Snapshot captures entity states so a command can restore them on undo
// and replay them on redo. Commands hold a Snapshot instead of
// implementing state handling themselves.
type Snapshot struct {
	entities []domain.Entity
	before   []domain.State
	after    []domain.State
}

// Capture records the current state of entities. Entities already
// captured are skipped.
func (s *Snapshot) Capture(entities ...domain.Entity) {
	for _, e := range entities {
		if s.has(e) {
			continue
		}
		s.entities = append(s.entities, e)
		s.before = append(s.before, e.State())
	}
}

// CaptureAfter records the state of every captured entity after the
// command ran, for Replay.
func (s *Snapshot) CaptureAfter() {
	s.after = make([]domain.State, len(s.entities))
	for i, e := range s.entities {
		s.after[i] = e.State()
	}
}

// Restore writes back the states recorded by Capture.
func (s *Snapshot) Restore() error {
	return s.apply(s.before)
}

// Replay writes back the states recorded by CaptureAfter.
func (s *Snapshot) Replay() error {
	if s.after == nil {
		return errors.New("snapshot replayed before CaptureAfter")
	}
	return s.apply(s.after)
}

// Entities returns the captured entities.
func (s *Snapshot) Entities() []domain.Entity {
	return s.entities
}

func (s *Snapshot) apply(states []domain.State) error {
	var errs []error
	for i, e := range s.entities {
		if err := e.SetState(states[i]); err != nil {
			errs = append(errs, fmt.Errorf("restore %s %s: %w", e.Kind(), e.ID(), err))
		}
	}
	return errors.Join(errs...)
}

func (s *Snapshot) has(e domain.Entity) bool {
	for _, known := range s.entities {
		if known == e {
			return true
		}
	}
	return false
}
