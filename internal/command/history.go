// Package command implements undoable user actions and the history that
// undoes and redoes them.
package command

import (
	"errors"
	"fmt"
	"slices"

	"github.com/runoshun/tasktree/internal/domain"
	"github.com/runoshun/tasktree/internal/event"
)

// History errors.
var (
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrNothingToRedo = errors.New("nothing to redo")
)

// Command is an undoable user action.
//
// Do is only called when CanDo returns true. Redo must reproduce exactly
// what Do did, reusing the instances and values Do produced rather than
// computing them again.
type Command interface {
	Name() string
	CanDo() bool
	Do() error
	Undo() error
	Redo() error
}

// History holds done commands (most recent last) and undone commands that
// can be redone. Doing a new command discards the redo branch.
// Every change announces event.HistoryChanged with the history as source.
type History struct {
	bus     *event.Bus
	logger  domain.Logger
	history []Command
	future  []Command
}

// NewHistory creates an empty history.
func NewHistory(bus *event.Bus, logger domain.Logger) *History {
	if logger == nil {
		logger = domain.NopLogger{}
	}
	return &History{bus: bus, logger: logger}
}

// Do runs cmd and records it. A command that cannot be done is ignored.
// A command that fails is not recorded.
func (h *History) Do(cmd Command) error {
	if !cmd.CanDo() {
		h.logger.Debug("", "command", "skip "+cmd.Name()+": nothing to do")
		return nil
	}
	if err := cmd.Do(); err != nil {
		return fmt.Errorf("%s: %w", cmd.Name(), err)
	}
	h.history = append(h.history, cmd)
	h.future = nil
	h.logger.Info("", "command", "do "+cmd.Name())
	return h.changed()
}

// Undo undoes the most recent command and makes it redoable.
func (h *History) Undo() error {
	if len(h.history) == 0 {
		return ErrNothingToUndo
	}
	cmd := h.history[len(h.history)-1]
	if err := cmd.Undo(); err != nil {
		return fmt.Errorf("undo %s: %w", cmd.Name(), err)
	}
	h.history = h.history[:len(h.history)-1]
	h.future = append(h.future, cmd)
	h.logger.Info("", "command", "undo "+cmd.Name())
	return h.changed()
}

// Redo redoes the most recently undone command.
func (h *History) Redo() error {
	if len(h.future) == 0 {
		return ErrNothingToRedo
	}
	cmd := h.future[len(h.future)-1]
	if err := cmd.Redo(); err != nil {
		return fmt.Errorf("redo %s: %w", cmd.Name(), err)
	}
	h.future = h.future[:len(h.future)-1]
	h.history = append(h.history, cmd)
	h.logger.Info("", "command", "redo "+cmd.Name())
	return h.changed()
}

// CanUndo returns true if there is a command to undo.
func (h *History) CanUndo() bool { return len(h.history) > 0 }

// CanRedo returns true if there is a command to redo.
func (h *History) CanRedo() bool { return len(h.future) > 0 }

// UndoName returns the name of the command Undo would undo.
func (h *History) UndoName() string {
	if len(h.history) == 0 {
		return ""
	}
	return h.history[len(h.history)-1].Name()
}

// RedoName returns the name of the command Redo would redo.
func (h *History) RedoName() string {
	if len(h.future) == 0 {
		return ""
	}
	return h.future[len(h.future)-1].Name()
}

// History returns the done commands, most recent last.
func (h *History) History() []Command { return slices.Clone(h.history) }

// Future returns the undone commands, the next one to redo last.
func (h *History) Future() []Command { return slices.Clone(h.future) }

// Clear forgets every command.
func (h *History) Clear() error {
	h.history = nil
	h.future = nil
	return h.changed()
}

func (h *History) changed() error {
	return event.New(h, event.HistoryChanged).Send(h.bus)
}
