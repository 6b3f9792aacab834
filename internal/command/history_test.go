package command

import (
	"errors"
	"testing"

	"github.com/runoshun/tasktree/internal/event"
	"github.com/runoshun/tasktree/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCommand struct {
	err   error
	name  string
	calls []string
	noop  bool
}

func (c *fakeCommand) Name() string { return c.name }
func (c *fakeCommand) CanDo() bool  { return !c.noop }
func (c *fakeCommand) Do() error    { return c.call("do") }
func (c *fakeCommand) Undo() error  { return c.call("undo") }
func (c *fakeCommand) Redo() error  { return c.call("redo") }

func (c *fakeCommand) call(name string) error {
	c.calls = append(c.calls, name)
	return c.err
}

func TestHistory_DoUndoRedo(t *testing.T) {
	// Setup
	bus := event.NewBus(nil)
	logger := &testutil.MockLogger{}
	history := NewHistory(bus, logger)
	rec := testutil.NewRecorder(bus, history, event.HistoryChanged)
	cmd := &fakeCommand{name: "edit"}

	// Execute
	require.NoError(t, history.Do(cmd))
	require.NoError(t, history.Undo())
	require.NoError(t, history.Redo())

	// Assert
	assert.Equal(t, []string{"do", "undo", "redo"}, cmd.calls)
	assert.Equal(t, []Command{cmd}, history.History())
	assert.Empty(t, history.Future())
	assert.Equal(t, 3, rec.Count(event.HistoryChanged))
	assert.Len(t, logger.Lines, 3)
}

func TestHistory_DoClearsFuture(t *testing.T) {
	// Setup
	history := NewHistory(event.NewBus(nil), nil)
	first := &fakeCommand{name: "first"}
	second := &fakeCommand{name: "second"}
	require.NoError(t, history.Do(first))
	require.NoError(t, history.Undo())
	require.True(t, history.CanRedo())

	// Execute
	require.NoError(t, history.Do(second))

	// Assert
	assert.False(t, history.CanRedo())
	assert.Empty(t, history.Future())
	assert.Equal(t, "second", history.UndoName())
}

func TestHistory_UndoRedoNTimes(t *testing.T) {
	// Setup
	history := NewHistory(event.NewBus(nil), nil)
	cmds := []*fakeCommand{{name: "a"}, {name: "b"}, {name: "c"}}
	for _, cmd := range cmds {
		require.NoError(t, history.Do(cmd))
	}

	// Execute
	for range cmds {
		require.NoError(t, history.Undo())
	}
	assert.Equal(t, "a", history.RedoName())
	for range cmds {
		require.NoError(t, history.Redo())
	}

	// Assert
	assert.Equal(t, []Command{cmds[0], cmds[1], cmds[2]}, history.History())
	assert.Empty(t, history.Future())
}

func TestHistory_EmptyStacks(t *testing.T) {
	history := NewHistory(event.NewBus(nil), nil)

	assert.ErrorIs(t, history.Undo(), ErrNothingToUndo)
	assert.ErrorIs(t, history.Redo(), ErrNothingToRedo)
	assert.Empty(t, history.UndoName())
	assert.Empty(t, history.RedoName())
}

func TestHistory_SkipsCommandThatCannotDo(t *testing.T) {
	// Setup
	bus := event.NewBus(nil)
	history := NewHistory(bus, nil)
	rec := testutil.NewRecorder(bus, history, event.HistoryChanged)
	cmd := &fakeCommand{name: "noop", noop: true}

	// Execute
	err := history.Do(cmd)

	// Assert
	require.NoError(t, err)
	assert.Empty(t, cmd.calls)
	assert.False(t, history.CanUndo())
	assert.Empty(t, rec.Events)
}

func TestHistory_FailedCommandsLeaveStacksAlone(t *testing.T) {
	// Setup
	history := NewHistory(event.NewBus(nil), nil)
	boom := errors.New("boom")
	cmd := &fakeCommand{name: "edit"}
	require.NoError(t, history.Do(cmd))

	// Execute
	cmd.err = boom
	undoErr := history.Undo()
	doErr := history.Do(&fakeCommand{name: "broken", err: boom})

	// Assert
	assert.ErrorIs(t, undoErr, boom)
	assert.ErrorIs(t, doErr, boom)
	assert.Equal(t, []Command{cmd}, history.History())
	assert.Empty(t, history.Future())
}

func TestHistory_Clear(t *testing.T) {
	history := NewHistory(event.NewBus(nil), nil)
	require.NoError(t, history.Do(&fakeCommand{name: "a"}))
	require.NoError(t, history.Do(&fakeCommand{name: "b"}))
	require.NoError(t, history.Undo())

	require.NoError(t, history.Clear())

	assert.False(t, history.CanUndo())
	assert.False(t, history.CanRedo())
}
