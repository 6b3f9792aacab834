package cli

import (
	"strings"
	"testing"
	"time"

	"github.com/runoshun/tasktree/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// New / Subtask Command Tests
// =============================================================================

func TestNewCommand_CreatesActiveRootTask(t *testing.T) {
	// Setup
	f := newCLIFixture(t)

	// Execute
	out := f.mustRun("new", "Write", "report")

	// Assert
	task := f.task("Write report")
	assert.Contains(t, out, "Created task "+shortID(task.ID()))
	assert.Nil(t, task.Parent())
	assert.True(t, task.StartDate().Equal(monday))
	assert.True(t, task.IsActive(monday))
}

func TestNewCommand_WithFlags(t *testing.T) {
	// Setup
	f := newCLIFixture(t)

	// Execute
	f.mustRun("new", "Prepare talk",
		"--due", "2024-03-06",
		"--priority", "2",
		"--budget", "90m",
		"--hourly-fee", "80",
		"--description", "slides and demo",
		"--start", "none",
	)

	// Assert
	task := f.task("Prepare talk")
	assert.Equal(t, "2024-03-06", task.DueDate().Format(time.DateOnly))
	assert.Equal(t, 2, task.Priority())
	assert.Equal(t, 90*time.Minute, task.Budget())
	assert.InDelta(t, 80.0, task.HourlyFee(), 0.001)
	assert.Equal(t, "slides and demo", task.Description())
	assert.True(t, task.StartDate().IsZero())
}

func TestNewCommand_InvalidInput(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"empty subject", []string{"new", "  "}},
		{"bad date", []string{"new", "Task", "--due", "next week"}},
		{"bad fee", []string{"new", "Task", "--hourly-fee", "-3"}},
		{"unknown parent", []string{"new", "Task", "--parent", "ffffffff"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Setup
			f := newCLIFixture(t)

			// Execute
			_, err := f.run(tt.args...)

			// Assert
			assert.Error(t, err)
			require.NoError(t, f.c.Load())
			assert.Zero(t, f.c.Tasks.Len())
		})
	}
}

func TestSubtaskCommand_RendersUnderParent(t *testing.T) {
	// Setup
	f := newCLIFixture(t)
	f.mustRun("new", "Parent")
	parentID := f.taskID("Parent")

	// Execute
	f.mustRun("subtask", parentID, "First")
	f.mustRun("new", "--parent", parentID, "Second")
	out := f.mustRun("list")

	// Assert
	parent := f.task("Parent")
	require.Len(t, parent.ChildTasks(false), 2)
	assert.Contains(t, out, "├─ First")
	assert.Contains(t, out, "└─ Second")
	assert.Less(t, strings.Index(out, "Parent"), strings.Index(out, "First"))
}

func TestSubtaskCommand_RefusesCompletedParent(t *testing.T) {
	// Setup
	f := newCLIFixture(t)
	f.mustRun("new", "Parent")
	parentID := f.taskID("Parent")
	f.mustRun("complete", parentID)

	// Execute
	_, err := f.run("subtask", parentID, "Child")

	// Assert
	assert.ErrorContains(t, err, "reopen it first")
}

func TestUnknownTaskID(t *testing.T) {
	// Setup
	f := newCLIFixture(t)

	// Execute
	_, err := f.run("complete", "ffffffff")

	// Assert
	assert.ErrorIs(t, err, domain.ErrEntityNotFound)
}

// =============================================================================
// List Command Tests
// =============================================================================

func TestListCommand_Empty(t *testing.T) {
	// Setup
	f := newCLIFixture(t)

	// Execute
	out := f.mustRun("list")

	// Assert
	assert.Contains(t, out, "No tasks.")
}

func TestListCommand_Filters(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    []string
		notWant []string
	}{
		{
			name: "default shows everything",
			args: []string{"list"},
			want: []string{"Buy milk", "Write report", "Pay rent"},
		},
		{
			name:    "hide completed",
			args:    []string{"list", "--hide-completed"},
			want:    []string{"Buy milk", "Write report"},
			notWant: []string{"Pay rent"},
		},
		{
			name:    "search",
			args:    []string{"list", "--search", "MILK"},
			want:    []string{"Buy milk"},
			notWant: []string{"Write report", "Pay rent"},
		},
		{
			name:    "regex search",
			args:    []string{"list", "--search", "^(Write|Pay)", "--regex"},
			want:    []string{"Write report", "Pay rent"},
			notWant: []string{"Buy milk"},
		},
		{
			name:    "category",
			args:    []string{"list", "--category", "home"},
			want:    []string{"Buy milk"},
			notWant: []string{"Write report", "Pay rent"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Setup
			f := newCLIFixture(t)
			f.mustRun("new", "Buy milk")
			f.mustRun("new", "Write report")
			f.mustRun("new", "Pay rent")
			f.mustRun("complete", f.taskID("Pay rent"))
			f.mustRun("category", "add", "home")
			f.mustRun("category", "assign", "home", f.taskID("Buy milk"))

			// Execute
			out := f.mustRun(tt.args...)

			// Assert
			for _, s := range tt.want {
				assert.Contains(t, out, s)
			}
			for _, s := range tt.notWant {
				assert.NotContains(t, out, s)
			}
		})
	}
}

func TestListCommand_SortsBySetting(t *testing.T) {
	// Setup
	f := newCLIFixture(t)
	f.mustRun("new", "Later", "--due", "2024-03-20")
	f.mustRun("new", "Sooner", "--due", "2024-03-05")

	// Execute
	bySubject := f.mustRun("list")
	byDue := f.mustRun("list", "--sort", "duedate")
	byDueDesc := f.mustRun("list", "--sort", "duedate", "--desc")

	// Assert
	assert.Less(t, strings.Index(bySubject, "Later"), strings.Index(bySubject, "Sooner"))
	assert.Less(t, strings.Index(byDue, "Sooner"), strings.Index(byDue, "Later"))
	assert.Less(t, strings.Index(byDueDesc, "Later"), strings.Index(byDueDesc, "Sooner"))
}

func TestListCommand_UnknownSortKey(t *testing.T) {
	// Setup
	f := newCLIFixture(t)

	// Execute
	_, err := f.run("list", "--sort", "colour")

	// Assert
	assert.ErrorContains(t, err, "unknown sort key")
}

func TestListCommand_ShowsTaskDetails(t *testing.T) {
	// Setup
	f := newCLIFixture(t)
	f.mustRun("new", "Report", "--due", "2024-03-05")
	f.mustRun("new", "Done")
	f.mustRun("complete", f.taskID("Done"))
	f.mustRun("track", "start", f.taskID("Report"))

	// Execute
	out := f.mustRun("list")

	// Assert
	assert.Contains(t, out, "due 2024-03-05")
	assert.Contains(t, out, "● tracking")
	assert.Contains(t, out, "done 2024-03-04")
}

// =============================================================================
// Edit / Complete / Reopen / Delete / Move Command Tests
// =============================================================================

func TestEditCommand(t *testing.T) {
	// Setup
	f := newCLIFixture(t)
	f.mustRun("new", "Draft", "--due", "2024-03-05")
	id := f.taskID("Draft")

	// Execute
	out := f.mustRun("edit", id, "--subject", "Final", "--due", "none", "--fixed-fee", "500")

	// Assert
	assert.Contains(t, out, "Updated 1 task(s)")
	task := f.task("Final")
	assert.True(t, task.DueDate().IsZero())
	assert.InDelta(t, 500.0, task.FixedFee(), 0.001)
}

func TestEditCommand_NoChanges(t *testing.T) {
	// Setup
	f := newCLIFixture(t)
	f.mustRun("new", "Draft")

	// Execute
	_, err := f.run("edit", f.taskID("Draft"))

	// Assert
	assert.ErrorContains(t, err, "no changes given")
}

func TestCompleteCommand_CompletesChildren(t *testing.T) {
	// Setup
	f := newCLIFixture(t)
	f.mustRun("new", "Parent")
	parentID := f.taskID("Parent")
	f.mustRun("subtask", parentID, "Child")

	// Execute
	out := f.mustRun("complete", parentID)

	// Assert
	assert.Contains(t, out, "Completed "+parentID)
	assert.True(t, f.task("Parent").CompletionDate().Equal(monday))
	assert.True(t, f.task("Child").CompletionDate().Equal(monday))
}

func TestCompleteCommand_CompletesParentWithLastChild(t *testing.T) {
	// Setup
	f := newCLIFixture(t)
	f.mustRun("new", "Parent")
	parentID := f.taskID("Parent")
	f.mustRun("subtask", parentID, "Only child")

	// Execute
	f.mustRun("complete", f.taskID("Only child"))

	// Assert
	assert.True(t, f.task("Parent").IsCompleted())
}

func TestCompleteCommand_AlreadyCompleted(t *testing.T) {
	// Setup
	f := newCLIFixture(t)
	f.mustRun("new", "Task")
	id := f.taskID("Task")
	f.mustRun("complete", id)

	// Execute
	_, err := f.run("complete", id)

	// Assert
	assert.ErrorIs(t, err, ErrNothingToDo)
}

func TestReopenCommand(t *testing.T) {
	// Setup
	f := newCLIFixture(t)
	f.mustRun("new", "Task")
	id := f.taskID("Task")
	f.mustRun("complete", id)

	// Execute
	out := f.mustRun("reopen", id)

	// Assert
	assert.Contains(t, out, "Reopened "+id)
	assert.False(t, f.task("Task").IsCompleted())
}

func TestDeleteCommand_RemovesSubtree(t *testing.T) {
	// Setup
	f := newCLIFixture(t)
	f.mustRun("new", "Parent")
	parentID := f.taskID("Parent")
	f.mustRun("subtask", parentID, "Child")
	f.mustRun("new", "Other")

	// Execute
	out := f.mustRun("delete", parentID)

	// Assert
	assert.Contains(t, out, "Deleted 1 task(s)")
	require.NoError(t, f.c.Load())
	require.Equal(t, 1, f.c.Tasks.Len())
	assert.Equal(t, "Other", f.c.Tasks.Items()[0].Subject())
}

func TestMoveCommand(t *testing.T) {
	// Setup
	f := newCLIFixture(t)
	f.mustRun("new", "A")
	f.mustRun("new", "B")
	aID, bID := f.taskID("A"), f.taskID("B")

	// Execute & Assert: move B under A
	f.mustRun("move", bID, "--parent", aID)
	assert.Equal(t, "A", f.task("B").ParentTask().Subject())

	// Execute & Assert: A under its own child is refused
	_, err := f.run("move", aID, "--parent", bID)
	assert.ErrorIs(t, err, domain.ErrCycle)

	// Execute & Assert: back to the top level
	f.mustRun("move", bID)
	assert.Nil(t, f.task("B").Parent())
}
