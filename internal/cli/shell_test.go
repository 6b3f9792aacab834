package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (f *cliFixture) runShell(input string) (stdout, stderr string, err error) {
	root := NewRootCommand(f.c, "test-version")
	var out, errOut bytes.Buffer
	root.SetIn(strings.NewReader(input))
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs([]string{"shell"})
	err = root.Execute()
	return out.String(), errOut.String(), err
}

func TestShell_UndoRedo(t *testing.T) {
	// Setup
	f := newCLIFixture(t)
	input := strings.Join([]string{
		`new "Write report"`,
		`undo`,
		`list`,
		`redo`,
		`list`,
		`history`,
		`save`,
		`exit`,
	}, "\n")

	// Execute
	out, errOut, err := f.runShell(input)

	// Assert
	require.NoError(t, err)
	assert.Empty(t, errOut)
	assert.Contains(t, out, "Undid new task")
	assert.Contains(t, out, "No tasks.")
	assert.Contains(t, out, "Redid new task")
	assert.Contains(t, out, "  1  New task")
	assert.Contains(t, out, "Saved")
	f.task("Write report")
}

func TestShell_ChangesNeedSave(t *testing.T) {
	// Setup
	f := newCLIFixture(t)

	// Execute
	_, errOut, err := f.runShell("new Draft\nexit\nexit!\n")

	// Assert
	require.NoError(t, err)
	assert.Contains(t, errOut, ErrUnsavedChanges.Error())
	require.NoError(t, f.c.Load())
	assert.Zero(t, f.c.Tasks.Len())
}

func TestShell_UndoCompletionCascade(t *testing.T) {
	// Setup
	f := newCLIFixture(t)
	f.mustRun("new", "Parent")
	parentID := f.taskID("Parent")
	f.mustRun("subtask", parentID, "Child")
	input := strings.Join([]string{
		"complete " + parentID,
		"undo",
		"save",
		"exit",
	}, "\n")

	// Execute
	_, errOut, err := f.runShell(input)

	// Assert
	require.NoError(t, err)
	assert.Empty(t, errOut)
	assert.False(t, f.task("Parent").IsCompleted())
	assert.False(t, f.task("Child").IsCompleted())
}

func TestShell_CategoryListingIsReadOnly(t *testing.T) {
	// Setup
	f := newCLIFixture(t)
	f.mustRun("new", "Home chore")
	f.mustRun("new", "Work item")
	f.mustRun("category", "add", "home")
	f.mustRun("category", "assign", "home", f.taskID("Home chore"))

	// Execute
	out, errOut, err := f.runShell("list -c home\nlist\nexit\n")

	// Assert
	require.NoError(t, err)
	assert.Empty(t, errOut, "exit is accepted because nothing changed")
	assert.Equal(t, 2, strings.Count(out, "Home chore"))
	assert.Equal(t, 1, strings.Count(out, "Work item"), "the plain listing is unfiltered")
	require.NoError(t, f.c.Load())
	require.Equal(t, 1, f.c.Categories.Len())
	assert.False(t, f.c.Categories.Items()[0].IsFiltered())
}

func TestShell_ErrorsDoNotEndSession(t *testing.T) {
	// Setup
	f := newCLIFixture(t)

	// Execute
	out, errOut, err := f.runShell("complete ffffffff\nundo\nredo\nhistory\nshell\n\"unterminated\nexit\n")

	// Assert
	require.NoError(t, err)
	assert.Contains(t, errOut, "entity not found")
	assert.Contains(t, errOut, "already in a shell")
	assert.Contains(t, errOut, "unterminated quote")
	assert.Contains(t, out, "Nothing to undo.")
	assert.Contains(t, out, "Nothing to redo.")
	assert.Contains(t, out, "No changes.")
}

func TestShell_EndOfInputWarnsAboutUnsavedChanges(t *testing.T) {
	// Setup
	f := newCLIFixture(t)

	// Execute
	_, errOut, err := f.runShell("new Draft\n")

	// Assert
	require.NoError(t, err)
	assert.Contains(t, errOut, "unsaved changes were discarded")
}

func TestSplitArgs(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		want    []string
		wantErr bool
	}{
		{"plain words", "new Write report", []string{"new", "Write", "report"}, false},
		{"double quotes", `new "Write report" --due today`, []string{"new", "Write report", "--due", "today"}, false},
		{"single quotes keep backslashes", `note add 'a\b'`, []string{"note", "add", `a\b`}, false},
		{"escaped space", `new Write\ report`, []string{"new", "Write report"}, false},
		{"empty quotes", `edit x -d ""`, []string{"edit", "x", "-d", ""}, false},
		{"extra spaces", "  list   -a  ", []string{"list", "-a"}, false},
		{"unterminated quote", `new "oops`, nil, true},
		{"trailing escape", `new oops\`, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := splitArgs(tt.line)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
