// Package cli provides the command-line interface for tasktree.
package cli

import (
	"github.com/runoshun/tasktree/internal/app"
	"github.com/spf13/cobra"
)

// Command group IDs.
const (
	groupTask  = "task"
	groupTime  = "time"
	groupOther = "other"
)

// NewRootCommand creates the root command for tasktree.
// It receives the container for dependency injection and version for display.
func NewRootCommand(c *app.Container, version string) *cobra.Command {
	root := newCommandTree(newSession(c))
	root.Version = version
	root.AddCommand(newShellCommand(c))
	return root
}

// newCommandTree builds the commands shared by one-shot invocations and
// shell lines.
func newCommandTree(s *session) *cobra.Command {
	root := &cobra.Command{
		Use:   "tasktree",
		Short: "Hierarchical task and time tracking",
		Long: `tasktree keeps a tree of tasks with due dates, categories, time
tracking and notes in a single YAML file (tasktree.yaml) in the data
directory.

Tasks are addressed by any unique prefix of the ID shown by 'tasktree list'.
Use 'tasktree shell' for an interactive session with undo and redo.`,
		// SilenceUsage prevents usage from being printed on errors
		SilenceUsage: true,
		// SilenceErrors prevents Cobra from printing errors (we handle it in main)
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Annotations[annotationNoLoad] == "true" {
				return nil
			}
			return s.load()
		},
	}

	root.AddGroup(
		&cobra.Group{ID: groupTask, Title: "Task Management:"},
		&cobra.Group{ID: groupTime, Title: "Time Tracking:"},
		&cobra.Group{ID: groupOther, Title: "Notes and Settings:"},
	)

	// Task management commands
	for _, cmd := range []*cobra.Command{
		newListCommand(s),
		newNewCommand(s),
		newSubtaskCommand(s),
		newEditCommand(s),
		newCompleteCommand(s),
		newReopenCommand(s),
		newDeleteCommand(s),
		newMoveCommand(s),
		newCategoryCommand(s),
	} {
		cmd.GroupID = groupTask
		root.AddCommand(cmd)
	}

	// Time tracking commands
	for _, cmd := range []*cobra.Command{
		newTrackCommand(s),
		newEffortsCommand(s),
	} {
		cmd.GroupID = groupTime
		root.AddCommand(cmd)
	}

	// Notes and settings
	for _, cmd := range []*cobra.Command{
		newNoteCommand(s),
		newSettingsCommand(s),
	} {
		cmd.GroupID = groupOther
		root.AddCommand(cmd)
	}

	return root
}

// annotationNoLoad marks commands that run without reading the task file.
const annotationNoLoad = "tasktree/no-load"

func noLoad() map[string]string {
	return map[string]string{annotationNoLoad: "true"}
}
