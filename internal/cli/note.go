package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/runoshun/tasktree/internal/command"
	"github.com/runoshun/tasktree/internal/domain"
	"github.com/spf13/cobra"
)

// newNoteCommand creates the note command.
func newNoteCommand(s *session) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "note",
		Short: "Manage notes",
		Long:  `Manage free-form notes. Notes form a tree like tasks.`,
		// No RunE: shows subcommand list when called without arguments
	}

	cmd.AddCommand(newNoteAddCommand(s))
	cmd.AddCommand(newNoteListCommand(s))
	cmd.AddCommand(newNoteShowCommand(s))
	cmd.AddCommand(newNoteDeleteCommand(s))

	return cmd
}

func newNoteAddCommand(s *session) *cobra.Command {
	var parentID, description string

	cmd := &cobra.Command{
		Use:   "add <subject>",
		Short: "Create a note",
		Long: `Create a note.

Examples:
  tasktree note add "Meeting minutes" -d "$(cat minutes.txt)"
  tasktree note add --parent 9b1c04aa "Follow-up"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			subject := strings.TrimSpace(strings.Join(args, " "))
			if subject == "" {
				return errors.New("subject must not be empty")
			}

			var (
				op   command.Command
				note *domain.Note
			)
			if parentID == "" {
				add := command.NewNote(s.c.Bus, s.c.Notes, subject)
				op, note = add, add.Items()[0]
			} else {
				parent, err := s.findNote(parentID)
				if err != nil {
					return err
				}
				add := command.NewSubNote(s.c.Bus, s.c.Notes, parent, subject)
				op, note = add, add.Items()[0]
			}
			note.SetDescription(description)

			if err := s.apply(op); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Created note %s: %s\n", shortID(note.ID()), note.Subject())
			return nil
		},
	}

	cmd.Flags().StringVar(&parentID, "parent", "", "Parent note ID")
	cmd.Flags().StringVarP(&description, "description", "d", "", "Note text")

	return cmd
}

func newNoteListCommand(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show the note tree",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			roots := domain.Live(s.c.Notes.RootItems())
			if len(roots) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No notes.")
				return nil
			}
			renderNotes(cmd.OutOrStdout(), s.styles, roots, 0)
			return nil
		},
	}
}

func newNoteShowCommand(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "show <note-id>",
		Short: "Display a note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			note, err := s.findNote(args[0])
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			_, _ = fmt.Fprintln(w, s.styles.Header.Render(note.Subject()))
			if note.Description() != "" {
				_, _ = fmt.Fprintln(w)
				_, _ = fmt.Fprintln(w, note.Description())
			}
			return nil
		},
	}
}

func newNoteDeleteCommand(s *session) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <note-id>...",
		Aliases: []string{"rm"},
		Short:   "Delete notes with their sub-notes",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			notes := make([]*domain.Note, 0, len(args))
			for _, arg := range args {
				note, err := s.findNote(arg)
				if err != nil {
					return err
				}
				notes = append(notes, note)
			}
			del := command.NewDelete(s.c.Notes, notes...)
			if err := s.apply(del); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d note(s)\n", len(del.Items()))
			return nil
		},
	}
}
