package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/runoshun/tasktree/internal/app"
	"github.com/spf13/cobra"
)

// ErrUnsavedChanges is returned when leaving the shell with changes that
// were not saved.
var ErrUnsavedChanges = errors.New("unsaved changes (run save, or exit! to discard them)")

// newShellCommand creates the shell command.
func newShellCommand(c *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Interactive session with undo and redo",
		Long: `Start an interactive session. Every tasktree command can be typed
without the leading 'tasktree'. Changes are kept in memory until 'save'.

Session commands:
  undo       Undo the last change
  redo       Redo the last undone change
  history    Show the changes that can be undone and redone
  save       Write the task file
  exit       Leave the session (refused with unsaved changes)
  exit!      Leave the session and discard unsaved changes`,
		GroupID:     groupOther,
		Annotations: noLoad(),
		Args:        cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s := newSession(c)
			s.autoSave = false
			if err := s.load(); err != nil {
				return err
			}
			sh := &shell{
				s:      s,
				in:     bufio.NewScanner(cmd.InOrStdin()),
				out:    cmd.OutOrStdout(),
				errOut: cmd.ErrOrStderr(),
			}
			return sh.run()
		},
	}
}

// shell reads command lines and runs them against one session.
type shell struct {
	s      *session
	in     *bufio.Scanner
	out    io.Writer
	errOut io.Writer
}

func (sh *shell) run() error {
	for {
		sh.prompt()
		if !sh.in.Scan() {
			break
		}
		line := strings.TrimSpace(sh.in.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		args, err := splitArgs(line)
		if err != nil {
			sh.printErr(err)
			continue
		}
		done, err := sh.exec(args)
		if err != nil {
			sh.printErr(err)
		}
		if done {
			return nil
		}
	}
	if err := sh.in.Err(); err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	if sh.s.c.Dirty.IsDirty() {
		_, _ = fmt.Fprintln(sh.errOut, "Warning: input ended, unsaved changes were discarded")
	}
	return nil
}

func (sh *shell) prompt() {
	p := "tasktree> "
	if sh.s.c.Dirty.IsDirty() {
		p = "tasktree*> "
	}
	_, _ = fmt.Fprint(sh.out, sh.s.styles.Header.Render(p))
}

func (sh *shell) printErr(err error) {
	_, _ = fmt.Fprintln(sh.errOut, sh.s.styles.ErrorMsg.Render("Error: "+err.Error()))
}

// exec runs one line and reports whether the session is over.
func (sh *shell) exec(args []string) (bool, error) {
	c := sh.s.c
	switch args[0] {
	case "exit", "quit":
		if c.Dirty.IsDirty() {
			return false, ErrUnsavedChanges
		}
		return true, nil
	case "exit!", "quit!":
		return true, nil
	case "undo":
		if !c.History.CanUndo() {
			_, _ = fmt.Fprintln(sh.out, "Nothing to undo.")
			return false, nil
		}
		name := c.History.UndoName()
		if err := c.History.Undo(); err != nil {
			return false, err
		}
		_, _ = fmt.Fprintf(sh.out, "Undid %s\n", strings.ToLower(name))
		return false, nil
	case "redo":
		if !c.History.CanRedo() {
			_, _ = fmt.Fprintln(sh.out, "Nothing to redo.")
			return false, nil
		}
		name := c.History.RedoName()
		if err := c.History.Redo(); err != nil {
			return false, err
		}
		_, _ = fmt.Fprintf(sh.out, "Redid %s\n", strings.ToLower(name))
		return false, nil
	case "history":
		sh.printHistory()
		return false, nil
	case "save":
		if err := c.Save(); err != nil {
			return false, err
		}
		_, _ = fmt.Fprintln(sh.out, sh.s.styles.Info.Render("Saved "+c.Config.StorePath))
		return false, nil
	case "shell":
		return false, errors.New("already in a shell")
	}

	root := newCommandTree(sh.s)
	root.SetArgs(args)
	root.SetIn(strings.NewReader(""))
	root.SetOut(sh.out)
	root.SetErr(sh.errOut)
	return false, root.Execute()
}

func (sh *shell) printHistory() {
	h := sh.s.c.History
	done, undone := h.History(), h.Future()
	if len(done) == 0 && len(undone) == 0 {
		_, _ = fmt.Fprintln(sh.out, "No changes.")
		return
	}
	for i, cmd := range done {
		_, _ = fmt.Fprintf(sh.out, "%3d  %s\n", i+1, cmd.Name())
	}
	// The future stack is ordered with the next redo last.
	for i := len(undone) - 1; i >= 0; i-- {
		_, _ = fmt.Fprintf(sh.out, "     %s\n", sh.s.styles.Detail.Render(undone[i].Name()+" (undone)"))
	}
}

// splitArgs splits a command line into words. Single and double quotes
// group words; a backslash escapes the next character outside single
// quotes.
func splitArgs(line string) ([]string, error) {
	var (
		args    []string
		word    strings.Builder
		inWord  bool
		quote   rune
		escaped bool
	)
	for _, r := range line {
		switch {
		case escaped:
			word.WriteRune(r)
			escaped = false
		case r == '\\' && quote != '\'':
			escaped, inWord = true, true
		case quote != 0:
			if r == quote {
				quote = 0
			} else {
				word.WriteRune(r)
			}
		case r == '\'' || r == '"':
			quote, inWord = r, true
		case r == ' ' || r == '\t':
			if inWord {
				args = append(args, word.String())
				word.Reset()
				inWord = false
			}
		default:
			word.WriteRune(r)
			inWord = true
		}
	}
	if quote != 0 || escaped {
		return nil, errors.New("unterminated quote or escape")
	}
	if inWord {
		args = append(args, word.String())
	}
	return args, nil
}
