package cli

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/runoshun/tasktree/internal/command"
	"github.com/runoshun/tasktree/internal/domain"
	"github.com/runoshun/tasktree/internal/settings"
	"github.com/runoshun/tasktree/internal/view"
	"github.com/spf13/cobra"
)

// newListCommand creates the list command for showing the task tree.
func newListCommand(s *session) *cobra.Command {
	var opts struct {
		Search        string
		Sort          string
		Categories    []string
		All           bool
		HideCompleted bool
		HideInactive  bool
		Regex         bool
		CaseSensitive bool
		SubItems      bool
		Description   bool
		Descending    bool
		MatchAll      bool
	}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show the task tree",
		Long: `Show the task tree.

Visibility and order follow the view settings (see 'tasktree settings show').
Flags override them for this invocation. Inside 'tasktree shell' the
overrides stay in effect for the rest of the session, except --category,
which only applies to the listing it is given with.

Completed tasks are dimmed, overdue tasks are red and tasks due soon are
yellow.

Examples:
  # Show the whole tree
  tasktree list

  # Hide completed tasks, sort by due date
  tasktree list --hide-completed --sort duedate

  # Search subjects and descriptions, keeping parents and children of hits
  tasktree list --search report --description --sub-items

  # Only tasks in the "home" category
  tasktree list --category home`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st := s.c.Settings
			flags := cmd.Flags()

			var errs []error
			set := func(key settings.Key, value string) {
				_, err := st.Set(key, value)
				errs = append(errs, err)
			}
			if flags.Changed("all") && opts.All {
				set(settings.KeyHideCompleted, "false")
				set(settings.KeyHideInactive, "false")
			}
			if flags.Changed("hide-completed") {
				set(settings.KeyHideCompleted, fmt.Sprint(opts.HideCompleted))
			}
			if flags.Changed("hide-inactive") {
				set(settings.KeyHideInactive, fmt.Sprint(opts.HideInactive))
			}
			if flags.Changed("sort") {
				if _, ok := domain.ParseAttribute(opts.Sort); !ok && opts.Sort != "timespent" {
					return fmt.Errorf("unknown sort key %q", opts.Sort)
				}
				set(settings.KeySortBy, opts.Sort)
			}
			if flags.Changed("desc") {
				set(settings.KeySortAscending, fmt.Sprint(!opts.Descending))
			}
			if flags.Changed("match-all") {
				set(settings.KeyCategoryMatchAll, fmt.Sprint(opts.MatchAll))
			}
			if err := errors.Join(errs...); err != nil {
				return err
			}
			categories := make([]*domain.Category, 0, len(opts.Categories))
			for _, name := range opts.Categories {
				category, err := s.findCategory(name)
				if err != nil {
					return err
				}
				categories = append(categories, category)
			}

			tv, err := s.c.NewTaskView(view.SearchOptions{
				Text:               opts.Search,
				Regex:              opts.Regex,
				CaseSensitive:      opts.CaseSensitive,
				IncludeSubItems:    opts.SubItems,
				IncludeDescription: opts.Description,
			})
			if err != nil {
				return err
			}
			defer tv.Dispose()
			if len(categories) > 0 {
				if err := tv.Category.Select(categories...); err != nil {
					return err
				}
			}

			w := cmd.OutOrStdout()
			if len(tv.Items()) == 0 {
				_, _ = fmt.Fprintln(w, "No tasks.")
				return nil
			}
			tree := newTaskTree(s.styles, s.c.Clock.Now(), st.Int(settings.KeyDueSoonDays), tv.Items())
			tree.Render(w, tv.RootItems())
			return nil
		},
	}

	cmd.Flags().BoolVarP(&opts.All, "all", "a", false, "Show completed and inactive tasks")
	cmd.Flags().BoolVar(&opts.HideCompleted, "hide-completed", false, "Hide completed tasks")
	cmd.Flags().BoolVar(&opts.HideInactive, "hide-inactive", false, "Hide tasks that have not started")
	cmd.Flags().StringVarP(&opts.Search, "search", "s", "", "Only show tasks matching this text")
	cmd.Flags().BoolVar(&opts.Regex, "regex", false, "Treat the search text as a regular expression")
	cmd.Flags().BoolVar(&opts.CaseSensitive, "case-sensitive", false, "Match the search text case sensitively")
	cmd.Flags().BoolVar(&opts.SubItems, "sub-items", false, "Keep ancestors and descendants of matching tasks")
	cmd.Flags().BoolVar(&opts.Description, "description", false, "Search descriptions too")
	cmd.Flags().StringVar(&opts.Sort, "sort", "", "Sort key (subject, duedate, startdate, priority, timespent, ...)")
	cmd.Flags().BoolVar(&opts.Descending, "desc", false, "Sort in descending order")
	cmd.Flags().StringArrayVarP(&opts.Categories, "category", "c", nil, "Only show tasks in this category (can specify multiple)")
	cmd.Flags().BoolVar(&opts.MatchAll, "match-all", false, "Require every filtered category instead of any")

	return cmd
}

// taskFields are the editable task attributes shared by new, subtask and
// edit. Only flags that were given are applied.
type taskFields struct {
	Subject     string
	Description string
	Start       string
	Due         string
	Budget      time.Duration
	HourlyFee   string
	FixedFee    string
	Priority    int
}

func (f *taskFields) register(cmd *cobra.Command, withSubject bool) {
	if withSubject {
		cmd.Flags().StringVar(&f.Subject, "subject", "", "New subject")
	}
	cmd.Flags().StringVarP(&f.Description, "description", "d", "", "Description")
	cmd.Flags().StringVar(&f.Start, "start", "", "Start date (YYYY-MM-DD, \"YYYY-MM-DD HH:MM\", today, tomorrow, none)")
	cmd.Flags().StringVar(&f.Due, "due", "", "Due date (same formats as --start)")
	cmd.Flags().IntVarP(&f.Priority, "priority", "p", 0, "Priority (higher sorts later when ascending)")
	cmd.Flags().DurationVar(&f.Budget, "budget", 0, "Time budget, e.g. 90m or 4h")
	cmd.Flags().StringVar(&f.HourlyFee, "hourly-fee", "", "Hourly fee")
	cmd.Flags().StringVar(&f.FixedFee, "fixed-fee", "", "Fixed fee")
}

// edits converts the given flags into a task edit. It reports false when
// no flag was given.
func (f *taskFields) edits(cmd *cobra.Command, now time.Time) (func(*domain.Task) error, bool, error) {
	flags := cmd.Flags()
	var steps []func(*domain.Task)

	if flags.Changed("subject") {
		subject := strings.TrimSpace(f.Subject)
		if subject == "" {
			return nil, false, errors.New("subject must not be empty")
		}
		steps = append(steps, func(t *domain.Task) { t.SetSubject(subject) })
	}
	if flags.Changed("description") {
		steps = append(steps, func(t *domain.Task) { t.SetDescription(f.Description) })
	}
	for _, date := range []struct {
		flag  string
		value string
		set   func(*domain.Task, time.Time) bool
	}{
		{"start", f.Start, (*domain.Task).SetStartDate},
		{"due", f.Due, (*domain.Task).SetDueDate},
	} {
		if !flags.Changed(date.flag) {
			continue
		}
		at, err := parseDate(date.value, now)
		if err != nil {
			return nil, false, err
		}
		set := date.set
		steps = append(steps, func(t *domain.Task) { set(t, at) })
	}
	if flags.Changed("priority") {
		steps = append(steps, func(t *domain.Task) { t.SetPriority(f.Priority) })
	}
	if flags.Changed("budget") {
		steps = append(steps, func(t *domain.Task) { t.SetBudget(f.Budget) })
	}
	for _, fee := range []struct {
		flag  string
		value string
		set   func(*domain.Task, float64) bool
	}{
		{"hourly-fee", f.HourlyFee, (*domain.Task).SetHourlyFee},
		{"fixed-fee", f.FixedFee, (*domain.Task).SetFixedFee},
	} {
		if !flags.Changed(fee.flag) {
			continue
		}
		amount, err := parseFee(fee.value)
		if err != nil {
			return nil, false, err
		}
		set := fee.set
		steps = append(steps, func(t *domain.Task) { set(t, amount) })
	}

	if len(steps) == 0 {
		return nil, false, nil
	}
	return func(t *domain.Task) error {
		for _, step := range steps {
			step(t)
		}
		return nil
	}, true, nil
}

// newNewCommand creates the new command for creating tasks.
func newNewCommand(s *session) *cobra.Command {
	var fields taskFields
	var parentID string

	cmd := &cobra.Command{
		Use:   "new <subject>",
		Short: "Create a new task",
		Long: `Create a new task.

The start date defaults to now so the task is active right away; pass
--start none to create an inactive task.

Examples:
  # Create a root task
  tasktree new "Write report"

  # Create a sub-task
  tasktree new --parent 3f2a9c1e "Collect figures"

  # Create a task due tomorrow with a two hour budget
  tasktree new "Prepare talk" --due tomorrow --budget 2h`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var parent *domain.Task
			if parentID != "" {
				p, err := s.findTask(parentID)
				if err != nil {
					return err
				}
				parent = p
			}
			return createTask(cmd, s, parent, strings.Join(args, " "), &fields)
		},
	}

	fields.register(cmd, false)
	cmd.Flags().StringVar(&parentID, "parent", "", "Parent task ID (creates a sub-task)")

	return cmd
}

// newSubtaskCommand creates the subtask command, a shorthand for new
// --parent.
func newSubtaskCommand(s *session) *cobra.Command {
	var fields taskFields

	cmd := &cobra.Command{
		Use:   "subtask <parent-id> <subject>",
		Short: "Create a sub-task",
		Long: `Create a sub-task under an existing task.

Examples:
  tasktree subtask 3f2a9c1e "Collect figures"`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			parent, err := s.findTask(args[0])
			if err != nil {
				return err
			}
			return createTask(cmd, s, parent, strings.Join(args[1:], " "), &fields)
		},
	}

	fields.register(cmd, false)

	return cmd
}

func createTask(cmd *cobra.Command, s *session, parent *domain.Task, subject string, fields *taskFields) error {
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return errors.New("subject must not be empty")
	}
	if parent != nil && parent.IsCompleted() {
		return fmt.Errorf("parent %q is completed; reopen it first", parent.Subject())
	}

	var (
		op   command.Command
		task *domain.Task
	)
	if parent == nil {
		add := command.NewTask(s.c.Bus, s.c.Tasks, subject)
		op, task = add, add.Items()[0]
	} else {
		add := command.NewSubTask(s.c.Bus, s.c.Tasks, parent, subject)
		op, task = add, add.Items()[0]
	}

	now := s.c.Clock.Now()
	if !cmd.Flags().Changed("start") {
		task.SetStartDate(now)
	}
	edit, ok, err := fields.edits(cmd, now)
	if err != nil {
		return err
	}
	if ok {
		if err := edit(task); err != nil {
			return err
		}
	}

	if err := s.apply(op); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Created task %s: %s\n", shortID(task.ID()), task.Subject())
	return nil
}

// newEditCommand creates the edit command for changing task attributes.
func newEditCommand(s *session) *cobra.Command {
	var fields taskFields

	cmd := &cobra.Command{
		Use:   "edit <id>...",
		Short: "Change task attributes",
		Long: `Change attributes of one or more tasks. Only the given flags are changed.

Examples:
  tasktree edit 3f2a9c1e --subject "Write final report"
  tasktree edit 3f2a 9b1c --due none`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tasks, err := s.findTasks(args)
			if err != nil {
				return err
			}
			edit, ok, err := fields.edits(cmd, s.c.Clock.Now())
			if err != nil {
				return err
			}
			if !ok {
				return errors.New("no changes given")
			}
			if err := s.apply(command.NewEditTasks("Edit task", tasks, edit)); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Updated %d task(s)\n", len(tasks))
			return nil
		},
	}

	fields.register(cmd, true)

	return cmd
}

// newCompleteCommand creates the complete command.
func newCompleteCommand(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "complete <id>...",
		Short: "Mark tasks completed",
		Long: `Mark tasks completed as of now.

Completing a task completes its sub-tasks and stops time tracking on it.
When every sub-task of a parent is completed the parent is completed too
(behavior.markparentcompletedwhenallchildrencompleted).`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tasks, err := s.findTasks(args)
			if err != nil {
				return err
			}
			if err := s.apply(command.NewMarkCompleted(s.c.Clock, tasks...)); err != nil {
				return err
			}
			for _, task := range tasks {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Completed %s: %s\n", shortID(task.ID()), task.Subject())
			}
			return nil
		},
	}
}

// newReopenCommand creates the reopen command.
func newReopenCommand(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "reopen <id>...",
		Short: "Mark completed tasks not completed",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tasks, err := s.findTasks(args)
			if err != nil {
				return err
			}
			if err := s.apply(command.NewMarkNotCompleted(tasks...)); err != nil {
				return err
			}
			for _, task := range tasks {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Reopened %s: %s\n", shortID(task.ID()), task.Subject())
			}
			return nil
		},
	}
}

// newDeleteCommand creates the delete command.
func newDeleteCommand(s *session) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>...",
		Aliases: []string{"rm"},
		Short:   "Delete tasks with their sub-tasks",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tasks, err := s.findTasks(args)
			if err != nil {
				return err
			}
			del := command.NewDelete(s.c.Tasks, tasks...)
			if err := s.apply(del); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d task(s)\n", len(del.Items()))
			return nil
		},
	}
}

// newMoveCommand creates the move command for reparenting tasks.
func newMoveCommand(s *session) *cobra.Command {
	var parentID string

	cmd := &cobra.Command{
		Use:   "move <id>...",
		Short: "Move tasks under another task or to the top level",
		Long: `Move tasks under another task, or to the top level when --parent is
not given. A task cannot be moved under itself or one of its sub-tasks.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tasks, err := s.findTasks(args)
			if err != nil {
				return err
			}
			var parent domain.Composite
			if parentID != "" {
				p, err := s.findTask(parentID)
				if err != nil {
					return err
				}
				parent = p
			}
			move := command.NewDragAndDrop(s.c.Tasks, parent, tasks...)
			if err := move.Validate(); err != nil {
				return err
			}
			if err := s.apply(move); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Moved %d task(s)\n", len(tasks))
			return nil
		},
	}

	cmd.Flags().StringVar(&parentID, "parent", "", "New parent task ID")

	return cmd
}
