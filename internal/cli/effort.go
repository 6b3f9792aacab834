package cli

import (
	"errors"
	"fmt"

	"github.com/runoshun/tasktree/internal/command"
	"github.com/runoshun/tasktree/internal/domain"
	"github.com/runoshun/tasktree/internal/settings"
	"github.com/spf13/cobra"
)

// newTrackCommand creates the track command.
func newTrackCommand(s *session) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "track",
		Short: "Start or stop time tracking",
		Long: `Start or stop time tracking.

Tracking a task creates an effort starting now. Completing a task stops
its tracking automatically.

Examples:
  tasktree track start 3f2a9c1e
  tasktree track stop          # stop every tracked task`,
		// No RunE: shows subcommand list when called without arguments
	}

	cmd.AddCommand(newTrackStartCommand(s))
	cmd.AddCommand(newTrackStopCommand(s))

	return cmd
}

func newTrackStartCommand(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "start <id>...",
		Short: "Start tracking tasks",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tasks, err := s.findTasks(args)
			if err != nil {
				return err
			}
			start := command.NewStartTracking(s.c.Bus, s.c.Clock, tasks...)
			if err := s.apply(start); err != nil {
				return err
			}
			for _, e := range start.Efforts() {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Tracking %s since %s\n",
					e.Task().Subject(), formatDateTime(e.Start()))
			}
			return nil
		},
	}
}

func newTrackStopCommand(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "stop [id...]",
		Short: "Stop tracking tasks (all tracked tasks by default)",
		RunE: func(cmd *cobra.Command, args []string) error {
			var tasks []*domain.Task
			if len(args) > 0 {
				found, err := s.findTasks(args)
				if err != nil {
					return err
				}
				tasks = found
			} else {
				for _, task := range domain.Live(s.c.Tasks.Items()) {
					if task.IsBeingTracked(false) {
						tasks = append(tasks, task)
					}
				}
			}
			if err := s.apply(command.NewStopTracking(s.c.Clock, tasks...)); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Stopped tracking %d task(s)\n", len(tasks))
			return nil
		},
	}
}

// newEffortsCommand creates the efforts command.
func newEffortsCommand(s *session) *cobra.Command {
	var opts struct {
		Period string
		Raw    bool
	}

	cmd := &cobra.Command{
		Use:   "efforts",
		Short: "Show time spent per task and period",
		Long: `Show time spent per task and period.

Efforts of sub-tasks also count for their ancestors. The period defaults to
the view.effortperiod setting (day, week or month). Use --raw to list the
individual effort records with their IDs.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := cmd.OutOrStdout()
			now := s.c.Clock.Now()
			if opts.Raw {
				efforts := s.c.Efforts.Efforts().Items()
				if len(efforts) == 0 {
					_, _ = fmt.Fprintln(w, "No efforts.")
					return nil
				}
				renderEfforts(w, s.styles, efforts, now)
				return nil
			}

			if cmd.Flags().Changed("period") {
				if _, err := domain.ParsePeriod(opts.Period); err != nil {
					return err
				}
				if _, err := s.c.Settings.Set(settings.KeyEffortPeriod, opts.Period); err != nil {
					return err
				}
			}
			agg, err := s.c.NewEffortView()
			if err != nil {
				return err
			}
			defer agg.Dispose()

			if agg.Len() == 0 {
				_, _ = fmt.Fprintln(w, "No efforts.")
				return nil
			}
			renderBuckets(w, s.styles, agg.Items(), now)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.Period, "period", "", "Aggregation period: day, week or month")
	cmd.Flags().BoolVar(&opts.Raw, "raw", false, "List individual efforts")

	cmd.AddCommand(newEffortAddCommand(s))
	cmd.AddCommand(newEffortEditCommand(s))
	cmd.AddCommand(newEffortDeleteCommand(s))

	return cmd
}

func newEffortAddCommand(s *session) *cobra.Command {
	var start, stop string

	cmd := &cobra.Command{
		Use:   "add <task-id>",
		Short: "Record an effort for a task",
		Long: `Record an effort for a task. Without --stop the effort is being tracked.

Examples:
  tasktree efforts add 3f2a9c1e --start "2024-03-04 09:00" --stop "2024-03-04 11:30"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			task, err := s.findTask(args[0])
			if err != nil {
				return err
			}
			now := s.c.Clock.Now()
			from, err := parseDate(start, now)
			if err != nil {
				return err
			}
			if from.IsZero() {
				from = now
			}
			to, err := parseDate(stop, now)
			if err != nil {
				return err
			}
			if !to.IsZero() && to.Before(from) {
				return errors.New("stop must not be before start")
			}

			add := command.NewNewEffort(s.c.Bus, task, from, to)
			if err := s.apply(add); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Created effort %s for %s\n", shortID(add.Effort().ID()), task.Subject())
			return nil
		},
	}

	cmd.Flags().StringVar(&start, "start", "now", "Start time")
	cmd.Flags().StringVar(&stop, "stop", "", "Stop time (empty to keep tracking)")

	return cmd
}

func newEffortEditCommand(s *session) *cobra.Command {
	var opts struct {
		Start       string
		Stop        string
		Task        string
		Description string
	}

	cmd := &cobra.Command{
		Use:   "edit <effort-id>",
		Short: "Change an effort",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			effort, err := s.findEffort(args[0])
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			now := s.c.Clock.Now()

			var steps []func(*domain.Effort)
			if flags.Changed("start") {
				at, err := parseDate(opts.Start, now)
				if err != nil {
					return err
				}
				steps = append(steps, func(e *domain.Effort) { e.SetStart(at) })
			}
			if flags.Changed("stop") {
				at, err := parseDate(opts.Stop, now)
				if err != nil {
					return err
				}
				steps = append(steps, func(e *domain.Effort) { e.SetStop(at) })
			}
			if flags.Changed("task") {
				task, err := s.findTask(opts.Task)
				if err != nil {
					return err
				}
				steps = append(steps, func(e *domain.Effort) { e.SetTask(task) })
			}
			if flags.Changed("description") {
				steps = append(steps, func(e *domain.Effort) { e.SetDescription(opts.Description) })
			}
			if len(steps) == 0 {
				return errors.New("no changes given")
			}

			edit := command.NewEditEffort(effort, func(e *domain.Effort) error {
				for _, step := range steps {
					step(e)
				}
				if !e.IsTracking() && e.Stop().Before(e.Start()) {
					return errors.New("stop must not be before start")
				}
				return nil
			})
			if err := s.apply(edit); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Updated effort %s\n", shortID(effort.ID()))
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.Start, "start", "", "New start time")
	cmd.Flags().StringVar(&opts.Stop, "stop", "", "New stop time (none to resume tracking)")
	cmd.Flags().StringVar(&opts.Task, "task", "", "Move the effort to this task")
	cmd.Flags().StringVarP(&opts.Description, "description", "d", "", "Description")

	return cmd
}

func newEffortDeleteCommand(s *session) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <effort-id>...",
		Aliases: []string{"rm"},
		Short:   "Delete efforts",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			efforts := make([]*domain.Effort, 0, len(args))
			for _, arg := range args {
				e, err := s.findEffort(arg)
				if err != nil {
					return err
				}
				efforts = append(efforts, e)
			}
			if err := s.apply(command.NewDeleteEfforts(efforts...)); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d effort(s)\n", len(efforts))
			return nil
		},
	}
}
