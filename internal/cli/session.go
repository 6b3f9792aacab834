package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/runoshun/tasktree/internal/app"
	"github.com/runoshun/tasktree/internal/command"
	"github.com/runoshun/tasktree/internal/domain"
)

// ErrNothingToDo is returned when a command would not change anything,
// e.g. completing a task that is already completed.
var ErrNothingToDo = errors.New("nothing to do")

// session carries the container through one command tree. A one-shot
// invocation loads the task file first and saves after every change; the
// interactive shell loads once and saves on request.
type session struct {
	c        *app.Container
	styles   Styles
	loaded   bool
	autoSave bool
}

func newSession(c *app.Container) *session {
	return &session{c: c, styles: DefaultStyles(), autoSave: true}
}

// load reads the task file once per session.
func (s *session) load() error {
	if s.loaded || s.c == nil {
		return nil
	}
	if err := s.c.Load(); err != nil {
		return err
	}
	s.loaded = true
	return nil
}

// apply runs cmd through the history and, outside the shell, saves.
func (s *session) apply(cmd command.Command) error {
	if !cmd.CanDo() {
		return fmt.Errorf("%s: %w", strings.ToLower(cmd.Name()), ErrNothingToDo)
	}
	if err := s.c.History.Do(cmd); err != nil {
		return err
	}
	if !s.autoSave {
		return nil
	}
	return s.c.Save()
}

// findTask resolves an ID prefix among the live tasks.
func (s *session) findTask(prefix string) (*domain.Task, error) {
	task, err := domain.FindByIDPrefix(domain.Live(s.c.Tasks.Items()), prefix)
	if err != nil {
		return nil, fmt.Errorf("task %q: %w", prefix, err)
	}
	return task, nil
}

func (s *session) findTasks(prefixes []string) ([]*domain.Task, error) {
	tasks := make([]*domain.Task, 0, len(prefixes))
	for _, prefix := range prefixes {
		task, err := s.findTask(prefix)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return tasks, nil
}

// findCategory resolves a category by subject, falling back to an ID
// prefix.
func (s *session) findCategory(name string) (*domain.Category, error) {
	live := domain.Live(s.c.Categories.Items())
	for _, c := range live {
		if strings.EqualFold(c.Subject(), name) {
			return c, nil
		}
	}
	c, err := domain.FindByIDPrefix(live, name)
	if err != nil {
		return nil, fmt.Errorf("category %q: %w", name, err)
	}
	return c, nil
}

func (s *session) findNote(prefix string) (*domain.Note, error) {
	note, err := domain.FindByIDPrefix(domain.Live(s.c.Notes.Items()), prefix)
	if err != nil {
		return nil, fmt.Errorf("note %q: %w", prefix, err)
	}
	return note, nil
}

func (s *session) findEffort(prefix string) (*domain.Effort, error) {
	e, err := domain.FindByIDPrefix(s.c.Efforts.Efforts().Items(), prefix)
	if err != nil {
		return nil, fmt.Errorf("effort %q: %w", prefix, err)
	}
	return e, nil
}

// dateLayouts are tried in order by parseDate.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04",
	time.DateOnly,
}

// parseDate reads an absolute date, "today", "tomorrow" or "none". A
// date without a time of day means midnight local time.
func parseDate(value string, now time.Time) (time.Time, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "none":
		return time.Time{}, nil
	case "now":
		return now, nil
	case "today":
		return domain.StartOfDay(now), nil
	case "tomorrow":
		return domain.StartOfDay(now).AddDate(0, 0, 1), nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, value, now.Location()); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q (use YYYY-MM-DD, \"YYYY-MM-DD HH:MM\", today, tomorrow or none)", value)
}

// parseFee reads a non-negative amount.
func parseFee(value string) (float64, error) {
	fee, err := strconv.ParseFloat(value, 64)
	if err != nil || fee < 0 {
		return 0, fmt.Errorf("invalid amount %q", value)
	}
	return fee, nil
}
