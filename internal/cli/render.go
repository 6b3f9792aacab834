package cli

import (
	"cmp"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/runoshun/tasktree/internal/domain"
	"github.com/runoshun/tasktree/internal/view"
)

// shortIDLen is the number of ID characters shown in listings. Any unique
// prefix is accepted on input.
const shortIDLen = 8

func shortID(id string) string {
	if len(id) > shortIDLen {
		return id[:shortIDLen]
	}
	return id
}

// taskTree renders tasks as an indented tree. Only tasks in the visible
// list are drawn, in the order of that list.
type taskTree struct {
	styles      Styles
	now         time.Time
	order       map[*domain.Task]int
	dueSoonDays int
}

func newTaskTree(styles Styles, now time.Time, dueSoonDays int, visible []*domain.Task) *taskTree {
	order := make(map[*domain.Task]int, len(visible))
	for i, task := range visible {
		order[task] = i
	}
	return &taskTree{styles: styles, now: now, order: order, dueSoonDays: dueSoonDays}
}

// Render writes roots and their visible descendants to w.
func (tt *taskTree) Render(w io.Writer, roots []*domain.Task) {
	for _, root := range roots {
		tt.renderTask(w, root, "", "")
	}
}

func (tt *taskTree) renderTask(w io.Writer, task *domain.Task, prefix, branch string) {
	_, _ = fmt.Fprintf(w, "%s %s%s\n",
		tt.styles.ID.Render(shortID(task.ID())),
		tt.styles.Tree.Render(prefix+branch),
		tt.line(task),
	)

	children := tt.visibleChildren(task)
	childPrefix := prefix
	switch branch {
	case "├─ ":
		childPrefix += "│  "
	case "└─ ":
		childPrefix += "   "
	}
	for i, child := range children {
		next := "├─ "
		if i == len(children)-1 {
			next = "└─ "
		}
		tt.renderTask(w, child, childPrefix, next)
	}
}

func (tt *taskTree) visibleChildren(task *domain.Task) []*domain.Task {
	var out []*domain.Task
	for _, child := range task.ChildTasks(false) {
		if _, ok := tt.order[child]; ok {
			out = append(out, child)
		}
	}
	sortByOrder(out, tt.order)
	return out
}

func (tt *taskTree) line(task *domain.Task) string {
	var b strings.Builder
	b.WriteString(tt.statusStyle(task).Render(task.Subject()))
	if task.IsBeingTracked(false) {
		b.WriteString(" " + tt.styles.Tracking.Render("● tracking"))
	}
	if due := task.DueDate(); !due.IsZero() && !task.IsCompleted() {
		b.WriteString(" " + tt.styles.Detail.Render("due "+formatDate(due)))
	}
	if task.IsCompleted() {
		b.WriteString(" " + tt.styles.Detail.Render("done "+formatDate(task.CompletionDate())))
	}
	if cats := task.Categories(); len(cats) > 0 {
		names := make([]string, len(cats))
		for i, c := range cats {
			names[i] = c.Subject()
		}
		b.WriteString(" " + tt.styles.Category.Render("["+strings.Join(names, ",")+"]"))
	}
	return b.String()
}

// statusStyle picks the style for the task's most urgent status.
func (tt *taskTree) statusStyle(task *domain.Task) lipgloss.Style {
	switch {
	case task.IsCompleted():
		return tt.styles.Completed
	case task.IsOverdue(tt.now):
		return tt.styles.Overdue
	case task.IsDueSoon(tt.now, tt.dueSoonDays):
		return tt.styles.DueSoon
	case task.IsInactive(tt.now):
		return tt.styles.Inactive
	default:
		return tt.styles.Active
	}
}

func sortByOrder(tasks []*domain.Task, order map[*domain.Task]int) {
	slices.SortFunc(tasks, func(a, b *domain.Task) int {
		return cmp.Compare(order[a], order[b])
	})
}

// renderBuckets writes the effort aggregation as a table.
func renderBuckets(w io.Writer, styles Styles, buckets []*view.Bucket, now time.Time) {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(styles.Tree).
		Headers("PERIOD", "TASK", "EFFORTS", "TIME SPENT", "REVENUE")
	for _, b := range buckets {
		subject := b.Task().Subject()
		if b.IsTracking() {
			subject += " ●"
		}
		t.Row(
			formatDate(b.Start()),
			subject,
			fmt.Sprintf("%d", len(b.Efforts())),
			formatDuration(b.Duration(now)),
			fmt.Sprintf("%.2f", b.Revenue(now)),
		)
	}
	_, _ = fmt.Fprintln(w, t.String())
}

// renderEfforts writes individual effort records as a table.
func renderEfforts(w io.Writer, styles Styles, efforts []*domain.Effort, now time.Time) {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(styles.Tree).
		Headers("ID", "TASK", "START", "STOP", "DURATION")
	for _, e := range efforts {
		stop := "tracking"
		if !e.IsTracking() {
			stop = formatDateTime(e.Stop())
		}
		t.Row(
			shortID(e.ID()),
			e.Task().Subject(),
			formatDateTime(e.Start()),
			stop,
			formatDuration(e.Duration(now)),
		)
	}
	_, _ = fmt.Fprintln(w, t.String())
}

// renderNotes writes notes as an indented outline.
func renderNotes(w io.Writer, styles Styles, notes []*domain.Note, depth int) {
	for _, note := range notes {
		_, _ = fmt.Fprintf(w, "%s %s%s\n",
			styles.ID.Render(shortID(note.ID())),
			strings.Repeat("  ", depth),
			note.Subject(),
		)
		renderNotes(w, styles, domain.Live(note.ChildNotes(false)), depth+1)
	}
}

func formatDate(t time.Time) string {
	return t.Format(time.DateOnly)
}

func formatDateTime(t time.Time) string {
	return t.Format("2006-01-02 15:04")
}

// formatDuration formats a duration as hours and minutes.
func formatDuration(d time.Duration) string {
	d = d.Round(time.Minute)
	h := d / time.Hour
	m := (d % time.Hour) / time.Minute
	return fmt.Sprintf("%d:%02d", h, m)
}
