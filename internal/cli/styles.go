package cli

import (
	"github.com/charmbracelet/lipgloss"
)

// Colors defines the color palette of the command output.
var Colors = struct {
	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Muted     lipgloss.Color
	Error     lipgloss.Color
	Success   lipgloss.Color
	Warning   lipgloss.Color
	Text      lipgloss.Color
}{
	Primary:   lipgloss.Color("#6C5CE7"), // Purple
	Secondary: lipgloss.Color("#A29BFE"), // Lavender
	Muted:     lipgloss.Color("#636E72"), // Gray
	Error:     lipgloss.Color("#D63031"), // Red
	Success:   lipgloss.Color("#00B894"), // Green
	Warning:   lipgloss.Color("#FDCB6E"), // Yellow
	Text:      lipgloss.Color("#DFE6E9"), // Light gray
}

// Styles contains the lipgloss styles used by the commands.
type Styles struct {
	Header lipgloss.Style
	Tree   lipgloss.Style
	ID     lipgloss.Style

	// Task status
	Active    lipgloss.Style
	Inactive  lipgloss.Style
	Completed lipgloss.Style
	Overdue   lipgloss.Style
	DueSoon   lipgloss.Style
	Tracking  lipgloss.Style

	Detail   lipgloss.Style
	Category lipgloss.Style
	ErrorMsg lipgloss.Style
	Info     lipgloss.Style
}

// DefaultStyles returns the default styles.
func DefaultStyles() Styles {
	return Styles{
		Header: lipgloss.NewStyle().
			Bold(true).
			Foreground(Colors.Primary),

		Tree: lipgloss.NewStyle().
			Foreground(Colors.Muted),

		ID: lipgloss.NewStyle().
			Foreground(Colors.Muted),

		Active: lipgloss.NewStyle().
			Foreground(Colors.Text),

		Inactive: lipgloss.NewStyle().
			Foreground(Colors.Secondary),

		Completed: lipgloss.NewStyle().
			Foreground(Colors.Muted).
			Faint(true).
			Strikethrough(true),

		Overdue: lipgloss.NewStyle().
			Bold(true).
			Foreground(Colors.Error),

		DueSoon: lipgloss.NewStyle().
			Foreground(Colors.Warning),

		Tracking: lipgloss.NewStyle().
			Bold(true).
			Foreground(Colors.Success),

		Detail: lipgloss.NewStyle().
			Foreground(Colors.Muted),

		Category: lipgloss.NewStyle().
			Foreground(Colors.Secondary).
			Italic(true),

		ErrorMsg: lipgloss.NewStyle().
			Foreground(Colors.Error),

		Info: lipgloss.NewStyle().
			Foreground(Colors.Success),
	}
}
