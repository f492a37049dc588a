package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/Cook1eMonster/Ralph/internal/domain"
)

// Colors defines the color palette shared by the TUI and styled CLI output.
var Colors = struct {
	Primary lipgloss.Color
	Muted   lipgloss.Color
	Error   lipgloss.Color
	Success lipgloss.Color
	Warning lipgloss.Color

	TitleNormal   lipgloss.Color
	TitleSelected lipgloss.Color

	// Status colors
	Pending    lipgloss.Color
	InProgress lipgloss.Color
	Done       lipgloss.Color
	Blocked    lipgloss.Color
}{
	Primary: lipgloss.Color("#6C5CE7"), // Purple
	Muted:   lipgloss.Color("#636E72"), // Gray
	Error:   lipgloss.Color("#D63031"), // Red
	Success: lipgloss.Color("#00B894"), // Green
	Warning: lipgloss.Color("#FDCB6E"), // Yellow

	TitleNormal:   lipgloss.Color("#DFE6E9"), // Light gray
	TitleSelected: lipgloss.Color("#FFEAA7"), // Yellow

	Pending:    lipgloss.Color("#74B9FF"), // Light blue
	InProgress: lipgloss.Color("#FDCB6E"), // Yellow
	Done:       lipgloss.Color("#00B894"), // Green
	Blocked:    lipgloss.Color("#D63031"), // Red
}

// Styles contains all the lipgloss styles for the TUI.
type Styles struct {
	Header     lipgloss.Style
	HeaderText lipgloss.Style

	Row         lipgloss.Style
	RowSelected lipgloss.Style
	Group       lipgloss.Style

	Detail      lipgloss.Style
	DetailTitle lipgloss.Style
	DetailLabel lipgloss.Style

	Message lipgloss.Style
	Error   lipgloss.Style
	Footer  lipgloss.Style
}

// DefaultStyles returns the default styles.
func DefaultStyles() Styles {
	return Styles{
		Header:     lipgloss.NewStyle().Padding(0, 1).MarginBottom(1),
		HeaderText: lipgloss.NewStyle().Bold(true).Foreground(Colors.Primary),

		Row:         lipgloss.NewStyle().Foreground(Colors.TitleNormal),
		RowSelected: lipgloss.NewStyle().Bold(true).Foreground(Colors.TitleSelected),
		Group:       lipgloss.NewStyle().Foreground(Colors.Muted),

		Detail: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Colors.Muted).
			Padding(0, 1),
		DetailTitle: lipgloss.NewStyle().Bold(true).Foreground(Colors.Primary),
		DetailLabel: lipgloss.NewStyle().Foreground(Colors.Muted),

		Message: lipgloss.NewStyle().Foreground(Colors.Success),
		Error:   lipgloss.NewStyle().Foreground(Colors.Error),
		Footer:  lipgloss.NewStyle().Foreground(Colors.Muted).MarginTop(1),
	}
}

// StatusIcon returns the icon shown next to a task.
func StatusIcon(s domain.Status) string {
	switch s {
	case domain.StatusDone:
		return "☑"
	case domain.StatusInProgress:
		return "●"
	case domain.StatusBlocked:
		return "⛔"
	default:
		return "☐"
	}
}

// StatusStyle returns the style for a status.
func StatusStyle(s domain.Status) lipgloss.Style {
	base := lipgloss.NewStyle()
	switch s {
	case domain.StatusDone:
		return base.Foreground(Colors.Done)
	case domain.StatusInProgress:
		return base.Foreground(Colors.InProgress)
	case domain.StatusBlocked:
		return base.Foreground(Colors.Blocked)
	default:
		return base.Foreground(Colors.Pending)
	}
}
