package tui

import (
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
)

var (
	// Colors
	primaryColor   = lipgloss.Color("#7C3AED") // Purple
	secondaryColor = lipgloss.Color("#10B981") // Green
	mutedColor     = lipgloss.Color("#6B7280") // Gray
	accentColor    = lipgloss.Color("#F59E0B") // Amber
	errorColor     = lipgloss.Color("#EF4444") // Red
	fgColor        = lipgloss.Color("#F9FAFB") // Light

	// Layout styles
	AppStyle    = lipgloss.NewStyle().Padding(1, 2)
	HeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(primaryColor)

	// Panels
	PanelStyle        = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(mutedColor).Padding(0, 1)
	FocusedPanelStyle = PanelStyle.BorderForeground(primaryColor)
	PanelTitleStyle   = lipgloss.NewStyle().Foreground(primaryColor).Bold(true)

	// Filter row
	FilterStyle = lipgloss.NewStyle().Foreground(accentColor)

	// Modal form
	ModalStyle       = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(primaryColor).Padding(1, 2)
	TitleStyle       = lipgloss.NewStyle().Bold(true).Foreground(primaryColor).MarginBottom(1)
	LabelStyle       = lipgloss.NewStyle().Foreground(accentColor).Bold(true)
	FocusLabelStyle  = LabelStyle.Underline(true)
	ChoiceStyle      = lipgloss.NewStyle().Foreground(fgColor)
	EmptyChoiceStyle = lipgloss.NewStyle().Foreground(mutedColor).Italic(true)

	// Notifications
	InfoStyle    = lipgloss.NewStyle().Foreground(secondaryColor)
	WarningStyle = lipgloss.NewStyle().Foreground(accentColor)
	ErrorStyle   = lipgloss.NewStyle().Foreground(errorColor).Bold(true)

	// Help bar
	HelpStyle    = lipgloss.NewStyle().Foreground(mutedColor).MarginTop(1)
	HelpKeyStyle = lipgloss.NewStyle().Foreground(primaryColor).Bold(true)
)

func tableStyles(focused bool) table.Styles {
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(mutedColor).
		BorderBottom(true).
		Bold(true)
	if focused {
		s.Selected = s.Selected.Foreground(fgColor).Background(primaryColor).Bold(true)
	} else {
		s.Selected = lipgloss.NewStyle()
	}
	return s
}
