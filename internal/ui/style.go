package ui

import "github.com/charmbracelet/lipgloss"

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("33"))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	alertStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)

	priorityStyles = map[string]lipgloss.Style{
		"high":   lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
		"medium": lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
		"low":    lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
	}

	statusStyles = map[string]lipgloss.Style{
		"todo":        lipgloss.NewStyle(),
		"in-progress": lipgloss.NewStyle().Foreground(lipgloss.Color("33")),
		"done":        lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
	}
)

// Header renders a section heading.
func Header(value string) string {
	return headerStyle.Render(value)
}

// Muted renders secondary text.
func Muted(value string) string {
	return mutedStyle.Render(value)
}

// Alert renders text that needs attention, such as an overdue date.
func Alert(value string) string {
	return alertStyle.Render(value)
}

// Priority renders a priority name in its color.
func Priority(value string) string {
	if style, ok := priorityStyles[value]; ok {
		return style.Render(value)
	}
	return value
}

// Status renders a status name in its color.
func Status(value string) string {
	if style, ok := statusStyles[value]; ok {
		return style.Render(value)
	}
	return value
}
