package tui

import (
	"github.com/charmbracelet/lipgloss"
)

// Styles contains lipgloss styles for the TUI
type Styles struct {
	Title     lipgloss.Style
	Subtitle  lipgloss.Style
	Error     lipgloss.Style
	Success   lipgloss.Style
	Muted     lipgloss.Style
	Selected  lipgloss.Style
	Highlight lipgloss.Style
	Help      lipgloss.Style
	Badge     lipgloss.Style
}

// DefaultStyles returns the default lipgloss styles
func DefaultStyles() Styles {
	return Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("33")). // Blue
			MarginBottom(1),
		Subtitle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")). // Gray
			MarginBottom(1),
		Error: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("196")), // Red
		Success: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("46")), // Green
		Muted: lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")), // Gray
		Selected: lipgloss.NewStyle().
			Background(lipgloss.Color("33")).  // Blue
			Foreground(lipgloss.Color("230")). // Light yellow
			Bold(true).
			Padding(0, 1),
		Highlight: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39")). // Light blue
			Underline(true),
		Help: lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")). // Gray
			MarginTop(1),
		Badge: lipgloss.NewStyle().
			Foreground(lipgloss.Color("99")). // Purple
			Padding(0, 1),
	}
}
