package ui

import "github.com/charmbracelet/lipgloss"

// Shared palette. The accent matches the chat TUI banner so the boxes,
// headings and transcript read as one program.
const (
	colorAccent  = lipgloss.Color("86")
	colorSuccess = lipgloss.Color("78")
	colorError   = lipgloss.Color("203")
)

// Styles are the lipgloss styles shared across muhsinctl commands.
var Styles = struct {
	Bold       lipgloss.Style
	SuccessBox lipgloss.Style
	ErrorBox   lipgloss.Style
}{
	// Section headings and emphasized labels.
	Bold: lipgloss.NewStyle().Bold(true).Foreground(colorAccent),

	// Boxed confirmation after login, registration and deletion.
	SuccessBox: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorSuccess).
		Padding(0, 2).
		Width(64),

	// Boxed failure for operations that end a command.
	ErrorBox: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorError).
		Padding(0, 2).
		Width(64),
}
