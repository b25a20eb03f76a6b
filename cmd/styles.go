package cmd

import "github.com/charmbracelet/lipgloss"

// Terminal styles for the operator-facing output on stderr. Stdout stays
// unstyled: it carries only the transaction signature.
var (
	titleStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#7B61FF")). // Violet
		Bold(true).
		Padding(1, 0)

	promptStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#8A8F98")) // Slate gray

	successStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#2ECC71")). // Green
		Bold(true)

	warningStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#E74C3C")). // Red
		Bold(true)
)
