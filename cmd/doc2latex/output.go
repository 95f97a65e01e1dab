package main

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/pdiddy/doc2latex/internal/convert"
)

var (
	// titleStyle for bold table headers
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("33"))

	// dimStyle for muted text and borders
	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	skipStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("220"))

	// boxStyle for the batch summary
	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("33")).
			Padding(0, 1)
)

func renderSummary(r convert.BatchResult) string {
	failed := dimStyle.Render(fmt.Sprintf("%d failed", r.Failed))
	if r.HasFailures() {
		failed = errorStyle.Render(fmt.Sprintf("%d failed", r.Failed))
	}
	line := lipgloss.JoinHorizontal(lipgloss.Top,
		successStyle.Render(fmt.Sprintf("%d converted", r.Converted)),
		dimStyle.Render("  ·  "),
		skipStyle.Render(fmt.Sprintf("%d skipped", r.Skipped)),
		dimStyle.Render("  ·  "),
		failed,
	)
	return boxStyle.Render(line)
}
