package tui

import (
	"github.com/charmbracelet/lipgloss"

	"pipetriage/src/contracts"
)

// Styles for the report view
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("12")). // Bright blue
			Padding(0, 1)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("12")).
			Background(lipgloss.Color("236")). // Dark gray
			Padding(0, 1)

	rowStyle = lipgloss.NewStyle().
			Padding(0, 1)

	dividerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Bold(true)

	logLineStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("244")). // Gray
			Padding(0, 1)

	findingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")). // Red
			Bold(true).
			Padding(0, 1)

	detailHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("10")). // Bright green
				Padding(0, 1)

	helpStyle = lipgloss.NewStyle().Faint(true)

	verdictGood = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))  // Green
	verdictWarn = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11"))  // Yellow
	verdictBad  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196")) // Red
)

// renderVerdict colors a verdict label by severity.
func renderVerdict(verdict string) string {
	switch verdict {
	case contracts.VerdictBackToNormal:
		return verdictGood.Render(verdict)
	case contracts.VerdictRepeatedFailure:
		return verdictWarn.Render(verdict)
	case contracts.VerdictNewFailure:
		return verdictBad.Render(verdict)
	default:
		return verdictGood.Render("no failures")
	}
}
