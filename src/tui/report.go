// Package tui renders a failure report as an interactive split view: a
// scrollable list of failed tasks on top and the selected task's log detail
// below.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"pipetriage/src/contracts"
	"pipetriage/src/sanitize"
)

// Column widths for the task list
const (
	parentWidth   = 24
	findingsWidth = 8
	issuesWidth   = 8
)

// ReportModel is the Bubble Tea model for the failure report view.
// Top 1/4 is the failed-task list, bottom 3/4 the log detail viewport.
type ReportModel struct {
	report *contracts.FailureReport

	cursor         int
	listScroll     int
	detail         viewport.Model
	detailReady    bool
	terminalWidth  int
	terminalHeight int
}

// NewReportModel creates a report view over an analyzed failure report.
func NewReportModel(report *contracts.FailureReport) ReportModel {
	return ReportModel{report: report}
}

// Init initializes the model. Required by tea.Model interface.
func (m ReportModel) Init() tea.Cmd {
	return nil
}

// Update handles messages and updates the model state.
func (m ReportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.terminalWidth = msg.Width
		m.terminalHeight = msg.Height
		m.resize()
		m.setDetailContent()

	case tea.KeyMsg:
		listHeight := m.listHeight()

		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit

		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
				if m.cursor < m.listScroll {
					m.listScroll = m.cursor
				}
				m.setDetailContent()
			}
		case "down", "j":
			if m.cursor < len(m.report.Tasks)-1 {
				m.cursor++
				if m.cursor >= m.listScroll+listHeight {
					m.listScroll = m.cursor - listHeight + 1
				}
				m.setDetailContent()
			}
		case "home", "g":
			m.cursor = 0
			m.listScroll = 0
			m.setDetailContent()
		case "end", "G":
			if len(m.report.Tasks) > 0 {
				m.cursor = len(m.report.Tasks) - 1
				m.listScroll = max(0, len(m.report.Tasks)-listHeight)
				m.setDetailContent()
			}

		// Scroll the detail viewport independently
		case "d", "pgdown", "f", " ":
			m.detail.HalfViewDown()
		case "u", "pgup", "b":
			m.detail.HalfViewUp()
		}
	}

	return m, nil
}

// View renders the split-view report.
func (m ReportModel) View() string {
	if m.terminalHeight == 0 {
		return "Initializing..."
	}

	var b strings.Builder

	// Title with build identity and colored verdict
	title := fmt.Sprintf("pipetriage - build %d (%s)", m.report.Build.BuildID, m.report.Build.Branch)
	b.WriteString(titleStyle.Render(title))
	b.WriteString("  ")
	b.WriteString(renderVerdict(m.report.Verdict))
	if m.report.PreviousBuildID != 0 {
		b.WriteString(helpStyle.Render(fmt.Sprintf("  vs build %d", m.report.PreviousBuildID)))
	}
	b.WriteString("\n")

	if len(m.report.Tasks) == 0 {
		b.WriteString("No failed tasks in this build.\n")
		return b.String()
	}

	// Header for the task list
	header := fmt.Sprintf("%-*s %-*s %-*s %s",
		parentWidth, "Job",
		findingsWidth, "Findings",
		issuesWidth, "Issues",
		"Task",
	)
	b.WriteString(headerStyle.Render(header))
	b.WriteString("\n")

	// Visible list rows
	listHeight := m.listHeight()
	listLines := m.renderList()
	visibleStart := m.listScroll
	visibleEnd := min(visibleStart+listHeight, len(listLines))
	for i := visibleStart; i < visibleEnd; i++ {
		b.WriteString(listLines[i])
		b.WriteString("\n")
	}
	for i := visibleEnd - visibleStart; i < listHeight; i++ {
		b.WriteString("\n")
	}

	// Divider
	b.WriteString(dividerStyle.Render(strings.Repeat("─", max(m.terminalWidth, 1))))
	b.WriteString("\n")

	// Detail viewport for the selected task
	if m.detailReady {
		b.WriteString(m.detail.View())
		b.WriteString("\n")
	}

	b.WriteString(helpStyle.Render("↑/↓ select task • d/u scroll log • g/G top/bottom • q quit"))

	return b.String()
}

// renderList generates one row per failed task.
func (m ReportModel) renderList() []string {
	taskWidth := m.terminalWidth - parentWidth - findingsWidth - issuesWidth - 8
	if taskWidth < 20 {
		taskWidth = 20
	}

	var lines []string
	for i, task := range m.report.Tasks {
		row := fmt.Sprintf("%s %-*d %-*d %s",
			TruncateAndPad(task.Parent, parentWidth, true),
			findingsWidth, len(task.Findings),
			issuesWidth, len(task.Issues),
			Truncate(task.Name, taskWidth, true),
		)

		if i == m.cursor {
			cursor := lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Render("► ")
			lines = append(lines, cursor+rowStyle.Render(row))
		} else {
			lines = append(lines, "  "+rowStyle.Render(row))
		}
	}
	return lines
}

// setDetailContent fills the viewport with the selected task's detail.
func (m *ReportModel) setDetailContent() {
	if !m.detailReady || m.cursor >= len(m.report.Tasks) {
		return
	}

	task := m.report.Tasks[m.cursor]
	var lines []string

	headerText := fmt.Sprintf("Task: %s │ Job: %s │ Findings: %d │ Log lines: %d",
		task.Name, task.Parent, len(task.Findings), len(task.LogLines))
	lines = append(lines, detailHeaderStyle.Render(headerText))

	for _, issue := range task.Issues {
		lines = append(lines, findingStyle.Render("issue: "+issue))
	}
	lines = append(lines, "")

	if len(task.Findings) > 0 {
		lines = append(lines, findingStyle.Render("─── Findings ───"))
		for _, f := range task.Findings {
			lines = append(lines, findingStyle.Render(
				fmt.Sprintf("[%s %.2f] line %d: %s", f.Severity, f.ConfidenceScore, f.LineNumber, f.RawMessage)))
		}
		lines = append(lines, "")
	}

	lines = append(lines, logLineStyle.Render("─── Log ───"))
	for _, line := range sanitize.CleanLines(task.LogLines) {
		lines = append(lines, logLineStyle.Render(line))
	}

	m.detail.SetContent(strings.Join(lines, "\n"))
	m.detail.GotoTop()
}

// resize recalculates the split heights after a window size change.
func (m *ReportModel) resize() {
	detailHeight := m.availableHeight() - m.listHeight()
	if detailHeight < 3 {
		detailHeight = 3
	}

	if !m.detailReady {
		m.detail = viewport.New(m.terminalWidth, detailHeight)
		m.detailReady = true
		return
	}
	m.detail.Width = m.terminalWidth
	m.detail.Height = detailHeight
}

// availableHeight is the terminal height minus the fixed chrome:
// title (1) + list header (1) + divider (1) + help (1).
func (m ReportModel) availableHeight() int {
	h := m.terminalHeight - 4
	if h < 8 {
		h = 8
	}
	return h
}

func (m ReportModel) listHeight() int {
	h := m.availableHeight() / 4
	if h < 2 {
		h = 2
	}
	return h
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
