package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"igmonthly/pkg/report"
)

// View renders the current phase.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}

	var sections []string
	sections = append(sections, m.renderLogo())

	switch m.phase {
	case PhaseForm:
		sections = append(sections, m.renderForm())
	case PhaseRunning:
		sections = append(sections, m.renderRunning())
	case PhaseResults:
		sections = append(sections, m.renderResults())
	}

	if m.showHelp {
		sections = append(sections, m.renderHelp())
	} else {
		sections = append(sections, helpStyle.Render("Press ? for help"))
	}

	return baseStyle.Width(m.width).Render(
		lipgloss.JoinVertical(lipgloss.Left, sections...),
	)
}

// renderLogo renders the banner
func (m *Model) renderLogo() string {
	logo := `
╔══════════════════════════════════════════════════════╗
║ ██╗ ██████╗ ███╗   ███╗ ██████╗ ███╗   ██╗████████╗██╗ ║
║ ██║██╔════╝ ████╗ ████║██╔═══██╗████╗  ██║╚══██╔══╝██║ ║
║ ██║██║  ███╗██╔████╔██║██║   ██║██╔██╗ ██║   ██║   ███████║
║ ██║██║   ██║██║╚██╔╝██║██║   ██║██║╚██╗██║   ██║   ██╔══██║
║ ██║╚██████╔╝██║ ╚═╝ ██║╚██████╔╝██║ ╚████║   ██║   ██║  ██║
║ ╚═╝ ╚═════╝ ╚═╝     ╚═╝ ╚═════╝ ╚═╝  ╚═══╝   ╚═╝   ╚═╝  ╚═╝
║         MONTHLY POST COUNTER - BATCH PROCESSOR v1.0    ║
╚══════════════════════════════════════════════════════╝`

	return logoStyle.Width(m.width).Render(logo)
}

// renderForm renders the credential and target entry screen.
func (m *Model) renderForm() string {
	title := titleStyle.Render(" NEW BATCH ")

	labels := []string{"Username", "Password", "From", "To"}
	var lines []string
	for i, input := range m.inputs {
		label := fieldLabelStyle.Render(labels[i] + ":")
		if m.focus == i {
			label = fieldFocusedStyle.Render("▸ " + labels[i] + ":")
		} else {
			label = "  " + label
		}
		lines = append(lines, lipgloss.JoinVertical(lipgloss.Left, label, "  "+input.View()))
	}

	handlesLabel := fieldLabelStyle.Render("Handles:")
	if m.focus == fieldHandles {
		handlesLabel = fieldFocusedStyle.Render("▸ Handles:")
	} else {
		handlesLabel = "  " + handlesLabel
	}
	lines = append(lines, lipgloss.JoinVertical(lipgloss.Left, handlesLabel, m.handles.View()))

	if m.formErr != "" {
		lines = append(lines, errorStyle.Render("✗ "+m.formErr))
	}

	lines = append(lines, helpStyle.Render("tab: next field • enter/ctrl+s: start • esc: quit"))

	content := lipgloss.JoinVertical(lipgloss.Left, lines...)
	return panelStyle.Width(min(m.width-2, 70)).Render(
		lipgloss.JoinVertical(lipgloss.Left, title, content),
	)
}

// renderRunning renders live batch progress with the recent log tail.
func (m *Model) renderRunning() string {
	width := min(m.width-2, 80)

	title := titleStyle.Render(" BATCH IN PROGRESS ")

	elapsed := time.Since(m.batchStartTime)

	stats := []string{
		fmt.Sprintf("%s %s", statsLabelStyle.Render("Elapsed:"), statsValueStyle.Render(formatDuration(elapsed))),
		fmt.Sprintf("%s %s", statsLabelStyle.Render("Targets:"), statsValueStyle.Render(fmt.Sprintf("%d/%d", m.targetsDone, m.targetsTotal))),
		fmt.Sprintf("%s %s", statsLabelStyle.Render("Rows:"), statsValueStyle.Render(fmt.Sprintf("%d", m.rowsAdded))),
	}

	header := fmt.Sprintf("%s Counting posts...", m.spinner.View())
	bar := m.renderTargetsBar(width - 8)

	sections := []string{
		header,
		bar,
		lipgloss.JoinVertical(lipgloss.Left, stats...),
		m.renderLogTail(width - 8),
	}

	return panelStyle.Width(width).Render(
		lipgloss.JoinVertical(lipgloss.Left, title, lipgloss.JoinVertical(lipgloss.Left, sections...)),
	)
}

// renderTargetsBar renders the per-target progress bar.
func (m *Model) renderTargetsBar(width int) string {
	if width < 10 {
		width = 10
	}
	if m.targetsTotal == 0 {
		return progressEmptyStyle.Render(strings.Repeat("░", width))
	}

	pct := float64(m.targetsDone) / float64(m.targetsTotal) * 100
	filled := int(float64(width) * float64(m.targetsDone) / float64(m.targetsTotal))
	if filled > width {
		filled = width
	}

	bar := GetProgressBarStyle(pct).Render(strings.Repeat("█", filled)) +
		progressEmptyStyle.Render(strings.Repeat("░", width-filled))
	return fmt.Sprintf("%s %s", bar, statsValueStyle.Render(fmt.Sprintf("%3.0f%%", pct)))
}

// renderLogTail renders the most recent log messages.
func (m *Model) renderLogTail(width int) string {
	title := titleStyle.Render(" LOG ")

	if len(m.logMessages) == 0 {
		return lipgloss.JoinVertical(lipgloss.Left, title,
			lipgloss.NewStyle().Foreground(dimWhite).Render("Waiting for activity..."))
	}

	visible := 8
	start := len(m.logMessages) - visible
	if start < 0 {
		start = 0
	}

	var lines []string
	for _, msg := range m.logMessages[start:] {
		ts := logTimestampStyle.Render(msg.Time.Format("15:04:05"))
		text := msg.Message
		if width > 12 && len(text) > width-12 {
			text = text[:width-12] + "…"
		}
		lines = append(lines, fmt.Sprintf("%s %s", ts,
			lipgloss.NewStyle().Foreground(msg.Color).Render(text)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, title, lipgloss.JoinVertical(lipgloss.Left, lines...))
}

// renderResults renders the result table and export keys.
func (m *Model) renderResults() string {
	width := min(m.width-2, 100)

	title := titleStyle.Render(" RESULTS ")

	header := tableHeaderStyle.Render(fmt.Sprintf("%-20s %-11s %-6s %-10s %s",
		"Instagram ID", "Post Count", "Year", "Month", "Links"))

	var lines []string
	lines = append(lines, header)
	for _, row := range m.rows {
		lines = append(lines, renderResultRow(row, width-6))
	}

	summary := successStyle.Render(fmt.Sprintf("✓ %d rows collected", len(m.rows)))
	lines = append(lines, "", summary)

	if m.lastExport != "" {
		lines = append(lines, successStyle.Render("✓ Exported "+m.lastExport))
	}

	lines = append(lines, helpStyle.Render("c: export csv • l: export log • q: quit"))

	return panelStyle.Width(width).Render(
		lipgloss.JoinVertical(lipgloss.Left, title, lipgloss.JoinVertical(lipgloss.Left, lines...)),
	)
}

// renderResultRow renders one table row, dimming placeholders.
func renderResultRow(row report.PostCountRow, width int) string {
	links := row.LinksCell()
	if width > 50 && len(links) > width-50 {
		links = links[:width-50] + "…"
	}

	line := fmt.Sprintf("%-20s %-11d %-6s %-10s %s",
		row.Handle, row.PostCount, row.Year, row.Month, links)

	if row.Year == "-" {
		return tablePlaceholderStyle.Render(line)
	}
	return tableRowStyle.Render(line)
}

// renderHelp renders the expanded key reference.
func (m *Model) renderHelp() string {
	title := titleStyle.Render(" KEYBOARD ")

	keys := []string{
		"tab / shift+tab   move between form fields",
		"enter / ctrl+s    start the batch",
		"c                 export results as CSV",
		"l                 export the filtered run log",
		"?                 toggle this help",
		"q / esc / ctrl+c  quit",
	}

	var lines []string
	for _, k := range keys {
		lines = append(lines, lipgloss.NewStyle().Foreground(dimWhite).Render(k))
	}

	return panelStyle.Width(min(m.width-2, 60)).Render(
		lipgloss.JoinVertical(lipgloss.Left, title, lipgloss.JoinVertical(lipgloss.Left, lines...)),
	)
}

// formatDuration formats a duration as h/m/s text.
func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm%02ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	return fmt.Sprintf("%dh%02dm", int(d.Hours()), int(d.Minutes())%60)
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
