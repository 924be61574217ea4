package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

const recentLimit = 8

// View renders the whole screen
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	width := max(m.width-2, 40)
	column := (width - 2) / 2

	sections := []string{
		m.renderHeader(),
		lipgloss.JoinHorizontal(
			lipgloss.Top,
			lipgloss.JoinVertical(lipgloss.Left, m.renderStatsPanel(column), m.renderRecentPanel(column)),
			"  ",
			m.renderLogsPanel(column),
		),
	}

	if m.showHelp {
		sections = append(sections, m.renderHelp(width))
	} else {
		sections = append(sections, helpStyle.Render("q: stop  ?: help"))
	}

	return baseStyle.Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}

func (m *Model) renderHeader() string {
	status := m.spinner.View() + " scraping"
	if m.done {
		status = successStyle.Render("done")
		if m.runErr != nil {
			status = errorStyle.Render("failed")
		}
	}
	return headerStyle.Render(fmt.Sprintf("BEFORE/AFTER %s  %s", status, m.pageURL))
}

func (m *Model) renderStatsPanel(width int) string {
	title := titleStyle.Render(" RUN ")

	bar := m.progress
	bar.Width = max(width-6, 10)

	stats := []string{
		bar.ViewAs(m.percentLocked()),
		statLine("Elapsed:", formatDuration(time.Since(m.startTime))),
		statLine("Images:", fmt.Sprintf("%d/%d", len(m.items), m.total)),
		fmt.Sprintf("%s %s", statsLabelStyle.Render("Processed:"), successStyle.Render(fmt.Sprint(m.processed))),
		fmt.Sprintf("%s %s", statsLabelStyle.Render("Failed:"), errorStyle.Render(fmt.Sprint(m.failed))),
		fmt.Sprintf("%s %s", statsLabelStyle.Render("Skipped:"), skippedStyle.Render(fmt.Sprint(m.skipped))),
		statLine("Pending:", fmt.Sprint(m.pendingLocked())),
	}

	return panelStyle.Width(width).Render(
		lipgloss.JoinVertical(lipgloss.Left, title, strings.Join(stats, "\n")),
	)
}

func statLine(label, value string) string {
	return fmt.Sprintf("%s %s", statsLabelStyle.Render(label), statsValueStyle.Render(value))
}

func (m *Model) renderRecentPanel(width int) string {
	title := titleStyle.Render(" RECENT ")

	recent := m.recentLocked(recentLimit)
	if len(recent) == 0 {
		content := skippedStyle.Render("Waiting for the gallery...")
		return panelStyle.Width(width).Render(lipgloss.JoinVertical(lipgloss.Left, title, content))
	}

	lines := make([]string, 0, len(recent))
	for _, item := range recent {
		line := fmt.Sprintf("%-16s %s", "["+string(item.Status)+"]", truncate(item.Name, width-22))
		lines = append(lines, stateStyle(item.State).Render(line))
	}

	return panelStyle.Width(width).Render(
		lipgloss.JoinVertical(lipgloss.Left, title, strings.Join(lines, "\n")),
	)
}

func (m *Model) renderLogsPanel(width int) string {
	title := titleStyle.Render(" LOG ")

	start := max(len(m.logMessages)-12, 0)

	var logs []string
	for _, entry := range m.logMessages[start:] {
		timestamp := logTimestampStyle.Render(entry.Time.Format("15:04:05"))
		level := lipgloss.NewStyle().Foreground(levelColor(entry.Level)).Bold(true).Render(fmt.Sprintf("[%-7s]", entry.Level))
		message := logMessageStyle.Render(truncate(entry.Message, width-24))
		logs = append(logs, fmt.Sprintf("%s %s %s", timestamp, level, message))
	}

	content := strings.Join(logs, "\n")
	if content == "" {
		content = skippedStyle.Render("No logs yet...")
	}

	return panelStyle.Width(width).Height(max(m.height-6, 8)).Render(
		lipgloss.JoinVertical(lipgloss.Left, title, content),
	)
}

func (m *Model) renderHelp(width int) string {
	help := `
  q/Q/ctrl+c - Stop after the current image
  ?          - Toggle this help
  ctrl+l     - Clear the log panel

  ` + successStyle.Render("Green") + `  - Processed
  ` + errorStyle.Render("Red") + `    - Download or processing failed
  ` + skippedStyle.Render("Grey") + `   - Skipped (empty or duplicate)
`
	return panelStyle.Width(width).Render(help)
}

// truncate shortens s to at most n runes
func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 3 || len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

// formatDuration formats a duration as mm:ss or hh:mm:ss
func formatDuration(d time.Duration) string {
	if d < 0 {
		return "00:00"
	}

	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60

	if h > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}
