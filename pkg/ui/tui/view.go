package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

const logo = `
╔═══════════════════════════════════════════════════╗
║ ███████╗██╗     ██╗ ██████╗██╗  ██╗██████╗        ║
║ ██╔════╝██║     ██║██╔════╝██║ ██╔╝██╔══██╗       ║
║ █████╗  ██║     ██║██║     █████╔╝ ██████╔╝       ║
║ ██╔══╝  ██║     ██║██║     ██╔═██╗ ██╔══██╗       ║
║ ██║     ███████╗██║╚██████╗██║  ██╗██║  ██║       ║
║ ╚═╝     ╚══════╝╚═╝ ╚═════╝╚═╝  ╚═╝╚═╝  ╚═╝ CRAWLER║
╚═══════════════════════════════════════════════════╝`

// View renders the dashboard
func (m *Model) View() string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}

	colWidth := (m.width - 4) / 2

	left := lipgloss.JoinVertical(lipgloss.Left,
		m.renderStatsPanel(colWidth),
		m.renderActivePanel(colWidth),
		m.renderRecentPanel(colWidth),
	)
	right := lipgloss.JoinVertical(lipgloss.Left,
		m.renderKeywordsPanel(colWidth),
		m.renderLogsPanel(colWidth),
	)

	sections := []string{
		logoStyle.Width(m.width).Render(logo),
		lipgloss.JoinHorizontal(lipgloss.Top, left, "  ", right),
	}
	if m.showHelp {
		sections = append(sections, m.renderHelp())
	} else if m.summary != nil {
		sections = append(sections, helpStyle.Render("Crawl finished. Press q to exit"))
	} else {
		sections = append(sections, helpStyle.Render("Press ? for help"))
	}

	return baseStyle.Width(m.width).Height(m.height).Render(
		lipgloss.JoinVertical(lipgloss.Left, sections...),
	)
}

func stat(label, value string) string {
	return fmt.Sprintf("%s %s", statsLabelStyle.Render(label), value)
}

// renderStatsPanel renders overall progress. Callers hold mu.
func (m *Model) renderStatsPanel(width int) string {
	title := titleStyle.Render(" CRAWL STATS ")

	bar := m.overall
	bar.Width = width - 8
	if bar.Width < 10 {
		bar.Width = 10
	}

	lines := []string{
		stat("Run:", statsValueStyle.Render(m.runID)),
		stat("Elapsed:", statsValueStyle.Render(formatDuration(time.Since(m.started)))),
		stat("Downloaded:", statsValueStyle.Render(fmt.Sprintf("%d / %d", m.completed, m.expected))),
		stat("Failed:", errorStyle.Render(fmt.Sprintf("%d", m.failed))),
		stat("Total Size:", statsValueStyle.Render(FormatBytes(m.totalSize))),
		stat("Rate:", rateStyle.Render(fmt.Sprintf("%.1f photos/min", m.rate()))),
		stat("ETA:", statsValueStyle.Render(formatDuration(m.eta()))),
		bar.ViewAs(m.fraction()),
	}

	return panelStyle.Width(width).Render(
		lipgloss.JoinVertical(lipgloss.Left, title, lipgloss.JoinVertical(lipgloss.Left, lines...)),
	)
}

// renderActivePanel renders running jobs. Callers hold mu.
func (m *Model) renderActivePanel(width int) string {
	title := titleStyle.Render(fmt.Sprintf(" ACTIVE DOWNLOADS (%d workers) ", m.workers))

	active := m.jobsInState(JobActive, 0)
	if len(active) == 0 {
		content := mutedStyle.Render("No active downloads")
		return panelStyle.Width(width).Render(lipgloss.JoinVertical(lipgloss.Left, title, content))
	}

	var rows []string
	for _, job := range active {
		rows = append(rows, fmt.Sprintf("%s %s %s",
			m.spinner.View(),
			jobActiveStyle.Render(job.Filename),
			faintStyle.Render(formatDuration(time.Since(job.StartTime))),
		))
	}

	return panelStyle.Width(width).Render(
		lipgloss.JoinVertical(lipgloss.Left, title, lipgloss.JoinVertical(lipgloss.Left, rows...)),
	)
}

// renderRecentPanel renders the latest finished jobs. Callers hold mu.
func (m *Model) renderRecentPanel(width int) string {
	title := titleStyle.Render(" RECENT ")

	var rows []string
	if done := m.jobsInState(JobCompleted, 3); len(done) > 0 {
		rows = append(rows, successStyle.Render(fmt.Sprintf("✓ %d completed", m.completed)))
		for _, job := range done {
			rows = append(rows, jobDoneStyle.Render(fmt.Sprintf("✓ %s • %s", job.Filename, FormatBytes(job.Size))))
		}
	}
	if failed := m.jobsInState(JobFailed, 3); len(failed) > 0 {
		rows = append(rows, "", errorStyle.Render(fmt.Sprintf("✗ %d failed", m.failed)))
		for _, job := range failed {
			rows = append(rows, jobDoneStyle.Render("✗ "+job.Filename))
		}
	}
	if len(rows) == 0 {
		rows = append(rows, mutedStyle.Render("Nothing finished yet"))
	}

	return panelStyle.Width(width).Render(
		lipgloss.JoinVertical(lipgloss.Left, title, lipgloss.JoinVertical(lipgloss.Left, rows...)),
	)
}

// renderKeywordsPanel renders per-keyword search status. Callers hold mu.
func (m *Model) renderKeywordsPanel(width int) string {
	title := titleStyle.Render(" KEYWORDS ")

	var rows []string
	for _, kw := range m.keywords {
		status := "pending"
		switch {
		case kw.Err != nil:
			status = "search failed"
		case kw.Quota == 0:
			status = "skipped"
		case kw.Searched:
			status = fmt.Sprintf("%d/%d found", kw.Found, kw.Quota)
		}
		rows = append(rows, keywordStyle(kw).Render(fmt.Sprintf("%-20s %s", kw.Keyword, status)))
	}
	if len(rows) == 0 {
		rows = append(rows, mutedStyle.Render("Allocating quotas..."))
	}

	return panelStyle.Width(width).Render(
		lipgloss.JoinVertical(lipgloss.Left, title, strings.Join(rows, "\n")),
	)
}

// renderLogsPanel renders the logs panel. Callers hold mu.
func (m *Model) renderLogsPanel(width int) string {
	title := titleStyle.Render(" LOG ")

	start := len(m.logMessages) - 10
	if start < 0 {
		start = 0
	}

	maxMsgLen := width - 25
	var logs []string
	for _, log := range m.logMessages[start:] {
		msg := log.Message
		if maxMsgLen > 3 && len(msg) > maxMsgLen {
			msg = msg[:maxMsgLen-3] + "..."
		}
		logs = append(logs, fmt.Sprintf("%s %s %s",
			faintStyle.Render(log.Time.Format("15:04:05")),
			lipgloss.NewStyle().Foreground(log.Color).Bold(true).Render(fmt.Sprintf("[%-7s]", log.Level)),
			mutedStyle.Render(msg),
		))
	}

	content := strings.Join(logs, "\n")
	if content == "" {
		content = mutedStyle.Render("No logs yet...")
	}

	logsHeight := m.height - 30
	if logsHeight < 5 {
		logsHeight = 5
	}

	return panelStyle.Width(width).Height(logsHeight).Render(
		lipgloss.JoinVertical(lipgloss.Left, title, content),
	)
}

// renderHelp renders the help panel
func (m *Model) renderHelp() string {
	help := `
  Keys:
    q/Q      - Quit the dashboard
    ctrl+l   - Clear the log
    ?        - Toggle this help

  Keywords:
    ` + successStyle.Render("Green") + `    - Quota filled
    ` + warningStyle.Render("Orange") + `   - Fewer photos than quota
    ` + errorStyle.Render("Red") + `      - Search failed
`

	return panelStyle.Width(m.width).Render(help)
}

// formatDuration formats a duration as mm:ss or hh:mm:ss
func formatDuration(d time.Duration) string {
	if d < 0 {
		return "00:00"
	}

	h := int(d.Hours())
	mins := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60

	if h > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", h, mins, s)
	}
	return fmt.Sprintf("%02d:%02d", mins, s)
}
