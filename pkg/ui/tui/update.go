package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"flickrcrawler/internal/downloader"
	"flickrcrawler/pkg/budget"
	"flickrcrawler/pkg/crawler"
)

// RunStartedMsg is sent once quotas are known
type RunStartedMsg struct {
	RunID  string
	Quotas []budget.Quota
}

// SearchFinishedMsg is sent after a keyword's pages have been fetched
type SearchFinishedMsg struct {
	Pos     int
	Keyword string
	Found   int
	Err     error
}

// JobStartedMsg is sent when a worker picks up a job
type JobStartedMsg struct {
	Job downloader.DownloadJob
}

// JobFinishedMsg is sent when a job produced its result
type JobFinishedMsg struct {
	Result downloader.DownloadResult
}

// RunFinishedMsg is sent after the manifest has been written
type RunFinishedMsg struct {
	Summary *crawler.Summary
}

// LogMsg is sent to add a log message
type LogMsg struct {
	Level   string
	Message string
}

// TickMsg is sent periodically to update the UI
type TickMsg time.Time

// Update handles all messages and updates the model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.mu.Lock()
		m.width = msg.Width
		m.height = msg.Height
		m.mu.Unlock()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case TickMsg:
		return m, tickCmd()

	case RunStartedMsg:
		m.StartRun(msg.RunID, msg.Quotas)
		m.AddLogMessage("INFO", "Run "+msg.RunID+" started")
		return m, nil

	case SearchFinishedMsg:
		m.RecordSearch(msg.Pos, msg.Found, msg.Err)
		if msg.Err != nil {
			m.AddLogMessage("ERROR", "Search failed: "+msg.Keyword+" - "+msg.Err.Error())
		} else {
			m.AddLogMessage("INFO", "Search done: "+msg.Keyword)
		}
		return m, nil

	case JobStartedMsg:
		m.StartJob(msg.Job)
		return m, nil

	case JobFinishedMsg:
		m.FinishJob(msg.Result)
		if !msg.Result.Success {
			m.AddLogMessage("WARN", fmt.Sprintf("Failed: %s - %v", msg.Result.URL, msg.Result.Error))
		}
		return m, nil

	case RunFinishedMsg:
		m.FinishRun(msg.Summary)
		m.AddLogMessage("SUCCESS", "Manifest written to "+msg.Summary.ManifestPath)
		return m, nil

	case LogMsg:
		m.AddLogMessage(msg.Level, msg.Message)
		return m, nil
	}

	return m, nil
}

// handleKeyPress handles keyboard input
func (m *Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "Q", "ctrl+c":
		return m, tea.Quit

	case "?":
		m.mu.Lock()
		m.showHelp = !m.showHelp
		m.mu.Unlock()
		return m, nil

	case "ctrl+l":
		m.mu.Lock()
		m.logMessages = nil
		m.mu.Unlock()
		return m, nil
	}

	return m, nil
}

// tickCmd returns a command that sends a tick message
func tickCmd() tea.Cmd {
	return tea.Tick(time.Millisecond*100, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}
