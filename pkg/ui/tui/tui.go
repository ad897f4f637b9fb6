package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"flickrcrawler/internal/downloader"
	"flickrcrawler/pkg/budget"
	"flickrcrawler/pkg/crawler"
)

// TUI is the full-screen crawl dashboard. It implements crawler.Reporter by
// forwarding every event to the bubbletea program.
type TUI struct {
	program *tea.Program
	model   *Model
}

var _ crawler.Reporter = (*TUI)(nil)

// NewTUI creates a dashboard for a pool of the given size
func NewTUI(workers int, opts ...tea.ProgramOption) *TUI {
	model := NewModel(workers)
	if len(opts) == 0 {
		opts = []tea.ProgramOption{tea.WithAltScreen()}
	}
	return &TUI{
		program: tea.NewProgram(model, opts...),
		model:   model,
	}
}

// Start runs the program until the user quits or Stop is called
func (t *TUI) Start() error {
	_, err := t.program.Run()
	return err
}

// Stop stops the TUI gracefully
func (t *TUI) Stop() {
	t.program.Quit()
}

// Model exposes the dashboard state
func (t *TUI) Model() *Model {
	return t.model
}

// Send sends a message to the TUI
func (t *TUI) Send(msg tea.Msg) {
	if t.program != nil {
		t.program.Send(msg)
	}
}

func (t *TUI) RunStarted(runID string, quotas []budget.Quota) {
	t.Send(RunStartedMsg{RunID: runID, Quotas: quotas})
}

func (t *TUI) SearchFinished(pos int, keyword string, found int, err error) {
	t.Send(SearchFinishedMsg{Pos: pos, Keyword: keyword, Found: found, Err: err})
}

func (t *TUI) JobStarted(job downloader.DownloadJob) {
	t.Send(JobStartedMsg{Job: job})
}

func (t *TUI) JobFinished(result downloader.DownloadResult) {
	t.Send(JobFinishedMsg{Result: result})
}

func (t *TUI) RunFinished(summary *crawler.Summary) {
	t.Send(RunFinishedMsg{Summary: summary})
}

// Log sends a log message to the TUI
func (t *TUI) Log(level, format string, args ...interface{}) {
	t.Send(LogMsg{Level: level, Message: fmt.Sprintf(format, args...)})
}

// LogInfo logs an info message
func (t *TUI) LogInfo(format string, args ...interface{}) {
	t.Log("INFO", format, args...)
}

// LogError logs an error message
func (t *TUI) LogError(format string, args ...interface{}) {
	t.Log("ERROR", format, args...)
}
