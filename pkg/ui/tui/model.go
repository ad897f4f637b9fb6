package tui

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"flickrcrawler/internal/downloader"
	"flickrcrawler/pkg/budget"
	"flickrcrawler/pkg/crawler"
)

// JobState is the state of one download job on the dashboard
type JobState int

const (
	JobActive JobState = iota
	JobCompleted
	JobFailed
)

// JobItem is a download job as shown on the dashboard
type JobItem struct {
	Index     int64
	Keyword   string
	Filename  string
	Size      int64
	State     JobState
	StartTime time.Time
	Duration  time.Duration
	Error     error
}

// KeywordItem tracks the search outcome of one keyword
type KeywordItem struct {
	Keyword  string
	Quota    int
	Found    int
	Searched bool
	Err      error
}

// LogMessage represents a log entry
type LogMessage struct {
	Time    time.Time
	Level   string
	Message string
	Color   lipgloss.Color
}

// Model is the dashboard state
type Model struct {
	spinner spinner.Model
	overall progress.Model

	runID      string
	workers    int
	jobs       map[int64]*JobItem
	jobOrder   []int64
	keywords   []*KeywordItem

	expected  int
	completed int
	failed    int
	totalSize int64
	started   time.Time
	summary   *crawler.Summary

	width          int
	height         int
	showHelp       bool
	logMessages    []LogMessage
	maxLogMessages int

	mu sync.RWMutex
}

// NewModel creates a dashboard for a pool of the given size
func NewModel(workers int) *Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(skyBlue)

	return &Model{
		spinner:        s,
		overall:        progress.New(progress.WithDefaultGradient()),
		workers:        workers,
		jobs:           make(map[int64]*JobItem),
		started:        time.Now(),
		maxLogMessages: 50,
	}
}

// Init starts the spinner and the refresh tick
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, tickCmd())
}

// StartRun records the run id and keyword quotas
func (m *Model) StartRun(runID string, quotas []budget.Quota) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.runID = runID
	m.started = time.Now()
	m.keywords = m.keywords[:0]
	m.expected = 0
	for _, q := range quotas {
		m.keywords = append(m.keywords, &KeywordItem{Keyword: q.Keyword, Quota: q.Count})
		m.expected += q.Count
	}
}

// RecordSearch stores the search outcome for the keyword at position pos
func (m *Model) RecordSearch(pos int, found int, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if pos < 0 || pos >= len(m.keywords) {
		return
	}
	kw := m.keywords[pos]
	if kw.Searched {
		return
	}
	kw.Searched = true
	kw.Found = found
	kw.Err = err
	m.expected -= kw.Quota - found
}

// StartJob marks a job as running
func (m *Model) StartJob(job downloader.DownloadJob) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.jobs[job.Index]; !exists {
		m.jobOrder = append(m.jobOrder, job.Index)
	}
	m.jobs[job.Index] = &JobItem{
		Index:     job.Index,
		Keyword:   job.Keyword,
		Filename:  fmt.Sprintf("%s_%d.jpg", job.Keyword, job.Index),
		State:     JobActive,
		StartTime: time.Now(),
	}
}

// FinishJob records a job result
func (m *Model) FinishJob(result downloader.DownloadResult) {
	m.mu.Lock()
	defer m.mu.Unlock()

	item, ok := m.jobs[result.Job.Index]
	if !ok {
		item = &JobItem{Index: result.Job.Index, Keyword: result.Job.Keyword, StartTime: time.Now()}
		m.jobs[result.Job.Index] = item
		m.jobOrder = append(m.jobOrder, result.Job.Index)
	}
	if result.Path != "" {
		item.Filename = filepath.Base(result.Path)
	}
	item.Duration = result.Duration
	item.Size = result.Size

	if result.Success {
		item.State = JobCompleted
		m.completed++
		m.totalSize += result.Size
	} else {
		item.State = JobFailed
		item.Error = result.Error
		m.failed++
	}
}

// FinishRun stores the final summary
func (m *Model) FinishRun(summary *crawler.Summary) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.summary = summary
}

// AddLogMessage adds a log message
func (m *Model) AddLogMessage(level, message string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	color := muted
	switch level {
	case "ERROR":
		color = failRed
	case "WARN":
		color = amber
	case "SUCCESS":
		color = okGreen
	case "INFO":
		color = skyBlue
	}

	m.logMessages = append(m.logMessages, LogMessage{
		Time:    time.Now(),
		Level:   level,
		Message: message,
		Color:   color,
	})

	if len(m.logMessages) > m.maxLogMessages {
		m.logMessages = m.logMessages[len(m.logMessages)-m.maxLogMessages:]
	}
}

// ActiveJobs returns the running jobs in start order
func (m *Model) ActiveJobs() []*JobItem {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.jobsInState(JobActive, 0)
}

// FinishedJobs returns up to n of the most recently started finished jobs
// in the given state. n <= 0 returns all of them.
func (m *Model) FinishedJobs(state JobState, n int) []*JobItem {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.jobsInState(state, n)
}

func (m *Model) jobsInState(state JobState, last int) []*JobItem {
	var out []*JobItem
	for _, idx := range m.jobOrder {
		if job := m.jobs[idx]; job != nil && job.State == state {
			out = append(out, job)
		}
	}
	if last > 0 && len(out) > last {
		out = out[len(out)-last:]
	}
	return out
}

// Stats returns finished, failed and expected job counts
func (m *Model) Stats() (completed, failed, expected int) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.completed, m.failed, m.expected
}

// Done reports whether the run has finished
func (m *Model) Done() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.summary != nil
}

// fraction is the share of expected jobs that have finished. Callers hold mu.
func (m *Model) fraction() float64 {
	if m.expected <= 0 {
		if m.summary != nil {
			return 1
		}
		return 0
	}
	f := float64(m.completed+m.failed) / float64(m.expected)
	if f > 1 {
		f = 1
	}
	return f
}

// rate is finished photos per minute. Callers hold mu.
func (m *Model) rate() float64 {
	elapsed := time.Since(m.started).Minutes()
	if elapsed <= 0 {
		return 0
	}
	return float64(m.completed) / elapsed
}

// eta estimates the remaining time. Callers hold mu.
func (m *Model) eta() time.Duration {
	done := m.completed + m.failed
	remaining := m.expected - done
	if done == 0 || remaining <= 0 {
		return 0
	}
	return time.Since(m.started) / time.Duration(done) * time.Duration(remaining)
}

// FormatBytes formats bytes to human readable format
func FormatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
