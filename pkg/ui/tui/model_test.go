package tui

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flickrcrawler/internal/downloader"
	"flickrcrawler/pkg/budget"
	"flickrcrawler/pkg/crawler"
)

func send(m *Model, msgs ...tea.Msg) {
	for _, msg := range msgs {
		m.Update(msg)
	}
}

func TestModelRepeatedKeyword(t *testing.T) {
	model := NewModel(1)

	send(model,
		RunStartedMsg{RunID: "r2", Quotas: []budget.Quota{{Keyword: "cat", Count: 3}, {Keyword: "cat", Count: 2}}},
		SearchFinishedMsg{Pos: 0, Keyword: "cat", Found: 3},
		SearchFinishedMsg{Pos: 1, Keyword: "cat", Found: 1},
		SearchFinishedMsg{Pos: 7, Keyword: "cat", Found: 0},
	)

	_, _, expected := model.Stats()
	assert.Equal(t, 4, expected)
	require.Len(t, model.keywords, 2)
	assert.Equal(t, 3, model.keywords[0].Found)
	assert.Equal(t, 1, model.keywords[1].Found)
}

func TestModelTracksRun(t *testing.T) {
	model := NewModel(2)

	send(model,
		RunStartedMsg{RunID: "r1", Quotas: []budget.Quota{{Keyword: "cat", Count: 3}, {Keyword: "dog", Count: 2}, {Keyword: "owl", Count: 0}}},
		SearchFinishedMsg{Pos: 0, Keyword: "cat", Found: 2},
		SearchFinishedMsg{Pos: 1, Keyword: "dog", Err: errors.New("unavailable")},
	)

	_, _, expected := model.Stats()
	assert.Equal(t, 2, expected)
	require.Len(t, model.keywords, 3)
	assert.True(t, model.keywords[0].Searched)
	assert.Error(t, model.keywords[1].Err)

	job0 := downloader.DownloadJob{Keyword: "cat", Index: 0}
	job1 := downloader.DownloadJob{Keyword: "cat", Index: 1}
	send(model, JobStartedMsg{Job: job0}, JobStartedMsg{Job: job1})
	assert.Len(t, model.ActiveJobs(), 2)
	assert.Equal(t, "cat_0.jpg", model.ActiveJobs()[0].Filename)

	send(model,
		JobFinishedMsg{Result: downloader.DownloadResult{Job: job0, Success: true, Size: 1024, Path: "/out/cat_0.jpg"}},
		JobFinishedMsg{Result: downloader.DownloadResult{Job: job1, Error: errors.New("gone"), URL: "https://x/1.jpg"}},
	)

	completed, failed, _ := model.Stats()
	assert.Equal(t, 1, completed)
	assert.Equal(t, 1, failed)
	assert.Empty(t, model.ActiveJobs())
	assert.Len(t, model.FinishedJobs(JobCompleted, 0), 1)
	assert.Len(t, model.FinishedJobs(JobFailed, 0), 1)
	assert.EqualValues(t, 1024, model.totalSize)
	assert.InDelta(t, 1.0, model.fraction(), 0.001)

	assert.False(t, model.Done())
	send(model, RunFinishedMsg{Summary: &crawler.Summary{ManifestPath: "out/manifest.json"}})
	assert.True(t, model.Done())

	var levels []string
	for _, l := range model.logMessages {
		levels = append(levels, l.Level)
	}
	assert.Equal(t, []string{"INFO", "INFO", "ERROR", "WARN", "SUCCESS"}, levels)
}

func TestModelView(t *testing.T) {
	model := NewModel(1)
	assert.Equal(t, "Initializing...", model.View())

	send(model,
		tea.WindowSizeMsg{Width: 140, Height: 50},
		RunStartedMsg{RunID: "run-42", Quotas: []budget.Quota{{Keyword: "sunset", Count: 1}}},
		JobStartedMsg{Job: downloader.DownloadJob{Keyword: "sunset", Index: 0}},
	)

	view := model.View()
	assert.Contains(t, view, "run-42")
	assert.Contains(t, view, "sunset")
	assert.Contains(t, view, "sunset_0.jpg")
}

func TestModelKeys(t *testing.T) {
	model := NewModel(1)
	model.AddLogMessage("INFO", "hello")

	_, cmd := model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("?")})
	assert.Nil(t, cmd)
	assert.True(t, model.showHelp)

	model.Update(tea.KeyMsg{Type: tea.KeyCtrlL})
	assert.Empty(t, model.logMessages)

	_, cmd = model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestModelLogLimit(t *testing.T) {
	model := NewModel(1)
	for i := 0; i < 60; i++ {
		model.AddLogMessage("INFO", "line")
	}
	assert.Len(t, model.logMessages, 50)
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		bytes    int64
		expected string
	}{
		{500, "500 B"},
		{1024, "1.0 KB"},
		{1536, "1.5 KB"},
		{1024 * 1024, "1.0 MB"},
		{5 * 1024 * 1024 * 1024, "5.0 GB"},
	}

	for _, test := range tests {
		assert.Equal(t, test.expected, FormatBytes(test.bytes))
	}
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "00:42", formatDuration(42e9))
	assert.Equal(t, "01:01:01", formatDuration(3661e9))
	assert.Equal(t, "00:00", formatDuration(-1))
}
