package ui

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"flickrcrawler/internal/downloader"
	"flickrcrawler/pkg/budget"
	"flickrcrawler/pkg/crawler"
)

// ProgressDisplay prints a single updating progress line for a crawl. In
// verbose mode every job gets its own line instead.
type ProgressDisplay struct {
	mu        sync.Mutex
	w         io.Writer
	verbose   bool
	quotas    []int
	expected  int
	done      int
	failed    int
	bytes     int64
	current   string
	startTime time.Time
}

var _ crawler.Reporter = (*ProgressDisplay)(nil)

// NewProgressDisplay writes progress to w.
func NewProgressDisplay(w io.Writer, verbose bool) *ProgressDisplay {
	return &ProgressDisplay{
		w:         w,
		verbose:   verbose,
		startTime: time.Now(),
	}
}

func (p *ProgressDisplay) RunStarted(runID string, quotas []budget.Quota) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.startTime = time.Now()
	parts := make([]string, 0, len(quotas))
	p.quotas = make([]int, len(quotas))
	p.expected = 0
	for i, q := range quotas {
		p.quotas[i] = q.Count
		p.expected += q.Count
		parts = append(parts, fmt.Sprintf("%s=%d", q.Keyword, q.Count))
	}
	fmt.Fprintf(p.w, "%s %s\n", Magenta("[CRAWL]"), Dim(runID))
	fmt.Fprintf(p.w, "  %s %s\n", Cyan("quotas:"), strings.Join(parts, " "))
}

// SearchFinished shrinks the expected total when a keyword came back short.
func (p *ProgressDisplay) SearchFinished(pos int, keyword string, found int, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	quota := found
	if pos >= 0 && pos < len(p.quotas) {
		quota = p.quotas[pos]
	}
	p.expected -= quota - found
	if err != nil {
		fmt.Fprintf(p.w, "\n%s search %q failed: %v\n", Red("✗"), keyword, err)
		return
	}
	if p.verbose || found < quota {
		fmt.Fprintf(p.w, "\n%s %s: %d/%d photos found\n", Magenta("→"), keyword, found, quota)
	}
}

func (p *ProgressDisplay) JobStarted(job downloader.DownloadJob) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.current = fmt.Sprintf("%s #%d", job.Keyword, job.Index)
	if !p.verbose {
		p.printProgress()
	}
}

func (p *ProgressDisplay) JobFinished(result downloader.DownloadResult) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.done++
	if result.Success {
		p.bytes += result.Size
	} else {
		p.failed++
	}

	if !p.verbose {
		p.printProgress()
		return
	}
	if result.Success {
		fmt.Fprintf(p.w, "%s %s • %s\n", Green("✓"), result.Path, FormatBytes(result.Size))
	} else {
		fmt.Fprintf(p.w, "%s %s - %v\n", Red("✗"), result.URL, result.Error)
	}
}

func (p *ProgressDisplay) RunFinished(summary *crawler.Summary) {
	p.mu.Lock()
	defer p.mu.Unlock()

	elapsed := summary.Duration
	fmt.Fprintf(p.w, "\n\n%s Downloaded %d of %d photos\n", Green("✓"), summary.Succeeded, summary.Submitted)
	rate := 0.0
	if elapsed > 0 {
		rate = float64(summary.Succeeded) / elapsed.Minutes()
	}
	fmt.Fprintf(p.w, "  %s %s in %s (%.1f photos/min)\n", Dim("•"), FormatBytes(summary.BytesWritten), FormatDuration(elapsed), rate)
	if summary.Failed > 0 {
		fmt.Fprintf(p.w, "  %s %d downloads failed\n", Dim("•"), summary.Failed)
	}
	if len(summary.FailedKeywords) > 0 {
		fmt.Fprintf(p.w, "  %s searches failed: %s\n", Dim("•"), strings.Join(summary.FailedKeywords, ", "))
	}
	fmt.Fprintf(p.w, "  %s manifest: %s\n", Dim("•"), summary.ManifestPath)
}

// printProgress redraws the progress line. Callers hold p.mu.
func (p *ProgressDisplay) printProgress() {
	elapsed := time.Since(p.startTime)
	rate := 0.0
	if elapsed > 0 {
		rate = float64(p.done) / elapsed.Minutes()
	}

	line := fmt.Sprintf("[%s] %d/%d • %.1f/min • %s • %s",
		RenderBar(p.done, p.expected, 20),
		p.done,
		p.expected,
		rate,
		FormatBytes(p.bytes),
		ETA(p.done, p.expected, elapsed),
	)
	if p.current != "" {
		line += " • " + p.current
	}
	if p.failed > 0 {
		line += " • " + Red(fmt.Sprintf("%d errors", p.failed))
	}

	fmt.Fprintf(p.w, "\r%s\r%s", strings.Repeat(" ", 120), line)
}

// Counts returns finished, failed and expected job counts.
func (p *ProgressDisplay) Counts() (done, failed, expected int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.done, p.failed, p.expected
}
