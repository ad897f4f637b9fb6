package crawler

import (
	"flickrcrawler/internal/downloader"
	"flickrcrawler/pkg/budget"
)

// Reporter receives progress events during a run. Methods may be called
// from several goroutines at once. SearchFinished identifies the keyword by
// its position in the quotas passed to RunStarted, since keywords may repeat.
type Reporter interface {
	downloader.Observer
	RunStarted(runID string, quotas []budget.Quota)
	SearchFinished(pos int, keyword string, found int, err error)
	RunFinished(summary *Summary)
}

// NopReporter ignores every event.
type NopReporter struct{}

func (NopReporter) JobStarted(downloader.DownloadJob)      {}
func (NopReporter) JobFinished(downloader.DownloadResult)  {}
func (NopReporter) RunStarted(string, []budget.Quota)      {}
func (NopReporter) SearchFinished(int, string, int, error) {}
func (NopReporter) RunFinished(*Summary)                   {}

// MultiReporter fans events out to several reporters in order.
type MultiReporter []Reporter

func (m MultiReporter) JobStarted(job downloader.DownloadJob) {
	for _, r := range m {
		r.JobStarted(job)
	}
}

func (m MultiReporter) JobFinished(result downloader.DownloadResult) {
	for _, r := range m {
		r.JobFinished(result)
	}
}

func (m MultiReporter) RunStarted(runID string, quotas []budget.Quota) {
	for _, r := range m {
		r.RunStarted(runID, quotas)
	}
}

func (m MultiReporter) SearchFinished(pos int, keyword string, found int, err error) {
	for _, r := range m {
		r.SearchFinished(pos, keyword, found, err)
	}
}

func (m MultiReporter) RunFinished(summary *Summary) {
	for _, r := range m {
		r.RunFinished(summary)
	}
}
