package ui

import (
	"io"

	"flickrcrawler/pkg/config"
	"flickrcrawler/pkg/crawler"
)

// Dashboard is a full-screen reporter that owns the terminal while it runs.
type Dashboard interface {
	crawler.Reporter
	Start() error
	Stop()
}

// BuildReporter picks the progress output for a run: the dashboard when one
// is given, nothing in quiet mode, the progress line otherwise. Notifications
// are added on top when enabled.
func BuildReporter(cfg *config.Config, dash Dashboard, w io.Writer) crawler.Reporter {
	var reporters crawler.MultiReporter

	switch {
	case dash != nil:
		reporters = append(reporters, dash)
	case IsQuietMode():
	default:
		verbose := cfg.Logging.Level == "debug"
		reporters = append(reporters, NewProgressDisplay(w, verbose))
	}

	if n := NewNotifyingReporter(cfg.Notifications); n != nil {
		reporters = append(reporters, n)
	}

	switch len(reporters) {
	case 0:
		return crawler.NopReporter{}
	case 1:
		return reporters[0]
	default:
		return reporters
	}
}
