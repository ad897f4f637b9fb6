package logger

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// LogRequest logs a completed HTTP exchange at a level matching its status.
func LogRequest(l Logger, method, url string, statusCode int, duration time.Duration) {
	fields := map[string]interface{}{
		"method":      method,
		"url":         url,
		"status_code": statusCode,
		"duration_ms": duration.Milliseconds(),
	}

	switch {
	case statusCode >= 500:
		l.ErrorWithFields("HTTP request server error", fields)
	case statusCode >= 400:
		l.WarnWithFields("HTTP request client error", fields)
	default:
		l.DebugWithFields("HTTP request completed", fields)
	}
}

// LogSearchPage logs one page of search results.
func LogSearchPage(l Logger, keyword string, page, perPage, returned int) {
	l.DebugWithFields("Search page fetched", map[string]interface{}{
		"keyword":  keyword,
		"page":     page,
		"per_page": perPage,
		"returned": returned,
	})
}

// LogDownload logs the outcome of a single download job.
func LogDownload(l Logger, keyword string, index int64, url string, err error) {
	entry := l.WithFields(map[string]interface{}{
		"keyword": keyword,
		"index":   index,
		"url":     url,
	})
	if err != nil {
		entry.WithError(err).Warn("Download failed")
		return
	}
	entry.Debug("Download completed")
}

// LogRateLimit logs rate limiting events
func LogRateLimit(l Logger, endpoint string, wait time.Duration) {
	l.WithFields(map[string]interface{}{
		"endpoint": endpoint,
		"wait":     wait,
		"action":   "rate_limited",
	}).Warn("Rate limit reached, backing off")
}

// LogCrawlProgress logs how many jobs have finished out of those submitted.
func LogCrawlProgress(l Logger, done, total int) {
	percentage := 0.0
	if total > 0 {
		percentage = float64(done) / float64(total) * 100
	}

	l.WithFields(map[string]interface{}{
		"done":       done,
		"total":      total,
		"percentage": fmt.Sprintf("%.1f%%", percentage),
	}).Info("Crawl progress")
}

// NewNopLogger creates a no-operation logger for testing
func NewNopLogger() Logger {
	return &nopLogger{}
}

type nopLogger struct{}

func (n *nopLogger) Debug(string)                                     {}
func (n *nopLogger) Info(string)                                      {}
func (n *nopLogger) Warn(string)                                      {}
func (n *nopLogger) Error(string)                                     {}
func (n *nopLogger) Fatal(string)                                     {}
func (n *nopLogger) WithField(string, interface{}) Logger             { return n }
func (n *nopLogger) WithFields(map[string]interface{}) Logger         { return n }
func (n *nopLogger) WithError(error) Logger                           { return n }
func (n *nopLogger) WithContext(context.Context) Logger               { return n }
func (n *nopLogger) DebugWithFields(string, map[string]interface{})   {}
func (n *nopLogger) InfoWithFields(string, map[string]interface{})    {}
func (n *nopLogger) WarnWithFields(string, map[string]interface{})    {}
func (n *nopLogger) ErrorWithFields(string, map[string]interface{})   {}
func (n *nopLogger) FatalWithFields(string, map[string]interface{})   {}
func (n *nopLogger) GetZerolog() *zerolog.Logger                      { zl := zerolog.Nop(); return &zl }
