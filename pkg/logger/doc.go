// Package logger provides structured logging for the crawler.
//
// It wraps zerolog behind a small Logger interface so components can take a
// logger as a dependency and tests can swap in NewTestLogger or NewNopLogger.
//
//	if err := logger.Initialize(&cfg.Logging); err != nil {
//	    return err
//	}
//	log := logger.GetLogger().WithField("run_id", runID)
//	log.InfoWithFields("Keyword planned", map[string]interface{}{
//	    "keyword": "owl",
//	    "quota":   120,
//	})
//
// Console output is colourised and written to stderr. When a log file is
// configured, JSON lines are additionally appended to it.
package logger
