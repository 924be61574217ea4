// Package logger provides structured logging for the before/after scraper.
//
// It wraps zerolog behind a small Logger interface so components can take a
// logger as a dependency and tests can swap in NewNopLogger or NewTestLogger.
//
// Output format is chosen by LoggingConfig.Format:
//
//	console  colored, human readable lines
//	json     one JSON object per line
//	auto     console when stdout is a terminal, json otherwise
//
// When LoggingConfig.File is set, JSON lines are also appended to that file.
//
// Usage:
//
//	log, err := logger.New(&cfg.Logging)
//	if err != nil {
//	    return err
//	}
//	log.WithField("url", pageURL).Info("Rendering carousel page")
package logger
