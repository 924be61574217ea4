package logger

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

// LogDownloadAttempt records one attempt of a retried image download
func LogDownloadAttempt(l Logger, url string, attempt, maxAttempts int, err error) {
	fields := map[string]interface{}{
		"url":          url,
		"attempt":      attempt,
		"max_attempts": maxAttempts,
	}
	if err == nil {
		l.DebugWithFields("Download attempt succeeded", fields)
		return
	}
	if attempt >= maxAttempts {
		l.WithError(err).ErrorWithFields("Download failed after all attempts", fields)
		return
	}
	l.WithError(err).WarnWithFields("Download attempt failed, retrying", fields)
}

// LogResponse logs an HTTP response at a level matching its status
func LogResponse(l Logger, method, url string, statusCode int, contentLength int64) {
	fields := map[string]interface{}{
		"method":         method,
		"url":            url,
		"status_code":    statusCode,
		"content_length": contentLength,
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

// LogSourceOutcome logs the final state of one carousel image
func LogSourceOutcome(l Logger, src, status string, err error) {
	entry := l.WithFields(map[string]interface{}{
		"src":    src,
		"status": status,
	})
	if err != nil {
		entry.WithError(err).Warn("Image not processed")
		return
	}
	entry.Info("Image processed")
}

// LogRunSummary logs the end-of-run counters
func LogRunSummary(l Logger, procedure, outputDir string, attempted, downloaded, processed int) {
	l.InfoWithFields("Scrape finished", map[string]interface{}{
		"procedure":  procedure,
		"attempted":  attempted,
		"downloaded": downloaded,
		"processed":  processed,
		"output_dir": outputDir,
	})
}

// LogComponentStart logs when a component starts
func LogComponentStart(l Logger, component string, settings map[string]interface{}) {
	entry := l.WithField("component", component)
	if len(settings) > 0 {
		entry = entry.WithFields(settings)
	}
	entry.Debug("Component started")
}

// NewRestyLogger adapts a Logger to the Errorf/Warnf/Debugf interface resty expects
func NewRestyLogger(l Logger) *RestyLogger {
	return &RestyLogger{l: l.WithField("component", "http")}
}

// RestyLogger forwards resty's internal messages into structured logs
type RestyLogger struct {
	l Logger
}

func (r *RestyLogger) Errorf(format string, v ...interface{}) {
	r.l.Error(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (r *RestyLogger) Warnf(format string, v ...interface{}) {
	r.l.Warn(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (r *RestyLogger) Debugf(format string, v ...interface{}) {
	r.l.Debug(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

// NewNopLogger creates a no-operation logger for testing
func NewNopLogger() Logger {
	return &nopLogger{}
}

type nopLogger struct{}

func (n *nopLogger) Debug(msg string)                                          {}
func (n *nopLogger) Info(msg string)                                           {}
func (n *nopLogger) Warn(msg string)                                           {}
func (n *nopLogger) Error(msg string)                                          {}
func (n *nopLogger) Fatal(msg string)                                          {}
func (n *nopLogger) WithField(key string, value interface{}) Logger            { return n }
func (n *nopLogger) WithFields(fields map[string]interface{}) Logger           { return n }
func (n *nopLogger) WithError(err error) Logger                                { return n }
func (n *nopLogger) WithContext(ctx context.Context) Logger                    { return n }
func (n *nopLogger) DebugWithFields(msg string, fields map[string]interface{}) {}
func (n *nopLogger) InfoWithFields(msg string, fields map[string]interface{})  {}
func (n *nopLogger) WarnWithFields(msg string, fields map[string]interface{})  {}
func (n *nopLogger) ErrorWithFields(msg string, fields map[string]interface{}) {}
func (n *nopLogger) FatalWithFields(msg string, fields map[string]interface{}) {}

func (n *nopLogger) GetZerolog() *zerolog.Logger {
	nop := zerolog.Nop()
	return &nop
}
