package ui

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"beforeafter/pkg/models"
)

const (
	ProgressBar   = "█"
	ProgressEmpty = "░"
	barWidth      = 20
)

// StatusTracker keeps track of per-image progress during a run
type StatusTracker struct {
	mu        sync.Mutex
	Total     int
	Handled   int
	Processed int
	Failed    int
	StartTime time.Time
}

// NewStatusTracker creates a tracker for total images
func NewStatusTracker(total int) *StatusTracker {
	return &StatusTracker{
		Total:     total,
		StartTime: time.Now(),
	}
}

// Start resets the tracker for a run over total sources
func (st *StatusTracker) Start(total int) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.Total = total
	st.Handled, st.Processed, st.Failed = 0, 0, 0
	st.StartTime = time.Now()
}

// Record counts one finished source and prints the progress line
func (st *StatusTracker) Record(r models.SourceResult) {
	st.mu.Lock()
	st.Handled++
	switch r.Status {
	case models.StatusProcessed:
		st.Processed++
	case models.StatusDownloadFailed, models.StatusProcessFailed:
		st.Failed++
	}
	line := st.progressLine(r)
	st.mu.Unlock()

	printf(false, "%s", line)
}

// GetProgress returns a formatted progress bar
func (st *StatusTracker) GetProgress() string {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.bar()
}

func (st *StatusTracker) bar() string {
	filled := 0
	if st.Total > 0 {
		filled = min(st.Handled*barWidth/st.Total, barWidth)
	}
	bar := strings.Repeat(ProgressBar, filled) + strings.Repeat(ProgressEmpty, barWidth-filled)
	return fmt.Sprintf("[%s] %d/%d", bar, st.Handled, st.Total)
}

func (st *StatusTracker) progressLine(r models.SourceResult) string {
	label := Green("[PROCESSED]")
	switch r.Status {
	case models.StatusSkipped:
		label = Dim("[SKIPPED]")
	case models.StatusDownloadFailed, models.StatusProcessFailed:
		label = Red("[FAILED]")
	}
	return fmt.Sprintf("%s %s %s\n", label, st.bar(), Dim(r.Source.Src))
}

// GetElapsedTime returns the elapsed time since tracking started
func (st *StatusTracker) GetElapsedTime() time.Duration {
	return time.Since(st.StartTime)
}

// GetRate returns the average number of processed images per minute
func (st *StatusTracker) GetRate() float64 {
	st.mu.Lock()
	defer st.mu.Unlock()
	elapsed := time.Since(st.StartTime).Minutes()
	if elapsed == 0 {
		return 0
	}
	return float64(st.Processed) / elapsed
}
