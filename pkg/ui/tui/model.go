package tui

import (
	"path"
	"sync"
	"time"

	"beforeafter/pkg/models"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// ItemState is the display state of one carousel image
type ItemState int

const (
	ItemPending ItemState = iota
	ItemProcessed
	ItemSkipped
	ItemFailed
)

// Item is one handled carousel image
type Item struct {
	Position int
	Src      string
	Name     string
	Status   models.SourceStatus
	State    ItemState
	Err      error
	At       time.Time
}

// LogMessage is one line in the log panel
type LogMessage struct {
	Time    time.Time
	Level   string
	Message string
}

// Model is the bubbletea model for a single scrape run
type Model struct {
	spinner  spinner.Model
	progress progress.Model

	pageURL string
	items   []*Item
	total   int

	processed int
	failed    int
	skipped   int

	startTime time.Time
	done      bool
	runErr    error

	width          int
	height         int
	showHelp       bool
	logMessages    []LogMessage
	maxLogMessages int

	// onQuit is called when the user asks to stop the run
	onQuit func()

	mu sync.RWMutex
}

// NewModel creates a model for a run over pageURL
func NewModel(pageURL string, onQuit func()) *Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = statsLabelStyle

	p := progress.New(progress.WithDefaultGradient())
	p.Width = 40

	return &Model{
		spinner:        s,
		progress:       p,
		pageURL:        pageURL,
		startTime:      time.Now(),
		maxLogMessages: 50,
		onQuit:         onQuit,
	}
}

// Init starts the spinner
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, tickCmd())
}

// StartRun resets counters for a run over total sources
func (m *Model) StartRun(total int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.total = total
	m.items = nil
	m.processed, m.failed, m.skipped = 0, 0, 0
	m.startTime = time.Now()
}

// RecordResult adds one finished source
func (m *Model) RecordResult(r models.SourceResult) {
	m.mu.Lock()
	defer m.mu.Unlock()

	item := &Item{
		Position: r.Source.Position,
		Src:      r.Source.Src,
		Name:     displayName(r),
		Status:   r.Status,
		Err:      r.Err,
		At:       time.Now(),
	}

	switch r.Status {
	case models.StatusProcessed:
		item.State = ItemProcessed
		m.processed++
	case models.StatusSkipped:
		item.State = ItemSkipped
		m.skipped++
	case models.StatusDownloadFailed, models.StatusProcessFailed:
		item.State = ItemFailed
		m.failed++
	}

	m.items = append(m.items, item)
	// a run started without StartRun still shows sensible progress
	if len(m.items) > m.total {
		m.total = len(m.items)
	}
}

// FinishRun marks the run as over
func (m *Model) FinishRun(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.done = true
	m.runErr = err
}

// AddLogMessage adds a log line, keeping only the most recent ones
func (m *Model) AddLogMessage(level, message string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.logMessages = append(m.logMessages, LogMessage{
		Time:    time.Now(),
		Level:   level,
		Message: message,
	})

	if len(m.logMessages) > m.maxLogMessages {
		m.logMessages = m.logMessages[len(m.logMessages)-m.maxLogMessages:]
	}
}

// Counts returns processed, failed, skipped and pending totals
func (m *Model) Counts() (processed, failed, skipped, pending int) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.processed, m.failed, m.skipped, m.pendingLocked()
}

// Percent returns the handled fraction of the run in [0, 1]
func (m *Model) Percent() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.percentLocked()
}

// Done reports whether the run has finished
func (m *Model) Done() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.done
}

// RecentItems returns up to n of the most recently handled items, newest last
func (m *Model) RecentItems(n int) []*Item {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.recentLocked(n)
}

func (m *Model) pendingLocked() int {
	return max(m.total-len(m.items), 0)
}

func (m *Model) percentLocked() float64 {
	if m.total == 0 {
		return 0
	}
	return min(float64(len(m.items))/float64(m.total), 1)
}

func (m *Model) recentLocked(n int) []*Item {
	start := max(len(m.items)-n, 0)
	out := make([]*Item, len(m.items)-start)
	copy(out, m.items[start:])
	return out
}

func displayName(r models.SourceResult) string {
	if r.Target.SafeFilename != "" {
		return r.Target.SafeFilename
	}
	if r.Source.Src == "" {
		return "(empty src)"
	}
	return path.Base(r.Source.Src)
}
