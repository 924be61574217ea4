package tui

import (
	"bytes"
	"encoding/json"
	"strings"
	"sync"

	"beforeafter/pkg/models"

	tea "github.com/charmbracelet/bubbletea"
)

// TUI is a full screen progress view for one scrape run. It satisfies the
// scraper's Observer interface.
type TUI struct {
	program *tea.Program
	model   *Model

	// queued messages are delivered in order by pump once Run is called
	mu    sync.Mutex
	queue []tea.Msg
	wake  chan struct{}
}

// New creates a TUI for pageURL. onQuit runs when the user stops the run.
func New(pageURL string, onQuit func(), opts ...tea.ProgramOption) *TUI {
	model := NewModel(pageURL, onQuit)
	opts = append([]tea.ProgramOption{tea.WithAltScreen()}, opts...)

	return &TUI{
		program: tea.NewProgram(model, opts...),
		model:   model,
		wake:    make(chan struct{}, 1),
	}
}

// Run blocks until the run finishes or the user quits
func (t *TUI) Run() error {
	done := make(chan struct{})
	go t.pump(done)

	_, err := t.program.Run()
	close(done)
	return err
}

// Send queues a message for the TUI. It never blocks.
func (t *TUI) Send(msg tea.Msg) {
	t.mu.Lock()
	t.queue = append(t.queue, msg)
	t.mu.Unlock()

	select {
	case t.wake <- struct{}{}:
	default:
	}
}

func (t *TUI) pump(done <-chan struct{}) {
	for {
		t.mu.Lock()
		msgs := t.queue
		t.queue = nil
		t.mu.Unlock()

		// program.Send returns immediately once the program has exited
		for _, msg := range msgs {
			t.program.Send(msg)
		}

		select {
		case <-t.wake:
		case <-done:
			return
		}
	}
}

// Start implements the scraper observer
func (t *TUI) Start(total int) {
	t.Send(RunStartMsg{Total: total})
}

// Record implements the scraper observer
func (t *TUI) Record(r models.SourceResult) {
	t.Send(ResultMsg{Result: r})
}

// Finish tells the TUI the run is over; it exits on its own afterwards
func (t *TUI) Finish(err error) {
	t.Send(RunDoneMsg{Err: err})
}

// LogWriter returns an io.Writer that turns log lines into log panel entries
func (t *TUI) LogWriter() *LogWriter {
	return &LogWriter{send: t.Send}
}

// LogWriter accepts zerolog JSON lines and forwards them to the log panel.
// Lines that are not JSON are shown as they are.
type LogWriter struct {
	mu   sync.Mutex
	buf  []byte
	send func(tea.Msg)
}

// Write implements io.Writer
func (w *LogWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.buf = append(w.buf, p...)
	for {
		i := bytes.IndexByte(w.buf, '\n')
		if i < 0 {
			break
		}
		line := strings.TrimSpace(string(w.buf[:i]))
		w.buf = w.buf[i+1:]
		if line != "" {
			w.send(parseLogLine(line))
		}
	}
	return len(p), nil
}

func parseLogLine(line string) LogMsg {
	var entry struct {
		Level   string `json:"level"`
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal([]byte(line), &entry); err != nil || entry.Message == "" {
		return LogMsg{Level: "INFO", Message: line}
	}

	msg := entry.Message
	if entry.Error != "" {
		msg += ": " + entry.Error
	}
	return LogMsg{Level: strings.ToUpper(entry.Level), Message: msg}
}
