package tui

import (
	"time"

	"beforeafter/pkg/models"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// RunStartMsg is sent when the page has been rendered
type RunStartMsg struct {
	Total int
}

// ResultMsg is sent for every finished source
type ResultMsg struct {
	Result models.SourceResult
}

// RunDoneMsg is sent once the run is over
type RunDoneMsg struct {
	Err error
}

// LogMsg adds a line to the log panel
type LogMsg struct {
	Level   string
	Message string
}

// TickMsg refreshes the elapsed time
type TickMsg time.Time

// Update handles all messages and updates the model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case TickMsg:
		if m.Done() {
			return m, nil
		}
		return m, tickCmd()

	case RunStartMsg:
		m.StartRun(msg.Total)
		m.AddLogMessage("INFO", "Found carousel images")
		return m, nil

	case ResultMsg:
		m.RecordResult(msg.Result)
		m.logResult(msg.Result)
		return m, nil

	case RunDoneMsg:
		m.FinishRun(msg.Err)
		if msg.Err != nil {
			m.AddLogMessage("ERROR", "Run failed: "+msg.Err.Error())
		} else {
			m.AddLogMessage("SUCCESS", "Run complete")
		}
		return m, tea.Quit

	case LogMsg:
		m.AddLogMessage(msg.Level, msg.Message)
		return m, nil
	}

	return m, nil
}

func (m *Model) logResult(r models.SourceResult) {
	name := displayName(r)
	switch r.Status {
	case models.StatusProcessed:
		m.AddLogMessage("SUCCESS", "Processed: "+name)
	case models.StatusDownloadFailed, models.StatusProcessFailed:
		msg := "Failed: " + name
		if r.Err != nil {
			msg += " - " + r.Err.Error()
		}
		m.AddLogMessage("ERROR", msg)
	}
}

// handleKeyPress handles keyboard input
func (m *Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "Q", "ctrl+c":
		if m.onQuit != nil {
			m.onQuit()
		}
		return m, tea.Quit

	case "?":
		m.showHelp = !m.showHelp
		return m, nil

	case "ctrl+l":
		m.mu.Lock()
		m.logMessages = nil
		m.mu.Unlock()
		return m, nil
	}

	return m, nil
}

// tickCmd returns a command that sends a tick message
func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}
