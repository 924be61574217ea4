package ui

import (
	"fmt"
	"io"

	"beforeafter/pkg/models"

	"github.com/jedib0t/go-pretty/v6/table"
)

// NewTable returns a rounded table writing to w
func NewTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(w)
	return t
}

// RenderSummary writes the run counters and any failed sources to w
func RenderSummary(w io.Writer, s *models.RunSummary) {
	t := NewTable(w)
	t.SetTitle("%s", s.Procedure)
	t.AppendHeader(table.Row{"Result", "Count"})
	t.AppendRows([]table.Row{
		{"Attempted", s.Attempted},
		{"Downloaded", s.Downloaded},
		{"Processed", s.Processed},
		{"Download failed", s.DownloadFailed},
		{"Process failed", s.ProcessFailed},
		{"Skipped", s.Skipped},
	})
	t.AppendSeparator()
	t.AppendRow(table.Row{"Output", s.OutputDir})
	t.Render()

	var failures []models.SourceResult
	for _, r := range s.Results {
		if r.Err != nil {
			failures = append(failures, r)
		}
	}
	if len(failures) == 0 {
		return
	}

	ft := NewTable(w)
	ft.AppendHeader(table.Row{"#", "Source", "Status", "Error"})
	for _, r := range failures {
		ft.AppendRow(table.Row{r.Source.Position, r.Source.Src, string(r.Status), fmt.Sprint(r.Err)})
	}
	ft.Render()
}

// PrintSummary renders the summary to the terminal unless quiet mode is on
func PrintSummary(s *models.RunSummary) {
	if IsQuietMode() {
		return
	}
	RenderSummary(Output(), s)
}
