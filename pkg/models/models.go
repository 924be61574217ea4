package models

import (
	"path"
	"strings"
)

// ImageSource is one carousel image reference as it appeared on the page
type ImageSource struct {
	Src      string `json:"src"`
	Position int    `json:"position"`
}

// ResolvedTarget is an image source after URL resolution and naming
type ResolvedTarget struct {
	AbsoluteURL  string `json:"absolute_url"`
	CaseNumber   string `json:"case_number"`
	SafeFilename string `json:"safe_filename"`
}

// Stem returns SafeFilename without its final extension
func (t ResolvedTarget) Stem() string {
	return strings.TrimSuffix(t.SafeFilename, path.Ext(t.SafeFilename))
}

// SourceStatus is the terminal state of one image source within a run
type SourceStatus string

const (
	StatusSkipped        SourceStatus = "skipped"
	StatusDownloadFailed SourceStatus = "download_failed"
	StatusProcessFailed  SourceStatus = "process_failed"
	StatusProcessed      SourceStatus = "processed"
)

// SourceResult records what happened to a single image source
type SourceResult struct {
	Source ImageSource    `json:"source"`
	Target ResolvedTarget `json:"target"`
	Status SourceStatus   `json:"status"`
	Err    error          `json:"-"`
}

// RunSummary aggregates the outcome of one scrape run
type RunSummary struct {
	Procedure string `json:"procedure"`
	PageURL   string `json:"page_url"`
	OutputDir string `json:"output_dir"`

	// Attempted counts unique, non-empty sources handed to the downloader
	Attempted      int `json:"attempted"`
	Downloaded     int `json:"downloaded"`
	Processed      int `json:"processed"`
	DownloadFailed int `json:"download_failed"`
	ProcessFailed  int `json:"process_failed"`
	Skipped        int `json:"skipped"`

	Results []SourceResult `json:"results"`
}

// Record appends a result and bumps the matching counter
func (s *RunSummary) Record(r SourceResult) {
	s.Results = append(s.Results, r)
	switch r.Status {
	case StatusSkipped:
		s.Skipped++
	case StatusDownloadFailed:
		s.Attempted++
		s.DownloadFailed++
	case StatusProcessFailed:
		s.Attempted++
		s.Downloaded++
		s.ProcessFailed++
	case StatusProcessed:
		s.Attempted++
		s.Downloaded++
		s.Processed++
	}
}
