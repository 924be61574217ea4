package ui

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"beforeafter/pkg/models"

	"github.com/stretchr/testify/assert"
)

func captureOutput(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := SetOutput(&buf)
	t.Cleanup(func() {
		SetOutput(prev)
		SetQuietMode(false)
	})
	return &buf
}

func TestRenderSummary(t *testing.T) {
	var buf bytes.Buffer
	s := &models.RunSummary{Procedure: "Breast Augmentation", OutputDir: "downloads/processed"}
	s.Record(models.SourceResult{Source: models.ImageSource{Src: "a.jpg"}, Status: models.StatusProcessed})
	s.Record(models.SourceResult{Source: models.ImageSource{Src: "b.jpg", Position: 1}, Status: models.StatusDownloadFailed, Err: errors.New("status 403")})
	s.Record(models.SourceResult{Source: models.ImageSource{Src: "a.jpg", Position: 2}, Status: models.StatusSkipped})

	RenderSummary(&buf, s)
	out := buf.String()

	assert.Contains(t, out, "Breast Augmentation")
	assert.Contains(t, out, "Attempted")
	assert.Contains(t, out, "downloads/processed")
	assert.Contains(t, out, "╭", "rounded style")
	assert.Contains(t, out, "b.jpg")
	assert.Contains(t, out, "status 403")
	assert.Contains(t, out, "download_failed")
}

func TestRenderSummaryNoFailures(t *testing.T) {
	var buf bytes.Buffer
	s := &models.RunSummary{Procedure: "Facelift"}
	s.Record(models.SourceResult{Source: models.ImageSource{Src: "a.jpg"}, Status: models.StatusProcessed})

	RenderSummary(&buf, s)
	assert.NotContains(t, buf.String(), "Error")
}

func TestQuietModeSuppressesOutput(t *testing.T) {
	buf := captureOutput(t)
	SetQuietMode(true)

	PrintInfo("Page", "https://example.com")
	PrintSuccess("done")
	PrintSummary(&models.RunSummary{})
	assert.Empty(t, buf.String())

	PrintError("boom")
	assert.Contains(t, buf.String(), "boom")
}

func TestPrintHelpers(t *testing.T) {
	buf := captureOutput(t)

	PrintInfo("Page", "https://example.com")
	PrintWarning("careful", "detail")
	PrintError("failed", errors.New("why"))

	out := buf.String()
	assert.Contains(t, out, "Page")
	assert.Contains(t, out, "careful: detail")
	assert.Contains(t, out, "failed: why")
}

func TestStatusTracker(t *testing.T) {
	buf := captureOutput(t)
	st := NewStatusTracker(4)

	st.Record(models.SourceResult{Source: models.ImageSource{Src: "a.jpg"}, Status: models.StatusProcessed})
	st.Record(models.SourceResult{Source: models.ImageSource{Src: "b.jpg"}, Status: models.StatusProcessFailed})

	assert.Equal(t, 2, st.Handled)
	assert.Equal(t, 1, st.Processed)
	assert.Equal(t, 1, st.Failed)
	assert.Contains(t, st.GetProgress(), "2/4")
	assert.Equal(t, 10, strings.Count(st.GetProgress(), ProgressBar))
	assert.Contains(t, buf.String(), "[FAILED]")
}
