package storage

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"beforeafter/pkg/models"
	"beforeafter/pkg/naming"
)

const (
	downloadsDir    = "downloads"
	rawSubdir       = "raw"
	processedSubdir = "processed"
)

// Manager owns the raw/processed directory layout under a base directory
type Manager struct {
	rawDir       string
	processedDir string
}

// NewManager creates <base>/downloads/raw and <base>/downloads/processed.
// Calling it again on the same base is a no-op.
func NewManager(baseDir string) (*Manager, error) {
	m := &Manager{
		rawDir:       filepath.Join(baseDir, downloadsDir, rawSubdir),
		processedDir: filepath.Join(baseDir, downloadsDir, processedSubdir),
	}

	for _, dir := range []string{m.rawDir, m.processedDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	return m, nil
}

// RawDir returns the directory holding unprocessed downloads
func (m *Manager) RawDir() string { return m.rawDir }

// ProcessedDir returns the directory holding cropped output
func (m *Manager) ProcessedDir() string { return m.processedDir }

// RawPath returns the download destination for a resolved target
func (m *Manager) RawPath(target models.ResolvedTarget) string {
	return filepath.Join(m.rawDir, naming.RawName(target))
}

// ProcessedPath returns the output path for one cropped half
func (m *Manager) ProcessedPath(stem, side string) string {
	return filepath.Join(m.processedDir, naming.ProcessedName(stem, side))
}

// MetadataPath returns the sidecar path for a processed pair
func (m *Manager) MetadataPath(stem string) string {
	return filepath.Join(m.processedDir, stem+".json")
}

// WriteAtomic streams r into a temporary file next to path and renames it
// into place, so readers never observe a partially written file.
func WriteAtomic(path string, r io.Reader) error {
	// fixed-length temp name; the final name may already be near NAME_MAX
	out, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	tempFile := out.Name()

	_, err = io.Copy(out, r)
	closeErr := out.Close()

	if err != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to write data: %w", err)
	}
	if closeErr != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to close file: %w", closeErr)
	}
	if err := os.Chmod(tempFile, 0644); err != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to set file mode: %w", err)
	}

	if err := os.Rename(tempFile, path); err != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to rename temporary file: %w", err)
	}
	return nil
}

// WriteFileAtomic is WriteAtomic for an in-memory buffer
func WriteFileAtomic(path string, data []byte) error {
	return WriteAtomic(path, bytes.NewReader(data))
}

// Remove deletes path; a file that is already gone is not an error
func Remove(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove %s: %w", path, err)
	}
	return nil
}
