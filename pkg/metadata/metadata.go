package metadata

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"
	"time"

	"beforeafter/pkg/logger"
	"beforeafter/pkg/models"
	"beforeafter/pkg/storage"

	exif "github.com/dsoprea/go-exif/v3"
)

// exifTags lists the EXIF tags copied into a sidecar
var exifTags = map[string]bool{
	"Make":             true,
	"Model":            true,
	"Software":         true,
	"DateTime":         true,
	"DateTimeOriginal": true,
	"Orientation":      true,
	"Artist":           true,
	"Copyright":        true,
	"ImageDescription": true,
}

// ImageMetadata describes one processed before/after pair
type ImageMetadata struct {
	SourceURL  string `json:"source_url"`
	Src        string `json:"src"`
	Position   int    `json:"position"`
	PageURL    string `json:"page_url,omitempty"`
	Procedure  string `json:"procedure"`
	CaseNumber string `json:"case_number"`
	Filename   string `json:"filename"`

	// Raw download properties
	Format   string `json:"format,omitempty"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	FileSize int64  `json:"file_size"`

	LeftPath  string `json:"left_path"`
	RightPath string `json:"right_path"`

	EXIF   map[string]string `json:"exif,omitempty"`
	HasGPS bool              `json:"has_gps,omitempty"`

	ProcessedAt time.Time `json:"processed_at"`
}

// FromRaw reads the raw download and fills in dimensions and EXIF tags.
// It must be called before the raw file is removed.
func FromRaw(rawPath string, source models.ImageSource, target models.ResolvedTarget) (*ImageMetadata, error) {
	data, err := os.ReadFile(rawPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read raw image: %w", err)
	}

	meta := &ImageMetadata{
		SourceURL:   target.AbsoluteURL,
		Src:         source.Src,
		Position:    source.Position,
		CaseNumber:  target.CaseNumber,
		Filename:    target.SafeFilename,
		FileSize:    int64(len(data)),
		ProcessedAt: time.Now(),
	}

	if cfg, format, err := image.DecodeConfig(bytes.NewReader(data)); err == nil {
		meta.Width = cfg.Width
		meta.Height = cfg.Height
		meta.Format = format
	}

	meta.EXIF, meta.HasGPS = ExtractEXIF(data)
	return meta, nil
}

// ExtractEXIF returns the selected EXIF tags found in data and whether any
// GPS tag is present. Images without EXIF yield an empty map.
func ExtractEXIF(data []byte) (map[string]string, bool) {
	tags := make(map[string]string)

	rawExif, err := exif.SearchAndExtractExif(data)
	if err != nil || rawExif == nil {
		return tags, false
	}

	entries, _, err := exif.GetFlatExifData(rawExif, nil)
	if err != nil {
		return tags, false
	}

	hasGPS := false
	for _, entry := range entries {
		if strings.HasPrefix(entry.TagName, "GPS") {
			hasGPS = true
			continue
		}
		if !exifTags[entry.TagName] {
			continue
		}
		value := strings.TrimSpace(strings.TrimRight(entry.Formatted, "\x00"))
		if value == "" {
			continue
		}
		if _, seen := tags[entry.TagName]; !seen {
			tags[entry.TagName] = value
		}
	}

	return tags, hasGPS
}

// Save writes the metadata as indented JSON
func (m *ImageMetadata) Save(path string) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}

	if err := storage.WriteFileAtomic(path, data); err != nil {
		return fmt.Errorf("failed to write metadata file: %w", err)
	}

	return nil
}

// Load reads metadata from a JSON sidecar
func Load(path string) (*ImageMetadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read metadata file: %w", err)
	}

	var meta ImageMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("failed to unmarshal metadata: %w", err)
	}

	return &meta, nil
}

// GetAspectRatio returns the raw image aspect ratio as a string
func (m *ImageMetadata) GetAspectRatio() string {
	if m.Height == 0 {
		return "unknown"
	}

	ratio := float64(m.Width) / float64(m.Height)

	switch {
	case ratio > 1.7 && ratio < 1.8:
		return "16:9"
	case ratio > 1.3 && ratio < 1.4:
		return "4:3"
	case ratio > 0.9 && ratio < 1.1:
		return "1:1"
	case ratio > 0.74 && ratio < 0.76:
		return "3:4"
	default:
		return fmt.Sprintf("%.2f:1", ratio)
	}
}

// Writer produces sidecars next to the processed output
type Writer struct {
	store  *storage.Manager
	logger logger.Logger
}

// NewWriter creates a Writer for store's processed directory
func NewWriter(store *storage.Manager, log logger.Logger) *Writer {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Writer{
		store:  store,
		logger: log.WithField("component", "metadata"),
	}
}

// Write builds the sidecar for a processed pair from its raw download and
// stores it at <processed>/<stem>.json
func (w *Writer) Write(rawPath, procedure, pageURL string, source models.ImageSource, target models.ResolvedTarget, leftPath, rightPath string) error {
	meta, err := FromRaw(rawPath, source, target)
	if err != nil {
		return err
	}
	meta.Procedure = procedure
	meta.PageURL = pageURL
	meta.LeftPath = filepath.Base(leftPath)
	meta.RightPath = filepath.Base(rightPath)

	path := w.store.MetadataPath(target.Stem())
	if err := meta.Save(path); err != nil {
		return err
	}

	w.logger.DebugWithFields("Metadata written", map[string]interface{}{
		"path":      path,
		"exif_tags": len(meta.EXIF),
	})
	return nil
}
