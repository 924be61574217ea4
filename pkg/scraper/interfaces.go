package scraper

import (
	"context"

	"beforeafter/pkg/models"
)

// Renderer produces the carousel image sources of a page
type Renderer interface {
	Render(ctx context.Context, pageURL string) ([]models.ImageSource, error)
}

// Downloader fetches one image into a local file
type Downloader interface {
	Download(ctx context.Context, imageURL, destinationPath string) error
}

// ImageProcessor turns a raw image into its cropped left/right halves
type ImageProcessor interface {
	Process(inputPath, baseName string, cropHeight int) error
}

// MetadataWriter records a sidecar for a processed pair. It runs before the
// raw file is removed.
type MetadataWriter interface {
	Write(rawPath, procedure, pageURL string, source models.ImageSource, target models.ResolvedTarget, leftPath, rightPath string) error
}

// Observer is told about progress as a run advances
type Observer interface {
	Start(total int)
	Record(result models.SourceResult)
}
