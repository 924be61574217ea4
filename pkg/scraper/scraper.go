package scraper

import (
	"context"
	"fmt"
	"net/url"

	"beforeafter/internal/downloader"
	"beforeafter/pkg/config"
	errs "beforeafter/pkg/errors"
	"beforeafter/pkg/imageproc"
	"beforeafter/pkg/logger"
	"beforeafter/pkg/metadata"
	"beforeafter/pkg/models"
	"beforeafter/pkg/naming"
	"beforeafter/pkg/render"
	"beforeafter/pkg/storage"
)

// Scraper orchestrates the render, download and crop pipeline for a page
type Scraper struct {
	renderer   Renderer
	downloader Downloader
	processor  ImageProcessor
	metadata   MetadataWriter
	store      *storage.Manager
	cropHeight int
	observer   Observer
	logger     logger.Logger
}

// Components are the collaborators of a Scraper. Metadata may be nil.
type Components struct {
	Renderer   Renderer
	Downloader Downloader
	Processor  ImageProcessor
	Metadata   MetadataWriter
	Store      *storage.Manager
}

// New wires a Scraper from configuration
func New(cfg *config.Config, log logger.Logger) (*Scraper, error) {
	if log == nil {
		log = logger.NewNopLogger()
	}

	store, err := storage.NewManager(cfg.Output.BaseDirectory)
	if err != nil {
		log.WithError(err).WithField("base_dir", cfg.Output.BaseDirectory).Error("Failed to create storage manager")
		return nil, fmt.Errorf("failed to create storage manager: %w", err)
	}

	renderer, err := render.New(cfg, log)
	if err != nil {
		return nil, err
	}

	c := Components{
		Renderer:   renderer,
		Downloader: downloader.New(downloader.OptionsFromConfig(cfg), log),
		Processor:  imageproc.New(store, imageproc.OptionsFromConfig(&cfg.Processing), log),
		Store:      store,
	}
	if cfg.Processing.WriteMetadata {
		c.Metadata = metadata.NewWriter(store, log)
	}

	logger.LogComponentStart(log, "scraper", map[string]interface{}{
		"renderer":    cfg.Render.Mode,
		"output_dir":  store.ProcessedDir(),
		"crop_height": cfg.Processing.CropHeight,
		"metadata":    cfg.Processing.WriteMetadata,
	})

	return NewWithComponents(c, cfg.Processing.CropHeight, log), nil
}

// NewWithComponents creates a Scraper from explicit collaborators
func NewWithComponents(c Components, cropHeight int, log logger.Logger) *Scraper {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Scraper{
		renderer:   c.Renderer,
		downloader: c.Downloader,
		processor:  c.Processor,
		metadata:   c.Metadata,
		store:      c.Store,
		cropHeight: cropHeight,
		logger:     log.WithField("component", "scraper"),
	}
}

// SetObserver registers o to receive per-source results
func (s *Scraper) SetObserver(o Observer) {
	s.observer = o
}

// Run renders pageURL and processes every carousel image on it. The returned
// summary is never nil; the error is non-nil only when the page itself could
// not be handled or ctx ended the run early.
func (s *Scraper) Run(ctx context.Context, pageURL string) (*models.RunSummary, error) {
	page, err := url.Parse(pageURL)
	if err != nil || page.Scheme == "" || page.Host == "" {
		summary := &models.RunSummary{PageURL: pageURL, OutputDir: s.store.ProcessedDir()}
		return summary, errs.New(errs.ErrorTypeValidation, fmt.Sprintf("invalid page url %q", pageURL))
	}

	base := naming.BaseURL(page)
	procedure := naming.ProcedureTitle(page)

	s.logger.InfoWithFields("Starting scrape", map[string]interface{}{
		"url":       pageURL,
		"procedure": procedure,
	})

	sources, err := s.renderer.Render(ctx, pageURL)
	if err != nil {
		s.logger.WithError(err).WithField("url", pageURL).Error("Failed to load gallery page")
		summary := &models.RunSummary{Procedure: procedure, PageURL: pageURL, OutputDir: s.store.ProcessedDir()}
		return summary, fmt.Errorf("failed to render page: %w", err)
	}

	return s.processSources(ctx, base, procedure, pageURL, sources)
}

// ProcessSources handles an already rendered list of sources. It stops early
// only when ctx is done.
func (s *Scraper) ProcessSources(ctx context.Context, base *url.URL, procedure string, sources []models.ImageSource) (*models.RunSummary, error) {
	return s.processSources(ctx, base, procedure, "", sources)
}

func (s *Scraper) processSources(ctx context.Context, base *url.URL, procedure, pageURL string, sources []models.ImageSource) (*models.RunSummary, error) {
	summary := &models.RunSummary{
		Procedure: procedure,
		PageURL:   pageURL,
		OutputDir: s.store.ProcessedDir(),
	}
	seen := make(map[string]bool, len(sources))
	if s.observer != nil {
		s.observer.Start(len(sources))
	}

	var runErr error
	for _, src := range sources {
		if err := ctx.Err(); err != nil {
			s.logger.WithError(err).Warn("Run cancelled, skipping remaining images")
			runErr = err
			break
		}

		if src.Src == "" || seen[src.Src] {
			s.record(summary, models.SourceResult{Source: src, Status: models.StatusSkipped})
			continue
		}
		seen[src.Src] = true

		result := s.processSource(ctx, base, procedure, pageURL, src)
		logger.LogSourceOutcome(s.logger, src.Src, string(result.Status), result.Err)
		s.record(summary, result)
	}

	logger.LogRunSummary(s.logger, procedure, summary.OutputDir, summary.Attempted, summary.Downloaded, summary.Processed)
	return summary, runErr
}

func (s *Scraper) record(summary *models.RunSummary, result models.SourceResult) {
	summary.Record(result)
	if s.observer != nil {
		s.observer.Record(result)
	}
}

// processSource runs one source through download and processing. Panics are
// turned into a failed result.
func (s *Scraper) processSource(ctx context.Context, base *url.URL, procedure, pageURL string, src models.ImageSource) (result models.SourceResult) {
	result.Source = src
	downloaded := false

	defer func() {
		if r := recover(); r != nil {
			s.logger.ErrorWithFields("Recovered from panic while handling image", map[string]interface{}{
				"src":   src.Src,
				"panic": fmt.Sprint(r),
			})
			result.Err = errs.New(errs.ErrorTypeUnknown, fmt.Sprintf("panic: %v", r))
			if downloaded {
				result.Status = models.StatusProcessFailed
			} else {
				result.Status = models.StatusDownloadFailed
			}
		}
	}()

	target, err := naming.Resolve(base, procedure, src.Src)
	if err != nil {
		result.Status = models.StatusSkipped
		result.Err = err
		return result
	}
	result.Target = target

	rawPath := s.store.RawPath(target)
	if err := s.downloader.Download(ctx, target.AbsoluteURL, rawPath); err != nil {
		result.Status = models.StatusDownloadFailed
		result.Err = err
		return result
	}
	downloaded = true

	defer func() {
		if err := storage.Remove(rawPath); err != nil {
			s.logger.WithError(err).WithField("path", rawPath).Warn("Failed to remove raw image")
		}
	}()

	stem := target.Stem()
	if err := s.processor.Process(rawPath, stem, s.cropHeight); err != nil {
		result.Status = models.StatusProcessFailed
		result.Err = err
		return result
	}

	if s.metadata != nil {
		leftPath := s.store.ProcessedPath(stem, imageproc.SideLeft)
		rightPath := s.store.ProcessedPath(stem, imageproc.SideRight)
		if err := s.metadata.Write(rawPath, procedure, pageURL, src, target, leftPath, rightPath); err != nil {
			s.logger.WithError(err).WithField("src", src.Src).Warn("Failed to write metadata")
		}
	}

	result.Status = models.StatusProcessed
	return result
}
