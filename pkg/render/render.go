package render

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"beforeafter/pkg/config"
	"beforeafter/pkg/logger"
	"beforeafter/pkg/models"
)

// ErrCarouselNotFound is returned when the page has no carousel container
var ErrCarouselNotFound = errors.New("carousel container not found")

// Renderer turns a page URL into the ordered list of carousel image sources
type Renderer interface {
	Render(ctx context.Context, pageURL string) ([]models.ImageSource, error)
}

// Options configures both renderer implementations
type Options struct {
	ContainerSelector string
	ItemSelector      string
	WaitTimeout       time.Duration
	SettleDelay       time.Duration
	UserAgent         string
	Headless          bool
	BrowserBin        string
}

// OptionsFromConfig builds Options from the loaded configuration
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		ContainerSelector: cfg.Render.ContainerSelector,
		ItemSelector:      cfg.Render.ItemSelector,
		WaitTimeout:       cfg.Render.WaitTimeout,
		SettleDelay:       cfg.Render.SettleDelay,
		UserAgent:         cfg.Site.UserAgent,
		Headless:          cfg.Render.Headless,
		BrowserBin:        cfg.Render.BrowserBin,
	}
}

func (o Options) withDefaults() Options {
	if o.ContainerSelector == "" {
		o.ContainerSelector = ".owl-stage"
	}
	if o.ItemSelector == "" {
		o.ItemSelector = ".owl-item"
	}
	if o.WaitTimeout <= 0 {
		o.WaitTimeout = 10 * time.Second
	}
	return o
}

// New returns the renderer selected by cfg.Render.Mode
func New(cfg *config.Config, log logger.Logger) (Renderer, error) {
	opts := OptionsFromConfig(cfg)
	switch strings.ToLower(cfg.Render.Mode) {
	case config.RenderModeBrowser, "":
		return NewBrowser(opts, log), nil
	case config.RenderModeStatic:
		return NewStatic(opts, log), nil
	default:
		return nil, fmt.Errorf("unknown render mode %q", cfg.Render.Mode)
	}
}

// toSources numbers non-empty src values in page order
func toSources(srcs []string) []models.ImageSource {
	sources := make([]models.ImageSource, 0, len(srcs))
	for _, src := range srcs {
		if src == "" {
			continue
		}
		sources = append(sources, models.ImageSource{Src: src, Position: len(sources)})
	}
	return sources
}
