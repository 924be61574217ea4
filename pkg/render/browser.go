package render

import (
	"context"
	"errors"
	"fmt"

	errs "beforeafter/pkg/errors"
	"beforeafter/pkg/logger"
	"beforeafter/pkg/models"
	"beforeafter/pkg/retry"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// Browser renders pages in a headless Chromium driven over CDP
type Browser struct {
	opts   Options
	logger logger.Logger
}

// NewBrowser creates a Browser renderer
func NewBrowser(opts Options, log logger.Logger) *Browser {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Browser{
		opts:   opts.withDefaults(),
		logger: log.WithField("component", "render.browser"),
	}
}

// collectScript returns the src of the first img inside each carousel item
const collectScript = `(item) => Array.from(document.querySelectorAll(item))
	.map(el => { const img = el.querySelector('img'); return img ? img.getAttribute('src') : null; })
	.filter(src => src)`

// Render launches a browser, loads pageURL and returns the carousel sources
func (b *Browser) Render(ctx context.Context, pageURL string) ([]models.ImageSource, error) {
	l := launcher.New().
		Context(ctx).
		Headless(b.opts.Headless).
		NoSandbox(true).
		Set("disable-gpu").
		Set("disable-dev-shm-usage")
	if b.opts.BrowserBin != "" {
		l = l.Bin(b.opts.BrowserBin)
	}
	defer l.Cleanup()

	controlURL, err := l.Launch()
	if err != nil {
		return nil, errs.Wrap(errs.ErrorTypeRender, err, "failed to launch browser")
	}
	defer l.Kill()

	browser := rod.New().ControlURL(controlURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		return nil, errs.Wrap(errs.ErrorTypeRender, err, "failed to connect to browser")
	}
	defer browser.Close()

	b.logger.InfoWithFields("Loading page", map[string]interface{}{"url": pageURL})

	page, err := browser.Page(proto.TargetCreateTarget{URL: pageURL})
	if err != nil {
		return nil, errs.Wrap(errs.ErrorTypeRender, err, "failed to open page")
	}
	if err := page.WaitLoad(); err != nil {
		return nil, errs.Wrap(errs.ErrorTypeRender, err, "page did not finish loading")
	}

	// carousel scripts run after load
	if err := retry.Wait(ctx, b.opts.SettleDelay); err != nil {
		return nil, err
	}

	if _, err := page.Timeout(b.opts.WaitTimeout).Element(b.opts.ContainerSelector); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		b.logger.WithError(err).Error("Carousel container never appeared")
		return nil, fmt.Errorf("%w: %s", ErrCarouselNotFound, b.opts.ContainerSelector)
	}

	res, err := page.Eval(collectScript, b.opts.ItemSelector)
	if err != nil {
		return nil, errs.Wrap(errs.ErrorTypeRender, err, "failed to collect image sources")
	}

	var srcs []string
	for _, v := range res.Value.Arr() {
		if v.Nil() {
			continue
		}
		srcs = append(srcs, v.Str())
	}

	sources := toSources(srcs)
	b.logger.InfoWithFields("Found carousel images", map[string]interface{}{
		"url":   pageURL,
		"count": len(sources),
	})
	return sources, nil
}

// Available reports whether a local Chromium can be found
func Available() bool {
	_, ok := launcher.LookPath()
	return ok
}

var _ Renderer = (*Browser)(nil)

// IsCarouselMissing reports whether err means the page had no carousel
func IsCarouselMissing(err error) bool {
	return errors.Is(err, ErrCarouselNotFound)
}
