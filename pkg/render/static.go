package render

import (
	"bytes"
	"context"
	"fmt"
	"net/http"

	errs "beforeafter/pkg/errors"
	"beforeafter/pkg/logger"
	"beforeafter/pkg/models"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
)

// Static extracts carousel sources from server-rendered HTML without a
// browser. Pages that build the carousel in JavaScript need Browser.
type Static struct {
	opts   Options
	client *resty.Client
	logger logger.Logger
}

// NewStatic creates a Static renderer
func NewStatic(opts Options, log logger.Logger) *Static {
	if log == nil {
		log = logger.NewNopLogger()
	}
	log = log.WithField("component", "render.static")
	opts = opts.withDefaults()

	client := resty.New()
	client.SetLogger(logger.NewRestyLogger(log))
	client.SetTimeout(opts.WaitTimeout)
	client.SetHeader("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	if opts.UserAgent != "" {
		client.SetHeader("User-Agent", opts.UserAgent)
	}

	return &Static{opts: opts, client: client, logger: log}
}

// SetTransport replaces the HTTP transport
func (s *Static) SetTransport(rt http.RoundTripper) {
	s.client.SetTransport(rt)
}

// Render fetches pageURL and returns the carousel sources in page order
func (s *Static) Render(ctx context.Context, pageURL string) ([]models.ImageSource, error) {
	res, err := s.client.R().SetContext(ctx).Get(pageURL)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, errs.Wrap(errs.ErrorTypeRender, err, "failed to fetch page")
	}
	logger.LogResponse(s.logger, http.MethodGet, pageURL, res.StatusCode(), int64(len(res.Body())))
	if res.StatusCode() >= http.StatusBadRequest {
		return nil, &errs.Error{
			Type:    errs.ErrorTypeRender,
			Message: fmt.Sprintf("unexpected status %s", res.Status()),
			Code:    res.StatusCode(),
		}
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
	if err != nil {
		return nil, errs.Wrap(errs.ErrorTypeRender, err, "failed to parse page")
	}

	return s.extract(doc)
}

func (s *Static) extract(doc *goquery.Document) ([]models.ImageSource, error) {
	if doc.Find(s.opts.ContainerSelector).Length() == 0 {
		return nil, fmt.Errorf("%w: %s", ErrCarouselNotFound, s.opts.ContainerSelector)
	}

	var srcs []string
	doc.Find(s.opts.ItemSelector).Each(func(_ int, item *goquery.Selection) {
		src, ok := item.Find("img").First().Attr("src")
		if !ok {
			return
		}
		srcs = append(srcs, src)
	})

	sources := toSources(srcs)
	s.logger.DebugWithFields("Found carousel images", map[string]interface{}{"count": len(sources)})
	return sources, nil
}

var _ Renderer = (*Static)(nil)
