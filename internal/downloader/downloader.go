package downloader

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"time"

	"beforeafter/pkg/config"
	errs "beforeafter/pkg/errors"
	"beforeafter/pkg/logger"
	"beforeafter/pkg/retry"
	"beforeafter/pkg/storage"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
)

const imageAccept = "image/avif,image/webp,image/apng,image/svg+xml,image/*,*/*;q=0.8"

// Options controls how images are fetched
type Options struct {
	MaxAttempts      int
	ImageTimeout     time.Duration
	PrimeTimeout     time.Duration
	PrimeDelay       time.Duration
	RetryDelay       time.Duration
	MinContentLength int64
	UserAgent        string
	// SiteRoot overrides the priming/referer origin; empty means the image's own origin
	SiteRoot         string
	CloudflareBypass bool
}

// OptionsFromConfig builds Options from the loaded configuration
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		MaxAttempts:      cfg.Download.MaxAttempts,
		ImageTimeout:     cfg.Download.ImageTimeout,
		PrimeTimeout:     cfg.Download.PrimeTimeout,
		PrimeDelay:       cfg.Download.PrimeDelay,
		RetryDelay:       cfg.Download.RetryDelay,
		MinContentLength: cfg.Download.MinContentLength,
		UserAgent:        cfg.Site.UserAgent,
		SiteRoot:         cfg.Site.Root,
		CloudflareBypass: cfg.Download.CloudflareBypass,
	}
}

// Downloader fetches a single image into a local file, retrying transient
// failures. Every attempt uses a brand new HTTP session.
type Downloader struct {
	opts      Options
	transport http.RoundTripper
	retrier   *retry.Retrier
	logger    logger.Logger
}

// New creates a Downloader
func New(opts Options, log logger.Logger) *Downloader {
	if log == nil {
		log = logger.NewNopLogger()
	}
	log = log.WithField("component", "downloader")

	return &Downloader{
		opts: opts,
		retrier: retry.NewRetrier(&retry.Config{
			MaxAttempts: opts.MaxAttempts,
			Backoff:     &retry.ConstantBackoff{Delay: opts.RetryDelay},
			RetryIf:     retry.DefaultRetryIf,
			Logger:      log,
		}),
		logger: log,
	}
}

// SetTransport replaces the base round tripper used by new sessions
func (d *Downloader) SetTransport(rt http.RoundTripper) {
	d.transport = rt
}

// Download fetches imageURL and writes it to destinationPath.
// It returns nil only when the file has been written.
func (d *Downloader) Download(ctx context.Context, imageURL, destinationPath string) error {
	target, err := url.Parse(imageURL)
	if err != nil || target.Scheme == "" || target.Host == "" {
		return errs.New(errs.ErrorTypeValidation, fmt.Sprintf("invalid image url %q", imageURL))
	}
	root := d.siteRoot(target)
	maxAttempts := d.retrier.MaxAttempts()

	r := d.retrier.
		WithContext(ctx).
		WithLogger(d.logger.WithField("url", imageURL)).
		WithOnRetry(func(attempt int, err error, _ time.Duration) {
			logger.LogDownloadAttempt(d.logger, imageURL, attempt, maxAttempts, err)
		})

	data, err := retry.DoWith(r, func(attempt int) ([]byte, error) {
		d.logger.DebugWithFields("downloading image", map[string]interface{}{
			"url":     imageURL,
			"attempt": attempt,
		})
		return d.attempt(ctx, imageURL, root)
	})
	if err != nil {
		return err
	}

	if err := storage.WriteFileAtomic(destinationPath, data); err != nil {
		return errs.Wrap(errs.ErrorTypeIO, err, "failed to save image")
	}

	d.logger.DebugWithFields("image saved", map[string]interface{}{
		"url":   imageURL,
		"path":  destinationPath,
		"bytes": len(data),
	})
	return nil
}

func (d *Downloader) siteRoot(target *url.URL) string {
	if d.opts.SiteRoot != "" {
		return d.opts.SiteRoot
	}
	return (&url.URL{Scheme: target.Scheme, Host: target.Host, Path: "/"}).String()
}

// newSession builds a resty client with an empty cookie jar
func (d *Downloader) newSession(root string) (*resty.Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, errs.Wrap(errs.ErrorTypeUnknown, err, "failed to create cookie jar")
	}

	client := resty.New()
	client.SetCookieJar(jar)
	if d.transport != nil {
		client.SetTransport(d.transport)
	}
	if d.opts.CloudflareBypass {
		client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)
	}
	client.SetLogger(logger.NewRestyLogger(d.logger))
	client.SetHeaders(map[string]string{
		"User-Agent":      d.opts.UserAgent,
		"Accept":          imageAccept,
		"Accept-Language": "en-US,en;q=0.9",
		"Referer":         root,
		"Connection":      "keep-alive",
		"Sec-Fetch-Site":  "same-origin",
		"Sec-Fetch-Mode":  "no-cors",
		"Sec-Fetch-Dest":  "image",
	})
	return client, nil
}

// attempt performs one prime-then-fetch cycle and validates the response
func (d *Downloader) attempt(ctx context.Context, imageURL, root string) ([]byte, error) {
	client, err := d.newSession(root)
	if err != nil {
		return nil, err
	}
	defer client.GetClient().CloseIdleConnections()

	primeCtx, cancelPrime := context.WithTimeout(ctx, d.opts.PrimeTimeout)
	_, err = client.R().SetContext(primeCtx).Head(root)
	cancelPrime()
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, errs.Wrap(errs.ErrorTypeNetwork, err, "priming request failed")
	}

	if err := retry.Wait(ctx, d.opts.PrimeDelay); err != nil {
		return nil, err
	}

	getCtx, cancelGet := context.WithTimeout(ctx, d.opts.ImageTimeout)
	defer cancelGet()
	res, err := client.R().SetContext(getCtx).Get(imageURL)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, errs.Wrap(errs.ErrorTypeNetwork, err, "image request failed")
	}

	body := res.Body()
	// without Content-Length the received byte count is validated instead of 0
	length := declaredLength(res, len(body))
	logger.LogResponse(d.logger, http.MethodGet, imageURL, res.StatusCode(), length)

	if errs.IsRetryableStatusCode(res.StatusCode()) {
		return nil, &errs.Error{
			Type:    errs.ErrorTypeValidation,
			Message: fmt.Sprintf("unexpected status %s", res.Status()),
			Code:    res.StatusCode(),
		}
	}
	if length < d.opts.MinContentLength {
		return nil, &errs.Error{
			Type:    errs.ErrorTypeValidation,
			Message: fmt.Sprintf("response too small (%d bytes), likely an error page", length),
			Code:    res.StatusCode(),
		}
	}

	return bytes.Clone(body), nil
}

// declaredLength prefers the Content-Length header and falls back to the
// number of bytes actually received.
func declaredLength(res *resty.Response, received int) int64 {
	if res.RawResponse != nil && res.RawResponse.ContentLength >= 0 {
		return res.RawResponse.ContentLength
	}
	return int64(received)
}
