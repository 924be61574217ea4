package render

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"beforeafter/pkg/config"
	errs "beforeafter/pkg/errors"
	"beforeafter/pkg/logger"
	"beforeafter/pkg/models"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const carouselPage = `<!DOCTYPE html>
<html><body>
<div class="owl-carousel">
  <div class="owl-stage">
    <div class="owl-item"><img src="/img/case-5-1.jpg" alt=""></div>
    <div class="owl-item cloned"><img src="/img/case-5-2.jpg"></div>
    <div class="owl-item"><span>no image</span></div>
    <div class="owl-item"><img src=""></div>
    <div class="owl-item"><img src="https://cdn.example.com/case_12.png"><img src="/ignored.jpg"></div>
  </div>
</div>
</body></html>`

func servePage(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(status)
		fmt.Fprint(w, body)
	}))
	t.Cleanup(ts.Close)
	return ts
}

func TestStaticRenderExtractsSourcesInOrder(t *testing.T) {
	ts := servePage(t, http.StatusOK, carouselPage)
	s := NewStatic(Options{}, logger.NewNopLogger())

	got, err := s.Render(context.Background(), ts.URL+"/before-after/breast-augmentation/")
	require.NoError(t, err)

	want := []models.ImageSource{
		{Src: "/img/case-5-1.jpg", Position: 0},
		{Src: "/img/case-5-2.jpg", Position: 1},
		{Src: "https://cdn.example.com/case_12.png", Position: 2},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Render() mismatch (-want +got):\n%s", diff)
	}
}

func TestStaticRenderMissingContainer(t *testing.T) {
	ts := servePage(t, http.StatusOK, `<html><body><img src="/a.jpg"></body></html>`)
	s := NewStatic(Options{}, logger.NewNopLogger())

	_, err := s.Render(context.Background(), ts.URL)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCarouselNotFound))
	assert.True(t, IsCarouselMissing(err))
}

func TestStaticRenderEmptyCarousel(t *testing.T) {
	ts := servePage(t, http.StatusOK, `<div class="owl-stage"></div>`)
	s := NewStatic(Options{}, logger.NewNopLogger())

	got, err := s.Render(context.Background(), ts.URL)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestStaticRenderCustomSelectors(t *testing.T) {
	ts := servePage(t, http.StatusOK, `<ul class="slides"><li class="slide"><img src="x.jpg"></li></ul>`)
	s := NewStatic(Options{ContainerSelector: ".slides", ItemSelector: ".slide"}, logger.NewNopLogger())

	got, err := s.Render(context.Background(), ts.URL)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "x.jpg", got[0].Src)
}

func TestStaticRenderErrorStatus(t *testing.T) {
	ts := servePage(t, http.StatusNotFound, "gone")
	s := NewStatic(Options{}, logger.NewNopLogger())

	_, err := s.Render(context.Background(), ts.URL)
	require.Error(t, err)
	assert.True(t, errs.IsType(err, errs.ErrorTypeRender))
	assert.False(t, errors.Is(err, ErrCarouselNotFound))
}

func TestStaticSendsUserAgent(t *testing.T) {
	var ua string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ua = r.Header.Get("User-Agent")
		fmt.Fprint(w, `<div class="owl-stage"></div>`)
	}))
	defer ts.Close()

	s := NewStatic(Options{UserAgent: "carousel-test"}, logger.NewNopLogger())
	_, err := s.Render(context.Background(), ts.URL)
	require.NoError(t, err)
	assert.Equal(t, "carousel-test", ua)
}

func TestNewSelectsRenderer(t *testing.T) {
	cfg := config.DefaultConfig()

	r, err := New(cfg, nil)
	require.NoError(t, err)
	assert.IsType(t, &Browser{}, r)

	cfg.Render.Mode = config.RenderModeStatic
	r, err = New(cfg, nil)
	require.NoError(t, err)
	assert.IsType(t, &Static{}, r)

	cfg.Render.Mode = "telepathy"
	_, err = New(cfg, nil)
	assert.Error(t, err)
}

func TestBrowserRender(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping browser test in short mode")
	}
	if !Available() {
		t.Skip("Skipping browser test: Chrome/Chromium not available")
	}

	ts := servePage(t, http.StatusOK, carouselPage)
	b := NewBrowser(Options{Headless: true, SettleDelay: 10 * time.Millisecond, WaitTimeout: 5 * time.Second}, logger.NewNopLogger())

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	got, err := b.Render(ctx, ts.URL)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "/img/case-5-1.jpg", got[0].Src)
}
