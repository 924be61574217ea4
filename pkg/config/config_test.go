package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config.Site.PageURL != DefaultPageURL {
		t.Errorf("Expected default page URL %s, got %s", DefaultPageURL, config.Site.PageURL)
	}

	if config.Download.MaxAttempts != 3 {
		t.Errorf("Expected default max attempts to be 3, got %d", config.Download.MaxAttempts)
	}

	if config.Download.ImageTimeout != 15*time.Second {
		t.Errorf("Expected default image timeout to be 15s, got %v", config.Download.ImageTimeout)
	}

	if config.Download.RetryDelay != 2*time.Second {
		t.Errorf("Expected default retry delay to be 2s, got %v", config.Download.RetryDelay)
	}

	if config.Download.MinContentLength != 1000 {
		t.Errorf("Expected default min content length to be 1000, got %d", config.Download.MinContentLength)
	}

	if config.Processing.CropHeight != 50 {
		t.Errorf("Expected default crop height to be 50, got %d", config.Processing.CropHeight)
	}

	if config.Processing.JPEGQuality != 95 {
		t.Errorf("Expected default JPEG quality to be 95, got %d", config.Processing.JPEGQuality)
	}

	if err := config.Validate(); err != nil {
		t.Errorf("Expected default config to be valid, got %v", err)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("BEFOREAFTER_PAGE_URL", "https://example.com/before-after/rhinoplasty/")
	t.Setenv("BEFOREAFTER_RENDER_MODE", "static")
	t.Setenv("BEFOREAFTER_MAX_ATTEMPTS", "5")
	t.Setenv("BEFOREAFTER_CROP_HEIGHT", "30")
	t.Setenv("BEFOREAFTER_OUTPUT_DIR", "/tmp/test-downloads")
	t.Setenv("BEFOREAFTER_WRITE_METADATA", "true")
	t.Setenv("BEFOREAFTER_LOG_LEVEL", "debug")

	config := DefaultConfig()
	if err := config.LoadFromEnv(); err != nil {
		t.Fatalf("Failed to load from environment: %v", err)
	}

	if config.Site.PageURL != "https://example.com/before-after/rhinoplasty/" {
		t.Errorf("Expected page URL from env, got %s", config.Site.PageURL)
	}

	if config.Render.Mode != RenderModeStatic {
		t.Errorf("Expected render mode to be static, got %s", config.Render.Mode)
	}

	if config.Download.MaxAttempts != 5 {
		t.Errorf("Expected max attempts to be 5, got %d", config.Download.MaxAttempts)
	}

	if config.Processing.CropHeight != 30 {
		t.Errorf("Expected crop height to be 30, got %d", config.Processing.CropHeight)
	}

	if config.Output.BaseDirectory != "/tmp/test-downloads" {
		t.Errorf("Expected output directory to be /tmp/test-downloads, got %s", config.Output.BaseDirectory)
	}

	if !config.Processing.WriteMetadata {
		t.Error("Expected metadata writing to be enabled")
	}

	if config.Logging.Level != "debug" {
		t.Errorf("Expected log level to be debug, got %s", config.Logging.Level)
	}
}

func TestLoadFromEnvInvalidNumber(t *testing.T) {
	t.Setenv("BEFOREAFTER_MAX_ATTEMPTS", "three")

	config := DefaultConfig()
	if err := config.LoadFromEnv(); err == nil {
		t.Error("Expected error for non-numeric max attempts")
	}
}

func TestLoadFromFile(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "config.yaml")

	configContent := `
site:
  page_url: "https://example.com/before-after/facelift/"
render:
  mode: "static"
  wait_timeout: 4s
download:
  max_attempts: 4
  prime_delay: 250ms
processing:
  crop_height: 40
logging:
  level: "warn"
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	config := DefaultConfig()
	if err := config.LoadFromFile(configPath); err != nil {
		t.Fatalf("Failed to load config file: %v", err)
	}

	if config.Site.PageURL != "https://example.com/before-after/facelift/" {
		t.Errorf("Expected page URL from file, got %s", config.Site.PageURL)
	}

	if config.Render.WaitTimeout != 4*time.Second {
		t.Errorf("Expected wait timeout 4s, got %v", config.Render.WaitTimeout)
	}

	if config.Download.MaxAttempts != 4 {
		t.Errorf("Expected max attempts 4, got %d", config.Download.MaxAttempts)
	}

	if config.Download.PrimeDelay != 250*time.Millisecond {
		t.Errorf("Expected prime delay 250ms, got %v", config.Download.PrimeDelay)
	}

	// Values missing from the file keep their defaults
	if config.Download.RetryDelay != 2*time.Second {
		t.Errorf("Expected retry delay default to survive, got %v", config.Download.RetryDelay)
	}

	if config.Processing.CropHeight != 40 {
		t.Errorf("Expected crop height 40, got %d", config.Processing.CropHeight)
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	config := DefaultConfig()
	if err := config.LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("Expected error for missing explicit config file")
	}
}
