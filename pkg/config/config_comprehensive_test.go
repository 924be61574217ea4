package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{
			name:    "relative page URL",
			mutate:  func(c *Config) { c.Site.PageURL = "/before-after/facelift/" },
			wantErr: "page URL must be absolute",
		},
		{
			name:    "missing page URL",
			mutate:  func(c *Config) { c.Site.PageURL = "" },
			wantErr: "page URL is required",
		},
		{
			name:    "bad site root",
			mutate:  func(c *Config) { c.Site.Root = "example.com" },
			wantErr: "site root must be absolute",
		},
		{
			name:    "unknown render mode",
			mutate:  func(c *Config) { c.Render.Mode = "selenium" },
			wantErr: "invalid render mode",
		},
		{
			name:    "zero attempts",
			mutate:  func(c *Config) { c.Download.MaxAttempts = 0 },
			wantErr: "max attempts must be positive",
		},
		{
			name:    "negative retry delay",
			mutate:  func(c *Config) { c.Download.RetryDelay = -time.Second },
			wantErr: "download delays cannot be negative",
		},
		{
			name:    "quality out of range",
			mutate:  func(c *Config) { c.Processing.JPEGQuality = 101 },
			wantErr: "jpeg quality must be between 1 and 100",
		},
		{
			name:    "negative crop",
			mutate:  func(c *Config) { c.Processing.CropHeight = -1 },
			wantErr: "crop height cannot be negative",
		},
		{
			name:    "bad log level",
			mutate:  func(c *Config) { c.Logging.Level = "verbose" },
			wantErr: "invalid log level",
		},
		{
			name:    "bad log format",
			mutate:  func(c *Config) { c.Logging.Format = "xml" },
			wantErr: "invalid log format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateCollectsAllErrors(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Download.MaxAttempts = 0
	cfg.Processing.MinDimension = 0
	cfg.Output.BaseDirectory = ""

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max attempts must be positive")
	assert.Contains(t, err.Error(), "min dimension must be positive")
	assert.Contains(t, err.Error(), "output directory is required")
}

func TestMergeCommandLineFlags(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MergeCommandLineFlags(map[string]interface{}{
		"page-url":    "https://example.com/before-after/liposuction/",
		"output":      "./out",
		"renderer":    "static",
		"headless":    false,
		"crop-height": 0,
		"metadata":    true,
		"log-level":   "error",
	})

	assert.Equal(t, "https://example.com/before-after/liposuction/", cfg.Site.PageURL)
	assert.Equal(t, "./out", cfg.Output.BaseDirectory)
	assert.Equal(t, RenderModeStatic, cfg.Render.Mode)
	assert.False(t, cfg.Render.Headless)
	assert.Equal(t, 0, cfg.Processing.CropHeight)
	assert.True(t, cfg.Processing.WriteMetadata)
	assert.Equal(t, "error", cfg.Logging.Level)
}

func TestMergeCommandLineFlagsIgnoresEmpty(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MergeCommandLineFlags(map[string]interface{}{
		"page-url": "",
		"output":   "",
	})

	assert.Equal(t, DefaultPageURL, cfg.Site.PageURL)
	assert.Equal(t, ".", cfg.Output.BaseDirectory)
}

func TestLoadPrecedence(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "beforeafter.yaml")

	fileContent := `
output:
  base_directory: "/from/file"
processing:
  crop_height: 10
logging:
  level: "warn"
`
	require.NoError(t, os.WriteFile(configPath, []byte(fileContent), 0644))

	t.Setenv("BEFOREAFTER_CROP_HEIGHT", "20")
	t.Setenv("BEFOREAFTER_LOG_LEVEL", "debug")

	cfg, err := Load(configPath, map[string]interface{}{
		"log-level": "error",
	})
	require.NoError(t, err)

	// file only
	assert.Equal(t, "/from/file", cfg.Output.BaseDirectory)
	// env beats file
	assert.Equal(t, 20, cfg.Processing.CropHeight)
	// flag beats env
	assert.Equal(t, "error", cfg.Logging.Level)
}

func TestLoadRejectsInvalid(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "beforeafter.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("render:\n  mode: \"phantom\"\n"), 0644))

	_, err := Load(configPath, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "configuration validation failed")
}

func TestSaveRoundTrip(t *testing.T) {
	tempDir := t.TempDir()
	path := filepath.Join(tempDir, "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.Render.Mode = RenderModeStatic
	cfg.Download.PrimeDelay = 750 * time.Millisecond
	require.NoError(t, cfg.Save(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var raw map[string]interface{}
	require.NoError(t, yaml.Unmarshal(data, &raw))
	assert.Contains(t, raw, "download")

	loaded := DefaultConfig()
	require.NoError(t, loaded.LoadFromFile(path))
	assert.Equal(t, RenderModeStatic, loaded.Render.Mode)
	assert.Equal(t, 750*time.Millisecond, loaded.Download.PrimeDelay)
}
