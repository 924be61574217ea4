package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	// AppName is used for the XDG config directory and the env prefix
	AppName = "beforeafter"

	// DefaultPageURL is the carousel page scraped when none is given
	DefaultPageURL = "https://newimage-plasticsurgery.com/before-after/breast-augmentation/"

	// DefaultUserAgent mimics a desktop Chrome so the origin serves images
	DefaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

	envPrefix = "BEFOREAFTER_"
)

// Config holds all configuration options for the before/after scraper
type Config struct {
	// Target site settings
	Site SiteConfig `yaml:"site" json:"site"`

	// Page rendering settings
	Render RenderConfig `yaml:"render" json:"render"`

	// Download settings
	Download DownloadConfig `yaml:"download" json:"download"`

	// Image processing settings
	Processing ProcessingConfig `yaml:"processing" json:"processing"`

	// Output settings
	Output OutputConfig `yaml:"output" json:"output"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// SiteConfig holds target-site configuration
type SiteConfig struct {
	PageURL   string `yaml:"page_url" json:"page_url"`
	Root      string `yaml:"root" json:"root"`
	UserAgent string `yaml:"user_agent" json:"user_agent"`
}

// RenderConfig holds page rendering configuration
type RenderConfig struct {
	Mode              string        `yaml:"mode" json:"mode"`
	Headless          bool          `yaml:"headless" json:"headless"`
	BrowserBin        string        `yaml:"browser_bin" json:"browser_bin"`
	ContainerSelector string        `yaml:"container_selector" json:"container_selector"`
	ItemSelector      string        `yaml:"item_selector" json:"item_selector"`
	WaitTimeout       time.Duration `yaml:"wait_timeout" json:"wait_timeout"`
	SettleDelay       time.Duration `yaml:"settle_delay" json:"settle_delay"`
}

// DownloadConfig holds download-specific configuration
type DownloadConfig struct {
	MaxAttempts      int           `yaml:"max_attempts" json:"max_attempts"`
	ImageTimeout     time.Duration `yaml:"image_timeout" json:"image_timeout"`
	PrimeTimeout     time.Duration `yaml:"prime_timeout" json:"prime_timeout"`
	PrimeDelay       time.Duration `yaml:"prime_delay" json:"prime_delay"`
	RetryDelay       time.Duration `yaml:"retry_delay" json:"retry_delay"`
	MinContentLength int64         `yaml:"min_content_length" json:"min_content_length"`
	CloudflareBypass bool          `yaml:"cloudflare_bypass" json:"cloudflare_bypass"`
}

// ProcessingConfig holds image processing configuration
type ProcessingConfig struct {
	CropHeight    int  `yaml:"crop_height" json:"crop_height"`
	MinDimension  int  `yaml:"min_dimension" json:"min_dimension"`
	JPEGQuality   int  `yaml:"jpeg_quality" json:"jpeg_quality"`
	WriteMetadata bool `yaml:"write_metadata" json:"write_metadata"`
}

// OutputConfig holds output directory configuration
type OutputConfig struct {
	BaseDirectory string `yaml:"base_directory" json:"base_directory"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level" json:"level"`
	File   string `yaml:"file" json:"file"`
	Format string `yaml:"format" json:"format"`
}

// Render modes
const (
	RenderModeBrowser = "browser"
	RenderModeStatic  = "static"
)

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Site: SiteConfig{
			PageURL:   DefaultPageURL,
			UserAgent: DefaultUserAgent,
		},
		Render: RenderConfig{
			Mode:              RenderModeBrowser,
			Headless:          true,
			ContainerSelector: ".owl-stage",
			ItemSelector:      ".owl-item",
			WaitTimeout:       10 * time.Second,
			SettleDelay:       3 * time.Second,
		},
		Download: DownloadConfig{
			MaxAttempts:      3,
			ImageTimeout:     15 * time.Second,
			PrimeTimeout:     5 * time.Second,
			PrimeDelay:       500 * time.Millisecond,
			RetryDelay:       2 * time.Second,
			MinContentLength: 1000,
		},
		Processing: ProcessingConfig{
			CropHeight:   50,
			MinDimension: 100,
			JPEGQuality:  95,
		},
		Output: OutputConfig{
			BaseDirectory: ".",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "auto",
		},
	}
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	if pageURL := os.Getenv(envPrefix + "PAGE_URL"); pageURL != "" {
		c.Site.PageURL = pageURL
	}
	if root := os.Getenv(envPrefix + "SITE_ROOT"); root != "" {
		c.Site.Root = root
	}
	if userAgent := os.Getenv(envPrefix + "USER_AGENT"); userAgent != "" {
		c.Site.UserAgent = userAgent
	}

	if mode := os.Getenv(envPrefix + "RENDER_MODE"); mode != "" {
		c.Render.Mode = mode
	}
	if bin := os.Getenv(envPrefix + "BROWSER_BIN"); bin != "" {
		c.Render.BrowserBin = bin
	}

	if attempts := os.Getenv(envPrefix + "MAX_ATTEMPTS"); attempts != "" {
		val, err := strconv.Atoi(attempts)
		if err != nil {
			return fmt.Errorf("invalid %sMAX_ATTEMPTS: %w", envPrefix, err)
		}
		c.Download.MaxAttempts = val
	}
	if bypass := os.Getenv(envPrefix + "CLOUDFLARE_BYPASS"); bypass != "" {
		c.Download.CloudflareBypass = strings.ToLower(bypass) == "true"
	}

	if crop := os.Getenv(envPrefix + "CROP_HEIGHT"); crop != "" {
		val, err := strconv.Atoi(crop)
		if err != nil {
			return fmt.Errorf("invalid %sCROP_HEIGHT: %w", envPrefix, err)
		}
		c.Processing.CropHeight = val
	}
	if meta := os.Getenv(envPrefix + "WRITE_METADATA"); meta != "" {
		c.Processing.WriteMetadata = strings.ToLower(meta) == "true"
	}

	if outputDir := os.Getenv(envPrefix + "OUTPUT_DIR"); outputDir != "" {
		c.Output.BaseDirectory = outputDir
	}

	if logLevel := os.Getenv(envPrefix + "LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}
	if logFormat := os.Getenv(envPrefix + "LOG_FORMAT"); logFormat != "" {
		c.Logging.Format = logFormat
	}

	return nil
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	// If path is empty, try default locations
	if path == "" {
		path = FindConfigFile()
		if path == "" {
			return nil // No config file found, not an error
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// FindConfigFile searches for a config file in the working directory and
// then in the XDG config directories.
func FindConfigFile() string {
	for _, loc := range []string{AppName + ".yaml", AppName + ".yml"} {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	for _, rel := range []string{"config.yaml", "config.yml"} {
		if path, err := xdg.SearchConfigFile(filepath.Join(AppName, rel)); err == nil {
			return path
		}
	}

	return ""
}

// DefaultConfigPath returns the XDG location `config init` writes to
func DefaultConfigPath() (string, error) {
	return xdg.ConfigFile(filepath.Join(AppName, "config.yaml"))
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	if c.Site.PageURL == "" {
		errs = append(errs, errors.New("page URL is required"))
	} else if u, err := url.Parse(c.Site.PageURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("page URL must be absolute: %q", c.Site.PageURL))
	}
	if c.Site.Root != "" {
		if u, err := url.Parse(c.Site.Root); err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, fmt.Errorf("site root must be absolute: %q", c.Site.Root))
		}
	}

	switch strings.ToLower(c.Render.Mode) {
	case RenderModeBrowser, RenderModeStatic:
	default:
		errs = append(errs, fmt.Errorf("invalid render mode: %q", c.Render.Mode))
	}
	if c.Render.ContainerSelector == "" || c.Render.ItemSelector == "" {
		errs = append(errs, errors.New("carousel selectors are required"))
	}
	if c.Render.WaitTimeout <= 0 {
		errs = append(errs, errors.New("render wait timeout must be positive"))
	}

	if c.Download.MaxAttempts <= 0 {
		errs = append(errs, errors.New("max attempts must be positive"))
	}
	if c.Download.ImageTimeout <= 0 || c.Download.PrimeTimeout <= 0 {
		errs = append(errs, errors.New("download timeouts must be positive"))
	}
	if c.Download.PrimeDelay < 0 || c.Download.RetryDelay < 0 {
		errs = append(errs, errors.New("download delays cannot be negative"))
	}
	if c.Download.MinContentLength < 0 {
		errs = append(errs, errors.New("min content length cannot be negative"))
	}

	if c.Processing.CropHeight < 0 {
		errs = append(errs, errors.New("crop height cannot be negative"))
	}
	if c.Processing.MinDimension <= 0 {
		errs = append(errs, errors.New("min dimension must be positive"))
	}
	if c.Processing.JPEGQuality < 1 || c.Processing.JPEGQuality > 100 {
		errs = append(errs, errors.New("jpeg quality must be between 1 and 100"))
	}

	if c.Output.BaseDirectory == "" {
		errs = append(errs, errors.New("output directory is required"))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, errors.New("invalid log level"))
	}
	validFormats := map[string]bool{
		"auto": true, "console": true, "json": true,
	}
	if !validFormats[strings.ToLower(c.Logging.Format)] {
		errs = append(errs, errors.New("invalid log format"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Save saves the configuration to a file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Create directory if it doesn't exist
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// MergeCommandLineFlags merges command line flags into the configuration
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if pageURL, ok := flags["page-url"].(string); ok && pageURL != "" {
		c.Site.PageURL = pageURL
	}
	if outputDir, ok := flags["output"].(string); ok && outputDir != "" {
		c.Output.BaseDirectory = outputDir
	}
	if mode, ok := flags["renderer"].(string); ok && mode != "" {
		c.Render.Mode = mode
	}
	if headless, ok := flags["headless"].(bool); ok {
		c.Render.Headless = headless
	}
	if crop, ok := flags["crop-height"].(int); ok && crop >= 0 {
		c.Processing.CropHeight = crop
	}
	if meta, ok := flags["metadata"].(bool); ok {
		c.Processing.WriteMetadata = meta
	}
	if logLevel, ok := flags["log-level"].(string); ok && logLevel != "" {
		c.Logging.Level = logLevel
	}
}

// Load loads configuration from all sources with proper precedence
// Precedence order: Command line flags > Environment variables > .env file > Config file > Defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	// Try to load .env files (don't fail if they don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(xdg.ConfigHome, AppName, ".env"))

	// Start with defaults
	config := DefaultConfig()

	// Load from config file
	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	// Override with environment variables (includes values from .env)
	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	// Override with command line flags
	config.MergeCommandLineFlags(flags)

	// Validate final configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}
