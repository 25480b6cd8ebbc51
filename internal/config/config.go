// Package config loads rl-earnings settings.
//
// Values are layered from lowest to highest precedence:
//  1. defaults (Default)
//  2. a YAML file, when a path is given or RLE_CONFIG is set
//  3. environment variables with the RLE_ prefix (RLE_STORE, RLE_REGIONS_NA, ...)
//
// Command-line flags are applied on top by the cli package.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/lpearl21/rl-earnings/internal/logger"
	"github.com/lpearl21/rl-earnings/internal/region"
	"github.com/lpearl21/rl-earnings/internal/scraper"
	"github.com/lpearl21/rl-earnings/internal/storage"
)

// EnvPrefix prefixes every environment variable the loader reads
const EnvPrefix = "RLE_"

// DefaultDataDir is where the dataset lives unless configured otherwise
const DefaultDataDir = "~/.local/share/rl-earnings"

var (
	ErrInvalidConfig = errors.New("invalid config")
	ErrLoadConfig    = errors.New("load config failed")
)

// Config contains process configuration
type Config struct {
	// SourceURL is the Liquipedia player-earnings page.
	SourceURL string        `koanf:"source_url"`
	UserAgent string        `koanf:"user_agent"`
	Timeout   time.Duration `koanf:"timeout"`

	// Retries is the number of extra attempts after a failed fetch.
	Retries   int           `koanf:"retries"`
	RetryWait time.Duration `koanf:"retry_wait"`

	// CacheTTL is how long a fetched page is reused from the data directory. Zero disables the cache.
	CacheTTL time.Duration `koanf:"cache_ttl"`

	DataDir     string `koanf:"data_dir"`
	DatasetFile string `koanf:"dataset_file"`

	// Store selects the dataset backend: csv or sqlite.
	Store string `koanf:"store"`

	LogLevel string `koanf:"log_level"`

	// MetricsFile receives Prometheus text-format metrics after each run. Empty disables it.
	MetricsFile string `koanf:"metrics_file"`

	TableSelector string `koanf:"table_selector"`

	Regions region.Config `koanf:"regions"`
}

// Default returns the configuration used when nothing else is set
func Default() *Config {
	return &Config{
		SourceURL:     scraper.PlayerEarningsURL,
		UserAgent:     scraper.UserAgent,
		Timeout:       scraper.Timeout,
		Retries:       2,
		RetryWait:     2 * time.Second,
		CacheTTL:      time.Hour,
		DataDir:       DefaultDataDir,
		DatasetFile:   storage.DefaultCSVFile,
		Store:         storage.KindCSV,
		LogLevel:      "info",
		TableSelector: scraper.DefaultLayout().TableSelector,
		Regions:       region.DefaultConfig(),
	}
}

// Validate checks every field and returns an error wrapping ErrInvalidConfig
func (c *Config) Validate() error {
	u, err := url.Parse(c.SourceURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("%w: source_url %q must be an http(s) URL", ErrInvalidConfig, c.SourceURL)
	}

	if c.Timeout <= 0 {
		return fmt.Errorf("%w: timeout must be positive", ErrInvalidConfig)
	}

	if c.Retries < 0 {
		return fmt.Errorf("%w: retries must not be negative", ErrInvalidConfig)
	}

	if c.RetryWait < 0 {
		return fmt.Errorf("%w: retry_wait must not be negative", ErrInvalidConfig)
	}

	if c.CacheTTL < 0 {
		return fmt.Errorf("%w: cache_ttl must not be negative", ErrInvalidConfig)
	}

	if strings.TrimSpace(c.DataDir) == "" {
		return fmt.Errorf("%w: data_dir must not be empty", ErrInvalidConfig)
	}

	switch strings.ToLower(c.Store) {
	case storage.KindCSV, storage.KindSQLite:
	default:
		return fmt.Errorf("%w: store %q must be 'csv' or 'sqlite'", ErrInvalidConfig, c.Store)
	}

	if _, err := logger.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	if strings.TrimSpace(c.TableSelector) == "" {
		return fmt.Errorf("%w: table_selector must not be empty", ErrInvalidConfig)
	}

	if _, err := region.NewClassifier(c.Regions); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	return nil
}

// Classifier builds the region classifier described by the config
func (c *Config) Classifier() (*region.Classifier, error) {
	classifier, err := region.NewClassifier(c.Regions)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return classifier, nil
}

// Layout returns the default table layout with the configured selector
func (c *Config) Layout() scraper.Layout {
	layout := scraper.DefaultLayout()
	if c.TableSelector != "" {
		layout.TableSelector = c.TableSelector
	}
	return layout
}

// HTTPOptions returns the fetch settings for scraper.NewHTTPSource
func (c *Config) HTTPOptions() scraper.HTTPOptions {
	return scraper.HTTPOptions{
		URL:       c.SourceURL,
		UserAgent: c.UserAgent,
		Timeout:   c.Timeout,
		Retries:   c.Retries,
		RetryWait: c.RetryWait,
	}
}
