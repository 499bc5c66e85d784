// Package config loads regional-events settings.
//
// Settings come from an optional YAML file and are then overridden by
// REGIONAL_EVENTS_* environment variables. Command-line flags take precedence
// over both and are applied by the cli package.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is prepended to every environment variable name
const EnvPrefix = "REGIONAL_EVENTS_"

// Config is the top-level application configuration
type Config struct {
	// DataFile is the dataset the table reads and the scrapers rewrite.
	DataFile string `yaml:"data_file" env:"DATA_FILE"`

	// Base and Target are the default comparison regions.
	Base   string `yaml:"base" env:"BASE"`
	Target string `yaml:"target" env:"TARGET"`

	// Listen is the HTTP listen address of the serve command.
	Listen string `yaml:"listen" env:"LISTEN"`

	// RefreshCron schedules scraper runs while serving (e.g. "0 */6 * * *").
	// Empty disables background refresh.
	RefreshCron string `yaml:"refresh" env:"REFRESH"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level" env:"LOG_LEVEL"`

	Scraper ScraperConfig `yaml:"scraper" envPrefix:"SCRAPER_"`
}

// ScraperConfig holds the upstream endpoints and HTTP settings of the scrapers
type ScraperConfig struct {
	NoticeAPIURL  string        `yaml:"notice_api_url" env:"NOTICE_API_URL"`
	NoticeBaseURL string        `yaml:"notice_base_url" env:"NOTICE_BASE_URL"`
	WikiBaseURL   string        `yaml:"wiki_base_url" env:"WIKI_BASE_URL"`
	UserAgent     string        `yaml:"user_agent" env:"USER_AGENT"`
	Timeout       time.Duration `yaml:"timeout" env:"TIMEOUT"`

	// RequestsPerSecond paces requests against each upstream host.
	RequestsPerSecond float64 `yaml:"requests_per_second" env:"REQUESTS_PER_SECOND"`
}

// Default returns an in-memory default configuration
func Default() *Config {
	return &Config{
		DataFile: "static/data.json",
		Base:     "japan",
		Target:   "korea",
		Listen:   "127.0.0.1:8080",
		LogLevel: "info",
		Scraper: ScraperConfig{
			NoticeAPIURL:      "https://api.star.craftegg.jp/api/information",
			NoticeBaseURL:     "https://web.star.craftegg.jp/information/",
			WikiBaseURL:       "https://bandori.fandom.com/wiki/",
			UserAgent:         "regional-events/1.0 (github.com/pfrederiksen/regional-events)",
			Timeout:           30 * time.Second,
			RequestsPerSecond: 1,
		},
	}
}

// Normalize fills in missing or zero values so that partial files still work
func (c *Config) Normalize() {
	def := Default()
	if c.DataFile == "" {
		c.DataFile = def.DataFile
	}
	if c.Base == "" {
		c.Base = def.Base
	}
	if c.Target == "" {
		c.Target = def.Target
	}
	if c.Listen == "" {
		c.Listen = def.Listen
	}
	if c.LogLevel == "" {
		c.LogLevel = def.LogLevel
	}
	if c.Scraper.NoticeAPIURL == "" {
		c.Scraper.NoticeAPIURL = def.Scraper.NoticeAPIURL
	}
	if c.Scraper.NoticeBaseURL == "" {
		c.Scraper.NoticeBaseURL = def.Scraper.NoticeBaseURL
	}
	if c.Scraper.WikiBaseURL == "" {
		c.Scraper.WikiBaseURL = def.Scraper.WikiBaseURL
	}
	if c.Scraper.UserAgent == "" {
		c.Scraper.UserAgent = def.Scraper.UserAgent
	}
	if c.Scraper.Timeout <= 0 {
		c.Scraper.Timeout = def.Scraper.Timeout
	}
	if c.Scraper.RequestsPerSecond <= 0 {
		c.Scraper.RequestsPerSecond = def.Scraper.RequestsPerSecond
	}
}

// Load reads the YAML file at path, applies environment overrides and normalizes the result.
// An empty path or a missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			// defaults
		case err != nil:
			return nil, fmt.Errorf("reading config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing config %s: %w", path, err)
			}
		}
	}

	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}

	cfg.Normalize()
	return cfg, nil
}

// Save writes cfg as YAML, creating the parent directory when needed
func Save(path string, cfg *Config) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating config directory: %w", err)
		}
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}
