// Package config holds the service configuration: built-in defaults,
// overridden by an optional YAML file, overridden by the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

// ServerConfig configures the HTTP listeners. MetaAddr serves the operator
// API; empty leaves it off. RateLimit is requests per second per client on
// the public API; zero disables limiting.
type ServerConfig struct {
	Addr      string  `yaml:"addr" json:"addr"`
	MetaAddr  string  `yaml:"meta_addr" json:"meta_addr"`
	RateLimit float64 `yaml:"rate_limit" json:"rate_limit"`
	RateBurst int     `yaml:"rate_burst" json:"rate_burst"`
}

// StorageConfig points at the category store. An empty DSN uses the
// built-in category queries only.
type StorageConfig struct {
	CategoriesDSN string `yaml:"categories_dsn" json:"categories_dsn"`
}

// LogConfig configures the slog handler.
type LogConfig struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"`
}

// ScrapeConfig configures the article scrape pipeline.
type ScrapeConfig struct {
	AllowedDomain string        `yaml:"allowed_domain" json:"allowed_domain"`
	SourceName    string        `yaml:"source_name" json:"source_name"`
	Timeout       time.Duration `yaml:"timeout" json:"timeout"`
	MaxAttempts   int           `yaml:"max_attempts" json:"max_attempts"`
	RetryDelay    time.Duration `yaml:"retry_delay" json:"retry_delay"`
}

// TranslationConfig holds translation provider credentials. Every field is
// optional.
type TranslationConfig struct {
	GoogleKey      string        `yaml:"google_key" json:"google_key"`
	GoogleEndpoint string        `yaml:"google_endpoint" json:"google_endpoint"`
	LibreURL       string        `yaml:"libre_url" json:"libre_url"`
	AzureKey       string        `yaml:"azure_key" json:"azure_key"`
	AzureRegion    string        `yaml:"azure_region" json:"azure_region"`
	AzureEndpoint  string        `yaml:"azure_endpoint" json:"azure_endpoint"`
	Pacing         time.Duration `yaml:"pacing" json:"pacing"`
	Timeout        time.Duration `yaml:"timeout" json:"timeout"`
}

// NewsConfig configures the keyword search and the regional feed.
type NewsConfig struct {
	SearchAPIKey  string        `yaml:"search_api_key" json:"search_api_key"`
	SearchBaseURL string        `yaml:"search_base_url" json:"search_base_url"`
	SearchSource  string        `yaml:"search_source" json:"search_source"`
	FeedBaseURL   string        `yaml:"feed_base_url" json:"feed_base_url"`
	FeedPath      string        `yaml:"feed_path" json:"feed_path"`
	FeedFormat    string        `yaml:"feed_format" json:"feed_format"`
	Timeout       time.Duration `yaml:"timeout" json:"timeout"`
}

// Config is the full service configuration.
type Config struct {
	Server      ServerConfig      `yaml:"server" json:"server"`
	Storage     StorageConfig     `yaml:"storage" json:"storage"`
	Log         LogConfig         `yaml:"log" json:"log"`
	Scrape      ScrapeConfig      `yaml:"scrape" json:"scrape"`
	Translation TranslationConfig `yaml:"translation" json:"translation"`
	News        NewsConfig        `yaml:"news" json:"news"`
}

// Feed formats understood by news.feed_format.
const (
	FeedFormatJSON = "json"
	FeedFormatRSS  = "rss"
)

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{Addr: ":8080", RateLimit: 5, RateBurst: 10},
		Log:    LogConfig{Level: "info", Format: "text"},
		Scrape: ScrapeConfig{
			AllowedDomain: "businessinsider.com",
			SourceName:    "Business Insider",
			Timeout:       10 * time.Second,
			MaxAttempts:   3,
			RetryDelay:    time.Second,
		},
		Translation: TranslationConfig{
			LibreURL:      "https://libretranslate.de/translate",
			AzureEndpoint: "https://api.cognitive.microsofttranslator.com",
			Pacing:        100 * time.Millisecond,
			Timeout:       15 * time.Second,
		},
		News: NewsConfig{
			SearchBaseURL: "https://newsapi.org",
			SearchSource:  "business-insider",
			FeedBaseURL:   "https://jakpost.vercel.app",
			FeedPath:      "/api/category/business/markets",
			FeedFormat:    FeedFormatJSON,
			Timeout:       15 * time.Second,
		},
	}
}

// envString maps environment variables onto string fields.
func (c *Config) envString() map[string]*string {
	return map[string]*string{
		"FINNEWS_ADDR":              &c.Server.Addr,
		"FINNEWS_META_ADDR":         &c.Server.MetaAddr,
		"FINNEWS_CATEGORIES_DSN":    &c.Storage.CategoriesDSN,
		"FINNEWS_LOG_LEVEL":         &c.Log.Level,
		"FINNEWS_LOG_FORMAT":        &c.Log.Format,
		"FINNEWS_ALLOWED_DOMAIN":    &c.Scrape.AllowedDomain,
		"GOOGLE_TRANSLATE_API_KEY":  &c.Translation.GoogleKey,
		"GOOGLE_TRANSLATE_ENDPOINT": &c.Translation.GoogleEndpoint,
		"LIBRE_TRANSLATE_URL":       &c.Translation.LibreURL,
		"AZURE_TRANSLATOR_KEY":      &c.Translation.AzureKey,
		"AZURE_TRANSLATOR_REGION":   &c.Translation.AzureRegion,
		"AZURE_TRANSLATOR_ENDPOINT": &c.Translation.AzureEndpoint,
		"NEWS_API_KEY":              &c.News.SearchAPIKey,
		"NEWS_API_BASE_URL":         &c.News.SearchBaseURL,
		"FINNEWS_FEED_BASE_URL":     &c.News.FeedBaseURL,
		"FINNEWS_FEED_FORMAT":       &c.News.FeedFormat,
	}
}

// ApplyEnv overrides fields from non-empty environment variables.
func (c *Config) ApplyEnv() error {
	for name, field := range c.envString() {
		if value, ok := os.LookupEnv(name); ok && value != "" {
			*field = value
		}
	}

	if value := os.Getenv("FINNEWS_SCRAPE_MAX_ATTEMPTS"); value != "" {
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid FINNEWS_SCRAPE_MAX_ATTEMPTS: %w", err)
		}
		c.Scrape.MaxAttempts = n
	}
	if value := os.Getenv("FINNEWS_TRANSLATION_PACING"); value != "" {
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid FINNEWS_TRANSLATION_PACING: %w", err)
		}
		c.Translation.Pacing = d
	}
	return nil
}

// Validate rejects structurally invalid values. Missing credentials are
// not errors.
func (c *Config) Validate() error {
	var errs []error
	if c.Server.Addr == "" {
		errs = append(errs, errors.New("server.addr must not be empty"))
	}
	if c.Server.MetaAddr != "" && c.Server.MetaAddr == c.Server.Addr {
		errs = append(errs, errors.New("server.meta_addr must differ from server.addr"))
	}
	if c.Server.RateLimit < 0 {
		errs = append(errs, errors.New("server.rate_limit must not be negative"))
	}
	if c.Server.RateLimit > 0 && c.Server.RateBurst < 1 {
		errs = append(errs, fmt.Errorf("server.rate_burst must be at least 1, got %d", c.Server.RateBurst))
	}
	if c.Scrape.MaxAttempts < 1 {
		errs = append(errs, fmt.Errorf("scrape.max_attempts must be at least 1, got %d", c.Scrape.MaxAttempts))
	}
	if c.Scrape.Timeout <= 0 {
		errs = append(errs, errors.New("scrape.timeout must be positive"))
	}
	if c.Translation.Pacing < 0 {
		errs = append(errs, errors.New("translation.pacing must not be negative"))
	}
	switch c.News.FeedFormat {
	case FeedFormatJSON, FeedFormatRSS:
	default:
		errs = append(errs, fmt.Errorf("news.feed_format must be %q or %q, got %q", FeedFormatJSON, FeedFormatRSS, c.News.FeedFormat))
	}
	return errors.Join(errs...)
}

// Redacted returns a copy with every credential masked.
func (c Config) Redacted() Config {
	mask := func(s string) string {
		if s == "" {
			return ""
		}
		return "********"
	}
	c.Translation.GoogleKey = mask(c.Translation.GoogleKey)
	c.Translation.AzureKey = mask(c.Translation.AzureKey)
	c.News.SearchAPIKey = mask(c.News.SearchAPIKey)
	return c
}
