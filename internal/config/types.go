// internal/config/types.go
package config

import (
	"time"

	"github.com/valpere/RecipeScrapexter/internal/cache"
	"github.com/valpere/RecipeScrapexter/internal/scraper"
)

// Config is the complete RecipeScrapexter configuration
type Config struct {
	Fetch   FetchConfig   `yaml:"fetch" json:"fetch"`
	Browser BrowserConfig `yaml:"browser" json:"browser"`
	Cache   CacheConfig   `yaml:"cache" json:"cache"`
	Storage StorageConfig `yaml:"storage" json:"storage"`
	Output  OutputConfig  `yaml:"output" json:"output"`
	Server  ServerConfig  `yaml:"server" json:"server"`
	Log     LogConfig     `yaml:"log" json:"log"`
}

// FetchConfig configures the HTTP page fetcher
type FetchConfig struct {
	Timeout       time.Duration     `yaml:"timeout" json:"timeout" split_words:"true"`
	RetryAttempts int               `yaml:"retry_attempts" json:"retry_attempts" split_words:"true"`
	RetryDelay    time.Duration     `yaml:"retry_delay" json:"retry_delay" split_words:"true"`
	RetryMaxDelay time.Duration     `yaml:"retry_max_delay" json:"retry_max_delay" split_words:"true"`
	RateLimit     float64           `yaml:"rate_limit" json:"rate_limit" split_words:"true"` // requests per second, 0 = unlimited
	RateBurst     int               `yaml:"rate_burst" json:"rate_burst" split_words:"true"`
	UserAgent     string            `yaml:"user_agent" json:"user_agent" split_words:"true"`
	Headers       map[string]string `yaml:"headers,omitempty" json:"headers,omitempty"`
	MaxBodyBytes  int64             `yaml:"max_body_bytes" json:"max_body_bytes" split_words:"true"`
	Concurrency   int               `yaml:"concurrency" json:"concurrency"`
}

// BrowserConfig configures headless rendering for JavaScript-built pages
type BrowserConfig struct {
	Enabled        bool          `yaml:"enabled" json:"enabled"`
	Headless       bool          `yaml:"headless" json:"headless"`
	ExecPath       string        `yaml:"exec_path,omitempty" json:"exec_path,omitempty" split_words:"true"`
	Timeout        time.Duration `yaml:"timeout" json:"timeout"`
	WaitForElement string        `yaml:"wait_for_element,omitempty" json:"wait_for_element,omitempty" split_words:"true"`
	WaitDelay      time.Duration `yaml:"wait_delay" json:"wait_delay" split_words:"true"`
	DisableImages  bool          `yaml:"disable_images" json:"disable_images" split_words:"true"`
	MaxTabs        int           `yaml:"max_tabs" json:"max_tabs" split_words:"true"`
	RetryAttempts  int           `yaml:"retry_attempts" json:"retry_attempts" split_words:"true"`
}

// CacheConfig configures the Redis import cache
type CacheConfig struct {
	Enabled  bool          `yaml:"enabled" json:"enabled"`
	Addr     string        `yaml:"addr" json:"addr"`
	Password string        `yaml:"password,omitempty" json:"-"`
	DB       int           `yaml:"db" json:"db"`
	TTL      time.Duration `yaml:"ttl" json:"ttl"`
	Prefix   string        `yaml:"prefix" json:"prefix"`
}

// StorageConfig selects the recipe store. An empty driver disables storage.
type StorageConfig struct {
	Driver   string `yaml:"driver,omitempty" json:"driver,omitempty"`
	DSN      string `yaml:"dsn,omitempty" json:"-"`
	Database string `yaml:"database,omitempty" json:"database,omitempty"`
}

// OutputConfig defines output configuration
type OutputConfig struct {
	Format string `yaml:"format" json:"format"`
	File   string `yaml:"file,omitempty" json:"file,omitempty"`
}

// ServerConfig configures the HTTP API
type ServerConfig struct {
	Addr         string        `yaml:"addr" json:"addr"`
	ReadTimeout  time.Duration `yaml:"read_timeout" json:"read_timeout" split_words:"true"`
	WriteTimeout time.Duration `yaml:"write_timeout" json:"write_timeout" split_words:"true"`
	MetricsPath  string        `yaml:"metrics_path" json:"metrics_path" split_words:"true"`
	MaxBodyBytes int64         `yaml:"max_body_bytes" json:"max_body_bytes" split_words:"true"`
	APIKey       string        `yaml:"api_key,omitempty" json:"api_key,omitempty" split_words:"true"`       // empty disables auth
	RateLimit    float64       `yaml:"rate_limit,omitempty" json:"rate_limit,omitempty" split_words:"true"` // requests per second, 0 = unlimited
	RateBurst    int           `yaml:"rate_burst,omitempty" json:"rate_burst,omitempty" split_words:"true"`
}

// LogConfig configures the logger
type LogConfig struct {
	Level       string `yaml:"level" json:"level"`
	Development bool   `yaml:"development" json:"development"`
}

// Supported storage drivers
var storageDrivers = []string{"sqlite", "postgres", "mysql", "mongodb"}

// Supported output formats
var outputFormats = []string{"json", "yaml", "yml", "csv", "excel", "xlsx"}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Fetch: FetchConfig{
			Timeout:       30 * time.Second,
			RetryAttempts: 2,
			RetryDelay:    time.Second,
			RetryMaxDelay: 30 * time.Second,
			RateBurst:     1,
			UserAgent:     scraper.DefaultUserAgent,
			MaxBodyBytes:  scraper.DefaultMaxBodyBytes,
			Concurrency:   4,
		},
		Browser: BrowserConfig{
			Headless:      true,
			Timeout:       30 * time.Second,
			WaitDelay:     time.Second,
			DisableImages: true,
			MaxTabs:       2,
			RetryAttempts: 1,
		},
		Cache: CacheConfig{
			Addr:   "localhost:6379",
			TTL:    cache.DefaultTTL,
			Prefix: cache.DefaultKeyPrefix,
		},
		Output: OutputConfig{
			Format: "json",
		},
		Server: ServerConfig{
			Addr:         ":8080",
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 60 * time.Second,
			MetricsPath:  "/metrics",
			MaxBodyBytes: 5 << 20,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}
