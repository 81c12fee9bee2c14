// pkg/api/api.go

// Package api is the public entry point: parse recipe pages directly with
// ParseHTML, or build a Client from configuration to fetch, cache and store
// imports.
package api

import (
	"context"
	"errors"
	"fmt"

	"github.com/valpere/RecipeScrapexter/internal/browser"
	"github.com/valpere/RecipeScrapexter/internal/cache"
	"github.com/valpere/RecipeScrapexter/internal/config"
	apperrors "github.com/valpere/RecipeScrapexter/internal/errors"
	"github.com/valpere/RecipeScrapexter/internal/monitoring"
	"github.com/valpere/RecipeScrapexter/internal/scraper"
	"github.com/valpere/RecipeScrapexter/internal/storage"
	"github.com/valpere/RecipeScrapexter/internal/utils"
)

// ErrNoStore is returned by Save when no storage driver is configured.
var ErrNoStore = errors.New("no recipe store configured")

// ParseHTML extracts a recipe from page markup without any network access.
func ParseHTML(html, sourceURL string) (*Recipe, error) {
	return scraper.ParseHTML(html, sourceURL)
}

// Client imports recipes using the fetcher, cache and store named by a Config.
type Client struct {
	config  *config.Config
	engine  *scraper.Engine
	fetcher scraper.Fetcher
	cache   cache.Cache
	store   storage.Store
	metrics *monitoring.Metrics
	logger  utils.Logger
}

// Option customizes NewClient
type Option func(*Client)

// WithFetcher replaces the fetcher chosen from configuration
func WithFetcher(f scraper.Fetcher) Option {
	return func(c *Client) { c.fetcher = f }
}

// WithStore replaces the store chosen from configuration
func WithStore(s storage.Store) Option {
	return func(c *Client) { c.store = s }
}

// WithMetrics records import metrics on m
func WithMetrics(m *monitoring.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// WithLogger sets the logger
func WithLogger(l utils.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// NewClient wires a Client. A nil cfg uses config.Default().
func NewClient(ctx context.Context, cfg *config.Config, opts ...Option) (*Client, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	c := &Client{config: cfg}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = utils.NewNopLogger()
	}

	var retry *apperrors.Service
	if c.fetcher == nil {
		if cfg.Browser.Enabled {
			c.fetcher = browser.NewChromeFetcher(browserConfig(cfg), c.logger)
			retry = apperrors.NewServiceWithConfig(apperrors.RetryConfig{
				MaxRetries:    cfg.Browser.RetryAttempts,
				BaseDelay:     cfg.Fetch.RetryDelay,
				MaxDelay:      cfg.Fetch.RetryMaxDelay,
				BackoffFactor: 2,
			})
		} else {
			c.fetcher = scraper.NewHTTPClient(clientConfig(cfg, c.logger))
		}
	}

	c.cache = cache.NopCache{}
	if cfg.Cache.Enabled {
		redisCache, err := cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:     cfg.Cache.Addr,
			Password: cfg.Cache.Password,
			DB:       cfg.Cache.DB,
			TTL:      cfg.Cache.TTL,
			Prefix:   cfg.Cache.Prefix,
		})
		if err != nil {
			c.Close()
			return nil, err
		}
		c.cache = redisCache
	}

	if c.store == nil && cfg.Storage.Driver != "" {
		store, err := storage.Open(ctx, storage.Config{
			Driver:   cfg.Storage.Driver,
			DSN:      cfg.Storage.DSN,
			Database: cfg.Storage.Database,
		})
		if err != nil {
			c.Close()
			return nil, &apperrors.OutputError{Target: cfg.Storage.Driver, Err: err}
		}
		c.store = store
	}

	engineOpts := []scraper.EngineOption{
		scraper.WithCache(c.cache),
		scraper.WithLogger(c.logger),
	}
	if c.metrics != nil {
		engineOpts = append(engineOpts, scraper.WithMetrics(c.metrics))
	}
	if retry != nil {
		engineOpts = append(engineOpts, scraper.WithRetry(retry))
	}
	c.engine = scraper.NewEngine(c.fetcher, engineOpts...)
	return c, nil
}

func clientConfig(cfg *config.Config, logger utils.Logger) scraper.ClientConfig {
	return scraper.ClientConfig{
		Timeout:       cfg.Fetch.Timeout,
		RetryAttempts: cfg.Fetch.RetryAttempts,
		RetryDelay:    cfg.Fetch.RetryDelay,
		RetryMaxDelay: cfg.Fetch.RetryMaxDelay,
		UserAgent:     cfg.Fetch.UserAgent,
		Headers:       cfg.Fetch.Headers,
		RateLimit:     cfg.Fetch.RateLimit,
		RateBurst:     cfg.Fetch.RateBurst,
		MaxBodyBytes:  cfg.Fetch.MaxBodyBytes,
		Logger:        logger,
	}
}

func browserConfig(cfg *config.Config) *browser.BrowserConfig {
	bc := browser.DefaultBrowserConfig()
	bc.Enabled = cfg.Browser.Enabled
	bc.Headless = cfg.Browser.Headless
	bc.ExecPath = cfg.Browser.ExecPath
	bc.Timeout = cfg.Browser.Timeout
	bc.WaitForElement = cfg.Browser.WaitForElement
	bc.WaitDelay = cfg.Browser.WaitDelay
	bc.DisableImages = cfg.Browser.DisableImages
	bc.MaxTabs = cfg.Browser.MaxTabs
	bc.UserAgent = cfg.Fetch.UserAgent
	return bc
}

// Import fetches url and extracts its recipe
func (c *Client) Import(ctx context.Context, url string) (*ImportResult, error) {
	return c.engine.Import(ctx, url)
}

// ImportAll imports urls with the configured concurrency
func (c *Client) ImportAll(ctx context.Context, urls []string) []BatchResult {
	return c.engine.ImportAll(ctx, urls, c.config.Fetch.Concurrency)
}

// Parse extracts a recipe from already fetched markup
func (c *Client) Parse(html, sourceURL string) (*ImportResult, error) {
	return c.engine.Parse(html, sourceURL)
}

// Save validates and persists a recipe
func (c *Client) Save(ctx context.Context, recipe *Recipe) (*StoredRecipe, error) {
	if c.store == nil {
		return nil, ErrNoStore
	}
	stored, err := c.store.Save(ctx, recipe)
	if err != nil {
		return nil, err
	}
	if c.metrics != nil {
		c.metrics.RecordWritten(c.config.Storage.Driver, 1)
	}
	c.logger.WithFields(map[string]interface{}{"id": stored.ID, "slug": stored.Slug}).Info("recipe saved")
	return stored, nil
}

// HasStore reports whether Save can persist recipes
func (c *Client) HasStore() bool { return c.store != nil }

// RegisterHealthChecks adds probes for the cache and store, when they support it.
// The store is critical; the cache only degrades the service.
func (c *Client) RegisterHealthChecks(hm *monitoring.HealthManager) {
	if p, ok := c.cache.(storage.Pinger); ok {
		hm.RegisterCheck("cache", false, p.Ping)
	}
	if p, ok := c.store.(storage.Pinger); ok {
		hm.RegisterCheck("storage", true, p.Ping)
	}
}

// Close releases the browser, cache and store
func (c *Client) Close() error {
	var errs []error
	if closer, ok := c.fetcher.(interface{ Close() error }); ok {
		errs = append(errs, closer.Close())
	}
	if c.cache != nil {
		errs = append(errs, c.cache.Close())
	}
	if c.store != nil {
		errs = append(errs, c.store.Close())
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("failed to close client: %w", err)
	}
	return nil
}
