// internal/scraper/engine.go
package scraper

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/valpere/RecipeScrapexter/internal/cache"
	apperrors "github.com/valpere/RecipeScrapexter/internal/errors"
	"github.com/valpere/RecipeScrapexter/internal/utils"
)

// Engine imports recipes: cache lookup, fetch, extract, cache store.
type Engine struct {
	fetcher Fetcher
	cache   cache.Cache
	metrics MetricsRecorder
	logger  utils.Logger
	retry   *apperrors.Service
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithCache enables the import cache.
func WithCache(c cache.Cache) EngineOption {
	return func(e *Engine) { e.cache = c }
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m MetricsRecorder) EngineOption {
	return func(e *Engine) { e.metrics = m }
}

// WithLogger sets the engine logger.
func WithLogger(l utils.Logger) EngineOption {
	return func(e *Engine) { e.logger = l }
}

// WithRetry retries transient fetch failures through svc. The HTTP client
// already retries at the transport level, so this is meant for fetchers
// that don't, such as the browser.
func WithRetry(svc *apperrors.Service) EngineOption {
	return func(e *Engine) { e.retry = svc }
}

// NewEngine creates an engine around fetcher.
func NewEngine(fetcher Fetcher, opts ...EngineOption) *Engine {
	e := &Engine{
		fetcher: fetcher,
		cache:   cache.NopCache{},
		metrics: nopMetrics{},
		logger:  utils.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Import fetches url and extracts its recipe. Cached results are returned
// without fetching.
func (e *Engine) Import(ctx context.Context, url string) (*ImportResult, error) {
	start := time.Now()
	log := e.logger.WithField("url", url)

	if _, err := ValidateURL(url); err != nil {
		e.metrics.RecordFailure("validate", "invalid_url")
		return nil, err
	}

	if result := e.lookup(ctx, url, log); result != nil {
		result.Duration = time.Since(start)
		return result, nil
	}

	page, err := e.fetch(ctx, url)
	if err != nil {
		e.metrics.RecordFailure("fetch", failureKind(err))
		log.Warnf("fetch failed: %v", err)
		return nil, err
	}

	result, err := e.extract(page.HTML, url)
	if err != nil {
		log.WithField("final_url", page.FinalURL).Warnf("extraction failed: %v", err)
		return nil, err
	}

	if err := e.cache.Set(ctx, url, &cache.Entry{Recipe: result.Recipe, Strategy: string(result.Strategy)}); err != nil {
		log.Warnf("cache store failed: %v", err)
	}

	result.Duration = time.Since(start)
	log.WithFields(map[string]interface{}{
		"strategy": result.Strategy,
		"duration": result.Duration.String(),
		"title":    result.Recipe.Title,
	}).Info("recipe imported")
	return result, nil
}

// Parse extracts a recipe from markup that is already in hand.
func (e *Engine) Parse(html, sourceURL string) (*ImportResult, error) {
	start := time.Now()
	result, err := e.extract(html, sourceURL)
	if err != nil {
		return nil, err
	}
	result.Duration = time.Since(start)
	return result, nil
}

// ImportAll imports urls with at most concurrency imports in flight.
// Results keep the input order; one failure does not stop the others.
func (e *Engine) ImportAll(ctx context.Context, urls []string, concurrency int) []BatchResult {
	if concurrency <= 0 {
		concurrency = 1
	}
	results := make([]BatchResult, len(urls))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, url := range urls {
		g.Go(func() error {
			res, err := e.Import(gctx, url)
			results[i] = BatchResult{URL: url, Result: res, Err: err}
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func (e *Engine) lookup(ctx context.Context, url string, log utils.Logger) *ImportResult {
	entry, err := e.cache.Get(ctx, url)
	switch {
	case err == nil:
		e.metrics.RecordCacheLookup(true)
		log.Debug("cache hit")
		return &ImportResult{Recipe: entry.Recipe, Strategy: Strategy(entry.Strategy), FromCache: true}
	case errors.Is(err, cache.ErrMiss):
		e.metrics.RecordCacheLookup(false)
	default:
		e.metrics.RecordCacheLookup(false)
		log.Warnf("cache lookup failed: %v", err)
	}
	return nil
}

func (e *Engine) fetch(ctx context.Context, url string) (*Page, error) {
	name := fetcherName(e.fetcher)
	start := time.Now()

	var page *Page
	op := func() error {
		var err error
		page, err = e.fetcher.Fetch(ctx, url)
		return err
	}

	var err error
	if e.retry != nil {
		err = e.retry.ExecuteWithRetry(ctx, op, "fetch "+url)
	} else {
		err = op()
	}

	status := 0
	if page != nil {
		status = page.StatusCode
	}
	var fe *apperrors.FetchError
	if errors.As(err, &fe) {
		status = fe.StatusCode
	}
	e.metrics.RecordFetch(name, status, time.Since(start))

	if err != nil {
		return nil, err
	}
	return page, nil
}

func (e *Engine) extract(html, sourceURL string) (*ImportResult, error) {
	start := time.Now()
	recipe, strategy, err := ParseHTMLWithStrategy(html, sourceURL)
	if err != nil {
		e.metrics.RecordFailure("extract", failureKind(err))
		return nil, err
	}
	e.metrics.RecordExtraction(string(strategy), time.Since(start))
	e.logger.WithField("strategy", strategy).Debugf("extracted %q", recipe.Title)
	return &ImportResult{Recipe: recipe, Strategy: strategy}, nil
}

func fetcherName(f Fetcher) string {
	if named, ok := f.(interface{ Name() string }); ok {
		return named.Name()
	}
	return fmt.Sprintf("%T", f)
}

// failureKind labels an error for the failures metric.
func failureKind(err error) string {
	var fe *apperrors.FetchError
	switch {
	case errors.Is(err, apperrors.ErrNoRecipe):
		return "no_recipe"
	case errors.Is(err, apperrors.ErrNoTitle):
		return "no_title"
	case errors.Is(err, apperrors.ErrInvalidURL):
		return "invalid_url"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.As(err, &fe) && fe.StatusCode > 0:
		return fmt.Sprintf("http_%d", fe.StatusCode)
	case errors.As(err, &fe):
		return "network"
	default:
		return "other"
	}
}
