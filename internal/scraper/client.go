// internal/scraper/client.go
package scraper

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/time/rate"

	apperrors "github.com/valpere/RecipeScrapexter/internal/errors"
	"github.com/valpere/RecipeScrapexter/internal/utils"
)

const (
	// DefaultUserAgent identifies the importer to recipe sites.
	DefaultUserAgent = "Mozilla/5.0 (compatible; RecipeApp/1.0; +https://example.com)"

	// DefaultAccept asks for HTML documents only.
	DefaultAccept = "text/html,application/xhtml+xml"

	// DefaultMaxBodyBytes caps how much of a page is read.
	DefaultMaxBodyBytes int64 = 10 << 20
)

// HTTPClient fetches recipe pages over plain HTTP with rate limiting and
// transport-level retries of transient failures.
type HTTPClient struct {
	client       *retryablehttp.Client
	rateLimiter  *rate.Limiter
	userAgent    string
	headers      map[string]string
	maxBodyBytes int64
}

// ClientConfig defines configuration options for the HTTP client
type ClientConfig struct {
	Timeout       time.Duration
	RetryAttempts int
	RetryDelay    time.Duration
	RetryMaxDelay time.Duration
	UserAgent     string
	Headers       map[string]string
	RateLimit     float64 // requests per second, 0 means unlimited
	RateBurst     int
	MaxBodyBytes  int64
	Logger        utils.Logger
}

// NewHTTPClient creates a new HTTP client with the specified configuration
func NewHTTPClient(config ClientConfig) *HTTPClient {
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}
	if config.RetryAttempts < 0 {
		config.RetryAttempts = 0
	}
	if config.RetryDelay == 0 {
		config.RetryDelay = time.Second
	}
	if config.RetryMaxDelay == 0 {
		config.RetryMaxDelay = 30 * time.Second
	}
	if config.UserAgent == "" {
		config.UserAgent = DefaultUserAgent
	}
	if config.RateBurst <= 0 {
		config.RateBurst = 1
	}
	if config.MaxBodyBytes <= 0 {
		config.MaxBodyBytes = DefaultMaxBodyBytes
	}

	limit := rate.Inf
	if config.RateLimit > 0 {
		limit = rate.Limit(config.RateLimit)
	}

	rc := retryablehttp.NewClient()
	rc.HTTPClient = &http.Client{
		Timeout: config.Timeout,
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
	}
	rc.RetryMax = config.RetryAttempts
	rc.RetryWaitMin = config.RetryDelay
	rc.RetryWaitMax = config.RetryMaxDelay
	rc.CheckRetry = retryablehttp.DefaultRetryPolicy
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler
	if config.Logger != nil {
		rc.Logger = retryLogger{config.Logger}
	} else {
		rc.Logger = nil
	}

	return &HTTPClient{
		client:       rc,
		rateLimiter:  rate.NewLimiter(limit, config.RateBurst),
		userAgent:    config.UserAgent,
		headers:      config.Headers,
		maxBodyBytes: config.MaxBodyBytes,
	}
}

// Name identifies this fetcher in metrics.
func (c *HTTPClient) Name() string { return "http" }

// ValidateURL accepts only absolute http and https URLs.
func ValidateURL(raw string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, apperrors.ErrInvalidURL
	}
	return u, nil
}

// Fetch downloads targetURL following redirects. Non-2xx responses and
// transport failures are returned as *errors.FetchError.
func (c *HTTPClient) Fetch(ctx context.Context, targetURL string) (*Page, error) {
	u, err := ValidateURL(targetURL)
	if err != nil {
		return nil, err
	}

	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, &apperrors.FetchError{URL: targetURL, Err: fmt.Errorf("rate limiter: %w", err)}
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, &apperrors.FetchError{URL: targetURL, Err: err}
	}
	c.setRequestHeaders(req.Request)

	resp, err := c.client.Do(req)
	if err != nil {
		if resp != nil {
			resp.Body.Close()
		}
		return nil, &apperrors.FetchError{URL: targetURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &apperrors.FetchError{
			URL:        targetURL,
			StatusCode: resp.StatusCode,
			Status:     statusText(resp),
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBodyBytes+1))
	if err != nil {
		return nil, &apperrors.FetchError{URL: targetURL, Err: fmt.Errorf("failed to read body: %w", err)}
	}
	if int64(len(body)) > c.maxBodyBytes {
		return nil, &apperrors.FetchError{URL: targetURL, Err: fmt.Errorf("response body exceeds %d bytes", c.maxBodyBytes)}
	}

	contentType := resp.Header.Get("Content-Type")
	finalURL := targetURL
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}

	return &Page{
		URL:         targetURL,
		FinalURL:    finalURL,
		HTML:        decodeBody(body, contentType),
		StatusCode:  resp.StatusCode,
		ContentType: contentType,
	}, nil
}

// setRequestHeaders applies the user agent, Accept and configured headers.
func (c *HTTPClient) setRequestHeaders(req *http.Request) {
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", DefaultAccept)
	for key, value := range c.headers {
		req.Header.Set(key, value)
	}
}

// statusText strips the numeric code from resp.Status ("404 Not Found" -> "Not Found").
func statusText(resp *http.Response) string {
	text := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if text == "" {
		text = http.StatusText(resp.StatusCode)
	}
	return text
}

// retryLogger adapts utils.Logger to retryablehttp.LeveledLogger.
type retryLogger struct {
	logger utils.Logger
}

func (l retryLogger) with(keysAndValues []interface{}) utils.Logger {
	if len(keysAndValues) == 0 {
		return l.logger
	}
	fields := make(map[string]interface{}, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		fields[fmt.Sprint(keysAndValues[i])] = keysAndValues[i+1]
	}
	return l.logger.WithFields(fields)
}

func (l retryLogger) Error(msg string, keysAndValues ...interface{}) { l.with(keysAndValues).Error(msg) }
func (l retryLogger) Info(msg string, keysAndValues ...interface{})  { l.with(keysAndValues).Debug(msg) }
func (l retryLogger) Debug(msg string, keysAndValues ...interface{}) { l.with(keysAndValues).Debug(msg) }
func (l retryLogger) Warn(msg string, keysAndValues ...interface{})  { l.with(keysAndValues).Warn(msg) }
