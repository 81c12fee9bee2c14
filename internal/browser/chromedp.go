// internal/browser/chromedp.go
package browser

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"

	apperrors "github.com/valpere/RecipeScrapexter/internal/errors"
	"github.com/valpere/RecipeScrapexter/internal/scraper"
	"github.com/valpere/RecipeScrapexter/internal/utils"
)

// ErrClosed is returned by Fetch after Close.
var ErrClosed = errors.New("browser fetcher is closed")

// ChromeFetcher renders pages in headless Chrome for sites that build their
// recipe markup with JavaScript. It implements scraper.Fetcher. Chrome is
// started on the first Fetch; each fetch runs in its own tab.
type ChromeFetcher struct {
	config *BrowserConfig
	logger utils.Logger
	tabs   chan struct{}

	mu           sync.Mutex
	allocCancel  context.CancelFunc
	browserCtx   context.Context
	browserClose context.CancelFunc
	closed       bool
	stats        BrowserStats
}

// NewChromeFetcher creates a fetcher. The browser is not launched yet.
func NewChromeFetcher(config *BrowserConfig, logger utils.Logger) *ChromeFetcher {
	if config == nil {
		config = DefaultBrowserConfig()
	}
	if logger == nil {
		logger = utils.NewNopLogger()
	}
	maxTabs := config.MaxTabs
	if maxTabs <= 0 {
		maxTabs = 1
	}
	return &ChromeFetcher{
		config: config,
		logger: logger.WithField("component", "browser"),
		tabs:   make(chan struct{}, maxTabs),
	}
}

// Name identifies this fetcher in metrics.
func (f *ChromeFetcher) Name() string { return "browser" }

// allocatorOptions builds the Chrome command line from the config.
func allocatorOptions(config *BrowserConfig) []chromedp.ExecAllocatorOption {
	opts := []chromedp.ExecAllocatorOption{
		chromedp.NoFirstRun,
		chromedp.NoDefaultBrowserCheck,
		chromedp.DisableGPU,
		chromedp.NoSandbox, // Required for Docker environments
		chromedp.WindowSize(config.ViewportWidth, config.ViewportHeight),
	}
	if config.Headless {
		opts = append(opts, chromedp.Headless)
	}
	if config.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(config.ExecPath))
	}
	if config.UserDataDir != "" {
		opts = append(opts, chromedp.UserDataDir(config.UserDataDir))
	}
	userAgent := config.UserAgent
	if userAgent == "" {
		userAgent = scraper.DefaultUserAgent
	}
	opts = append(opts, chromedp.UserAgent(userAgent))
	if config.DisableImages {
		opts = append(opts, chromedp.Flag("blink-settings", "imagesEnabled=false"))
	}
	return opts
}

// start launches Chrome once. The allocator context lives until Close.
func (f *ChromeFetcher) start() (context.Context, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return nil, ErrClosed
	}
	if f.browserCtx != nil {
		return f.browserCtx, nil
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), allocatorOptions(f.config)...)
	browserCtx, browserClose := chromedp.NewContext(allocCtx)

	// An empty Run starts the browser process.
	if err := chromedp.Run(browserCtx); err != nil {
		browserClose()
		allocCancel()
		return nil, fmt.Errorf("failed to start browser: %w", err)
	}

	f.allocCancel = allocCancel
	f.browserCtx = browserCtx
	f.browserClose = browserClose
	f.logger.Info("browser started")
	return browserCtx, nil
}

// Fetch opens url in a new tab, waits for the page to settle and returns
// the rendered document.
func (f *ChromeFetcher) Fetch(ctx context.Context, url string) (*scraper.Page, error) {
	if _, err := scraper.ValidateURL(url); err != nil {
		return nil, err
	}

	select {
	case f.tabs <- struct{}{}:
		defer func() { <-f.tabs }()
	case <-ctx.Done():
		return nil, &apperrors.FetchError{URL: url, Err: ctx.Err()}
	}

	browserCtx, err := f.start()
	if err != nil {
		return nil, err
	}

	tabCtx, closeTab := chromedp.NewContext(browserCtx)
	defer closeTab()

	if f.config.Timeout > 0 {
		var cancel context.CancelFunc
		tabCtx, cancel = context.WithTimeout(tabCtx, f.config.Timeout)
		defer cancel()
	}

	// Tie the tab to the caller's context as well.
	stop := context.AfterFunc(ctx, closeTab)
	defer stop()

	var (
		statusMu    sync.Mutex
		statusCode  int
		statusText  string
		contentType string
	)
	chromedp.ListenTarget(tabCtx, func(ev interface{}) {
		resp, ok := ev.(*network.EventResponseReceived)
		if !ok || resp.Type != network.ResourceTypeDocument {
			return
		}
		statusMu.Lock()
		defer statusMu.Unlock()
		// Redirect hops arrive first; keep the last document response.
		statusCode = int(resp.Response.Status)
		statusText = resp.Response.StatusText
		if ct, ok := resp.Response.Headers["Content-Type"].(string); ok {
			contentType = ct
		}
	})

	start := time.Now()
	var html, location string
	tasks := chromedp.Tasks{
		network.Enable(),
		chromedp.Navigate(url),
		chromedp.WaitReady("body"),
	}
	if f.config.WaitForElement != "" {
		tasks = append(tasks, chromedp.WaitVisible(f.config.WaitForElement))
	}
	if f.config.WaitDelay > 0 {
		tasks = append(tasks, chromedp.Sleep(f.config.WaitDelay))
	}
	tasks = append(tasks, chromedp.Location(&location), chromedp.OuterHTML("html", &html))

	err = chromedp.Run(tabCtx, tasks)
	f.record(time.Since(start), err)
	if err != nil {
		if ctx.Err() != nil {
			err = ctx.Err()
		}
		return nil, &apperrors.FetchError{URL: url, Err: fmt.Errorf("navigation failed: %w", err)}
	}

	statusMu.Lock()
	code, text, ct := statusCode, statusText, contentType
	statusMu.Unlock()

	if code != 0 && (code < 200 || code >= 300) {
		if text == "" {
			return nil, apperrors.NewStatusError(url, code)
		}
		return nil, &apperrors.FetchError{URL: url, StatusCode: code, Status: text}
	}
	if code == 0 {
		code = 200
	}
	if location == "" {
		location = url
	}

	return &scraper.Page{
		URL:         url,
		FinalURL:    location,
		HTML:        html,
		StatusCode:  code,
		ContentType: ct,
	}, nil
}

func (f *ChromeFetcher) record(loadTime time.Duration, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err != nil {
		f.stats.Errors++
		if errors.Is(err, context.DeadlineExceeded) {
			f.stats.TimeoutsOccurred++
		}
		return
	}
	f.stats.PagesLoaded++
	if f.stats.PagesLoaded == 1 {
		f.stats.AverageLoadTime = loadTime
	} else {
		f.stats.AverageLoadTime = (f.stats.AverageLoadTime + loadTime) / 2
	}
}

// Stats returns a snapshot of rendering statistics.
func (f *ChromeFetcher) Stats() BrowserStats {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stats
}

// Close shuts Chrome down. It is safe to call more than once.
func (f *ChromeFetcher) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return nil
	}
	f.closed = true
	if f.browserClose != nil {
		f.browserClose()
		f.allocCancel()
		f.logger.Info("browser stopped")
	}
	return nil
}
