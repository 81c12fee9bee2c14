// internal/errors/errors.go - Error taxonomy for the import pipeline
package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"net"
	"net/http"
)

var (
	// ErrNoRecipe means no extraction strategy found anything usable in the page.
	ErrNoRecipe = stderrors.New("could not extract recipe data from the provided HTML")

	// ErrNoTitle means the winning strategy found a recipe without a usable name.
	ErrNoTitle = stderrors.New("Recipe has no title")

	// ErrInvalidURL is returned for anything but an absolute http(s) URL.
	ErrInvalidURL = stderrors.New("invalid URL: must be an absolute http or https URL")
)

// FetchError reports a failed page fetch. StatusCode is zero when the request
// never produced a response.
type FetchError struct {
	URL        string
	StatusCode int
	Status     string
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("failed to fetch URL: %d %s", e.StatusCode, e.Status)
	}
	return fmt.Sprintf("failed to fetch URL: %v", e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Temporary reports whether another attempt may succeed.
func (e *FetchError) Temporary() bool {
	if e.StatusCode > 0 {
		return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
	}
	if e.Err == nil || stderrors.Is(e.Err, context.Canceled) {
		return false
	}
	var netErr net.Error
	return stderrors.As(e.Err, &netErr) || stderrors.Is(e.Err, context.DeadlineExceeded)
}

// NewStatusError builds a FetchError for a non-2xx response.
func NewStatusError(url string, code int) *FetchError {
	return &FetchError{URL: url, StatusCode: code, Status: http.StatusText(code)}
}

// ConfigError wraps failures to load or validate configuration.
type ConfigError struct {
	Path string
	Err  error
}

func (e *ConfigError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("config error: %v", e.Err)
	}
	return fmt.Sprintf("config error in %s: %v", e.Path, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// OutputError wraps failures writing results or persisting recipes.
type OutputError struct {
	Target string
	Err    error
}

func (e *OutputError) Error() string {
	return fmt.Sprintf("output error (%s): %v", e.Target, e.Err)
}

func (e *OutputError) Unwrap() error { return e.Err }

// IsExtractionError reports whether err came from the parsing stage.
func IsExtractionError(err error) bool {
	return stderrors.Is(err, ErrNoRecipe) || stderrors.Is(err, ErrNoTitle)
}

// IsTransient reports whether err is worth retrying. Only fetch failures
// qualify; extraction failures are deterministic for a given page.
func IsTransient(err error) bool {
	var fe *FetchError
	if stderrors.As(err, &fe) {
		return fe.Temporary()
	}
	return false
}
