// internal/errors/service.go - Retry and user-facing error reporting
package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/valpere/RecipeScrapexter/pkg/types"
)

// Exit codes returned by the CLI.
const (
	ExitOK         = 0
	ExitGeneral    = 1
	ExitConfig     = 2
	ExitNetwork    = 3
	ExitExtraction = 4
	ExitOutput     = 5
	ExitValidation = 6
)

// Service provides retry and error presentation helpers.
type Service struct {
	retryConfig   RetryConfig
	showTechnical bool
	sleep         func(ctx context.Context, d time.Duration) error
}

// RetryConfig defines retry behavior
type RetryConfig struct {
	MaxRetries    int           `yaml:"max_retries" json:"max_retries"`
	BaseDelay     time.Duration `yaml:"base_delay" json:"base_delay"`
	BackoffFactor float64       `yaml:"backoff_factor" json:"backoff_factor"`
	MaxDelay      time.Duration `yaml:"max_delay" json:"max_delay"`
}

// DefaultRetryConfig returns the retry policy used when none is configured.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:    2,
		BaseDelay:     time.Second,
		BackoffFactor: 2.0,
		MaxDelay:      30 * time.Second,
	}
}

// NewService creates a service with the default retry policy.
func NewService() *Service {
	return NewServiceWithConfig(DefaultRetryConfig())
}

// NewServiceWithConfig creates a service with the given retry policy.
func NewServiceWithConfig(cfg RetryConfig) *Service {
	if cfg.BackoffFactor < 1 {
		cfg.BackoffFactor = 1
	}
	return &Service{retryConfig: cfg, sleep: sleepContext}
}

// WithVerbose enables technical error details
func (s *Service) WithVerbose(verbose bool) *Service {
	s.showTechnical = verbose
	return s
}

// ExecuteWithRetry runs operation until it succeeds, returns a non-transient
// error, or retries are exhausted.
func (s *Service) ExecuteWithRetry(ctx context.Context, operation func() error, operationName string) error {
	var lastErr error
	attempts := 0

	for attempt := 0; attempt <= s.retryConfig.MaxRetries; attempt++ {
		attempts++
		err := operation()
		if err == nil {
			return nil
		}
		lastErr = err

		if !s.shouldRetry(err, attempt) {
			break
		}
		if err := s.sleep(ctx, s.calculateDelay(attempt)); err != nil {
			return err
		}
	}

	if attempts == 1 {
		return lastErr
	}
	return fmt.Errorf("operation %s failed after %d attempts: %w", operationName, attempts, lastErr)
}

func (s *Service) shouldRetry(err error, attempt int) bool {
	if attempt >= s.retryConfig.MaxRetries {
		return false
	}
	return IsTransient(err)
}

// calculateDelay computes exponential backoff delay
func (s *Service) calculateDelay(attempt int) time.Duration {
	delay := time.Duration(float64(s.retryConfig.BaseDelay) * math.Pow(s.retryConfig.BackoffFactor, float64(attempt)))
	if s.retryConfig.MaxDelay > 0 && delay > s.retryConfig.MaxDelay {
		delay = s.retryConfig.MaxDelay
	}
	return delay
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// GetUserFriendlyError converts technical errors to user-friendly messages
func (s *Service) GetUserFriendlyError(err error) (title, message string, suggestions []string) {
	if err == nil {
		return "", "", nil
	}

	var fe *FetchError
	var ce *ConfigError
	var oe *OutputError
	var ve types.ValidationErrors

	switch {
	case stderrors.Is(err, ErrInvalidURL):
		return "Invalid URL",
			"The address must be a full http:// or https:// URL.",
			[]string{"Copy the URL straight from the browser address bar"}

	case stderrors.Is(err, ErrNoRecipe):
		return "No Recipe Found",
			"The page does not contain recipe markup or a usable title.",
			[]string{
				"Check that the URL points at a single recipe, not a listing page",
				"Enable the browser fetcher for sites that render recipes with JavaScript",
			}

	case stderrors.Is(err, ErrNoTitle):
		return "Recipe Has No Title",
			"Recipe data was found but it has no name.",
			[]string{"Import the page manually and fill in the title"}

	case stderrors.As(err, &fe):
		return s.fetchErrorMessage(fe)

	case stderrors.As(err, &ce):
		return "Configuration Error",
			"The configuration file could not be loaded.",
			[]string{
				"Check YAML indentation (use spaces, not tabs)",
				"Run 'validate' on the file to see every problem",
			}

	case stderrors.As(err, &ve):
		return "Invalid Recipe",
			fmt.Sprintf("The recipe failed %d validation check(s).", len(ve)),
			[]string{"Imported stubs need at least one ingredient and one instruction before saving"}

	case stderrors.As(err, &oe):
		return "Output Error",
			"The results could not be written.",
			[]string{"Check the output path and storage connection settings"}
	}

	return "Unexpected Error",
		"An unexpected error occurred during the operation.",
		[]string{
			"Try running the command again",
			"Run with -v to see technical details",
		}
}

func (s *Service) fetchErrorMessage(fe *FetchError) (string, string, []string) {
	switch {
	case fe.StatusCode == 429:
		return "Rate Limit Exceeded",
			"The website is rejecting requests because they arrive too quickly.",
			[]string{"Lower fetch.rate_limit in the configuration", "Try again later"}
	case fe.StatusCode == 401 || fe.StatusCode == 403:
		return "Access Denied",
			fmt.Sprintf("The website refused access (%d %s).", fe.StatusCode, fe.Status),
			[]string{"The recipe may be behind a login", "Try the browser fetcher"}
	case fe.StatusCode == 404:
		return "Page Not Found",
			"The website has no page at this address.",
			[]string{"Check if the URL is spelled correctly"}
	case fe.StatusCode > 0:
		return "Fetch Failed",
			fmt.Sprintf("The website answered %d %s.", fe.StatusCode, fe.Status),
			[]string{"The server might be temporarily down", "Try running the command again"}
	}

	errStr := strings.ToLower(fe.Error())
	switch {
	case strings.Contains(errStr, "timeout") || stderrors.Is(fe, context.DeadlineExceeded):
		return "Connection Timeout",
			"The request timed out while trying to connect to the website.",
			[]string{"Check your internet connection", "Increase fetch.timeout in configuration"}
	case strings.Contains(errStr, "no such host"):
		return "Domain Not Found",
			"Could not find the website domain.",
			[]string{"Check if the URL is spelled correctly", "Check your DNS settings"}
	case strings.Contains(errStr, "connection refused"):
		return "Connection Refused",
			"The website server refused the connection.",
			[]string{"Check if the website is accessible in a browser"}
	}
	return "Fetch Failed",
		"The page could not be downloaded.",
		[]string{"Check your internet connection"}
}

// GetExitCode returns appropriate exit code for error
func (s *Service) GetExitCode(err error) int {
	if err == nil {
		return ExitOK
	}

	var fe *FetchError
	var ce *ConfigError
	var oe *OutputError
	var ve types.ValidationErrors
	var single *types.ValidationError

	switch {
	case stderrors.As(err, &ce):
		return ExitConfig
	case stderrors.Is(err, ErrInvalidURL), stderrors.As(err, &fe):
		return ExitNetwork
	case IsExtractionError(err):
		return ExitExtraction
	case stderrors.As(err, &oe):
		return ExitOutput
	case stderrors.As(err, &ve), stderrors.As(err, &single):
		return ExitValidation
	default:
		return ExitGeneral
	}
}

// FormatErrorForCLI formats error for command-line display
func (s *Service) FormatErrorForCLI(err error) string {
	title, message, suggestions := s.GetUserFriendlyError(err)

	var b strings.Builder
	fmt.Fprintf(&b, "Error: %s\n%s\n", title, message)

	if s.showTechnical {
		fmt.Fprintf(&b, "\nTechnical details: %s\n", err.Error())
	}

	if len(suggestions) > 0 {
		b.WriteString("\nSuggestions:\n")
		for _, suggestion := range suggestions {
			fmt.Fprintf(&b, "  - %s\n", suggestion)
		}
	}

	return b.String()
}
