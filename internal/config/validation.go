// internal/config/validation.go - Validation with detailed error messages
package config

import (
	"fmt"
	"net"
	"strings"

	"github.com/valpere/RecipeScrapexter/internal/utils"
)

// ValidationError represents a detailed validation error
type ValidationError struct {
	Field   string `json:"field"`
	Value   string `json:"value"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s (got %q)", e.Field, e.Message, e.Value)
}

// ValidationResult holds validation results
type ValidationResult struct {
	Valid    bool              `json:"valid"`
	Errors   []ValidationError `json:"errors"`
	Warnings []string          `json:"warnings"`
}

func (r *ValidationResult) addError(field, value, format string, args ...interface{}) {
	r.Valid = false
	r.Errors = append(r.Errors, ValidationError{Field: field, Value: value, Message: fmt.Sprintf(format, args...)})
}

func (r *ValidationResult) addWarning(format string, args ...interface{}) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// Validate joins every error found, or returns nil
func (c *Config) Validate() error {
	result := ValidateConfig(c)
	if result.Valid {
		return nil
	}
	msgs := make([]string, 0, len(result.Errors))
	for _, e := range result.Errors {
		msgs = append(msgs, e.Error())
	}
	return fmt.Errorf("%s", strings.Join(msgs, "; "))
}

// ValidateConfig checks every section and collects errors and warnings
func ValidateConfig(c *Config) *ValidationResult {
	result := &ValidationResult{
		Valid:    true,
		Errors:   make([]ValidationError, 0),
		Warnings: make([]string, 0),
	}
	if c == nil {
		result.addError("config", "", "configuration cannot be nil")
		return result
	}

	c.validateFetch(result)
	c.validateBrowser(result)
	c.validateCache(result)
	c.validateStorage(result)
	c.validateOutput(result)
	c.validateServer(result)
	c.validateLog(result)
	return result
}

func (c *Config) validateFetch(r *ValidationResult) {
	f := c.Fetch
	if f.Timeout < 0 {
		r.addError("fetch.timeout", f.Timeout.String(), "must not be negative")
	}
	if f.RetryAttempts < 0 || f.RetryAttempts > 10 {
		r.addError("fetch.retry_attempts", fmt.Sprint(f.RetryAttempts), "must be between 0 and 10")
	}
	if f.RetryDelay < 0 || f.RetryMaxDelay < 0 {
		r.addError("fetch.retry_delay", f.RetryDelay.String(), "retry delays must not be negative")
	}
	if f.RetryMaxDelay > 0 && f.RetryDelay > f.RetryMaxDelay {
		r.addError("fetch.retry_delay", f.RetryDelay.String(), "must not exceed retry_max_delay")
	}
	if f.RateLimit < 0 {
		r.addError("fetch.rate_limit", fmt.Sprint(f.RateLimit), "must not be negative")
	}
	if f.RateLimit == 0 {
		r.addWarning("fetch.rate_limit is 0: requests to recipe sites are not throttled")
	}
	if f.RateBurst < 0 {
		r.addError("fetch.rate_burst", fmt.Sprint(f.RateBurst), "must not be negative")
	}
	if f.MaxBodyBytes < 0 {
		r.addError("fetch.max_body_bytes", fmt.Sprint(f.MaxBodyBytes), "must not be negative")
	}
	if f.Concurrency < 0 || f.Concurrency > 64 {
		r.addError("fetch.concurrency", fmt.Sprint(f.Concurrency), "must be between 0 and 64")
	}
}

func (c *Config) validateBrowser(r *ValidationResult) {
	b := c.Browser
	if b.Timeout < 0 {
		r.addError("browser.timeout", b.Timeout.String(), "must not be negative")
	}
	if b.WaitDelay < 0 {
		r.addError("browser.wait_delay", b.WaitDelay.String(), "must not be negative")
	}
	if b.MaxTabs < 0 {
		r.addError("browser.max_tabs", fmt.Sprint(b.MaxTabs), "must not be negative")
	}
	if b.RetryAttempts < 0 || b.RetryAttempts > 10 {
		r.addError("browser.retry_attempts", fmt.Sprint(b.RetryAttempts), "must be between 0 and 10")
	}
	if b.Enabled && !b.Headless {
		r.addWarning("browser.headless is false: a visible Chrome window will open for each import")
	}
}

func (c *Config) validateCache(r *ValidationResult) {
	if !c.Cache.Enabled {
		return
	}
	if _, _, err := net.SplitHostPort(c.Cache.Addr); err != nil {
		r.addError("cache.addr", c.Cache.Addr, "must be host:port")
	}
	if c.Cache.DB < 0 {
		r.addError("cache.db", fmt.Sprint(c.Cache.DB), "must not be negative")
	}
	if c.Cache.TTL < 0 {
		r.addError("cache.ttl", c.Cache.TTL.String(), "must not be negative")
	}
}

func (c *Config) validateStorage(r *ValidationResult) {
	s := c.Storage
	if s.Driver == "" {
		return
	}
	if !contains(storageDrivers, strings.ToLower(s.Driver)) {
		r.addError("storage.driver", s.Driver, "must be one of %s", strings.Join(storageDrivers, ", "))
		return
	}
	if s.DSN == "" {
		r.addError("storage.dsn", "", "is required when storage.driver is set")
	}
	if strings.EqualFold(s.Driver, "mongodb") && s.Database == "" {
		r.addWarning("storage.database not set: using the \"recipes\" database")
	}
}

func (c *Config) validateOutput(r *ValidationResult) {
	if !contains(outputFormats, strings.ToLower(c.Output.Format)) {
		r.addError("output.format", c.Output.Format, "must be one of json, yaml, csv, excel")
	}
	if (c.Output.Format == "excel" || c.Output.Format == "xlsx") && c.Output.File == "" {
		r.addWarning("output.file not set: Excel output will be written to stdout")
	}
}

func (c *Config) validateServer(r *ValidationResult) {
	s := c.Server
	if _, _, err := net.SplitHostPort(s.Addr); err != nil {
		r.addError("server.addr", s.Addr, "must be [host]:port")
	}
	if s.ReadTimeout < 0 || s.WriteTimeout < 0 {
		r.addError("server.read_timeout", s.ReadTimeout.String(), "timeouts must not be negative")
	}
	if !strings.HasPrefix(s.MetricsPath, "/") {
		r.addError("server.metrics_path", s.MetricsPath, "must start with /")
	}
	if s.MaxBodyBytes < 0 {
		r.addError("server.max_body_bytes", fmt.Sprint(s.MaxBodyBytes), "must not be negative")
	}
	if s.RateLimit < 0 {
		r.addError("server.rate_limit", fmt.Sprint(s.RateLimit), "must not be negative")
	}
	if s.RateBurst < 0 {
		r.addError("server.rate_burst", fmt.Sprint(s.RateBurst), "must not be negative")
	}
}

func (c *Config) validateLog(r *ValidationResult) {
	if _, err := utils.ParseLevel(c.Log.Level); err != nil {
		r.addError("log.level", c.Log.Level, "must be debug, info, warn or error")
	}
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
