// internal/config/config_test.go
package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/valpere/RecipeScrapexter/internal/errors"
	"github.com/valpere/RecipeScrapexter/internal/scraper"
)

func TestDefault(t *testing.T) {
	config := Default()
	require.NoError(t, config.Validate())

	assert.Equal(t, scraper.DefaultUserAgent, config.Fetch.UserAgent)
	assert.Equal(t, 30*time.Second, config.Fetch.Timeout)
	assert.True(t, config.Browser.Headless)
	assert.False(t, config.Browser.Enabled)
	assert.Equal(t, 24*time.Hour, config.Cache.TTL)
	assert.Equal(t, "json", config.Output.Format)
	assert.Equal(t, ":8080", config.Server.Addr)
}

func TestLoadFromBytes(t *testing.T) {
	configYAML := `
fetch:
  timeout: 10s
  retry_attempts: 4
  rate_limit: 1.5
  headers:
    Accept-Language: en-US
browser:
  enabled: true
  wait_for_element: ".recipe"
output:
  format: CSV
  file: out.csv
`
	config, err := LoadFromBytes([]byte(configYAML))
	require.NoError(t, err)

	assert.Equal(t, 10*time.Second, config.Fetch.Timeout)
	assert.Equal(t, 4, config.Fetch.RetryAttempts)
	assert.Equal(t, 1.5, config.Fetch.RateLimit)
	assert.Equal(t, "en-US", config.Fetch.Headers["Accept-Language"])
	assert.True(t, config.Browser.Enabled)
	assert.True(t, config.Browser.Headless, "unset keys keep their defaults")
	assert.Equal(t, ".recipe", config.Browser.WaitForElement)
	assert.Equal(t, "csv", config.Output.Format)
	assert.Equal(t, scraper.DefaultUserAgent, config.Fetch.UserAgent)
}

func TestLoadFromBytes_ExpandsEnvironment(t *testing.T) {
	t.Setenv("TEST_RECIPE_DSN", "/tmp/recipes.db")
	config, err := LoadFromBytes([]byte("storage:\n  driver: sqlite\n  dsn: ${TEST_RECIPE_DSN}\n"))
	require.NoError(t, err)
	assert.Equal(t, "/tmp/recipes.db", config.Storage.DSN)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("RECIPE_FETCH_TIMEOUT", "5s")
	t.Setenv("RECIPE_FETCH_RETRY_ATTEMPTS", "0")
	t.Setenv("RECIPE_CACHE_ENABLED", "true")
	t.Setenv("RECIPE_CACHE_ADDR", "redis:6379")
	t.Setenv("RECIPE_LOG_LEVEL", "debug")

	config, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, config.Fetch.Timeout)
	assert.Equal(t, 0, config.Fetch.RetryAttempts)
	assert.True(t, config.Cache.Enabled)
	assert.Equal(t, "redis:6379", config.Cache.Addr)
	assert.Equal(t, "debug", config.Log.Level)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: warn\n"), 0644))

	config, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "warn", config.Log.Level)
}

func TestLoadFromFile_Errors(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml"))
	var ce *apperrors.ConfigError
	require.True(t, errors.As(err, &ce))
	assert.Contains(t, err.Error(), "not found")
	assert.Equal(t, apperrors.ExitConfig, apperrors.NewService().GetExitCode(err))

	tests := map[string]string{
		"empty":          "   ",
		"bad yaml":       "fetch: [",
		"bad format":     "output:\n  format: pdf\n",
		"bad driver":     "storage:\n  driver: oracle\n  dsn: x\n",
		"missing dsn":    "storage:\n  driver: postgres\n",
		"bad log level":  "log:\n  level: loud\n",
		"bad cache addr": "cache:\n  enabled: true\n  addr: nowhere\n",
		"negative retry": "fetch:\n  retry_attempts: -1\n",
	}
	for name, data := range tests {
		_, err := LoadFromBytes([]byte(data))
		assert.Error(t, err, name)
	}
}

func TestValidateConfig_Warnings(t *testing.T) {
	config := Default()
	config.Storage = StorageConfig{Driver: "mongodb", DSN: "mongodb://localhost"}
	config.Output.Format = "excel"

	result := ValidateConfig(config)
	assert.True(t, result.Valid)
	assert.Len(t, result.Warnings, 3)

	result = ValidateConfig(nil)
	assert.False(t, result.Valid)
}

func TestGenerateTemplate(t *testing.T) {
	for _, kind := range TemplateTypes {
		config := GenerateTemplate(kind)
		require.NoError(t, config.Validate(), kind)

		var b strings.Builder
		require.NoError(t, SaveToWriter(config, &b), kind)
		assert.Contains(t, b.String(), "fetch:")
	}

	assert.True(t, GenerateTemplate("browser").Browser.Enabled)
	assert.True(t, GenerateTemplate("server").Cache.Enabled)
	assert.Equal(t, "sqlite", GenerateTemplate("unknown").Storage.Driver)
}

func TestSaveToFile_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	original := GenerateTemplate("browser")
	require.NoError(t, SaveToFile(original, path))

	loaded, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, original.Browser, loaded.Browser)
	assert.Equal(t, original.Fetch.Timeout, loaded.Fetch.Timeout)
}
