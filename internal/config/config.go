// internal/config/config.go
package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	apperrors "github.com/valpere/RecipeScrapexter/internal/errors"
)

// EnvPrefix is the prefix of environment overrides, e.g. RECIPE_FETCH_TIMEOUT.
const EnvPrefix = "RECIPE"

// Load reads filename when given; otherwise it starts from the defaults.
// Environment overrides are applied in both cases.
func Load(filename string) (*Config, error) {
	if filename == "" {
		config := Default()
		if err := finish(config); err != nil {
			return nil, &apperrors.ConfigError{Err: err}
		}
		return config, nil
	}
	return LoadFromFile(filename)
}

// LoadFromFile loads configuration from a YAML file
func LoadFromFile(filename string) (*Config, error) {
	if filename == "" {
		return nil, &apperrors.ConfigError{Err: fmt.Errorf("configuration filename cannot be empty")}
	}

	data, err := os.ReadFile(filename)
	if os.IsNotExist(err) {
		return nil, &apperrors.ConfigError{Path: filename, Err: fmt.Errorf("configuration file not found")}
	}
	if err != nil {
		return nil, &apperrors.ConfigError{Path: filename, Err: fmt.Errorf("failed to read configuration file: %w", err)}
	}

	config, err := parse(data)
	if err != nil {
		return nil, &apperrors.ConfigError{Path: filename, Err: err}
	}
	return config, nil
}

// LoadFromBytes loads configuration from YAML bytes
func LoadFromBytes(data []byte) (*Config, error) {
	config, err := parse(data)
	if err != nil {
		return nil, &apperrors.ConfigError{Err: err}
	}
	return config, nil
}

// LoadFromReader loads configuration from an io.Reader
func LoadFromReader(reader io.Reader) (*Config, error) {
	if reader == nil {
		return nil, &apperrors.ConfigError{Err: fmt.Errorf("reader cannot be nil")}
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, &apperrors.ConfigError{Err: fmt.Errorf("failed to read from reader: %w", err)}
	}
	return LoadFromBytes(data)
}

// parse layers YAML over the defaults, then the environment.
func parse(data []byte) (*Config, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, fmt.Errorf("configuration data cannot be empty")
	}

	config := Default()
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML configuration: %w", err)
	}
	if err := finish(config); err != nil {
		return nil, err
	}
	return config, nil
}

func finish(config *Config) error {
	if err := envconfig.Process(EnvPrefix, config); err != nil {
		return fmt.Errorf("failed to apply environment overrides: %w", err)
	}
	applyDefaults(config)
	if err := config.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// applyDefaults fills values that were explicitly blanked
func applyDefaults(config *Config) {
	defaults := Default()

	if config.Fetch.UserAgent == "" {
		config.Fetch.UserAgent = defaults.Fetch.UserAgent
	}
	if config.Fetch.Timeout == 0 {
		config.Fetch.Timeout = defaults.Fetch.Timeout
	}
	if config.Fetch.MaxBodyBytes == 0 {
		config.Fetch.MaxBodyBytes = defaults.Fetch.MaxBodyBytes
	}
	if config.Fetch.Concurrency == 0 {
		config.Fetch.Concurrency = defaults.Fetch.Concurrency
	}
	if config.Fetch.RateBurst == 0 {
		config.Fetch.RateBurst = defaults.Fetch.RateBurst
	}
	if config.Browser.Timeout == 0 {
		config.Browser.Timeout = defaults.Browser.Timeout
	}
	if config.Browser.MaxTabs == 0 {
		config.Browser.MaxTabs = defaults.Browser.MaxTabs
	}
	if config.Cache.TTL == 0 {
		config.Cache.TTL = defaults.Cache.TTL
	}
	if config.Cache.Prefix == "" {
		config.Cache.Prefix = defaults.Cache.Prefix
	}
	if config.Output.Format == "" {
		config.Output.Format = defaults.Output.Format
	}
	if config.Server.Addr == "" {
		config.Server.Addr = defaults.Server.Addr
	}
	if config.Server.MetricsPath == "" {
		config.Server.MetricsPath = defaults.Server.MetricsPath
	}
	if config.Server.MaxBodyBytes == 0 {
		config.Server.MaxBodyBytes = defaults.Server.MaxBodyBytes
	}
	if config.Log.Level == "" {
		config.Log.Level = defaults.Log.Level
	}

	config.Storage.Driver = strings.ToLower(config.Storage.Driver)
	config.Output.Format = strings.ToLower(config.Output.Format)
}

// SaveToFile saves configuration to a YAML file
func SaveToFile(config *Config, filename string) error {
	if config == nil {
		return fmt.Errorf("configuration cannot be nil")
	}
	if filename == "" {
		return fmt.Errorf("filename cannot be empty")
	}

	var b strings.Builder
	if err := SaveToWriter(config, &b); err != nil {
		return err
	}

	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(filename, []byte(b.String()), 0644); err != nil {
		return fmt.Errorf("failed to write configuration file: %w", err)
	}
	return nil
}

// SaveToWriter saves configuration to an io.Writer
func SaveToWriter(config *Config, writer io.Writer) error {
	if config == nil {
		return fmt.Errorf("configuration cannot be nil")
	}
	if writer == nil {
		return fmt.Errorf("writer cannot be nil")
	}
	if err := config.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	encoder := yaml.NewEncoder(writer)
	encoder.SetIndent(2)
	if err := encoder.Encode(config); err != nil {
		return fmt.Errorf("failed to marshal configuration to YAML: %w", err)
	}
	return encoder.Close()
}

// Template kinds accepted by GenerateTemplate
var TemplateTypes = []string{"basic", "server", "browser"}

// GenerateTemplate generates a template configuration for the specified type.
// Unknown types get the basic template.
func GenerateTemplate(templateType string) *Config {
	config := Default()

	switch strings.ToLower(templateType) {
	case "server":
		config.Cache.Enabled = true
		config.Storage = StorageConfig{Driver: "postgres", DSN: "${DATABASE_URL}"}
		config.Fetch.RateLimit = 2
		config.Fetch.RateBurst = 4
		config.Log.Level = "info"
	case "browser":
		config.Browser.Enabled = true
		config.Browser.WaitForElement = "body"
		config.Browser.WaitDelay = 2 * config.Browser.WaitDelay
		config.Fetch.Concurrency = 2
	default:
		config.Storage = StorageConfig{Driver: "sqlite", DSN: "./data/recipes.db"}
		config.Output.File = "recipes.json"
	}
	return config
}
