// internal/browser/types.go
package browser

import (
	"time"
)

// BrowserConfig defines headless browser rendering configuration
type BrowserConfig struct {
	Enabled        bool          `yaml:"enabled" json:"enabled"`
	Headless       bool          `yaml:"headless" json:"headless"`
	ExecPath       string        `yaml:"exec_path,omitempty" json:"exec_path,omitempty"`
	UserDataDir    string        `yaml:"user_data_dir,omitempty" json:"user_data_dir,omitempty"`
	Timeout        time.Duration `yaml:"timeout" json:"timeout"`
	ViewportWidth  int           `yaml:"viewport_width" json:"viewport_width"`
	ViewportHeight int           `yaml:"viewport_height" json:"viewport_height"`
	WaitForElement string        `yaml:"wait_for_element,omitempty" json:"wait_for_element,omitempty"`
	WaitDelay      time.Duration `yaml:"wait_delay,omitempty" json:"wait_delay,omitempty"`
	UserAgent      string        `yaml:"user_agent,omitempty" json:"user_agent,omitempty"`
	DisableImages  bool          `yaml:"disable_images" json:"disable_images"`
	MaxTabs        int           `yaml:"max_tabs" json:"max_tabs"`
}

// DefaultBrowserConfig returns default browser configuration
func DefaultBrowserConfig() *BrowserConfig {
	return &BrowserConfig{
		Enabled:        false,
		Headless:       true,
		Timeout:        30 * time.Second,
		ViewportWidth:  1920,
		ViewportHeight: 1080,
		WaitDelay:      time.Second,
		DisableImages:  true,
		MaxTabs:        2,
	}
}

// BrowserStats contains rendering statistics
type BrowserStats struct {
	PagesLoaded      int           `json:"pages_loaded"`
	AverageLoadTime  time.Duration `json:"average_load_time"`
	Errors           int           `json:"errors"`
	TimeoutsOccurred int           `json:"timeouts_occurred"`
}
