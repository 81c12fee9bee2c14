// internal/scraper/types.go
package scraper

import (
	"context"
	"time"

	"github.com/valpere/RecipeScrapexter/pkg/types"
)

// Strategy names the extractor that produced a recipe.
type Strategy string

const (
	StrategyJSONLD     Strategy = "json-ld"
	StrategyMicrodata  Strategy = "microdata"
	StrategyHeuristics Strategy = "heuristics"
)

// SchemaRecipe is the loosely typed schema.org Recipe bag shared by all
// extractors. Fields whose shape varies across sites stay as interface{}
// and are resolved by the mapper.
type SchemaRecipe struct {
	Name               string
	Description        string
	Image              interface{}
	PrepTime           interface{}
	CookTime           interface{}
	TotalTime          interface{}
	RecipeYield        interface{}
	RecipeIngredient   []string
	RecipeInstructions interface{}
	RecipeCategory     interface{}
	RecipeCuisine      interface{}
	Nutrition          map[string]interface{}
}

// Page is a fetched document ready for extraction.
type Page struct {
	URL         string `json:"url"`
	FinalURL    string `json:"final_url"`
	HTML        string `json:"-"`
	StatusCode  int    `json:"status_code"`
	ContentType string `json:"content_type"`
}

// Fetcher retrieves a page's markup.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*Page, error)
}

// ImportResult is the outcome of Engine.Import.
type ImportResult struct {
	Recipe    *types.Recipe `json:"recipe"`
	Strategy  Strategy      `json:"strategy"`
	FromCache bool          `json:"from_cache"`
	Duration  time.Duration `json:"duration"`
}

// BatchResult pairs a URL with its import outcome.
type BatchResult struct {
	URL    string
	Result *ImportResult
	Err    error
}

// MetricsRecorder receives pipeline measurements.
type MetricsRecorder interface {
	RecordFetch(fetcher string, statusCode int, duration time.Duration)
	RecordExtraction(strategy string, duration time.Duration)
	RecordFailure(stage, kind string)
	RecordCacheLookup(hit bool)
}

type nopMetrics struct{}

func (nopMetrics) RecordFetch(string, int, time.Duration) {}
func (nopMetrics) RecordExtraction(string, time.Duration) {}
func (nopMetrics) RecordFailure(string, string)           {}
func (nopMetrics) RecordCacheLookup(bool)                 {}
