// pkg/api/types.go
package api

import (
	"github.com/valpere/RecipeScrapexter/internal/scraper"
	"github.com/valpere/RecipeScrapexter/internal/storage"
	"github.com/valpere/RecipeScrapexter/pkg/types"
)

// Re-export types from internal packages for public API
type (
	Recipe         = types.Recipe
	Ingredient     = types.Ingredient
	Instruction    = types.Instruction
	NutritionFacts = types.NutritionFacts
	ImportResult   = scraper.ImportResult
	BatchResult    = scraper.BatchResult
	Strategy       = scraper.Strategy
	StoredRecipe   = storage.StoredRecipe
)

// ImportRequest is the body of POST /api/v1/import
type ImportRequest struct {
	URL string `json:"url"`
}

// ParseRequest is the body of POST /api/v1/parse
type ParseRequest struct {
	HTML      string `json:"html"`
	SourceURL string `json:"source_url,omitempty"`
}

// Response is the envelope returned by the API and the CLI --json mode
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// BatchItem is one entry of a multi-URL import in --json mode
type BatchItem struct {
	URL string `json:"url"`
	Response
}

// Success wraps data in a successful envelope
func Success(data interface{}) Response {
	return Response{Success: true, Data: data}
}

// Failure wraps err in a failed envelope
func Failure(err error) Response {
	return Response{Success: false, Error: err.Error()}
}
