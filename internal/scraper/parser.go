// internal/scraper/parser.go
package scraper

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	apperrors "github.com/valpere/RecipeScrapexter/internal/errors"
	"github.com/valpere/RecipeScrapexter/pkg/types"
)

// extractor is one step of the strategy chain. A nil result means "try the next one".
type extractor struct {
	strategy Strategy
	extract  func(doc *goquery.Document) *SchemaRecipe
}

// strategies run in priority order: machine-authored JSON-LD first, then
// microdata, then page title and meta tags.
var strategies = []extractor{
	{StrategyJSONLD, extractJSONLD},
	{StrategyMicrodata, extractMicrodata},
	{StrategyHeuristics, extractHeuristics},
}

// HTMLParser holds a parsed document for recipe extraction.
type HTMLParser struct {
	document *goquery.Document
}

// NewHTMLParser creates a new HTML parser from HTML content
func NewHTMLParser(html string) (*HTMLParser, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return &HTMLParser{document: doc}, nil
}

// Document exposes the underlying goquery document.
func (hp *HTMLParser) Document() *goquery.Document {
	return hp.document
}

// Extract runs the strategy chain and returns the first raw recipe found.
func (hp *HTMLParser) Extract() (*SchemaRecipe, Strategy, bool) {
	for _, s := range strategies {
		if raw := s.extract(hp.document); raw != nil {
			return raw, s.strategy, true
		}
	}
	return nil, "", false
}

// ParseHTML extracts a canonical recipe from page markup. sourceURL may be empty.
func ParseHTML(html, sourceURL string) (*types.Recipe, error) {
	recipe, _, err := ParseHTMLWithStrategy(html, sourceURL)
	return recipe, err
}

// ParseHTMLWithStrategy is ParseHTML that also reports which extractor won.
// When the winning extractor yields a recipe without a name, ErrNoTitle is
// returned; later strategies are not consulted.
func ParseHTMLWithStrategy(html, sourceURL string) (*types.Recipe, Strategy, error) {
	parser, err := NewHTMLParser(html)
	if err != nil {
		return nil, "", err
	}

	raw, strategy, ok := parser.Extract()
	if !ok {
		return nil, "", apperrors.ErrNoRecipe
	}

	recipe, err := MapSchema(raw, sourceURL)
	if err != nil {
		return nil, strategy, err
	}
	return recipe, strategy, nil
}
