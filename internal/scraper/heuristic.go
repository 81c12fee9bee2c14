// internal/scraper/heuristic.go
package scraper

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// meta returns the trimmed content of the first meta tag matching attr=key.
func meta(doc *goquery.Document, attr, key string) string {
	v, _ := doc.Find(`meta[` + attr + `="` + key + `"]`).First().Attr("content")
	return strings.TrimSpace(v)
}

// extractHeuristics builds a stub from the page title and meta tags. It never
// produces ingredients or instructions.
func extractHeuristics(doc *goquery.Document) *SchemaRecipe {
	title := strings.TrimSpace(doc.Find("h1").First().Text())
	if title == "" {
		title = meta(doc, "property", "og:title")
	}
	if title == "" {
		title = strings.TrimSpace(doc.Find("title").First().Text())
	}
	if title == "" {
		return nil
	}

	raw := &SchemaRecipe{Name: title}

	raw.Description = meta(doc, "name", "description")
	if raw.Description == "" {
		raw.Description = meta(doc, "property", "og:description")
	}
	if image := meta(doc, "property", "og:image"); image != "" {
		raw.Image = image
	}
	return raw
}
