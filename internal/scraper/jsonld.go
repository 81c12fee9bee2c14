// internal/scraper/jsonld.go
package scraper

import (
	"encoding/json"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const jsonLDSelector = `script[type="application/ld+json"]`

// extractJSONLD returns the first Recipe node found in any JSON-LD block.
// Blocks that fail to decode are skipped.
func extractJSONLD(doc *goquery.Document) *SchemaRecipe {
	var found map[string]interface{}

	doc.Find(jsonLDSelector).EachWithBreak(func(i int, s *goquery.Selection) bool {
		content := cleanJSONLD(s.Text())
		if content == "" {
			return true
		}
		var data interface{}
		if err := json.Unmarshal([]byte(content), &data); err != nil {
			return true
		}
		found = findRecipeNode(data)
		return found == nil
	})

	if found == nil {
		return nil
	}
	return schemaFromNode(found)
}

// cleanJSONLD strips a BOM and the comment or CDATA markers some pages wrap
// around script bodies.
func cleanJSONLD(content string) string {
	content = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(content), "\ufeff"))
	for _, marker := range [][2]string{{"<!--", "-->"}, {"//<![CDATA[", "//]]>"}, {"<![CDATA[", "]]>"}} {
		if strings.HasPrefix(content, marker[0]) && strings.HasSuffix(content, marker[1]) {
			content = strings.TrimSpace(content[len(marker[0]) : len(content)-len(marker[1])])
		}
	}
	return content
}

// findRecipeNode searches depth-first through objects, @graph wrappers and arrays.
func findRecipeNode(data interface{}) map[string]interface{} {
	switch v := data.(type) {
	case map[string]interface{}:
		if isRecipeType(v["@type"]) {
			return v
		}
		if graph, ok := v["@graph"].([]interface{}); ok {
			for _, item := range graph {
				if node := findRecipeNode(item); node != nil {
					return node
				}
			}
		}
	case []interface{}:
		for _, item := range v {
			if node := findRecipeNode(item); node != nil {
				return node
			}
		}
	}
	return nil
}

func isRecipeType(t interface{}) bool {
	switch v := t.(type) {
	case string:
		return v == "Recipe"
	case []interface{}:
		for _, item := range v {
			if s, ok := item.(string); ok && s == "Recipe" {
				return true
			}
		}
	}
	return false
}

// schemaFromNode copies the Recipe properties out of a decoded JSON-LD object.
// A name or description that is not a string counts as missing.
func schemaFromNode(node map[string]interface{}) *SchemaRecipe {
	raw := &SchemaRecipe{
		Image:              node["image"],
		PrepTime:           node["prepTime"],
		CookTime:           node["cookTime"],
		TotalTime:          node["totalTime"],
		RecipeYield:        node["recipeYield"],
		RecipeInstructions: node["recipeInstructions"],
		RecipeCategory:     node["recipeCategory"],
		RecipeCuisine:      node["recipeCuisine"],
	}
	raw.Name, _ = node["name"].(string)
	raw.Description, _ = node["description"].(string)

	switch ing := node["recipeIngredient"].(type) {
	case []interface{}:
		for _, item := range ing {
			if s, ok := item.(string); ok {
				raw.RecipeIngredient = append(raw.RecipeIngredient, s)
			}
		}
	case string:
		raw.RecipeIngredient = []string{ing}
	}

	if nutrition, ok := node["nutrition"].(map[string]interface{}); ok {
		raw.Nutrition = nutrition
	}
	return raw
}
