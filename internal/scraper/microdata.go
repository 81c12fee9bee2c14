// internal/scraper/microdata.go
package scraper

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/valpere/RecipeScrapexter/internal/normalize"
)

const (
	microdataRecipeSelector = `[itemtype*="schema.org/Recipe"]`
	itemScopeSelector       = `[itemscope], [itemtype]`
)

func itempropSelector(name string) string {
	return `[itemprop~="` + name + `"]`
}

// ownProps returns the name properties that belong to item itself, skipping
// those inside a nested item such as an author or review.
func ownProps(item *goquery.Selection, name string) *goquery.Selection {
	return item.Find(itempropSelector(name)).FilterFunction(func(i int, s *goquery.Selection) bool {
		return s.Parent().Closest(itemScopeSelector).IsSelection(item)
	})
}

// attrValue returns a non-empty attribute value.
func attrValue(s *goquery.Selection, name string) string {
	v, _ := s.Attr(name)
	return v
}

// propValue reads content, then datetime, then trimmed text.
func propValue(s *goquery.Selection) string {
	if v := attrValue(s, "content"); v != "" {
		return v
	}
	if v := attrValue(s, "datetime"); v != "" {
		return v
	}
	return strings.TrimSpace(s.Text())
}

// listValue reads content, then trimmed text.
func listValue(s *goquery.Selection) string {
	if v := attrValue(s, "content"); v != "" {
		return v
	}
	return strings.TrimSpace(s.Text())
}

// extractMicrodata reads itemprop values under the first Recipe item. A
// Recipe without a name yields nil so heuristics get a turn.
func extractMicrodata(doc *goquery.Document) *SchemaRecipe {
	root := doc.Find(microdataRecipeSelector).First()
	if root.Length() == 0 {
		return nil
	}

	prop := func(name string) string {
		el := ownProps(root, name).First()
		if el.Length() == 0 {
			return ""
		}
		return propValue(el)
	}
	all := func(name string) []string {
		var values []string
		ownProps(root, name).Each(func(i int, s *goquery.Selection) {
			if v := listValue(s); v != "" {
				values = append(values, v)
			}
		})
		return values
	}

	name := prop("name")
	if name == "" {
		return nil
	}

	raw := &SchemaRecipe{
		Name:             name,
		Description:      prop("description"),
		RecipeIngredient: all("recipeIngredient"),
	}

	if img := ownProps(root, "image").First(); img.Length() > 0 {
		for _, attr := range []string{"src", "content", "href"} {
			if v := attrValue(img, attr); v != "" {
				raw.Image = v
				break
			}
		}
	}

	// Scalar properties stay unset when absent so the mapper sees nil.
	setString := func(dst *interface{}, v string) {
		if v != "" {
			*dst = v
		}
	}
	setString(&raw.PrepTime, prop("prepTime"))
	setString(&raw.CookTime, prop("cookTime"))
	setString(&raw.TotalTime, prop("totalTime"))
	setString(&raw.RecipeYield, prop("recipeYield"))
	setString(&raw.RecipeCategory, prop("recipeCategory"))
	setString(&raw.RecipeCuisine, prop("recipeCuisine"))

	steps := all("recipeInstructions")
	instructions := make([]interface{}, len(steps))
	for i, s := range steps {
		instructions[i] = s
	}
	raw.RecipeInstructions = instructions

	if nutritionEl := ownProps(root, "nutrition").First(); nutritionEl.Length() > 0 {
		// A nutrition element without its own scope holds plain itemprops.
		lookup := func(p string) *goquery.Selection { return nutritionEl.Find(itempropSelector(p)) }
		if nutritionEl.Is(itemScopeSelector) {
			lookup = func(p string) *goquery.Selection { return ownProps(nutritionEl, p) }
		}
		raw.Nutrition = make(map[string]interface{})
		for _, p := range normalize.NutritionProperties() {
			el := lookup(p).First()
			if el.Length() == 0 {
				continue
			}
			if v := listValue(el); v != "" {
				raw.Nutrition[p] = v
			}
		}
	}

	return raw
}
