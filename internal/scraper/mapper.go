// internal/scraper/mapper.go
package scraper

import (
	"strings"

	apperrors "github.com/valpere/RecipeScrapexter/internal/errors"
	"github.com/valpere/RecipeScrapexter/internal/normalize"
	"github.com/valpere/RecipeScrapexter/pkg/types"
)

// MapSchema converts a raw recipe into the canonical shape. Only a missing
// name is an error; every other field is set only when it parses.
func MapSchema(raw *SchemaRecipe, sourceURL string) (*types.Recipe, error) {
	title := strings.TrimSpace(raw.Name)
	if title == "" {
		return nil, apperrors.ErrNoTitle
	}

	recipe := &types.Recipe{
		Title:        title,
		Description:  strings.TrimSpace(raw.Description),
		SourceURL:    sourceURL,
		ImageURL:     normalize.ImageURL(raw.Image),
		Cuisine:      normalize.JoinCuisine(raw.RecipeCuisine),
		Ingredients:  normalize.ParseIngredients(raw.RecipeIngredient),
		Instructions: normalize.ParseInstructions(raw.RecipeInstructions),
		Nutrition:    normalize.ParseNutrition(raw.Nutrition),
	}

	if v, ok := normalize.ParseDuration(raw.PrepTime); ok {
		recipe.PrepTime = types.Int(v)
	}
	if v, ok := normalize.ParseDuration(raw.CookTime); ok {
		recipe.CookTime = types.Int(v)
	}
	if v, ok := normalize.ParseDuration(raw.TotalTime); ok {
		recipe.TotalTime = types.Int(v)
	}
	if v, ok := normalize.ParseServings(raw.RecipeYield); ok {
		recipe.Servings = types.Int(v)
	}
	if categories := normalize.StringList(raw.RecipeCategory); len(categories) > 0 {
		recipe.CategoryNames = categories
	}

	return recipe, nil
}
