// pkg/types/types_test.go
package types

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRecipe() *Recipe {
	return &Recipe{
		Title:        "Pancakes",
		SourceURL:    "https://example.com/pancakes",
		Servings:     Int(4),
		Ingredients:  []Ingredient{{Quantity: Float(2), Unit: "cups", Name: "flour"}, {Name: "salt"}},
		Instructions: []Instruction{{Text: "Mix."}, {Text: "Cook."}},
	}
}

func TestRecipeValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(r *Recipe)
		wantErr string
	}{
		{name: "valid", mutate: func(r *Recipe) {}},
		{name: "missing title", mutate: func(r *Recipe) { r.Title = "  " }, wantErr: "title is required"},
		{name: "long title", mutate: func(r *Recipe) { r.Title = strings.Repeat("a", 201) }, wantErr: "less than 200"},
		{name: "relative source url", mutate: func(r *Recipe) { r.SourceURL = "/pancakes" }, wantErr: "sourceUrl"},
		{name: "zero servings", mutate: func(r *Recipe) { r.Servings = Int(0) }, wantErr: "servings"},
		{name: "no ingredients", mutate: func(r *Recipe) { r.Ingredients = nil }, wantErr: "at least one ingredient"},
		{name: "empty ingredient name", mutate: func(r *Recipe) { r.Ingredients[1].Name = "" }, wantErr: "ingredients[1].name"},
		{name: "no instructions", mutate: func(r *Recipe) { r.Instructions = []Instruction{} }, wantErr: "at least one instruction"},
		{name: "long ingredient name", mutate: func(r *Recipe) { r.Ingredients[0].Name = strings.Repeat("a", 256) }, wantErr: "ingredients[0].name: must be at most 255"},
		{name: "long unit", mutate: func(r *Recipe) { r.Ingredients[0].Unit = strings.Repeat("u", 65) }, wantErr: "ingredients[0].unit"},
		{name: "long category", mutate: func(r *Recipe) { r.CategoryNames = []string{strings.Repeat("c", 256)} }, wantErr: "categoryNames[0]"},
		{name: "negative calories", mutate: func(r *Recipe) { r.Nutrition = &NutritionFacts{Calories: Float(-1)} }, wantErr: "nutrition.calories"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := validRecipe()
			tt.mutate(r)
			err := r.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			var verrs ValidationErrors
			require.True(t, errors.As(err, &verrs))
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestRecipeValidateOrder(t *testing.T) {
	r := validRecipe()
	r.Title = ""
	r.PrepTime = Int(-1)
	r.CookTime = Int(-2)
	r.TotalTime = Int(-3)
	r.Nutrition = &NutritionFacts{Calories: Float(-1), Fat: Float(-1), Sodium: Float(-1)}

	want := "validation failed: title: title is required; prepTime: must be a positive number; " +
		"cookTime: must be a positive number; totalTime: must be a positive number; " +
		"nutrition.calories: must not be negative; nutrition.fat: must not be negative; " +
		"nutrition.sodium: must not be negative"
	for i := 0; i < 20; i++ {
		err := r.Validate()
		require.Error(t, err)
		assert.Equal(t, want, err.Error())
	}
}

func TestRecipeScale(t *testing.T) {
	r := validRecipe()

	scaled, err := r.Scale(6)
	require.NoError(t, err)
	assert.Equal(t, 6, *scaled.Servings)
	assert.Equal(t, 3.0, *scaled.Ingredients[0].Quantity)
	assert.Nil(t, scaled.Ingredients[1].Quantity)

	// the original is untouched
	assert.Equal(t, 2.0, *r.Ingredients[0].Quantity)
	assert.Equal(t, 4, *r.Servings)

	thirds, err := r.Scale(1)
	require.NoError(t, err)
	assert.Equal(t, 0.5, *thirds.Ingredients[0].Quantity)

	_, err = r.Scale(0)
	assert.Error(t, err)
}

func TestRecipeScaleWithoutServings(t *testing.T) {
	r := &Recipe{Title: "Tea", Ingredients: []Ingredient{{Quantity: Float(0.333), Name: "sugar"}}}
	scaled, err := r.Scale(3)
	require.NoError(t, err)
	assert.Equal(t, 1.0, *scaled.Ingredients[0].Quantity)
}

func TestEffectiveTotalTime(t *testing.T) {
	r := &Recipe{PrepTime: Int(10), CookTime: Int(20)}
	assert.Equal(t, 30, *r.EffectiveTotalTime())

	r.TotalTime = Int(45)
	assert.Equal(t, 45, *r.EffectiveTotalTime())

	assert.Nil(t, (&Recipe{}).EffectiveTotalTime())
}

func TestNutritionIsEmpty(t *testing.T) {
	var n *NutritionFacts
	assert.True(t, n.IsEmpty())
	assert.True(t, (&NutritionFacts{}).IsEmpty())
	assert.False(t, (&NutritionFacts{Sodium: Float(0)}).IsEmpty())
}
