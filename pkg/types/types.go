// pkg/types/types.go

// Package types defines the canonical recipe shape produced by the extraction
// pipeline and consumed by the output writers and recipe stores.
package types

import (
	"math"
)

// Recipe is the normalized record built from a recipe web page.
// Optional fields are omitted from encoded output when they could not be parsed.
type Recipe struct {
	Title         string          `json:"title" yaml:"title" bson:"title"`
	Description   string          `json:"description,omitempty" yaml:"description,omitempty" bson:"description,omitempty"`
	SourceURL     string          `json:"sourceUrl,omitempty" yaml:"source_url,omitempty" bson:"source_url,omitempty"`
	ImageURL      string          `json:"imageUrl,omitempty" yaml:"image_url,omitempty" bson:"image_url,omitempty"`
	PrepTime      *int            `json:"prepTime,omitempty" yaml:"prep_time,omitempty" bson:"prep_time,omitempty"`
	CookTime      *int            `json:"cookTime,omitempty" yaml:"cook_time,omitempty" bson:"cook_time,omitempty"`
	TotalTime     *int            `json:"totalTime,omitempty" yaml:"total_time,omitempty" bson:"total_time,omitempty"`
	Servings      *int            `json:"servings,omitempty" yaml:"servings,omitempty" bson:"servings,omitempty"`
	Cuisine       string          `json:"cuisine,omitempty" yaml:"cuisine,omitempty" bson:"cuisine,omitempty"`
	CategoryNames []string        `json:"categoryNames,omitempty" yaml:"category_names,omitempty" bson:"category_names,omitempty"`
	TagNames      []string        `json:"tagNames,omitempty" yaml:"tag_names,omitempty" bson:"tag_names,omitempty"`
	Ingredients   []Ingredient    `json:"ingredients" yaml:"ingredients" bson:"ingredients"`
	Instructions  []Instruction   `json:"instructions" yaml:"instructions" bson:"instructions"`
	Nutrition     *NutritionFacts `json:"nutrition,omitempty" yaml:"nutrition,omitempty" bson:"nutrition,omitempty"`
}

// Ingredient is one parsed ingredient line. Name is always set; when the line
// could not be split, Name carries the whole original text.
type Ingredient struct {
	Quantity *float64 `json:"quantity,omitempty" yaml:"quantity,omitempty" bson:"quantity,omitempty"`
	Unit     string   `json:"unit,omitempty" yaml:"unit,omitempty" bson:"unit,omitempty"`
	Name     string   `json:"name" yaml:"name" bson:"name"`
	Notes    string   `json:"notes,omitempty" yaml:"notes,omitempty" bson:"notes,omitempty"`
}

// Instruction is a single step; its position in Recipe.Instructions is the step order.
type Instruction struct {
	Text string `json:"text" yaml:"text" bson:"text"`
}

// NutritionFacts holds per-serving nutrient values. A nil field means "not parsed".
type NutritionFacts struct {
	Calories *float64 `json:"calories,omitempty" yaml:"calories,omitempty" bson:"calories,omitempty"`
	Protein  *float64 `json:"protein,omitempty" yaml:"protein,omitempty" bson:"protein,omitempty"`
	Carbs    *float64 `json:"carbs,omitempty" yaml:"carbs,omitempty" bson:"carbs,omitempty"`
	Fat      *float64 `json:"fat,omitempty" yaml:"fat,omitempty" bson:"fat,omitempty"`
	Fiber    *float64 `json:"fiber,omitempty" yaml:"fiber,omitempty" bson:"fiber,omitempty"`
	Sugar    *float64 `json:"sugar,omitempty" yaml:"sugar,omitempty" bson:"sugar,omitempty"`
	Sodium   *float64 `json:"sodium,omitempty" yaml:"sodium,omitempty" bson:"sodium,omitempty"`
}

// IsEmpty reports whether no nutrient was set.
func (n *NutritionFacts) IsEmpty() bool {
	if n == nil {
		return true
	}
	return n.Calories == nil && n.Protein == nil && n.Carbs == nil && n.Fat == nil &&
		n.Fiber == nil && n.Sugar == nil && n.Sodium == nil
}

// Int returns a pointer to v.
func Int(v int) *int { return &v }

// Float returns a pointer to v.
func Float(v float64) *float64 { return &v }

// EffectiveTotalTime returns TotalTime when set, otherwise PrepTime+CookTime
// when that sum is positive.
func (r *Recipe) EffectiveTotalTime() *int {
	if r.TotalTime != nil {
		return r.TotalTime
	}
	sum := 0
	if r.PrepTime != nil {
		sum += *r.PrepTime
	}
	if r.CookTime != nil {
		sum += *r.CookTime
	}
	if sum > 0 {
		return Int(sum)
	}
	return nil
}

// Scale returns a copy of the recipe with ingredient quantities adjusted from
// the recipe's servings (1 when unknown) to the requested servings.
// Scaled quantities are rounded to two decimals.
func (r *Recipe) Scale(servings int) (*Recipe, error) {
	if servings < 1 {
		return nil, &ValidationError{Field: "servings", Message: "must be at least 1"}
	}

	base := 1
	if r.Servings != nil && *r.Servings > 0 {
		base = *r.Servings
	}
	ratio := float64(servings) / float64(base)

	scaled := *r
	scaled.Servings = Int(servings)
	scaled.Ingredients = make([]Ingredient, len(r.Ingredients))
	for i, ing := range r.Ingredients {
		if ing.Quantity != nil {
			q := math.Round(*ing.Quantity*ratio*100) / 100
			ing.Quantity = &q
		}
		scaled.Ingredients[i] = ing
	}
	return &scaled, nil
}
