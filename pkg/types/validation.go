// pkg/types/validation.go
package types

import (
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"
)

// MaxTitleLength bounds Recipe.Title for persisted recipes.
const MaxTitleLength = 200

// Column bounds of the SQL schema.
const (
	MaxNameLength = 255
	MaxUnitLength = 64
)

// ValidationError describes one invalid field.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors collects every problem found by Recipe.Validate.
type ValidationErrors []*ValidationError

func (ve ValidationErrors) Error() string {
	parts := make([]string, 0, len(ve))
	for _, e := range ve {
		parts = append(parts, e.Error())
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Validate checks that the recipe is complete enough to be stored.
// Imported recipes are not required to pass; a heuristic stub usually won't
// until the ingredients and instructions are filled in.
func (r *Recipe) Validate() error {
	var errs ValidationErrors
	add := func(field, format string, args ...interface{}) {
		errs = append(errs, &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	title := strings.TrimSpace(r.Title)
	switch {
	case title == "":
		add("title", "title is required")
	case utf8.RuneCountInString(title) > MaxTitleLength:
		add("title", "title must be less than %d characters", MaxTitleLength)
	}

	if r.SourceURL != "" && !isAbsoluteURL(r.SourceURL) {
		add("sourceUrl", "must be a valid URL")
	}
	if r.ImageURL != "" && !isAbsoluteURL(r.ImageURL) {
		add("imageUrl", "must be a valid URL")
	}

	times := []struct {
		field string
		value *int
	}{
		{"prepTime", r.PrepTime},
		{"cookTime", r.CookTime},
		{"totalTime", r.TotalTime},
	}
	for _, t := range times {
		if t.value != nil && *t.value < 0 {
			add(t.field, "must be a positive number")
		}
	}
	if r.Servings != nil && *r.Servings <= 0 {
		add("servings", "servings must be a positive number")
	}

	if utf8.RuneCountInString(r.Cuisine) > MaxNameLength {
		add("cuisine", "must be at most %d characters", MaxNameLength)
	}
	for i, name := range r.CategoryNames {
		if utf8.RuneCountInString(name) > MaxNameLength {
			add(fmt.Sprintf("categoryNames[%d]", i), "must be at most %d characters", MaxNameLength)
		}
	}
	for i, name := range r.TagNames {
		if utf8.RuneCountInString(name) > MaxNameLength {
			add(fmt.Sprintf("tagNames[%d]", i), "must be at most %d characters", MaxNameLength)
		}
	}

	if len(r.Ingredients) == 0 {
		add("ingredients", "at least one ingredient is required")
	}
	for i, ing := range r.Ingredients {
		switch name := strings.TrimSpace(ing.Name); {
		case name == "":
			add(fmt.Sprintf("ingredients[%d].name", i), "ingredient name is required")
		case utf8.RuneCountInString(name) > MaxNameLength:
			add(fmt.Sprintf("ingredients[%d].name", i), "must be at most %d characters", MaxNameLength)
		}
		if utf8.RuneCountInString(ing.Unit) > MaxUnitLength {
			add(fmt.Sprintf("ingredients[%d].unit", i), "must be at most %d characters", MaxUnitLength)
		}
		if ing.Quantity != nil && *ing.Quantity <= 0 {
			add(fmt.Sprintf("ingredients[%d].quantity", i), "must be positive")
		}
	}

	if len(r.Instructions) == 0 {
		add("instructions", "at least one instruction is required")
	}
	for i, step := range r.Instructions {
		if strings.TrimSpace(step.Text) == "" {
			add(fmt.Sprintf("instructions[%d].text", i), "instruction text is required")
		}
	}

	if n := r.Nutrition; n != nil {
		facts := []struct {
			field string
			value *float64
		}{
			{"calories", n.Calories},
			{"protein", n.Protein},
			{"carbs", n.Carbs},
			{"fat", n.Fat},
			{"fiber", n.Fiber},
			{"sugar", n.Sugar},
			{"sodium", n.Sodium},
		}
		for _, f := range facts {
			if f.value != nil && *f.value < 0 {
				add("nutrition."+f.field, "must not be negative")
			}
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func isAbsoluteURL(raw string) bool {
	u, err := url.Parse(raw)
	return err == nil && u.Scheme != "" && u.Host != ""
}
