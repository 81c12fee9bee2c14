// internal/normalize/ingredient.go

package normalize

import (
	"regexp"
	"strings"

	"github.com/valpere/RecipeScrapexter/pkg/types"
)

var trailingNotesRe = regexp.MustCompile(`\(([^)]+)\)\s*$`)

// ParseIngredient splits a free-text ingredient line into quantity, unit,
// name and notes. It never loses text: when the line cannot be split the
// whole trimmed line becomes the name.
func ParseIngredient(raw string) types.Ingredient {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return types.Ingredient{Name: raw}
	}

	var notes string
	working := trimmed
	if loc := trailingNotesRe.FindStringSubmatchIndex(working); loc != nil {
		notes = strings.TrimSpace(working[loc[2]:loc[3]])
		working = strings.TrimSpace(working[:loc[0]])
	}

	qty := ParseQuantity(working)
	var quantity *float64
	if qty.Found {
		quantity = types.Float(qty.Value)
	}

	if qty.Rest == "" {
		return types.Ingredient{Quantity: quantity, Name: trimmed, Notes: notes}
	}

	words := strings.Fields(qty.Rest)
	var unit, name string
	if len(words) > 0 && IsUnit(words[0]) {
		unit = trimUnitPunct(words[0])
		name = strings.Join(words[1:], " ")
	} else {
		name = qty.Rest
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return types.Ingredient{Name: trimmed, Notes: notes}
	}

	return types.Ingredient{Quantity: quantity, Unit: unit, Name: name, Notes: notes}
}

// ParseIngredients parses each line in order.
func ParseIngredients(lines []string) []types.Ingredient {
	out := make([]types.Ingredient, 0, len(lines))
	for _, line := range lines {
		out = append(out, ParseIngredient(line))
	}
	return out
}
