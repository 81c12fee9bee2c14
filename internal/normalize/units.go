// internal/normalize/units.go

package normalize

import "strings"

// knownUnits is the lexicon of leading words treated as a unit of measure.
// Size words (small, large, whole) are included so "2 large eggs" keeps "eggs" as the name.
var knownUnits = map[string]struct{}{}

func init() {
	for _, u := range []string{
		"cup", "cups", "c",
		"tbsp", "tablespoon", "tablespoons", "tbs",
		"tsp", "teaspoon", "teaspoons",
		"oz", "ounce", "ounces",
		"lb", "lbs", "pound", "pounds",
		"g", "gram", "grams",
		"kg", "kilogram", "kilograms",
		"ml", "milliliter", "milliliters",
		"l", "liter", "liters",
		"pinch", "dash",
		"clove", "cloves",
		"can", "cans",
		"bunch", "bunches",
		"slice", "slices",
		"piece", "pieces",
		"package", "pkg",
		"stick", "sticks",
		"head", "heads",
		"sprig", "sprigs",
		"handful",
		"small", "medium", "large", "whole",
		"quart", "quarts", "qt",
		"pint", "pints", "pt",
		"gallon", "gallons", "gal",
	} {
		knownUnits[u] = struct{}{}
	}
}

// trimUnitPunct drops one trailing period or comma ("tbsp." -> "tbsp").
func trimUnitPunct(word string) string {
	if strings.HasSuffix(word, ".") || strings.HasSuffix(word, ",") {
		return word[:len(word)-1]
	}
	return word
}

// IsUnit reports whether word, ignoring case and one trailing "." or ",",
// is a known unit.
func IsUnit(word string) bool {
	_, ok := knownUnits[strings.ToLower(trimUnitPunct(word))]
	return ok
}
