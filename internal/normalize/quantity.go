// internal/normalize/quantity.go

// Package normalize turns loosely typed recipe markup values into the
// canonical recipe fields: quantities, ingredient lines, durations, servings,
// nutrition values, images and instruction lists.
package normalize

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

// unicodeFractions maps vulgar-fraction glyphs to rounded decimal values.
// Thirds and sixths are stored to three places, not as exact ratios.
var unicodeFractions = map[rune]float64{
	'½': 0.5,
	'⅓': 0.333,
	'⅔': 0.667,
	'¼': 0.25,
	'¾': 0.75,
	'⅕': 0.2,
	'⅖': 0.4,
	'⅗': 0.6,
	'⅘': 0.8,
	'⅙': 0.167,
	'⅚': 0.833,
	'⅛': 0.125,
	'⅜': 0.375,
	'⅝': 0.625,
	'⅞': 0.875,
}

var (
	wholeWithGlyphRe = regexp.MustCompile(`^(\d+)\s*([^\d\s/.])`)
	mixedNumberRe    = regexp.MustCompile(`^(\d+)\s+(\d+)\s*/\s*(\d+)`)
	simpleFractionRe = regexp.MustCompile(`^(\d+)\s*/\s*(\d+)`)
	decimalRe        = regexp.MustCompile(`^(\d+(?:\.\d+)?)`)
)

// Quantity is the result of ParseQuantity.
type Quantity struct {
	Value float64
	Found bool
	Rest  string // text after the consumed token, trimmed
}

// FractionValue returns the decimal value of a vulgar-fraction glyph.
func FractionValue(r rune) (float64, bool) {
	v, ok := unicodeFractions[r]
	return v, ok
}

// ParseQuantity reads a leading amount such as "2", "2.5", "1/2", "1 1/2",
// "½" or "1½" from s. When nothing matches, Found is false and Rest is the
// trimmed input.
func ParseQuantity(s string) Quantity {
	s = strings.TrimSpace(s)

	if m := wholeWithGlyphRe.FindStringSubmatch(s); m != nil {
		glyph, _ := utf8.DecodeRuneInString(m[2])
		if frac, ok := unicodeFractions[glyph]; ok {
			return Quantity{Value: atof(m[1]) + frac, Found: true, Rest: rest(s, m[0])}
		}
	}

	if first, size := utf8.DecodeRuneInString(s); size > 0 {
		if frac, ok := unicodeFractions[first]; ok {
			return Quantity{Value: frac, Found: true, Rest: strings.TrimSpace(s[size:])}
		}
	}

	if m := mixedNumberRe.FindStringSubmatch(s); m != nil {
		if den := atof(m[3]); den != 0 {
			return Quantity{Value: atof(m[1]) + atof(m[2])/den, Found: true, Rest: rest(s, m[0])}
		}
	}

	if m := simpleFractionRe.FindStringSubmatch(s); m != nil {
		if den := atof(m[2]); den != 0 {
			return Quantity{Value: atof(m[1]) / den, Found: true, Rest: rest(s, m[0])}
		}
	}

	if m := decimalRe.FindStringSubmatch(s); m != nil {
		return Quantity{Value: atof(m[1]), Found: true, Rest: rest(s, m[0])}
	}

	return Quantity{Rest: s}
}

func rest(s, matched string) string {
	return strings.TrimSpace(s[len(matched):])
}

// atof parses a digit run already validated by a regexp.
func atof(digits string) float64 {
	v, _ := strconv.ParseFloat(digits, 64)
	return v
}
