// internal/normalize/values.go

package normalize

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/valpere/RecipeScrapexter/pkg/types"
)

var (
	firstIntRe     = regexp.MustCompile(`\d+`)
	nonNumericRe   = regexp.MustCompile(`[^\d.]`)
	leadingFloatRe = regexp.MustCompile(`^(\d+\.?\d*|\.\d+)`)
)

// ParseServings reads a recipe yield given as a number, a string like
// "4 servings", or a list whose first element is one of those.
func ParseServings(v interface{}) (int, bool) {
	switch val := v.(type) {
	case nil:
		return 0, false
	case float64:
		if val > 0 && int(val) > 0 {
			return int(val), true
		}
	case int:
		if val > 0 {
			return val, true
		}
	case json.Number:
		if f, err := val.Float64(); err == nil {
			return ParseServings(f)
		}
	case string:
		if m := firstIntRe.FindString(val); m != "" {
			if n, err := strconv.Atoi(m); err == nil && n > 0 {
				return n, true
			}
		}
	case []interface{}:
		if len(val) > 0 {
			return ParseServings(val[0])
		}
	case []string:
		if len(val) > 0 {
			return ParseServings(val[0])
		}
	}
	return 0, false
}

// ParseNutritionValue keeps only digits and dots from v and reads the leading
// number, so "240 kcal" becomes 240 and "12g" becomes 12.
func ParseNutritionValue(v interface{}) (float64, bool) {
	if v == nil {
		return 0, false
	}
	var s string
	switch val := v.(type) {
	case string:
		s = val
	case float64:
		s = strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		s = strconv.Itoa(val)
	case json.Number:
		s = val.String()
	default:
		s = fmt.Sprint(val)
	}

	m := leadingFloatRe.FindString(nonNumericRe.ReplaceAllString(s, ""))
	if m == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// nutritionFields maps markup property names onto NutritionFacts fields.
var nutritionFields = []struct {
	prop string
	set  func(n *types.NutritionFacts, v float64)
}{
	{"calories", func(n *types.NutritionFacts, v float64) { n.Calories = types.Float(v) }},
	{"proteinContent", func(n *types.NutritionFacts, v float64) { n.Protein = types.Float(v) }},
	{"carbohydrateContent", func(n *types.NutritionFacts, v float64) { n.Carbs = types.Float(v) }},
	{"fatContent", func(n *types.NutritionFacts, v float64) { n.Fat = types.Float(v) }},
	{"fiberContent", func(n *types.NutritionFacts, v float64) { n.Fiber = types.Float(v) }},
	{"sugarContent", func(n *types.NutritionFacts, v float64) { n.Sugar = types.Float(v) }},
	{"sodiumContent", func(n *types.NutritionFacts, v float64) { n.Sodium = types.Float(v) }},
}

// NutritionProperties lists the nutrition property names read from markup.
func NutritionProperties() []string {
	props := make([]string, len(nutritionFields))
	for i, f := range nutritionFields {
		props[i] = f.prop
	}
	return props
}

// ParseNutrition builds NutritionFacts from a raw property map. It returns nil
// when no field parses.
func ParseNutrition(raw map[string]interface{}) *types.NutritionFacts {
	if raw == nil {
		return nil
	}
	n := &types.NutritionFacts{}
	for _, f := range nutritionFields {
		if v, ok := ParseNutritionValue(raw[f.prop]); ok {
			f.set(n, v)
		}
	}
	if n.IsEmpty() {
		return nil
	}
	return n
}

// ImageURL resolves an image given as a URL string, an ImageObject with url
// or contentUrl, or a list of either (first element wins).
func ImageURL(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case []interface{}:
		if len(val) > 0 {
			return ImageURL(val[0])
		}
	case []string:
		if len(val) > 0 {
			return val[0]
		}
	case map[string]interface{}:
		if u, ok := val["url"].(string); ok {
			return u
		}
		if u, ok := val["contentUrl"].(string); ok {
			return u
		}
	}
	return ""
}

// StringList coerces a string or list value into a string slice. List
// elements are stringified; objects contribute their "name" and empty
// results are dropped. Other shapes give nil.
func StringList(v interface{}) []string {
	switch val := v.(type) {
	case string:
		if val == "" {
			return nil
		}
		return []string{val}
	case []string:
		return val
	case []interface{}:
		out := make([]string, 0, len(val))
		for _, item := range val {
			if s := stringify(item); s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// JoinCuisine renders recipeCuisine as a single string, joining lists with ", ".
func JoinCuisine(v interface{}) string {
	switch val := v.(type) {
	case []string:
		return strings.Join(val, ", ")
	case []interface{}:
		return strings.Join(StringList(val), ", ")
	}
	return stringify(v)
}

func stringify(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case json.Number:
		return val.String()
	case map[string]interface{}:
		if name, ok := val["name"].(string); ok {
			return name
		}
		return ""
	default:
		return fmt.Sprint(val)
	}
}
