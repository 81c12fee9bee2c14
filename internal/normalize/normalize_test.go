// internal/normalize/normalize_test.go

package normalize

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valpere/RecipeScrapexter/pkg/types"
)

func TestParseQuantity(t *testing.T) {
	tests := []struct {
		in        string
		wantValue float64
		wantFound bool
		wantRest  string
	}{
		{"1½ cups flour", 1.5, true, "cups flour"},
		{"2 ¼ tsp salt", 2.25, true, "tsp salt"},
		{"½ onion", 0.5, true, "onion"},
		{"⅓ cup sugar", 0.333, true, "cup sugar"},
		{"1 1/2 cups milk", 1.5, true, "cups milk"},
		{"3/4 cup oats", 0.75, true, "cup oats"},
		{"1 / 4 tsp", 0.25, true, "tsp"},
		{"2.5 kg beef", 2.5, true, "kg beef"},
		{"12", 12, true, ""},
		{"1/0 cup", 1, true, "/0 cup"},
		{"salt to taste", 0, false, "salt to taste"},
		{"  pinch  ", 0, false, "pinch"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := ParseQuantity(tt.in)
			assert.Equal(t, tt.wantFound, got.Found)
			assert.InDelta(t, tt.wantValue, got.Value, 1e-9)
			assert.Equal(t, tt.wantRest, got.Rest)
		})
	}
}

func TestFractionTable(t *testing.T) {
	for _, glyph := range "½⅓⅔¼¾⅕⅖⅗⅘⅙⅚⅛⅜⅝⅞" {
		v, ok := FractionValue(glyph)
		require.True(t, ok, string(glyph))
		assert.Greater(t, v, 0.0)
		assert.Less(t, v, 1.0)
	}
	_, ok := FractionValue('x')
	assert.False(t, ok)
}

func TestIsUnit(t *testing.T) {
	assert.True(t, IsUnit("Cups"))
	assert.True(t, IsUnit("tbsp."))
	assert.True(t, IsUnit("oz,"))
	assert.False(t, IsUnit("flour"))
	assert.False(t, IsUnit("tbsp.."))
}

func TestParseIngredient(t *testing.T) {
	tests := []struct {
		in   string
		want types.Ingredient
	}{
		{"1½ cups flour", types.Ingredient{Quantity: types.Float(1.5), Unit: "cups", Name: "flour"}},
		{"2 cups all-purpose flour (sifted)", types.Ingredient{Quantity: types.Float(2), Unit: "cups", Name: "all-purpose flour", Notes: "sifted"}},
		{"a pinch of salt", types.Ingredient{Name: "a pinch of salt"}},
		{"2 large eggs", types.Ingredient{Quantity: types.Float(2), Unit: "large", Name: "eggs"}},
		{"3 Tbsp. butter, melted", types.Ingredient{Quantity: types.Float(3), Unit: "Tbsp", Name: "butter, melted"}},
		{"4 garlic cloves", types.Ingredient{Quantity: types.Float(4), Name: "garlic cloves"}},
		{"  1 lemon  ", types.Ingredient{Quantity: types.Float(1), Name: "lemon"}},
		{"3 (optional)", types.Ingredient{Quantity: types.Float(3), Name: "3 (optional)", Notes: "optional"}},
		{"2 cups", types.Ingredient{Name: "2 cups"}},
		{"1-2 cups flour", types.Ingredient{Quantity: types.Float(1), Name: "-2 cups flour"}},
		{"salt (to taste) ", types.Ingredient{Name: "salt", Notes: "to taste"}},
		{"   ", types.Ingredient{Name: "   "}},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := ParseIngredient(tt.in)
			assert.Equal(t, tt.want.Name, got.Name)
			assert.Equal(t, tt.want.Unit, got.Unit)
			assert.Equal(t, tt.want.Notes, got.Notes)
			if tt.want.Quantity == nil {
				assert.Nil(t, got.Quantity)
			} else {
				require.NotNil(t, got.Quantity)
				assert.InDelta(t, *tt.want.Quantity, *got.Quantity, 1e-9)
			}
		})
	}
}

func TestParseIngredientNameIsStable(t *testing.T) {
	for _, line := range []string{"1½ cups flour", "2 cups all-purpose flour (sifted)", "a pinch of salt"} {
		first := ParseIngredient(line)
		again := ParseIngredient(first.Name)
		assert.Equal(t, first.Name, again.Name, line)
		assert.NotEmpty(t, again.Name)
	}
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		in     interface{}
		want   int
		wantOK bool
	}{
		{"PT1H30M", 90, true},
		{"PT2H", 120, true},
		{"pt45m", 45, true},
		{"PT30S", 1, true},
		{"PT1M1S", 2, true},
		{"PT0M", 0, false},
		{"PT", 0, false},
		{"garbage", 0, false},
		{"P1DT2H", 0, false},
		{"", 0, false},
		{nil, 0, false},
		{30.0, 0, false},
	}

	for _, tt := range tests {
		got, ok := ParseDuration(tt.in)
		assert.Equal(t, tt.wantOK, ok, "%v", tt.in)
		assert.Equal(t, tt.want, got, "%v", tt.in)
	}
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "45m", FormatDuration(45))
	assert.Equal(t, "1h", FormatDuration(60))
	assert.Equal(t, "1h 30m", FormatDuration(90))
	assert.Equal(t, "0m", FormatDuration(0))
}

func TestParseServings(t *testing.T) {
	tests := []struct {
		in     interface{}
		want   int
		wantOK bool
	}{
		{[]interface{}{"4 servings"}, 4, true},
		{"Makes 12 cookies", 12, true},
		{6.0, 6, true},
		{json.Number("8"), 8, true},
		{0.0, 0, false},
		{-2.0, 0, false},
		{"0 servings", 0, false},
		{"a few", 0, false},
		{[]interface{}{}, 0, false},
		{map[string]interface{}{"value": 4}, 0, false},
		{nil, 0, false},
	}

	for _, tt := range tests {
		got, ok := ParseServings(tt.in)
		assert.Equal(t, tt.wantOK, ok, "%v", tt.in)
		assert.Equal(t, tt.want, got, "%v", tt.in)
	}
}

func TestParseNutrition(t *testing.T) {
	n := ParseNutrition(map[string]interface{}{
		"@type":          "NutritionInformation",
		"calories":       "240 kcal",
		"proteinContent": "12g",
		"fatContent":     7.5,
		"sodiumContent":  "n/a",
	})
	require.NotNil(t, n)
	assert.Equal(t, 240.0, *n.Calories)
	assert.Equal(t, 12.0, *n.Protein)
	assert.Equal(t, 7.5, *n.Fat)
	assert.Nil(t, n.Sodium)
	assert.Nil(t, n.Carbs)

	assert.Nil(t, ParseNutrition(nil))
	assert.Nil(t, ParseNutrition(map[string]interface{}{"calories": "none"}))
}

func TestParseNutritionValue(t *testing.T) {
	v, ok := ParseNutritionValue("1.5.2 g")
	require.True(t, ok)
	assert.Equal(t, 1.5, v)

	v, ok = ParseNutritionValue(".5g")
	require.True(t, ok)
	assert.Equal(t, 0.5, v)

	_, ok = ParseNutritionValue("")
	assert.False(t, ok)
}

func TestImageURL(t *testing.T) {
	assert.Equal(t, "https://x/a.jpg", ImageURL("https://x/a.jpg"))
	assert.Equal(t, "https://x/b.jpg", ImageURL([]interface{}{"https://x/b.jpg", "https://x/c.jpg"}))
	assert.Equal(t, "https://x/d.jpg", ImageURL(map[string]interface{}{"@type": "ImageObject", "url": "https://x/d.jpg"}))
	assert.Equal(t, "https://x/e.jpg", ImageURL([]interface{}{map[string]interface{}{"contentUrl": "https://x/e.jpg"}}))
	assert.Equal(t, "", ImageURL(map[string]interface{}{"width": 100.0}))
	assert.Equal(t, "", ImageURL(nil))
}

func TestStringListAndCuisine(t *testing.T) {
	assert.Equal(t, []string{"Dessert"}, StringList("Dessert"))
	assert.Equal(t, []string{"Dinner", "2"}, StringList([]interface{}{"Dinner", 2.0}))
	assert.Nil(t, StringList(""))
	assert.Nil(t, StringList(42.0))

	assert.Equal(t, "Italian, French", JoinCuisine([]interface{}{"Italian", "French"}))
	assert.Equal(t, "Thai", JoinCuisine("Thai"))
	assert.Equal(t, "", JoinCuisine(nil))
}

func TestParseInstructions(t *testing.T) {
	var raw interface{}
	require.NoError(t, json.Unmarshal([]byte(`[
		{"@type":"HowToSection","name":"Dough","itemListElement":[{"text":"Step A"},{"text":"Step B"}]},
		"Step C",
		{"@type":"HowToStep","name":"Step D"},
		{"@type":"HowToSection","itemListElement":[
			{"@type":"HowToSection","itemListElement":["  Step E  "]}
		]},
		{"@type":"HowToStep","text":"   "},
		42,
		""
	]`), &raw))

	got := ParseInstructions(raw)
	assert.Equal(t, []types.Instruction{
		{Text: "Step A"}, {Text: "Step B"}, {Text: "Step C"}, {Text: "Step D"}, {Text: "Step E"},
	}, got)

	again := make([]interface{}, len(got))
	for i, step := range got {
		again[i] = step.Text
	}
	assert.Equal(t, got, ParseInstructions(again))
}

func TestParseInstructionsAbsent(t *testing.T) {
	got := ParseInstructions(nil)
	require.NotNil(t, got)
	assert.Empty(t, got)

	assert.Empty(t, ParseInstructions("Mix everything."))
	assert.Equal(t, []types.Instruction{{Text: "Bake"}}, ParseInstructions([]string{"Bake", " "}))
}

func TestSlug(t *testing.T) {
	assert.Equal(t, "creme-brulee", Slug("Crème Brûlée"))
	assert.Equal(t, "mom-s-best-chili-2024", Slug("  Mom's BEST Chili (2024)! "))
	assert.Equal(t, "", Slug("!!!"))
}
