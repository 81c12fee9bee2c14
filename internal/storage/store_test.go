// internal/storage/store_test.go
package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valpere/RecipeScrapexter/pkg/types"
)

func sampleRecipe(title string) *types.Recipe {
	return &types.Recipe{
		Title:         title,
		Description:   "Weekend breakfast",
		SourceURL:     "https://example.com/pancakes",
		PrepTime:      types.Int(10),
		CookTime:      types.Int(15),
		Servings:      types.Int(4),
		Cuisine:       "American",
		CategoryNames: []string{"Breakfast", "Breakfast", "Sweet"},
		TagNames:      []string{"quick"},
		Ingredients: []types.Ingredient{
			{Quantity: types.Float(2), Unit: "cups", Name: "flour"},
			{Quantity: types.Float(0.5), Unit: "tsp", Name: "salt", Notes: "fine"},
			{Name: "butter for the pan"},
		},
		Instructions: []types.Instruction{{Text: "Mix."}, {Text: "Cook."}},
		Nutrition:    &types.NutritionFacts{Calories: types.Float(320), Fat: types.Float(9.5)},
	}
}

func openTestStore(t *testing.T) *SQLStore {
	t.Helper()
	store, err := OpenSQL(context.Background(), DriverSQLite, filepath.Join(t.TempDir(), "db", "recipes.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSQLStore_SaveAndLoad(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	stored, err := store.Save(ctx, sampleRecipe("Fluffy Pancakes"))
	require.NoError(t, err)
	assert.Equal(t, "fluffy-pancakes", stored.Slug)
	assert.Len(t, stored.ID, 36)
	assert.False(t, stored.CreatedAt.IsZero())

	got, err := store.GetBySlug(ctx, stored.Slug)
	require.NoError(t, err)
	assert.Equal(t, "Fluffy Pancakes", got.Title)
	assert.Equal(t, "American", got.Cuisine)
	require.NotNil(t, got.TotalTime)
	assert.Equal(t, 25, *got.TotalTime)
	assert.Equal(t, 4, *got.Servings)

	require.Len(t, got.Ingredients, 3)
	assert.Equal(t, "flour", got.Ingredients[0].Name)
	assert.Equal(t, 2.0, *got.Ingredients[0].Quantity)
	assert.Equal(t, "fine", got.Ingredients[1].Notes)
	assert.Nil(t, got.Ingredients[2].Quantity)
	assert.Equal(t, []types.Instruction{{Text: "Mix."}, {Text: "Cook."}}, got.Instructions)

	assert.Equal(t, []string{"Breakfast", "Sweet"}, got.CategoryNames)
	assert.Equal(t, []string{"quick"}, got.TagNames)
	require.NotNil(t, got.Nutrition)
	assert.Equal(t, 320.0, *got.Nutrition.Calories)
	assert.Nil(t, got.Nutrition.Protein)
}

func TestSQLStore_UniqueSlugs(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	var slugs []string
	for i := 0; i < 3; i++ {
		stored, err := store.Save(ctx, sampleRecipe("Fluffy Pancakes"))
		require.NoError(t, err)
		slugs = append(slugs, stored.Slug)
	}
	assert.Equal(t, []string{"fluffy-pancakes", "fluffy-pancakes-1", "fluffy-pancakes-2"}, slugs)
}

func TestSQLStore_ReusesDictionaryEntries(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	_, err := store.Save(ctx, sampleRecipe("Pancakes"))
	require.NoError(t, err)
	_, err = store.Save(ctx, sampleRecipe("Crepes"))
	require.NoError(t, err)

	for table, want := range map[string]int{"ingredients": 3, "categories": 2, "tags": 1, "recipe_ingredients": 6} {
		var count int
		require.NoError(t, store.db.QueryRow("SELECT COUNT(*) FROM "+table).Scan(&count))
		assert.Equal(t, want, count, table)
	}
}

func TestSQLStore_RejectsInvalidRecipe(t *testing.T) {
	store := openTestStore(t)

	_, err := store.Save(context.Background(), &types.Recipe{Title: "Stub"})
	var ve types.ValidationErrors
	require.True(t, errors.As(err, &ve))
	assert.Len(t, ve, 2)

	var count int
	require.NoError(t, store.db.QueryRow("SELECT COUNT(*) FROM recipes").Scan(&count))
	assert.Zero(t, count)
}

func TestSQLStore_RejectsOversizedIngredientName(t *testing.T) {
	store := openTestStore(t)

	recipe := sampleRecipe("Long Line")
	recipe.Ingredients[2].Name = strings.Repeat("x", types.MaxNameLength+1)
	_, err := store.Save(context.Background(), recipe)
	var ve types.ValidationErrors
	require.True(t, errors.As(err, &ve))
	require.Len(t, ve, 1)
	assert.Equal(t, "ingredients[2].name", ve[0].Field)
}

func TestSQLStore_KeepsExplicitTotalTime(t *testing.T) {
	store := openTestStore(t)
	recipe := sampleRecipe("Stew")
	recipe.TotalTime = types.Int(90)
	recipe.Nutrition = nil

	stored, err := store.Save(context.Background(), recipe)
	require.NoError(t, err)
	got, err := store.GetBySlug(context.Background(), stored.Slug)
	require.NoError(t, err)
	assert.Equal(t, 90, *got.TotalTime)
	assert.Nil(t, got.Nutrition)
}

func TestSQLStore_Delete(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	stored, err := store.Save(ctx, sampleRecipe("Pancakes"))
	require.NoError(t, err)
	require.NoError(t, store.Delete(ctx, stored.ID))

	_, err = store.GetBySlug(ctx, stored.Slug)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, store.Delete(ctx, stored.ID), ErrNotFound)

	var count int
	require.NoError(t, store.db.QueryRow("SELECT COUNT(*) FROM instructions").Scan(&count))
	assert.Zero(t, count)
}

func TestSQLStore_Rebind(t *testing.T) {
	pg := &SQLStore{dialect: DriverPostgres}
	assert.Equal(t, "SELECT a FROM t WHERE b = $1 AND c = $2", pg.rebind("SELECT a FROM t WHERE b = ? AND c = ?"))

	sqlite := &SQLStore{dialect: DriverSQLite}
	assert.Equal(t, "x = ?", sqlite.rebind("x = ?"))
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := Open(context.Background(), Config{Driver: "oracle", DSN: "x"})
	assert.Error(t, err)

	_, err = Open(context.Background(), Config{Driver: DriverSQLite})
	assert.Error(t, err)
}

func TestBaseSlug(t *testing.T) {
	assert.Equal(t, "creme-brulee", baseSlug("Crème Brûlée"))
	assert.Equal(t, "recipe", baseSlug("!!!"))
}

func TestMongoStore_RoundTrip(t *testing.T) {
	uri := os.Getenv("MONGO_URI")
	if uri == "" {
		t.Skip("MONGO_URI not set")
	}
	ctx := context.Background()
	store, err := OpenMongo(ctx, uri, "recipescrapexter_test")
	require.NoError(t, err)
	defer store.Close()

	stored, err := store.Save(ctx, sampleRecipe("Mongo Pancakes"))
	require.NoError(t, err)
	defer store.Delete(ctx, stored.ID)

	got, err := store.GetBySlug(ctx, stored.Slug)
	require.NoError(t, err)
	assert.Equal(t, "Mongo Pancakes", got.Title)
	assert.Equal(t, 25, *got.TotalTime)
	assert.Len(t, got.Ingredients, 3)
}
