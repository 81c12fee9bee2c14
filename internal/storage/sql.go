// internal/storage/sql.go
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql" // MySQL driver
	"github.com/google/uuid"
	_ "github.com/lib/pq"          // PostgreSQL driver
	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"github.com/valpere/RecipeScrapexter/internal/normalize"
	"github.com/valpere/RecipeScrapexter/pkg/types"
)

const sqliteParams = "?_busy_timeout=5000&_journal_mode=WAL&_foreign_keys=on"

// schema is portable across SQLite, PostgreSQL and MySQL.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS recipes (
		id VARCHAR(36) PRIMARY KEY,
		title VARCHAR(255) NOT NULL,
		slug VARCHAR(255) NOT NULL UNIQUE,
		description TEXT,
		prep_time INTEGER,
		cook_time INTEGER,
		total_time INTEGER,
		servings INTEGER,
		cuisine VARCHAR(255),
		source_url TEXT,
		image_url TEXT,
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS ingredients (
		id VARCHAR(36) PRIMARY KEY,
		name VARCHAR(255) NOT NULL UNIQUE
	)`,
	`CREATE TABLE IF NOT EXISTS recipe_ingredients (
		recipe_id VARCHAR(36) NOT NULL REFERENCES recipes(id) ON DELETE CASCADE,
		ingredient_id VARCHAR(36) NOT NULL REFERENCES ingredients(id),
		position INTEGER NOT NULL,
		quantity DOUBLE PRECISION,
		unit VARCHAR(64),
		notes TEXT,
		PRIMARY KEY (recipe_id, position)
	)`,
	`CREATE TABLE IF NOT EXISTS instructions (
		recipe_id VARCHAR(36) NOT NULL REFERENCES recipes(id) ON DELETE CASCADE,
		step INTEGER NOT NULL,
		content TEXT NOT NULL,
		PRIMARY KEY (recipe_id, step)
	)`,
	`CREATE TABLE IF NOT EXISTS categories (
		id VARCHAR(36) PRIMARY KEY,
		name VARCHAR(255) NOT NULL UNIQUE,
		slug VARCHAR(255) NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS recipe_categories (
		recipe_id VARCHAR(36) NOT NULL REFERENCES recipes(id) ON DELETE CASCADE,
		category_id VARCHAR(36) NOT NULL REFERENCES categories(id),
		PRIMARY KEY (recipe_id, category_id)
	)`,
	`CREATE TABLE IF NOT EXISTS tags (
		id VARCHAR(36) PRIMARY KEY,
		name VARCHAR(255) NOT NULL UNIQUE,
		slug VARCHAR(255) NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS recipe_tags (
		recipe_id VARCHAR(36) NOT NULL REFERENCES recipes(id) ON DELETE CASCADE,
		tag_id VARCHAR(36) NOT NULL REFERENCES tags(id),
		PRIMARY KEY (recipe_id, tag_id)
	)`,
	`CREATE TABLE IF NOT EXISTS nutrition (
		recipe_id VARCHAR(36) PRIMARY KEY REFERENCES recipes(id) ON DELETE CASCADE,
		calories DOUBLE PRECISION,
		protein DOUBLE PRECISION,
		carbs DOUBLE PRECISION,
		fat DOUBLE PRECISION,
		fiber DOUBLE PRECISION,
		sugar DOUBLE PRECISION,
		sodium DOUBLE PRECISION
	)`,
}

// SQLStore keeps recipes in a relational database.
type SQLStore struct {
	db      *sql.DB
	dialect string
	now     func() time.Time
}

// OpenSQL connects with the given driver (sqlite, postgres or mysql),
// verifies the connection and runs Migrate.
func OpenSQL(ctx context.Context, driver, dsn string) (*SQLStore, error) {
	if dsn == "" {
		return nil, fmt.Errorf("storage DSN is required")
	}

	var driverName, dialect string
	switch strings.ToLower(driver) {
	case DriverSQLite, "sqlite3":
		driverName, dialect = "sqlite3", DriverSQLite
		if dir := filepath.Dir(dsn); dir != "." && !strings.HasPrefix(dsn, "file:") {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
		if !strings.Contains(dsn, "?") {
			dsn += sqliteParams
		}
	case DriverPostgres, "postgresql":
		driverName, dialect = "postgres", DriverPostgres
	case DriverMySQL:
		driverName, dialect = "mysql", DriverMySQL
	default:
		return nil, fmt.Errorf("unsupported SQL driver: %s", driver)
	}

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", dialect, err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping %s database: %w", dialect, err)
	}
	if dialect == DriverSQLite {
		db.SetMaxOpenConns(1) // SQLite works best with single writer
	}

	store := NewSQLStore(db, dialect)
	if err := store.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// NewSQLStore wraps an open database. dialect is one of the Driver constants.
func NewSQLStore(db *sql.DB, dialect string) *SQLStore {
	return &SQLStore{db: db, dialect: dialect, now: time.Now}
}

// Migrate creates missing tables.
func (s *SQLStore) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to migrate schema: %w", err)
		}
	}
	return nil
}

// rebind rewrites ? placeholders to $n for PostgreSQL.
func (s *SQLStore) rebind(query string) string {
	if s.dialect != DriverPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Save validates the recipe and writes it with all of its relations in one
// transaction. TotalTime falls back to prep plus cook time.
func (s *SQLStore) Save(ctx context.Context, recipe *types.Recipe) (*StoredRecipe, error) {
	if err := recipe.Validate(); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	slug, err := uniqueSlug(ctx, baseSlug(recipe.Title), func(ctx context.Context, candidate string) (bool, error) {
		var count int
		err := tx.QueryRowContext(ctx, s.rebind(`SELECT COUNT(*) FROM recipes WHERE slug = ?`), candidate).Scan(&count)
		return count > 0, err
	})
	if err != nil {
		return nil, err
	}

	stored := &StoredRecipe{ID: uuid.NewString(), Slug: slug, CreatedAt: s.now().UTC()}

	_, err = tx.ExecContext(ctx, s.rebind(`INSERT INTO recipes
		(id, title, slug, description, prep_time, cook_time, total_time, servings, cuisine, source_url, image_url, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		stored.ID, strings.TrimSpace(recipe.Title), slug, nullString(recipe.Description),
		nullInt(recipe.PrepTime), nullInt(recipe.CookTime), nullInt(recipe.EffectiveTotalTime()),
		nullInt(recipe.Servings), nullString(recipe.Cuisine), nullString(recipe.SourceURL),
		nullString(recipe.ImageURL), stored.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert recipe: %w", err)
	}

	for i, ing := range recipe.Ingredients {
		ingredientID, err := s.dictionaryID(ctx, tx, "ingredients", strings.TrimSpace(ing.Name), false)
		if err != nil {
			return nil, err
		}
		_, err = tx.ExecContext(ctx, s.rebind(`INSERT INTO recipe_ingredients
			(recipe_id, ingredient_id, position, quantity, unit, notes) VALUES (?, ?, ?, ?, ?, ?)`),
			stored.ID, ingredientID, i+1, nullFloat(ing.Quantity), nullString(ing.Unit), nullString(ing.Notes))
		if err != nil {
			return nil, fmt.Errorf("failed to insert ingredient %d: %w", i+1, err)
		}
	}

	for i, step := range recipe.Instructions {
		_, err = tx.ExecContext(ctx, s.rebind(`INSERT INTO instructions (recipe_id, step, content) VALUES (?, ?, ?)`),
			stored.ID, i+1, step.Text)
		if err != nil {
			return nil, fmt.Errorf("failed to insert instruction %d: %w", i+1, err)
		}
	}

	if err := s.linkNames(ctx, tx, stored.ID, "categories", "recipe_categories", "category_id", recipe.CategoryNames); err != nil {
		return nil, err
	}
	if err := s.linkNames(ctx, tx, stored.ID, "tags", "recipe_tags", "tag_id", recipe.TagNames); err != nil {
		return nil, err
	}

	if n := recipe.Nutrition; !n.IsEmpty() {
		_, err = tx.ExecContext(ctx, s.rebind(`INSERT INTO nutrition
			(recipe_id, calories, protein, carbs, fat, fiber, sugar, sodium) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`),
			stored.ID, nullFloat(n.Calories), nullFloat(n.Protein), nullFloat(n.Carbs), nullFloat(n.Fat),
			nullFloat(n.Fiber), nullFloat(n.Sugar), nullFloat(n.Sodium))
		if err != nil {
			return nil, fmt.Errorf("failed to insert nutrition: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit recipe: %w", err)
	}
	return stored, nil
}

// dictionaryID returns the id of name in table, inserting it when missing.
func (s *SQLStore) dictionaryID(ctx context.Context, tx *sql.Tx, table, name string, withSlug bool) (string, error) {
	var id string
	err := tx.QueryRowContext(ctx, s.rebind(`SELECT id FROM `+table+` WHERE name = ?`), name).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("failed to look up %s %q: %w", table, name, err)
	}

	id = uuid.NewString()
	if withSlug {
		_, err = tx.ExecContext(ctx, s.rebind(`INSERT INTO `+table+` (id, name, slug) VALUES (?, ?, ?)`), id, name, normalize.Slug(name))
	} else {
		_, err = tx.ExecContext(ctx, s.rebind(`INSERT INTO `+table+` (id, name) VALUES (?, ?)`), id, name)
	}
	if err != nil {
		return "", fmt.Errorf("failed to insert %s %q: %w", table, name, err)
	}
	return id, nil
}

func (s *SQLStore) linkNames(ctx context.Context, tx *sql.Tx, recipeID, table, joinTable, column string, names []string) error {
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true

		id, err := s.dictionaryID(ctx, tx, table, name, true)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, s.rebind(`INSERT INTO `+joinTable+` (recipe_id, `+column+`) VALUES (?, ?)`), recipeID, id)
		if err != nil {
			return fmt.Errorf("failed to link %s %q: %w", table, name, err)
		}
	}
	return nil
}

// GetBySlug loads a recipe with its ingredients, steps, categories, tags and nutrition.
func (s *SQLStore) GetBySlug(ctx context.Context, slug string) (*types.Recipe, error) {
	var (
		id                                  string
		recipe                              types.Recipe
		description, cuisine, source, image sql.NullString
		prep, cook, total, servings         sql.NullInt64
	)
	err := s.db.QueryRowContext(ctx, s.rebind(`SELECT id, title, description, prep_time, cook_time, total_time,
		servings, cuisine, source_url, image_url FROM recipes WHERE slug = ?`), slug).
		Scan(&id, &recipe.Title, &description, &prep, &cook, &total, &servings, &cuisine, &source, &image)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load recipe %q: %w", slug, err)
	}
	recipe.Description = description.String
	recipe.Cuisine = cuisine.String
	recipe.SourceURL = source.String
	recipe.ImageURL = image.String
	recipe.PrepTime = intPtr(prep)
	recipe.CookTime = intPtr(cook)
	recipe.TotalTime = intPtr(total)
	recipe.Servings = intPtr(servings)

	if recipe.Ingredients, err = s.loadIngredients(ctx, id); err != nil {
		return nil, err
	}
	if recipe.Instructions, err = s.loadInstructions(ctx, id); err != nil {
		return nil, err
	}
	if recipe.CategoryNames, err = s.loadNames(ctx, id, "categories", "recipe_categories", "category_id"); err != nil {
		return nil, err
	}
	if recipe.TagNames, err = s.loadNames(ctx, id, "tags", "recipe_tags", "tag_id"); err != nil {
		return nil, err
	}
	if recipe.Nutrition, err = s.loadNutrition(ctx, id); err != nil {
		return nil, err
	}
	return &recipe, nil
}

func (s *SQLStore) loadIngredients(ctx context.Context, recipeID string) ([]types.Ingredient, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(`SELECT i.name, ri.quantity, ri.unit, ri.notes
		FROM recipe_ingredients ri JOIN ingredients i ON i.id = ri.ingredient_id
		WHERE ri.recipe_id = ? ORDER BY ri.position`), recipeID)
	if err != nil {
		return nil, fmt.Errorf("failed to load ingredients: %w", err)
	}
	defer rows.Close()

	ingredients := []types.Ingredient{}
	for rows.Next() {
		var (
			ing         types.Ingredient
			quantity    sql.NullFloat64
			unit, notes sql.NullString
		)
		if err := rows.Scan(&ing.Name, &quantity, &unit, &notes); err != nil {
			return nil, fmt.Errorf("failed to scan ingredient: %w", err)
		}
		if quantity.Valid {
			ing.Quantity = types.Float(quantity.Float64)
		}
		ing.Unit = unit.String
		ing.Notes = notes.String
		ingredients = append(ingredients, ing)
	}
	return ingredients, rows.Err()
}

func (s *SQLStore) loadInstructions(ctx context.Context, recipeID string) ([]types.Instruction, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(`SELECT content FROM instructions WHERE recipe_id = ? ORDER BY step`), recipeID)
	if err != nil {
		return nil, fmt.Errorf("failed to load instructions: %w", err)
	}
	defer rows.Close()

	instructions := []types.Instruction{}
	for rows.Next() {
		var step types.Instruction
		if err := rows.Scan(&step.Text); err != nil {
			return nil, fmt.Errorf("failed to scan instruction: %w", err)
		}
		instructions = append(instructions, step)
	}
	return instructions, rows.Err()
}

func (s *SQLStore) loadNames(ctx context.Context, recipeID, table, joinTable, column string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(`SELECT t.name FROM `+joinTable+` j JOIN `+table+` t ON t.id = j.`+column+`
		WHERE j.recipe_id = ? ORDER BY t.name`), recipeID)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", table, err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", table, err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (s *SQLStore) loadNutrition(ctx context.Context, recipeID string) (*types.NutritionFacts, error) {
	var calories, protein, carbs, fat, fiber, sugar, sodium sql.NullFloat64
	err := s.db.QueryRowContext(ctx, s.rebind(`SELECT calories, protein, carbs, fat, fiber, sugar, sodium
		FROM nutrition WHERE recipe_id = ?`), recipeID).
		Scan(&calories, &protein, &carbs, &fat, &fiber, &sugar, &sodium)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load nutrition: %w", err)
	}
	return &types.NutritionFacts{
		Calories: floatPtr(calories),
		Protein:  floatPtr(protein),
		Carbs:    floatPtr(carbs),
		Fat:      floatPtr(fat),
		Fiber:    floatPtr(fiber),
		Sugar:    floatPtr(sugar),
		Sodium:   floatPtr(sodium),
	}, nil
}

// Delete removes a recipe and its rows. Dictionary entries are kept.
func (s *SQLStore) Delete(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"recipe_ingredients", "instructions", "recipe_categories", "recipe_tags", "nutrition"} {
		if _, err := tx.ExecContext(ctx, s.rebind(`DELETE FROM `+table+` WHERE recipe_id = ?`), id); err != nil {
			return fmt.Errorf("failed to delete from %s: %w", table, err)
		}
	}
	res, err := tx.ExecContext(ctx, s.rebind(`DELETE FROM recipes WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("failed to delete recipe: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return tx.Commit()
}

// Ping checks the connection.
func (s *SQLStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database.
func (s *SQLStore) Close() error {
	return s.db.Close()
}

func nullString(v string) sql.NullString {
	return sql.NullString{String: v, Valid: v != ""}
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func intPtr(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	return types.Int(int(v.Int64))
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	return types.Float(v.Float64)
}
