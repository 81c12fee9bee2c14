// internal/storage/store.go

// Package storage persists reviewed recipes. The SQL store keeps the
// relational shape (ingredient dictionary, ordered steps, category and tag
// joins); the MongoDB store keeps one document per recipe.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/valpere/RecipeScrapexter/internal/normalize"
	"github.com/valpere/RecipeScrapexter/pkg/types"
)

// ErrNotFound is returned when no recipe matches the lookup.
var ErrNotFound = errors.New("recipe not found")

// Supported drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
	DriverMongoDB  = "mongodb"
)

// StoredRecipe identifies a saved recipe.
type StoredRecipe struct {
	ID        string    `json:"id"`
	Slug      string    `json:"slug"`
	CreatedAt time.Time `json:"createdAt"`
}

// Store persists recipes. Save rejects recipes that fail types.Recipe.Validate.
type Store interface {
	Save(ctx context.Context, recipe *types.Recipe) (*StoredRecipe, error)
	GetBySlug(ctx context.Context, slug string) (*types.Recipe, error)
	Delete(ctx context.Context, id string) error
	Close() error
}

// Pinger is implemented by stores that can report connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Config selects and addresses a store.
type Config struct {
	Driver   string `yaml:"driver" json:"driver"`
	DSN      string `yaml:"dsn" json:"dsn"`
	Database string `yaml:"database,omitempty" json:"database,omitempty"`
}

// Open connects to the configured store and prepares its schema.
func Open(ctx context.Context, cfg Config) (Store, error) {
	switch strings.ToLower(cfg.Driver) {
	case DriverSQLite, "sqlite3", DriverPostgres, "postgresql", DriverMySQL:
		return OpenSQL(ctx, cfg.Driver, cfg.DSN)
	case DriverMongoDB, "mongo":
		return OpenMongo(ctx, cfg.DSN, cfg.Database)
	default:
		return nil, fmt.Errorf("unsupported storage driver: %s", cfg.Driver)
	}
}

// baseSlug derives the slug stem for a recipe title.
func baseSlug(title string) string {
	if slug := normalize.Slug(title); slug != "" {
		return slug
	}
	return "recipe"
}

// uniqueSlug returns base, or base-1, base-2, ... for the first one not taken.
func uniqueSlug(ctx context.Context, base string, taken func(context.Context, string) (bool, error)) (string, error) {
	candidate := base
	for n := 1; ; n++ {
		exists, err := taken(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("failed to check slug %q: %w", candidate, err)
		}
		if !exists {
			return candidate, nil
		}
		candidate = base + "-" + strconv.Itoa(n)
	}
}
