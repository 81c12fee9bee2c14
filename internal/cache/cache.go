// internal/cache/cache.go

// Package cache stores import results keyed by source URL so repeated
// imports of the same page skip the fetch.
package cache

import (
	"context"
	"errors"
	"time"

	"github.com/valpere/RecipeScrapexter/pkg/types"
)

// ErrMiss is returned by Get when no entry exists for the key.
var ErrMiss = errors.New("cache miss")

// Entry is one cached import.
type Entry struct {
	Recipe   *types.Recipe `json:"recipe"`
	Strategy string        `json:"strategy"`
	StoredAt time.Time     `json:"stored_at"`
}

// Cache is implemented by RedisCache and NopCache.
type Cache interface {
	Get(ctx context.Context, key string) (*Entry, error)
	Set(ctx context.Context, key string, entry *Entry) error
	Close() error
}

// NopCache never stores anything.
type NopCache struct{}

func (NopCache) Get(context.Context, string) (*Entry, error) { return nil, ErrMiss }
func (NopCache) Set(context.Context, string, *Entry) error  { return nil }
func (NopCache) Close() error                                { return nil }
