// internal/storage/mongo.go
package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/valpere/RecipeScrapexter/pkg/types"
)

const (
	defaultMongoDatabase   = "recipes"
	defaultMongoCollection = "recipes"
	mongoSlugRetries       = 3
)

// recipeDocument is the stored form of a recipe.
type recipeDocument struct {
	ID           string    `bson:"_id"`
	Slug         string    `bson:"slug"`
	CreatedAt    time.Time `bson:"created_at"`
	types.Recipe `bson:",inline"`
}

// MongoStore keeps each recipe as a single document.
type MongoStore struct {
	client     *mongo.Client
	collection *mongo.Collection
	now        func() time.Time
}

// OpenMongo connects to MongoDB and ensures the unique slug index.
func OpenMongo(ctx context.Context, uri, database string) (*MongoStore, error) {
	if uri == "" {
		return nil, fmt.Errorf("MongoDB connection string is required")
	}
	if database == "" {
		database = defaultMongoDatabase
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	store := &MongoStore{
		client:     client,
		collection: client.Database(database).Collection(defaultMongoCollection),
		now:        time.Now,
	}

	_, err = store.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "slug", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("slug_unique"),
	})
	if err != nil {
		client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to create slug index: %w", err)
	}
	return store, nil
}

// Save validates and inserts the recipe. A slug taken by a concurrent writer
// is retried with the next suffix.
func (s *MongoStore) Save(ctx context.Context, recipe *types.Recipe) (*StoredRecipe, error) {
	if err := recipe.Validate(); err != nil {
		return nil, err
	}

	doc := recipeDocument{
		ID:        uuid.NewString(),
		CreatedAt: s.now().UTC(),
		Recipe:    *recipe,
	}
	doc.Title = strings.TrimSpace(doc.Title)
	doc.TotalTime = recipe.EffectiveTotalTime()

	var lastErr error
	for attempt := 0; attempt < mongoSlugRetries; attempt++ {
		slug, err := uniqueSlug(ctx, baseSlug(recipe.Title), s.slugTaken)
		if err != nil {
			return nil, err
		}
		doc.Slug = slug

		_, err = s.collection.InsertOne(ctx, doc)
		if err == nil {
			return &StoredRecipe{ID: doc.ID, Slug: doc.Slug, CreatedAt: doc.CreatedAt}, nil
		}
		if !mongo.IsDuplicateKeyError(err) {
			return nil, fmt.Errorf("failed to insert recipe: %w", err)
		}
		lastErr = err
	}
	return nil, fmt.Errorf("failed to reserve slug: %w", lastErr)
}

func (s *MongoStore) slugTaken(ctx context.Context, slug string) (bool, error) {
	count, err := s.collection.CountDocuments(ctx, bson.M{"slug": slug}, options.Count().SetLimit(1))
	return count > 0, err
}

// GetBySlug loads one recipe.
func (s *MongoStore) GetBySlug(ctx context.Context, slug string) (*types.Recipe, error) {
	var doc recipeDocument
	err := s.collection.FindOne(ctx, bson.M{"slug": slug}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load recipe %q: %w", slug, err)
	}
	return &doc.Recipe, nil
}

// Delete removes a recipe by id.
func (s *MongoStore) Delete(ctx context.Context, id string) error {
	res, err := s.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete recipe: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Ping checks the connection.
func (s *MongoStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

// Close disconnects the client.
func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}
