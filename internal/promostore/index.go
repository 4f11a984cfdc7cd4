package promostore

import (
	"context"
	"log/slog"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/promoforge/promoforge/internal/promo"
)

// EnsureVectorIndex creates the Atlas vector search index used by
// VectorSearch. The index uses cosine similarity; dims must match the
// embedding provider's output dimension. Creation is asynchronous on the
// Atlas side — the index may take a minute to become queryable.
func (s *Store) EnsureVectorIndex(ctx context.Context, name, path string, dims int) error {
	definition := bson.D{
		{Key: "fields", Value: bson.A{
			bson.D{
				{Key: "type", Value: "vector"},
				{Key: "path", Value: path},
				{Key: "similarity", Value: "cosine"},
				{Key: "numDimensions", Value: dims},
			},
		}},
	}

	model := mongo.SearchIndexModel{
		Definition: definition,
		Options:    options.SearchIndexes().SetName(name).SetType("vectorSearch"),
	}

	created, err := s.coll.SearchIndexes().CreateOne(ctx, model)
	if err != nil {
		return &promo.StoreError{Op: "index", Err: err}
	}

	s.log.Info("promostore: vector search index created",
		slog.String("index", created),
		slog.String("path", path),
		slog.Int("dimensions", dims),
	)

	return nil
}
