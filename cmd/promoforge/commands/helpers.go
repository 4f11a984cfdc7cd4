package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/promoforge/promoforge/internal/embedder"
	"github.com/promoforge/promoforge/internal/promostore"
)

// connectStore opens a MongoDB connection from the MONGODB_* environment
// variables. Callers must Close the returned store.
func connectStore(ctx context.Context, log *slog.Logger) (*promostore.Store, error) {
	uri := os.Getenv("MONGODB_URI")
	if uri == "" {
		return nil, fmt.Errorf("MONGODB_URI is required")
	}

	store, err := promostore.Connect(ctx, &promostore.Config{
		URI:        uri,
		Database:   getEnvOrDefault("MONGODB_DATABASE", "promoforge"),
		Collection: getEnvOrDefault("MONGODB_COLLECTION", "promos"),
	}, log)
	if err != nil {
		return nil, fmt.Errorf("mongodb: %w", err)
	}
	return store, nil
}

// buildEmbedder validates embedding configuration and constructs the
// embedding client from the EMBEDDING_* environment variables.
func buildEmbedder(log *slog.Logger) (embedder.Embedder, error) {
	if err := embedder.Validate(log); err != nil {
		return nil, err
	}
	emb, err := embedder.NewFromEnv()
	if err != nil {
		return nil, fmt.Errorf("embedder: %w", err)
	}
	return emb, nil
}

// vectorIndexName returns the Atlas search index name for vector retrieval.
func vectorIndexName() string {
	return getEnvOrDefault("MONGODB_VECTOR_INDEX", "vector_index")
}

func getEnvOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
