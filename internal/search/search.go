// Package search wraps the store's vector search with the retrieval policy
// used by the pipeline and the ask command: fixed candidate/limit tuning,
// soft-fail on search errors, and result filtering (self-exclusion and
// headline deduplication).
package search

import (
	"context"
	"log/slog"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/promoforge/promoforge/internal/promo"
	"github.com/promoforge/promoforge/internal/promostore"
)

// Retrieval tuning. The interactive pipeline casts a wide net and returns
// few results; the question-answering path retrieves more documents from a
// smaller candidate pool.
const (
	// SimilarNumCandidates is the ANN candidate pool for similar-promo lookup.
	SimilarNumCandidates = 100
	// SimilarLimit is the maximum number of similar promos returned.
	SimilarLimit = 3

	// QueryNumCandidates is the ANN candidate pool for question answering.
	QueryNumCandidates = 40
	// QueryLimit is the number of context documents retrieved per question.
	QueryLimit = 5
)

// DefaultIndex is the Atlas vector search index name.
const DefaultIndex = "vector_index"

// DefaultPath is the document field holding the embedding.
const DefaultPath = "embedding"

// vectorSearcher is the narrow store contract the service needs.
type vectorSearcher interface {
	VectorSearch(ctx context.Context, p *promostore.SearchParams) ([]promo.Record, error)
}

// Service runs similarity searches against the promo store.
type Service struct {
	store vectorSearcher
	index string
	log   *slog.Logger
}

// NewService constructs a Service. An empty index name falls back to
// DefaultIndex.
func NewService(store vectorSearcher, index string, log *slog.Logger) *Service {
	if index == "" {
		index = DefaultIndex
	}
	return &Service{store: store, index: index, log: log}
}

// FindSimilar returns promos similar to the given embedding, excluding the
// record with excludeID and deduplicating by headline. A search failure is
// not fatal — the error is logged and an empty result returned, so a missing
// or still-building vector index never blocks promo processing.
func (s *Service) FindSimilar(ctx context.Context, embedding []float32, excludeID primitive.ObjectID) []promo.Record {
	results, err := s.store.VectorSearch(ctx, &promostore.SearchParams{
		Index:         s.index,
		Path:          DefaultPath,
		Vector:        embedding,
		NumCandidates: SimilarNumCandidates,
		Limit:         SimilarLimit,
	})
	if err != nil {
		s.log.Warn("search: vector search failed, returning empty results",
			slog.String("error", err.Error()),
		)
		return nil
	}
	return FilterSimilar(results, excludeID)
}

// Query returns the context documents for a question embedding. Unlike
// FindSimilar, a failure here is returned to the caller — question answering
// without retrieved context is not useful.
func (s *Service) Query(ctx context.Context, embedding []float32, exact bool) ([]promo.Record, error) {
	return s.store.VectorSearch(ctx, &promostore.SearchParams{
		Index:         s.index,
		Path:          DefaultPath,
		Vector:        embedding,
		NumCandidates: QueryNumCandidates,
		Limit:         QueryLimit,
		Exact:         exact,
	})
}

// FilterSimilar removes the excluded record, drops results without a
// headline, and deduplicates by headline keeping the first (highest-scoring)
// occurrence.
func FilterSimilar(results []promo.Record, excludeID primitive.ObjectID) []promo.Record {
	seen := make(map[string]bool, len(results))
	out := make([]promo.Record, 0, len(results))
	for _, r := range results {
		if !excludeID.IsZero() && r.ID == excludeID {
			continue
		}
		headline := r.Fields.Headline()
		if headline == "" || seen[headline] {
			continue
		}
		seen[headline] = true
		out = append(out, r)
	}
	return out
}
