package promostore

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/promoforge/promoforge/internal/promo"
)

// SearchParams configures a $vectorSearch aggregation.
type SearchParams struct {
	// Index is the Atlas vector search index name.
	Index string
	// Path is the document field holding the embedding.
	Path string
	// Vector is the query embedding. Its length must match the index's
	// numDimensions.
	Vector []float32
	// NumCandidates is the ANN candidate pool size. Ignored when Exact is
	// true — Atlas rejects the parameter for exact searches.
	NumCandidates int
	// Limit is the maximum number of results.
	Limit int
	// Exact requests an exact (ENN) search instead of approximate.
	Exact bool
}

// VectorSearch runs a $vectorSearch aggregation and returns the matching
// records with their similarity scores. The projection keeps the structured
// fields and metadata but drops the stored embeddings, which are large and
// never needed by callers.
func (s *Store) VectorSearch(ctx context.Context, p *SearchParams) ([]promo.Record, error) {
	search := bson.D{
		{Key: "index", Value: p.Index},
		{Key: "path", Value: p.Path},
		{Key: "queryVector", Value: p.Vector},
		{Key: "limit", Value: p.Limit},
	}
	if p.Exact {
		search = append(search, bson.E{Key: "exact", Value: true})
	} else {
		search = append(search, bson.E{Key: "numCandidates", Value: p.NumCandidates})
	}

	pipeline := mongo.Pipeline{
		bson.D{{Key: "$vectorSearch", Value: search}},
		bson.D{{Key: "$project", Value: searchProjection()}},
	}

	cur, err := s.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, &promo.StoreError{Op: "search", Err: err}
	}
	var out []promo.Record
	if err := cur.All(ctx, &out); err != nil {
		return nil, &promo.StoreError{Op: "search", Err: err}
	}
	return out, nil
}

// searchProjection selects the fields returned by VectorSearch.
func searchProjection() bson.D {
	proj := bson.D{
		{Key: "_id", Value: 1},
		{Key: "promoText", Value: 1},
		{Key: "template", Value: 1},
		{Key: "translations", Value: 1},
		{Key: "insertedAt", Value: 1},
	}
	for _, name := range promo.FieldNames {
		proj = append(proj, bson.E{Key: name, Value: 1})
	}
	proj = append(proj, bson.E{Key: "score", Value: bson.D{{Key: "$meta", Value: "vectorSearchScore"}}})
	return proj
}
