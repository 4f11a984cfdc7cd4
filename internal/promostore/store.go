// Package promostore persists promo records in MongoDB and exposes the
// vector-similarity search used for retrieval. One Store wraps one
// collection; the interactive pipeline, the batch commands, and the HTTP
// server all share it.
package promostore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/promoforge/promoforge/internal/promo"
)

// Config holds the settings for connecting a Store.
type Config struct {
	// URI is the MongoDB connection string.
	URI string
	// Database is the database name.
	Database string
	// Collection is the promos collection name.
	Collection string
}

// Store wraps a MongoDB collection of promo records. It is safe for
// concurrent use.
type Store struct {
	client *mongo.Client
	coll   *mongo.Collection
	log    *slog.Logger
}

// connectTimeout bounds the initial connection and ping.
const connectTimeout = 10 * time.Second

// Connect establishes a MongoDB connection and verifies it with a ping so
// misconfiguration fails at startup rather than on the first operation.
func Connect(ctx context.Context, cfg *Config, log *slog.Logger) (*Store, error) {
	if cfg.URI == "" {
		return nil, &promo.StoreError{Op: "connect", Err: errors.New("MONGODB_URI is required")}
	}
	if cfg.Database == "" || cfg.Collection == "" {
		return nil, &promo.StoreError{Op: "connect", Err: errors.New("MONGODB_DATABASE and MONGODB_COLLECTION are required")}
	}

	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, &promo.StoreError{Op: "connect", Err: err}
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, &promo.StoreError{Op: "connect", Err: fmt.Errorf("ping: %w", err)}
	}

	log.Debug("promostore: connected",
		slog.String("database", cfg.Database),
		slog.String("collection", cfg.Collection),
	)

	return &Store{
		client: client,
		coll:   client.Database(cfg.Database).Collection(cfg.Collection),
		log:    log,
	}, nil
}

// Close disconnects the underlying MongoDB client.
func (s *Store) Close(ctx context.Context) error {
	if err := s.client.Disconnect(ctx); err != nil {
		return &promo.StoreError{Op: "close", Err: err}
	}
	return nil
}

// Ping verifies the connection is still alive. Used by the readiness probe.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx, readpref.Primary()); err != nil {
		return &promo.StoreError{Op: "ping", Err: err}
	}
	return nil
}

// InsertOne writes a single record and returns its assigned ID.
func (s *Store) InsertOne(ctx context.Context, rec *promo.Record) (primitive.ObjectID, error) {
	if rec.InsertedAt.IsZero() {
		rec.InsertedAt = time.Now().UTC()
	}
	res, err := s.coll.InsertOne(ctx, rec)
	if err != nil {
		return primitive.NilObjectID, &promo.StoreError{Op: "insert", Err: err}
	}
	id, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, &promo.StoreError{Op: "insert", Err: fmt.Errorf("unexpected inserted ID type %T", res.InsertedID)}
	}
	return id, nil
}

// InsertResult reports the outcome of a bulk text insert.
type InsertResult struct {
	// InsertedCount is the number of documents actually written.
	InsertedCount int
	// FailedCount is the number of documents rejected by write errors.
	FailedCount int
	// InsertedIDs holds the ids of the documents that were written.
	InsertedIDs []primitive.ObjectID
}

// InsertTexts writes one bare record per promo text. The insert is unordered
// so one bad document does not abort the rest of the batch; partial failures
// are reported in the result alongside the error.
func (s *Store) InsertTexts(ctx context.Context, texts []string) (*InsertResult, error) {
	now := time.Now().UTC()
	docs := make([]any, len(texts))
	for i, t := range texts {
		docs[i] = &promo.Record{PromoText: t, InsertedAt: now}
	}

	res, err := s.coll.InsertMany(ctx, docs, options.InsertMany().SetOrdered(false))
	var ids []primitive.ObjectID
	if res != nil {
		for _, raw := range res.InsertedIDs {
			if id, ok := raw.(primitive.ObjectID); ok {
				ids = append(ids, id)
			}
		}
	}
	result := &InsertResult{InsertedCount: len(ids), InsertedIDs: ids}
	if err != nil {
		failed := bulkWriteErrorCount(err)
		if failed == 0 {
			// Not a per-document failure — the whole batch is suspect.
			return result, &promo.StoreError{Op: "insert", Err: err}
		}
		result.FailedCount = failed
		return result, &promo.StoreError{Op: "insert", Err: fmt.Errorf("%d of %d documents failed: %w", failed, len(texts), err)}
	}

	return result, nil
}

// bulkWriteErrorCount returns the number of per-document write errors inside
// err, or 0 if err is not a bulk write exception.
func bulkWriteErrorCount(err error) int {
	var bwe mongo.BulkWriteException
	if errors.As(err, &bwe) {
		return len(bwe.WriteErrors)
	}
	return 0
}

// Find returns all records matching the given filter. Batch commands use
// field-presence filters ($exists) to scan only unprocessed records.
func (s *Store) Find(ctx context.Context, filter bson.M) ([]promo.Record, error) {
	cur, err := s.coll.Find(ctx, filter)
	if err != nil {
		return nil, &promo.StoreError{Op: "find", Err: err}
	}
	var out []promo.Record
	if err := cur.All(ctx, &out); err != nil {
		return nil, &promo.StoreError{Op: "find", Err: err}
	}
	return out, nil
}

// SetFields applies a $set update to the record with the given ID. The
// updates map holds document paths (e.g. "template", "stages.embed").
func (s *Store) SetFields(ctx context.Context, id primitive.ObjectID, updates bson.M) error {
	res, err := s.coll.UpdateByID(ctx, id, bson.M{"$set": updates})
	if err != nil {
		return &promo.StoreError{Op: "update", Err: err}
	}
	if res.MatchedCount == 0 {
		return &promo.StoreError{Op: "update", Err: fmt.Errorf("no record with id %s", id.Hex())}
	}
	return nil
}
