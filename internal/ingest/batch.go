package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/errgroup"

	"github.com/promoforge/promoforge/internal/promo"
)

// DefaultEmbedConcurrency bounds the embedding fan-out when no explicit
// concurrency is configured.
const DefaultEmbedConcurrency = 4

// batchStore is the narrow store contract the batch stages need.
type batchStore interface {
	Find(ctx context.Context, filter bson.M) ([]promo.Record, error)
	SetFields(ctx context.Context, id primitive.ObjectID, updates bson.M) error
}

// fieldExtractor extracts structured fields from promo text.
type fieldExtractor interface {
	ExtractFields(ctx context.Context, promoText string) (promo.Fields, error)
}

// templateGenerator generates a Handlebars template from structured fields.
type templateGenerator interface {
	GenerateTemplate(ctx context.Context, fields promo.Fields) (string, error)
}

// translator translates structured fields into one target language.
type translator interface {
	Translate(ctx context.Context, fields promo.Fields, lang promo.Language) (promo.Fields, error)
}

// vectorizer converts texts into embeddings.
type vectorizer interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// Batcher runs the batch enrichment stages. Failures are isolated per
// record: one bad record is logged and skipped, the scan continues.
// Stages select work by field presence, so re-runs are idempotent; running
// the same stage concurrently against one collection is not supported.
type Batcher struct {
	store Store
	log   *slog.Logger
}

// Store combines the operations the batch stages perform.
type Store = batchStore

// NewBatcher constructs a Batcher.
func NewBatcher(store Store, log *slog.Logger) *Batcher {
	return &Batcher{store: store, log: log}
}

// Summary reports the outcome of one batch stage run.
type Summary struct {
	// Scanned is the number of records matching the stage's filter.
	Scanned int
	// Processed is the number of records successfully updated.
	Processed int
	// Failed is the number of records skipped due to errors.
	Failed int
}

// ExtractMissing extracts structured fields for every record that has promo
// text but no headline yet.
func (b *Batcher) ExtractMissing(ctx context.Context, extractor fieldExtractor) (*Summary, error) {
	records, err := b.store.Find(ctx, bson.M{
		"promoText":         bson.M{"$exists": true},
		promo.FieldHeadline: bson.M{"$exists": false},
	})
	if err != nil {
		return nil, err
	}

	sum := &Summary{Scanned: len(records)}
	for _, rec := range records {
		fields, err := extractor.ExtractFields(ctx, rec.PromoText)
		if err != nil {
			b.log.Error("ingest: field extraction failed",
				slog.String("id", rec.ID.Hex()),
				slog.String("error", err.Error()),
			)
			sum.Failed++
			continue
		}

		updates := bson.M{"stages.extract": time.Now().UTC()}
		for k, v := range fields {
			updates[k] = v
		}
		if err := b.store.SetFields(ctx, rec.ID, updates); err != nil {
			b.log.Error("ingest: update failed",
				slog.String("id", rec.ID.Hex()),
				slog.String("error", err.Error()),
			)
			sum.Failed++
			continue
		}

		b.log.Info("ingest: fields extracted",
			slog.String("id", rec.ID.Hex()),
			slog.String("headline", fields.Headline()),
		)
		sum.Processed++
	}
	return sum, nil
}

// TemplatesMissing generates a Handlebars template for every record with
// structured fields but no template yet.
func (b *Batcher) TemplatesMissing(ctx context.Context, templater templateGenerator) (*Summary, error) {
	records, err := b.store.Find(ctx, bson.M{
		promo.FieldHeadline: bson.M{"$exists": true},
		"template":          bson.M{"$exists": false},
	})
	if err != nil {
		return nil, err
	}

	sum := &Summary{Scanned: len(records)}
	for _, rec := range records {
		template, err := templater.GenerateTemplate(ctx, rec.Fields)
		if err != nil {
			b.log.Error("ingest: template generation failed",
				slog.String("id", rec.ID.Hex()),
				slog.String("error", err.Error()),
			)
			sum.Failed++
			continue
		}

		updates := bson.M{
			"template":        template,
			"stages.template": time.Now().UTC(),
		}
		if err := b.store.SetFields(ctx, rec.ID, updates); err != nil {
			b.log.Error("ingest: update failed",
				slog.String("id", rec.ID.Hex()),
				slog.String("error", err.Error()),
			)
			sum.Failed++
			continue
		}
		sum.Processed++
	}
	return sum, nil
}

// TranslateMissing translates every record with structured fields but no
// translations yet. Languages are isolated within a record: a failed
// language is logged and the remaining languages are still stored.
func (b *Batcher) TranslateMissing(ctx context.Context, tr translator) (*Summary, error) {
	records, err := b.store.Find(ctx, bson.M{
		promo.FieldHeadline: bson.M{"$exists": true},
		"translations":      bson.M{"$exists": false},
	})
	if err != nil {
		return nil, err
	}

	sum := &Summary{Scanned: len(records)}
	for _, rec := range records {
		translations := make(map[string]promo.Fields, len(promo.Languages))
		for _, lang := range promo.Languages {
			translated, err := tr.Translate(ctx, rec.Fields, lang)
			if err != nil {
				b.log.Error("ingest: translation failed",
					slog.String("id", rec.ID.Hex()),
					slog.String("language", lang.Name),
					slog.String("error", err.Error()),
				)
				continue
			}
			translations[lang.Code] = translated
		}

		if len(translations) == 0 {
			sum.Failed++
			continue
		}

		updates := bson.M{
			"translations":     translations,
			"stages.translate": time.Now().UTC(),
		}
		if err := b.store.SetFields(ctx, rec.ID, updates); err != nil {
			b.log.Error("ingest: update failed",
				slog.String("id", rec.ID.Hex()),
				slog.String("error", err.Error()),
			)
			sum.Failed++
			continue
		}

		b.log.Info("ingest: translations stored",
			slog.String("id", rec.ID.Hex()),
			slog.Int("languages", len(translations)),
		)
		sum.Processed++
	}
	return sum, nil
}

// EmbedMissing generates embeddings for every record with structured fields
// but no embedding yet. The embedding covers the composite of headline,
// description, and promo type. Records are embedded concurrently with at
// most concurrency in-flight calls; per-record failures are logged and do
// not stop the batch.
func (b *Batcher) EmbedMissing(ctx context.Context, emb vectorizer, concurrency int) (*Summary, error) {
	if concurrency <= 0 {
		concurrency = DefaultEmbedConcurrency
	}

	records, err := b.store.Find(ctx, bson.M{
		promo.FieldHeadline: bson.M{"$exists": true},
		"embedding":         bson.M{"$exists": false},
	})
	if err != nil {
		return nil, err
	}

	sum := &Summary{Scanned: len(records)}
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for _, rec := range records {
		g.Go(func() error {
			text := rec.Fields.EmbeddingText()
			vecs, err := emb.Embed(gctx, []string{text})
			if err != nil {
				b.log.Error("ingest: embedding failed",
					slog.String("id", rec.ID.Hex()),
					slog.String("error", err.Error()),
				)
				mu.Lock()
				sum.Failed++
				mu.Unlock()
				return nil
			}

			updates := bson.M{
				"embedding":    vecs[0],
				"stages.embed": time.Now().UTC(),
			}
			if err := b.store.SetFields(gctx, rec.ID, updates); err != nil {
				b.log.Error("ingest: update failed",
					slog.String("id", rec.ID.Hex()),
					slog.String("error", err.Error()),
				)
				mu.Lock()
				sum.Failed++
				mu.Unlock()
				return nil
			}

			mu.Lock()
			sum.Processed++
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return sum, fmt.Errorf("ingest: embed batch: %w", err)
	}
	return sum, nil
}
