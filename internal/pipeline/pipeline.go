// Package pipeline orchestrates end-to-end processing of a new promo text:
// field extraction, template generation, translation, embedding, storage,
// and similar-promo lookup, in that order. The record is only written after
// every generation stage has succeeded, so the store never holds partially
// enriched interactive records.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/promoforge/promoforge/internal/promo"
)

// Stage names used in error attribution and logging.
const (
	StageExtract   = "extract"
	StageTemplate  = "template"
	StageTranslate = "translate"
	StageEmbed     = "embed"
	StageStore     = "store"
)

// Narrow dependency contracts. Each stage depends on exactly the operation
// it needs, which keeps the pipeline trivially testable with fakes.
type (
	fieldExtractor interface {
		ExtractFields(ctx context.Context, promoText string) (promo.Fields, error)
	}
	templateGenerator interface {
		GenerateTemplate(ctx context.Context, fields promo.Fields) (string, error)
	}
	translator interface {
		TranslateAll(ctx context.Context, fields promo.Fields) (map[string]promo.Fields, error)
	}
	vectorizer interface {
		Embed(ctx context.Context, texts []string) ([][]float32, error)
	}
	recordStore interface {
		InsertOne(ctx context.Context, rec *promo.Record) (primitive.ObjectID, error)
	}
	similarFinder interface {
		FindSimilar(ctx context.Context, embedding []float32, excludeID primitive.ObjectID) []promo.Record
	}
)

// Pipeline processes new promo texts. It is safe for concurrent use as long
// as its dependencies are.
type Pipeline struct {
	extractor  fieldExtractor
	templater  templateGenerator
	translator translator
	embedder   vectorizer
	store      recordStore
	search     similarFinder
	log        *slog.Logger
}

// Config holds the pipeline's dependencies. All fields are required.
type Config struct {
	Extractor  fieldExtractor
	Templater  templateGenerator
	Translator translator
	Embedder   vectorizer
	Store      recordStore
	Search     similarFinder
	Logger     *slog.Logger
}

// New constructs a Pipeline, validating that every dependency is present.
func New(cfg *Config) (*Pipeline, error) {
	switch {
	case cfg.Extractor == nil:
		return nil, fmt.Errorf("pipeline: extractor is required")
	case cfg.Templater == nil:
		return nil, fmt.Errorf("pipeline: templater is required")
	case cfg.Translator == nil:
		return nil, fmt.Errorf("pipeline: translator is required")
	case cfg.Embedder == nil:
		return nil, fmt.Errorf("pipeline: embedder is required")
	case cfg.Store == nil:
		return nil, fmt.Errorf("pipeline: store is required")
	case cfg.Search == nil:
		return nil, fmt.Errorf("pipeline: search is required")
	case cfg.Logger == nil:
		return nil, fmt.Errorf("pipeline: logger is required")
	}
	return &Pipeline{
		extractor:  cfg.Extractor,
		templater:  cfg.Templater,
		translator: cfg.Translator,
		embedder:   cfg.Embedder,
		store:      cfg.Store,
		search:     cfg.Search,
		log:        cfg.Logger,
	}, nil
}

// Result is the outcome of processing one promo text.
type Result struct {
	// ID is the stored record's identifier.
	ID primitive.ObjectID `json:"id"`
	// Fields is the extracted structured summary.
	Fields promo.Fields `json:"structured"`
	// Template is the generated Handlebars banner template.
	Template string `json:"template"`
	// Translations maps language code to translated fields.
	Translations map[string]promo.Fields `json:"translations"`
	// Similar holds similar promos, already filtered and deduplicated.
	// Empty when vector search is unavailable.
	Similar []promo.Record `json:"similar"`
}

// Process runs every stage against the given promo text. The first stage
// failure aborts processing with a ProcessingError identifying the stage;
// nothing is written to the store unless extraction, template generation,
// translation, and embedding all succeeded. Similar-promo lookup runs after
// the write and never fails the operation.
func (p *Pipeline) Process(ctx context.Context, promoText string) (*Result, error) {
	if promoText == "" {
		return nil, &promo.ProcessingError{Stage: StageExtract, Err: fmt.Errorf("promo text is empty")}
	}

	start := time.Now()

	fields, err := p.extractor.ExtractFields(ctx, promoText)
	if err != nil {
		return nil, &promo.ProcessingError{Stage: StageExtract, Err: err}
	}
	p.log.Debug("pipeline: fields extracted", slog.String("headline", fields.Headline()))

	template, err := p.templater.GenerateTemplate(ctx, fields)
	if err != nil {
		return nil, &promo.ProcessingError{Stage: StageTemplate, Err: err}
	}
	p.log.Debug("pipeline: template generated", slog.Int("length", len(template)))

	translations, err := p.translator.TranslateAll(ctx, fields)
	if err != nil {
		return nil, &promo.ProcessingError{Stage: StageTranslate, Err: err}
	}
	p.log.Debug("pipeline: translations complete", slog.Int("languages", len(translations)))

	// The embedding covers the raw promo text, not the structured fields, so
	// retrieval matches on the full legal wording.
	vecs, err := p.embedder.Embed(ctx, []string{promoText})
	if err != nil {
		return nil, &promo.ProcessingError{Stage: StageEmbed, Err: err}
	}
	embedding := vecs[0]

	rec := &promo.Record{
		PromoText:    promoText,
		Fields:       fields,
		Template:     template,
		Translations: translations,
		Embedding:    embedding,
		InsertedAt:   time.Now().UTC(),
	}
	id, err := p.store.InsertOne(ctx, rec)
	if err != nil {
		return nil, &promo.ProcessingError{Stage: StageStore, Err: err}
	}

	similar := p.search.FindSimilar(ctx, embedding, id)

	p.log.Info("pipeline: promo processed",
		slog.String("id", id.Hex()),
		slog.String("headline", fields.Headline()),
		slog.Int("similar", len(similar)),
		slog.Duration("duration", time.Since(start)),
	)

	return &Result{
		ID:           id,
		Fields:       fields,
		Template:     template,
		Translations: translations,
		Similar:      similar,
	}, nil
}
