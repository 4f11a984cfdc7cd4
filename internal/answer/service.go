package answer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/promoforge/promoforge/internal/promo"
)

// Narrow dependency contracts.
type (
	completer interface {
		Complete(ctx context.Context, system, user string) (string, error)
	}
	vectorizer interface {
		Embed(ctx context.Context, texts []string) ([][]float32, error)
	}
	retriever interface {
		Query(ctx context.Context, embedding []float32, exact bool) ([]promo.Record, error)
	}
)

// Service answers questions using retrieved promo records as context.
type Service struct {
	llm              completer
	embedder         vectorizer
	search           retriever
	exact            bool
	maxContextTokens int
	log              *slog.Logger
}

// Config holds the service's dependencies and tuning.
type Config struct {
	LLM      completer
	Embedder vectorizer
	Search   retriever
	// Exact requests exact nearest-neighbour search instead of the
	// approximate default. Slower, but deterministic for small collections.
	Exact bool
	// MaxContextTokens caps the estimated prompt size. Zero selects
	// DefaultMaxContextTokens.
	MaxContextTokens int
	Logger           *slog.Logger
}

// NewService constructs a Service, validating that every dependency is present.
func NewService(cfg *Config) (*Service, error) {
	switch {
	case cfg.LLM == nil:
		return nil, fmt.Errorf("answer: completion client is required")
	case cfg.Embedder == nil:
		return nil, fmt.Errorf("answer: embedder is required")
	case cfg.Search == nil:
		return nil, fmt.Errorf("answer: search is required")
	case cfg.Logger == nil:
		return nil, fmt.Errorf("answer: logger is required")
	}
	maxTokens := cfg.MaxContextTokens
	if maxTokens <= 0 {
		maxTokens = DefaultMaxContextTokens
	}
	return &Service{
		llm:              cfg.LLM,
		embedder:         cfg.Embedder,
		search:           cfg.Search,
		exact:            cfg.Exact,
		maxContextTokens: maxTokens,
		log:              cfg.Logger,
	}, nil
}

// Response is the outcome of one question.
type Response struct {
	// Answer is the model's reply.
	Answer string
	// Sources are the retrieved records the answer was grounded on, after
	// budget trimming.
	Sources []promo.Record
}

const askSystemPrompt = "You are a helpful assistant that answers questions about promotional offers using only the provided context."

// Ask embeds the question, retrieves the closest promos, and asks the chat
// model to answer from that context. Retrieval failures are fatal here —
// unlike similar-promo lookup, an answer without context is not useful.
func (s *Service) Ask(ctx context.Context, question string) (*Response, error) {
	if strings.TrimSpace(question) == "" {
		return nil, fmt.Errorf("answer: question is empty")
	}

	vecs, err := s.embedder.Embed(ctx, []string{question})
	if err != nil {
		return nil, fmt.Errorf("answer: embed question: %w", err)
	}

	records, err := s.search.Query(ctx, vecs[0], s.exact)
	if err != nil {
		return nil, fmt.Errorf("answer: retrieve context: %w", err)
	}

	docs := make([]string, 0, len(records))
	for _, r := range records {
		docs = append(docs, documentText(r))
	}

	fixed := Estimate(askSystemPrompt) + Estimate(question) + 64
	kept := TrimContext(docs, fixed, s.maxContextTokens)
	if len(kept) < len(docs) {
		s.log.Warn("answer: trimmed context documents to fit token budget",
			slog.Int("retrieved", len(docs)),
			slog.Int("kept", len(kept)),
		)
	}

	prompt := fmt.Sprintf(`A collection of promotional offers is provided as context to answer the question at the end.
Respond appropriately if the question cannot be feasibly answered from the context.
Acknowledge limitations when the context provided is incomplete or does not contain relevant information to answer the question.
If you need to fill knowledge gaps using information outside of the context, clearly attribute it as such.
Context:
%s
Question: %s`, strings.Join(kept, "\n---\n"), question)

	reply, err := s.llm.Complete(ctx, askSystemPrompt, prompt)
	if err != nil {
		return nil, fmt.Errorf("answer: completion: %w", err)
	}

	return &Response{
		Answer:  reply,
		Sources: records[:len(kept)],
	}, nil
}

// documentText renders a record as context text: the raw promo wording when
// available, otherwise the composite of its structured fields.
func documentText(r promo.Record) string {
	if r.PromoText != "" {
		return r.PromoText
	}
	return r.Fields.EmbeddingText()
}
