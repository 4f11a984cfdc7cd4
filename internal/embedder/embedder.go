// Package embedder provides implementations of the Embedder interface for
// converting text into dense vector embeddings. Each implementation talks to a
// different backend (OpenAI, Voyage AI, Ollama) via plain HTTP — no additional
// SDK dependencies are required.
package embedder

import "context"

// Embedder converts text into dense vector embeddings. Implementations must
// be safe for concurrent use.
type Embedder interface {
	// Embed converts a batch of texts into their corresponding embeddings.
	// The returned slice is parallel to the input slice.
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// EmbedOne embeds a single text and returns its vector. Convenience wrapper
// for the interactive pipeline, which embeds one promo at a time.
func EmbedOne(ctx context.Context, e Embedder, text string) ([]float32, error) {
	vecs, err := e.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}
