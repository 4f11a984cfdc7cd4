package embedder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/promoforge/promoforge/internal/promo"
)

// VoyageEmbedder implements Embedder using the Voyage AI embeddings REST API.
// It is safe for concurrent use.
type VoyageEmbedder struct {
	// baseURL is the API base (e.g. "https://api.voyageai.com/v1").
	baseURL string
	// apiKey is the Bearer token.
	apiKey string
	// model is the embedding model name (e.g. "voyage-3").
	model string
	// client is the shared HTTP client with a sensible timeout.
	client *http.Client
}

// VoyageConfig holds the settings for constructing a VoyageEmbedder.
type VoyageConfig struct {
	// BaseURL is the API base URL. Defaults to "https://api.voyageai.com/v1".
	BaseURL string
	// APIKey is the authentication key.
	APIKey string
	// Model is the embedding model name (e.g. "voyage-3").
	Model string
}

// NewVoyageEmbedder constructs a VoyageEmbedder from the given config.
func NewVoyageEmbedder(cfg *VoyageConfig) *VoyageEmbedder {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://api.voyageai.com/v1"
	}
	return &VoyageEmbedder{
		baseURL: baseURL,
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// voyageEmbedRequest is the JSON body sent to the embeddings endpoint.
type voyageEmbedRequest struct {
	Input []string `json:"input"`
	Model string   `json:"model"`
}

// voyageEmbedResponse is the JSON body returned from the embeddings endpoint.
// Voyage mirrors the OpenAI response shape.
type voyageEmbedResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
		Index     int       `json:"index"`
	} `json:"data"`
	Detail string `json:"detail,omitempty"`
}

// Embed converts a batch of texts into their corresponding embeddings.
// The returned slice is parallel to the input slice.
func (e *VoyageEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	payload, err := json.Marshal(voyageEmbedRequest{
		Input: texts,
		Model: e.model,
	})
	if err != nil {
		return nil, fmt.Errorf("voyage embedder: marshal request: %w", err)
	}

	url := e.baseURL + "/embeddings"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("voyage embedder: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+e.apiKey)

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, &promo.ProviderError{Provider: "voyage", Err: fmt.Errorf("embeddings request: %w", err)}
	}
	defer resp.Body.Close()

	var result voyageEmbedResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, &promo.ProviderError{Provider: "voyage", Err: fmt.Errorf("decode embeddings response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := fmt.Sprintf("HTTP %d", resp.StatusCode)
		if result.Detail != "" {
			msg = result.Detail
		}
		return nil, &promo.ProviderError{Provider: "voyage", Err: fmt.Errorf("%s", msg)}
	}

	if len(result.Data) != len(texts) {
		return nil, &promo.ProviderError{Provider: "voyage", Err: fmt.Errorf("expected %d embeddings, got %d", len(texts), len(result.Data))}
	}

	embeddings := make([][]float32, len(texts))
	for _, d := range result.Data {
		if d.Index < 0 || d.Index >= len(texts) {
			return nil, &promo.ProviderError{Provider: "voyage", Err: fmt.Errorf("index %d out of range [0, %d)", d.Index, len(texts))}
		}
		embeddings[d.Index] = d.Embedding
	}

	return embeddings, nil
}
