// Package completion defines the chat-completion client interface and factory
// for selecting and constructing LLM backend implementations at runtime.
// Supported backends: OpenAI, Azure OpenAI, Ollama, Google Gemini, Anthropic.
//
// All backends are normalized behind a single Complete contract: one system
// prompt, one user prompt, one text response. The pipeline never sees
// provider-specific message shapes.
package completion

import (
	"context"
	"fmt"
)

// Backend enumerates the supported LLM inference providers.
type Backend string

const (
	// BackendOpenAI selects the OpenAI API.
	BackendOpenAI Backend = "openai"
	// BackendAzure selects Azure OpenAI Service.
	BackendAzure Backend = "azure"
	// BackendOllama selects a locally running Ollama instance.
	BackendOllama Backend = "ollama"
	// BackendGemini selects Google Gemini via AI Studio.
	BackendGemini Backend = "gemini"
	// BackendAnthropic selects the Anthropic API.
	BackendAnthropic Backend = "anthropic"
)

// Client is the normalized chat-completion contract. Implementations must be
// safe for concurrent use.
type Client interface {
	// Complete sends one system prompt and one user prompt and returns the
	// model's text response. An empty response is an error.
	Complete(ctx context.Context, system, user string) (string, error)
}

// OpenAISettings holds OpenAI backend credentials.
type OpenAISettings struct {
	APIKey string
	Model  string
}

// AzureSettings holds Azure OpenAI backend credentials.
type AzureSettings struct {
	APIKey     string
	Endpoint   string
	Deployment string
	APIVersion string
}

// OllamaSettings holds Ollama backend settings.
type OllamaSettings struct {
	Host  string
	Model string
}

// GeminiSettings holds Google Gemini backend credentials.
type GeminiSettings struct {
	APIKey string
	Model  string
}

// AnthropicSettings holds Anthropic backend credentials.
type AnthropicSettings struct {
	APIKey string
	Model  string
}

// Config holds all completion-level configuration resolved from environment
// variables or explicit caller-supplied values.
type Config struct {
	// Backend identifies which inference provider to use.
	Backend Backend

	OpenAI    OpenAISettings
	Azure     AzureSettings
	Ollama    OllamaSettings
	Gemini    GeminiSettings
	Anthropic AnthropicSettings

	// MaxTokens caps the number of tokens the model may generate per response.
	MaxTokens int

	// Temperature controls response randomness (0.0–1.0).
	Temperature float32
}

// Validate checks that the selected backend has the credentials it needs.
// Called at startup so misconfiguration fails fast rather than on the first
// request.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendOpenAI:
		if c.OpenAI.APIKey == "" {
			return fmt.Errorf("completion: OPENAI_API_KEY is required for openai backend")
		}
	case BackendAzure:
		if c.Azure.APIKey == "" {
			return fmt.Errorf("completion: AZURE_OPENAI_API_KEY is required for azure backend")
		}
		if c.Azure.Endpoint == "" {
			return fmt.Errorf("completion: AZURE_OPENAI_ENDPOINT is required for azure backend")
		}
		if c.Azure.Deployment == "" {
			return fmt.Errorf("completion: AZURE_OPENAI_DEPLOYMENT is required for azure backend")
		}
	case BackendOllama:
		if c.Ollama.Model == "" {
			return fmt.Errorf("completion: OLLAMA_MODEL is required for ollama backend")
		}
	case BackendGemini:
		if c.Gemini.APIKey == "" {
			return fmt.Errorf("completion: GOOGLE_API_KEY is required for gemini backend")
		}
	case BackendAnthropic:
		if c.Anthropic.APIKey == "" {
			return fmt.Errorf("completion: ANTHROPIC_API_KEY is required for anthropic backend")
		}
	default:
		return fmt.Errorf("completion: unknown backend %q — valid values: openai, azure, ollama, gemini, anthropic", c.Backend)
	}
	return nil
}
