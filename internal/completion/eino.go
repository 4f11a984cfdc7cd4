package completion

import (
	"context"
	"fmt"

	einogemini "github.com/cloudwego/eino-ext/components/model/gemini"
	einoollama "github.com/cloudwego/eino-ext/components/model/ollama"
	einoopenai "github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"google.golang.org/genai"

	"github.com/promoforge/promoforge/internal/promo"
)

// einoClient adapts an eino chat model to the Client interface. It carries
// the provider name for error attribution.
type einoClient struct {
	provider string
	chat     model.ToolCallingChatModel
}

func (c *einoClient) Complete(ctx context.Context, system, user string) (string, error) {
	msgs := []*schema.Message{
		schema.SystemMessage(system),
		schema.UserMessage(user),
	}
	rsp, err := c.chat.Generate(ctx, msgs)
	if err != nil {
		return "", &promo.ProviderError{Provider: c.provider, Err: err}
	}
	if rsp == nil || rsp.Content == "" {
		return "", &promo.ProviderError{Provider: c.provider, Err: fmt.Errorf("empty response")}
	}
	return rsp.Content, nil
}

// newOpenAI constructs a Client backed by the OpenAI API.
func newOpenAI(ctx context.Context, cfg *Config) (Client, error) {
	chat, err := einoopenai.NewChatModel(ctx, &einoopenai.ChatModelConfig{
		Model:       cfg.OpenAI.Model,
		APIKey:      cfg.OpenAI.APIKey,
		MaxTokens:   &cfg.MaxTokens,
		Temperature: &cfg.Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("completion: failed to create openai model: %w", err)
	}
	return &einoClient{provider: "openai", chat: chat}, nil
}

// newAzure constructs a Client backed by Azure OpenAI Service.
func newAzure(ctx context.Context, cfg *Config) (Client, error) {
	chat, err := einoopenai.NewChatModel(ctx, &einoopenai.ChatModelConfig{
		Model:       cfg.Azure.Deployment,
		APIKey:      cfg.Azure.APIKey,
		BaseURL:     cfg.Azure.Endpoint,
		ByAzure:     true,
		APIVersion:  cfg.Azure.APIVersion,
		MaxTokens:   &cfg.MaxTokens,
		Temperature: &cfg.Temperature,
		// Use the deployment name as-is — the default mapper strips dots/colons
		// which breaks deployment names like "gpt-4.1".
		AzureModelMapperFunc: func(model string) string { return model },
	})
	if err != nil {
		return nil, fmt.Errorf("completion: failed to create azure model: %w", err)
	}
	return &einoClient{provider: "azure", chat: chat}, nil
}

// newOllama constructs a Client backed by a local Ollama instance.
func newOllama(ctx context.Context, cfg *Config) (Client, error) {
	chat, err := einoollama.NewChatModel(ctx, &einoollama.ChatModelConfig{
		BaseURL: cfg.Ollama.Host,
		Model:   cfg.Ollama.Model,
	})
	if err != nil {
		return nil, fmt.Errorf("completion: failed to create ollama model: %w", err)
	}
	return &einoClient{provider: "ollama", chat: chat}, nil
}

// newGemini constructs a Client backed by Google Gemini (AI Studio).
func newGemini(ctx context.Context, cfg *Config) (Client, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.Gemini.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("completion: failed to create gemini client: %w", err)
	}
	chat, err := einogemini.NewChatModel(ctx, &einogemini.Config{
		Client: client,
		Model:  cfg.Gemini.Model,
	})
	if err != nil {
		return nil, fmt.Errorf("completion: failed to create gemini model: %w", err)
	}
	return &einoClient{provider: "gemini", chat: chat}, nil
}
