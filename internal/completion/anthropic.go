package completion

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/promoforge/promoforge/internal/promo"
)

// anthropicClient adapts the native Anthropic SDK to the Client interface.
// Anthropic's Messages API takes the system prompt out-of-band rather than as
// a message, so it cannot go through the eino adapter.
type anthropicClient struct {
	client    anthropic.Client
	model     anthropic.Model
	maxTokens int64
}

// newAnthropic constructs a Client backed by the Anthropic API.
func newAnthropic(cfg *Config) (Client, error) {
	return &anthropicClient{
		client:    anthropic.NewClient(option.WithAPIKey(cfg.Anthropic.APIKey)),
		model:     anthropic.Model(cfg.Anthropic.Model),
		maxTokens: int64(cfg.MaxTokens),
	}, nil
}

func (c *anthropicClient) Complete(ctx context.Context, system, user string) (string, error) {
	rsp, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		System: []anthropic.TextBlockParam{
			{Text: system},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(user)),
		},
	})
	if err != nil {
		return "", &promo.ProviderError{Provider: "anthropic", Err: err}
	}

	var sb strings.Builder
	for _, block := range rsp.Content {
		if text, ok := block.AsAny().(anthropic.TextBlock); ok {
			sb.WriteString(text.Text)
		}
	}
	if sb.Len() == 0 {
		return "", &promo.ProviderError{Provider: "anthropic", Err: fmt.Errorf("empty response")}
	}
	return sb.String(), nil
}
