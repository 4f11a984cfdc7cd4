package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/promoforge/promoforge/internal/promo"
)

// completer is the narrow completion contract the service needs.
type completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// Service runs the LLM-backed enrichment stages. All stages share one
// chat-completion client.
type Service struct {
	llm completer
}

// NewService constructs a Service. The completion client must be non-nil.
func NewService(llm completer) (*Service, error) {
	if llm == nil {
		return nil, fmt.Errorf("enrich: completion client is required")
	}
	return &Service{llm: llm}, nil
}

const extractSystemPrompt = "You are a helpful assistant that extracts structured data from legal promo text. Return only valid JSON, no markdown formatting."

// fieldAnnotations adds clarifying hints to field names in the extraction
// prompt. Fields without a hint are listed bare.
var fieldAnnotations = map[string]string{
	promo.FieldType:      "(e.g., banner, widget, modal)",
	promo.FieldSize:      "(if specified)",
	promo.FieldPlacement: "(if specified)",
}

// ExtractFields asks the model to pull the structured field set out of raw
// promo text. The response must be a JSON object after fence-stripping;
// anything else is a MalformedResponseError.
func (s *Service) ExtractFields(ctx context.Context, promoText string) (promo.Fields, error) {
	var b strings.Builder
	b.WriteString("Extract the following fields from this legal promo text and return as JSON (no markdown formatting):\n")
	for _, name := range promo.FieldNames {
		b.WriteString("- " + name)
		if hint := fieldAnnotations[name]; hint != "" {
			b.WriteString(" " + hint)
		}
		b.WriteString("\n")
	}
	b.WriteString("\nLegal promo text:\n\"\"\"\n")
	b.WriteString(promoText)
	b.WriteString("\n\"\"\"\n")

	content, err := s.llm.Complete(ctx, extractSystemPrompt, b.String())
	if err != nil {
		return nil, err
	}

	return parseFields(content)
}

const templateSystemPrompt = "You are a helpful assistant that generates Handlebars templates for promo banners."

// GenerateTemplate asks the model for a Handlebars banner template built
// from the structured fields. The output is free-form template text; no
// structural validation is applied beyond fence-stripping.
func (s *Service) GenerateTemplate(ctx context.Context, fields promo.Fields) (string, error) {
	data, err := json.MarshalIndent(fields, "", "  ")
	if err != nil {
		return "", fmt.Errorf("enrich: marshal fields: %w", err)
	}

	prompt := fmt.Sprintf(`Generate a Handlebars template for a promo banner using this structured data:

%s

Requirements:
- Use {{headline}}, {{description}}, and {{cta}} as placeholders
- Create a modern, attractive banner design
- Include CSS classes for styling
- Make it responsive and mobile-friendly
- Use semantic HTML structure

Return only the Handlebars template, no markdown formatting.
`, data)

	content, err := s.llm.Complete(ctx, templateSystemPrompt, prompt)
	if err != nil {
		return "", err
	}
	return StripFences(content), nil
}

// Translate renders the structured fields into the target language. Keys
// are preserved; only values are translated, with states and numeric values
// kept verbatim.
func (s *Service) Translate(ctx context.Context, fields promo.Fields, lang promo.Language) (promo.Fields, error) {
	data, err := json.MarshalIndent(fields, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("enrich: marshal fields: %w", err)
	}

	system := fmt.Sprintf("You are a helpful assistant that translates JSON objects into %s.", lang.Name)
	prompt := fmt.Sprintf(`Translate the following JSON object into %s, keeping the exact same structure and only translating the values:

%s

Requirements:
- Keep the same JSON structure
- Only translate the values (headline, description, cta, etc.)
- Keep states as they are (NY, NJ, etc.)
- Keep numbers and percentages as they are
- Return only valid JSON, no markdown formatting
`, lang.Name, data)

	content, err := s.llm.Complete(ctx, system, prompt)
	if err != nil {
		return nil, err
	}

	return parseFields(content)
}

// TranslateAll translates the fields into every supported language. The
// interactive pipeline requires all languages to succeed; any failure aborts
// with the first error.
func (s *Service) TranslateAll(ctx context.Context, fields promo.Fields) (map[string]promo.Fields, error) {
	out := make(map[string]promo.Fields, len(promo.Languages))
	for _, lang := range promo.Languages {
		translated, err := s.Translate(ctx, fields, lang)
		if err != nil {
			return nil, fmt.Errorf("translate to %s: %w", lang.Name, err)
		}
		out[lang.Code] = translated
	}
	return out, nil
}

// parseFields strips fences and unmarshals a model response into Fields.
func parseFields(content string) (promo.Fields, error) {
	stripped := StripFences(content)
	var fields promo.Fields
	if err := json.Unmarshal([]byte(stripped), &fields); err != nil {
		return nil, &promo.MalformedResponseError{Raw: content, Err: err}
	}
	return fields, nil
}
