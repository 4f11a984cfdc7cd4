// Package enrich implements the LLM-backed enrichment stages: structured
// field extraction, Handlebars template generation, and translation. All
// three share one chat-completion client and the same fence-stripping and
// JSON parsing rules.
package enrich

import (
	"regexp"
	"strings"
)

// fenceRe matches a response that is exactly one fenced code block, with an
// optional json language tag.
var fenceRe = regexp.MustCompile("(?s)^\\s*```(?:json)?\\s*\\n?(.*?)\\n?\\s*```\\s*$")

// StripFences removes markdown code fences from a model response. A response
// that is a single fenced block is unwrapped; otherwise any stray fence
// markers are removed when the response is tagged as JSON. Models add fences
// inconsistently, so both forms appear in practice.
func StripFences(s string) string {
	if m := fenceRe.FindStringSubmatch(s); m != nil {
		return strings.TrimSpace(m[1])
	}
	if strings.Contains(s, "```json") {
		s = strings.ReplaceAll(s, "```json", "")
		s = strings.ReplaceAll(s, "```", "")
	}
	return strings.TrimSpace(s)
}
