// Package answer implements retrieval-augmented question answering over the
// promo store: embed the question, retrieve the closest promos, and ask the
// chat model to answer from that context.
//
// Because multiple LLM backends with different tokenizers are supported,
// context budgeting uses a conservative character-based heuristic:
// 1 token ≈ 4 characters (English prose). This deliberately under-estimates
// token counts to leave headroom for model-specific overhead.
package answer

const (
	// charsPerToken is the conservative character-to-token ratio used for
	// estimation. 4 chars/token is standard for English; using 3 would be
	// more aggressive but risks overflowing context windows.
	charsPerToken = 4

	// DefaultMaxContextTokens is the default input context budget in tokens.
	// Conservative enough to fit within 8k-context models while leaving room
	// for the output.
	DefaultMaxContextTokens = 6000
)

// Estimate returns a rough token count for s using the character heuristic.
func Estimate(s string) int {
	n := len(s) / charsPerToken
	if n == 0 && len(s) > 0 {
		return 1
	}
	return n
}

// TrimContext drops documents from the end of docs until the estimated
// total of fixedTokens plus the remaining documents fits within maxTokens.
// Documents arrive ordered by similarity score, so the least relevant are
// dropped first. If even a single document does not fit, the empty slice is
// returned.
func TrimContext(docs []string, fixedTokens, maxTokens int) []string {
	total := fixedTokens
	for _, d := range docs {
		total += Estimate(d)
	}
	for len(docs) > 0 && total > maxTokens {
		total -= Estimate(docs[len(docs)-1])
		docs = docs[:len(docs)-1]
	}
	return docs
}
