// Package ingest loads raw promo corpora into the store and runs the
// idempotent batch enrichment stages over existing records. Each stage scans
// for records missing its output field, so re-running a stage only touches
// unprocessed records.
package ingest

import (
	"regexp"
	"strings"
)

// paragraphSep matches the blank-line boundaries between promos in a corpus
// file.
var paragraphSep = regexp.MustCompile(`\n\s*\n`)

// SplitPromos splits a corpus file into individual promo texts on blank
// lines. Each text is trimmed; empty segments are dropped.
func SplitPromos(content string) []string {
	parts := paragraphSep.Split(content, -1)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
