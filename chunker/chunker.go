// Package chunker provides text normalization and paragraph-bounded chunk
// splitting for ingested article content. Chunks are the retrieval units
// stored alongside each article and later embedded for similarity search.
package chunker

import (
	"regexp"
	"strings"
)

// Compiled once; both cleanup passes run on every ingested article.
var (
	horizontalWS = regexp.MustCompile(`[ \t]+`)
	multiNewline = regexp.MustCompile(`\n{3,}`)
)

// Normalize collapses runs of 3+ newlines to exactly 2, collapses runs of
// horizontal whitespace to a single space, and strips leading and trailing
// whitespace. It is deterministic and total.
func Normalize(text string) string {
	t := strings.ReplaceAll(text, "\r", "")
	t = multiNewline.ReplaceAllString(t, "\n\n")
	t = horizontalWS.ReplaceAllString(t, " ")
	return strings.TrimSpace(t)
}

// Split divides text into chunks of roughly minChars..maxChars characters,
// accumulating blank-line-delimited paragraphs greedily:
//
//   - a paragraph that fits within maxChars is appended to the buffer
//   - when it does not fit and the buffer already holds at least minChars,
//     the buffer is emitted and the paragraph starts a new one
//   - when the buffer is still under minChars, the paragraph is force-merged
//     regardless of maxChars; the minimum-size guarantee wins over the
//     maximum when the two conflict
//   - the final buffer is always emitted, even under minChars
//
// Paragraphs are never truncated or hard-split: a single paragraph longer
// than maxChars is kept whole, and no content is ever dropped.
func Split(text string, minChars, maxChars int) []string {
	raw := strings.Split(text, "\n\n")
	paras := make([]string, 0, len(raw))
	for _, p := range raw {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			paras = append(paras, trimmed)
		}
	}

	var chunks []string
	var buf string

	flush := func() {
		if buf != "" {
			chunks = append(chunks, strings.TrimSpace(buf))
			buf = ""
		}
	}

	for _, p := range paras {
		switch {
		case buf == "":
			buf = p
		case len(buf)+1+len(p) <= maxChars:
			buf = buf + "\n\n" + p
		case len(buf) >= minChars:
			flush()
			buf = p
		default:
			// Under min: merge unconditionally, emit once the minimum is met.
			buf = buf + "\n\n" + p
			if len(buf) >= minChars {
				flush()
			}
		}
	}

	flush()
	return chunks
}
