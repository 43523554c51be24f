package fetcher

import (
	"regexp"
	"strings"
)

var (
	horizontalWhitespace = regexp.MustCompile(`[ \t]+`)
	excessNewlines       = regexp.MustCompile(`\n{3,}`)
)

// NormalizeText collapses runs of spaces and tabs to a single space,
// collapses three or more consecutive newlines to exactly two, and trims
// leading and trailing whitespace. Idempotent: normalizing normalized text
// is a no-op.
func NormalizeText(text string) string {
	text = horizontalWhitespace.ReplaceAllString(text, " ")
	text = excessNewlines.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}
