package practice

import (
	"regexp"
	"strings"
)

var excessBlankLines = regexp.MustCompile(`\n{3,}`)

// Normalize canonicalizes line endings, strips trailing spaces and tabs on
// every line, collapses runs of blank lines to a single blank line and trims
// the result.
//
// Stripping trailing whitespace also drops the two-space hard line break; a
// learner who omits it is accepted.
func Normalize(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	text = strings.Join(lines, "\n")

	text = excessBlankLines.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

// Evaluate reports whether answer matches target after normalization.
// The comparison is case-sensitive and keeps internal spacing.
func Evaluate(answer, target string) bool {
	return Normalize(answer) == Normalize(target)
}
