package mapping

import (
	"regexp"
	"strings"
)

var (
	lineBreakTag = regexp.MustCompile(`(?i)<br\s*/?>`)
	htmlTag      = regexp.MustCompile(`<[^>]*>`)
	whitespace   = regexp.MustCompile(`\s+`)
)

// NormalizeValue flattens an HTML-ish store value into one line: line breaks
// become ", ", remaining tags are dropped and whitespace collapses. Applying
// it twice is the same as applying it once.
func NormalizeValue(v string) string {
	if v == "" {
		return ""
	}
	v = lineBreakTag.ReplaceAllString(v, ", ")
	v = htmlTag.ReplaceAllString(v, "")
	v = whitespace.ReplaceAllString(v, " ")
	return strings.TrimSpace(v)
}
