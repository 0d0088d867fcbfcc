// Package placeholder finds bracketed tokens ("[Order Total]") in Google Docs
// content trees.
package placeholder

import (
	"cmp"
	"iter"
	"regexp"
	"slices"
	"strings"
	"unicode/utf16"

	"google.golang.org/api/docs/v1"
)

// Pattern matches the smallest bracketed span; nesting is not supported.
var Pattern = regexp.MustCompile(`\[([^\]]+)\]`)

// Key is the case-insensitive identity of a token.
func Key(token string) string { return strings.ToLower(token) }

// Inner strips the surrounding brackets, if present.
func Inner(token string) string {
	token = strings.TrimPrefix(token, "[")
	return strings.TrimSuffix(token, "]")
}

// IsScreenshot reports whether the token names an image slot rather than text.
func IsScreenshot(token string) bool {
	return strings.Contains(Key(token), "screenshot")
}

// Extract returns the distinct tokens in content, deduplicated
// case-insensitively (first spelling wins) and ordered by lowercased token.
// Text runs are joined before matching, so a token split across runs with
// different styling is still found. Each range re-walks the tree.
func Extract(content []*docs.StructuralElement) iter.Seq[string] {
	return func(yield func(string) bool) {
		var b strings.Builder
		for text := range textRuns(content) {
			b.WriteString(text)
		}

		seen := make(map[string]string)
		for _, m := range Pattern.FindAllString(b.String(), -1) {
			k := Key(m)
			if _, ok := seen[k]; !ok {
				seen[k] = m
			}
		}

		keys := make([]string, 0, len(seen))
		for k := range seen {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		for _, k := range keys {
			if !yield(seen[k]) {
				return
			}
		}
	}
}

// Location is a token's span in the document index space (UTF-16 code
// units, body starting at 1). EndIndex is exclusive.
type Location struct {
	Token      string
	StartIndex int64
	EndIndex   int64
}

// Locate finds every occurrence of tokens accepted by match. Matching is per
// text run; tokens split across runs are not located. Results are in document
// order.
func Locate(content []*docs.StructuralElement, match func(token string) bool) []Location {
	var out []Location
	locate(content, 1, match, &out)
	return out
}

// SortDescending orders locations so that edits applied in sequence never
// shift the indices of locations not yet processed.
func SortDescending(locs []Location) {
	slices.SortStableFunc(locs, func(a, b Location) int {
		return cmp.Compare(b.StartIndex, a.StartIndex)
	})
}

func locate(content []*docs.StructuralElement, offset int64, match func(string) bool, out *[]Location) int64 {
	cur := offset
	for _, el := range content {
		if el == nil {
			continue
		}
		if el.Paragraph != nil {
			for _, pe := range el.Paragraph.Elements {
				if pe == nil {
					continue
				}
				if pe.TextRun == nil || pe.TextRun.Content == "" {
					cur++
					continue
				}
				text := pe.TextRun.Content
				for _, span := range Pattern.FindAllStringIndex(text, -1) {
					token := text[span[0]:span[1]]
					if match != nil && !match(token) {
						continue
					}
					start := cur + utf16Len(text[:span[0]])
					*out = append(*out, Location{
						Token:      token,
						StartIndex: start,
						EndIndex:   start + utf16Len(token),
					})
				}
				cur += utf16Len(text)
			}
		}
		if el.Table != nil {
			for _, row := range el.Table.TableRows {
				if row == nil {
					continue
				}
				for _, cell := range row.TableCells {
					if cell == nil {
						continue
					}
					cur = locate(cell.Content, cur, match, out)
				}
			}
		}
	}
	return cur
}

func textRuns(content []*docs.StructuralElement) iter.Seq[string] {
	return func(yield func(string) bool) {
		walkText(content, yield)
	}
}

func walkText(content []*docs.StructuralElement, yield func(string) bool) bool {
	for _, el := range content {
		if el == nil {
			continue
		}
		if el.Paragraph != nil {
			for _, pe := range el.Paragraph.Elements {
				if pe != nil && pe.TextRun != nil && pe.TextRun.Content != "" {
					if !yield(pe.TextRun.Content) {
						return false
					}
				}
			}
		}
		if el.Table != nil {
			for _, row := range el.Table.TableRows {
				if row == nil {
					continue
				}
				for _, cell := range row.TableCells {
					if cell != nil && !walkText(cell.Content, yield) {
						return false
					}
				}
			}
		}
	}
	return true
}

// utf16Len is the length of s in the Docs API's index unit.
func utf16Len(s string) int64 {
	var n int64
	for _, r := range s {
		n += int64(utf16.RuneLen(r))
	}
	return n
}
