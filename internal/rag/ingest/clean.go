package ingest

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var (
	whitespaceRuns = regexp.MustCompile(`\s+`)
	// Repeating header/footer boilerplate like "Page 3 of 12".
	pageBoilerplate = regexp.MustCompile(`(?i)\bpage\s+\d+\s+of\s+\d+\b`)
)

// CleanText normalizes extracted page text: NFC unicode form, control
// characters and boilerplate removed, whitespace runs collapsed to a
// single space. Deterministic, so re-running ingestion on the same file
// yields byte-identical chunk boundaries.
func CleanText(text string) string {
	text = norm.NFC.String(text)
	text = pageBoilerplate.ReplaceAllString(text, " ")
	text = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return ' '
		}
		return r
	}, text)
	text = whitespaceRuns.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}
