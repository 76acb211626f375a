// Package slug derives URL-safe identifiers from arbitrary strings.
package slug

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripMarks decomposes to NFD and removes combining marks, turning
// "Café" into "Cafe".
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Make converts a string to a permalink slug: lowercase, diacritics
// stripped, every run of non-alphanumeric characters collapsed to a
// single hyphen, leading/trailing hyphens trimmed. Make is idempotent.
func Make(s string) string {
	if stripped, _, err := transform.String(stripMarks, s); err == nil {
		s = stripped
	}
	s = strings.ToLower(s)

	var b strings.Builder
	prevHyphen := true // swallow leading separators
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			prevHyphen = false
		} else if !prevHyphen {
			b.WriteRune('-')
			prevHyphen = true
		}
	}
	return strings.TrimRight(b.String(), "-")
}

// Tag converts a tag name to its slug: lowercase, trimmed, runs of
// non-word characters replaced with a hyphen, hyphens collapsed and
// trimmed. Unlike Make, underscores survive. Tag is idempotent.
func Tag(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))

	var b strings.Builder
	prevHyphen := true
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			b.WriteRune(r)
			prevHyphen = false
		} else if !prevHyphen {
			b.WriteRune('-')
			prevHyphen = true
		}
	}
	return strings.TrimRight(b.String(), "-")
}
