// Package slug derives URL-safe group slugs from free-form titles without
// transliterating non-Latin scripts.
package slug

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// MaxLength is the longest slug a group may carry, in runes.
const MaxLength = 100

// Slugify normalizes s to NFKC, lowercases it, drops everything except
// letters, numbers, underscores, hyphens and whitespace, then joins the
// remaining words with single hyphens.
func Slugify(s string) string {
	s = norm.NFKC.String(s)
	s = cases.Lower(language.Und).String(s)

	var b strings.Builder
	b.Grow(len(s))
	pendingDash := false
	for _, r := range s {
		switch {
		case r == '-' || unicode.IsSpace(r):
			pendingDash = true
		case isWordRune(r):
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(r)
		}
	}

	return strings.Trim(b.String(), "-_")
}

// Truncate cuts s to at most max runes and trims separators left dangling
// at the cut.
func Truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	n := 0
	for i := range s {
		if n == max {
			return strings.TrimRight(s[:i], "-_")
		}
		n++
	}
	return s
}

// Make derives a slug of at most MaxLength runes from title.
func Make(title string) string {
	return Truncate(Slugify(title), MaxLength)
}

// Valid reports whether s is usable as a slug as-is.
func Valid(s string) bool {
	if s == "" {
		return false
	}
	n := 0
	for _, r := range s {
		if r != '-' && !isWordRune(r) {
			return false
		}
		n++
	}
	return n <= MaxLength
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r)
}
