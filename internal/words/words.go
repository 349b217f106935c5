// internal/words/words.go
//
// Word normalization and letter predicates shared by every game variant.
// Responsibilities:
//   - Canonical form for uniqueness checks: lowercase, trimmed, diacritics folded.
//   - First/last letter extraction for chain-style rules.
//   - Letter-overlap and forbidden-letter predicates.
//
// Normalization notes:
//   • Uniqueness is decided on the normalized form ("Café" == "cafe").
//   • Folding is NFD decomposition with combining marks removed, then NFC.

package words

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalize returns the canonical form of a word: trimmed, lowercased,
// with diacritics folded away.
func Normalize(w string) string {
	w = strings.ToLower(strings.TrimSpace(w))
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if folded, _, err := transform.String(t, w); err == nil {
		return folded
	}
	return w
}

// IsWordy reports whether s is a single token made of letters only
// (hyphens and apostrophes allowed inside, as in "o'clock" or "ice-cream").
func IsWordy(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if unicode.IsLetter(r) {
			continue
		}
		if (r == '\'' || r == '-') && i > 0 && i < len(s)-1 {
			continue
		}
		return false
	}
	return true
}

// FirstLetter returns the first rune of w, or 0 for an empty string.
func FirstLetter(w string) rune {
	for _, r := range w {
		return r
	}
	return 0
}

// LastLetter returns the last rune of w, or 0 for an empty string.
func LastLetter(w string) rune {
	var last rune
	for _, r := range w {
		last = r
	}
	return last
}

// SharedLetterCount counts how many distinct letters of prev occur in w.
// Used by the scramble variant's overlap rule.
func SharedLetterCount(w, prev string) int {
	in := make(map[rune]bool, len(w))
	for _, r := range w {
		in[r] = true
	}
	seen := make(map[rune]bool, len(prev))
	n := 0
	for _, r := range prev {
		if seen[r] {
			continue
		}
		seen[r] = true
		if in[r] {
			n++
		}
	}
	return n
}

// ContainsAny reports whether w contains any of the given letters.
func ContainsAny(w string, letters []rune) bool {
	for _, r := range w {
		for _, f := range letters {
			if r == f {
				return true
			}
		}
	}
	return false
}
