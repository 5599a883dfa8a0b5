// Package normalize canonicalizes Arabic names for comparison.
//
// The foldings are lossy on purpose: hamza-bearing alef forms, alef maksura
// and teh marbuta are treated as equal to their bare counterparts. Use the
// output for matching only, never for display.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

// dropped holds the harakat range, tatweel and the directional marks that
// show up in exports produced by right-to-left spreadsheets.
var dropped = runes.Predicate(func(r rune) bool {
	switch {
	case r >= '\u064B' && r <= '\u0652':
		return true
	case r == '\u0640', r == '\u200E', r == '\u200F':
		return true
	}
	return false
})

var folds = map[rune]rune{
	'إ': 'ا',
	'أ': 'ا',
	'آ': 'ا',
	'ى': 'ي',
	'ة': 'ه',
}

var arabicChain = transform.Chain(
	runes.Remove(dropped),
	runes.Map(func(r rune) rune {
		if f, ok := folds[r]; ok {
			return f
		}
		return r
	}),
)

// Arabic strips diacritics and control marks, folds letter variants and
// collapses whitespace. It never fails; empty input yields "".
func Arabic(s string) string {
	if s == "" {
		return ""
	}

	out, _, err := transform.String(arabicChain, s)
	if err != nil {
		out = s
	}

	return strings.Join(strings.FieldsFunc(out, unicode.IsSpace), " ")
}

// Fold lowercases Latin letters on top of Arabic. Used for free-text search.
func Fold(s string) string {
	return strings.ToLower(Arabic(s))
}
