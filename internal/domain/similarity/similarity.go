// Package similarity scores how close two employee names are.
//
// Names are tokenized after Arabic normalization and compared as token sets
// with the Dice coefficient:
//
//	2 * |A ∩ B| / (|A| + |B|)
//
// Token order and duplicate tokens do not affect the score.
package similarity

import (
	"strings"

	"github.com/canary-hr/attendance-reconciler/internal/domain/normalize"
)

// DefaultThreshold is the tuned acceptance score for a fuzzy name match.
// It is a heuristic, not a value derived from data; callers may override it.
const DefaultThreshold = 0.60

// Tokens normalizes name and splits it into Arabic-letter tokens.
// Digits, Latin letters and punctuation are dropped.
func Tokens(name string) []string {
	norm := normalize.Arabic(name)
	if norm == "" {
		return nil
	}

	var b strings.Builder
	b.Grow(len(norm))
	for _, r := range norm {
		if isArabicLetter(r) || r == ' ' {
			b.WriteRune(r)
		}
	}

	return strings.Fields(b.String())
}

// isArabicLetter reports whether r falls in hamza..yeh.
func isArabicLetter(r rune) bool {
	return r >= 'ء' && r <= 'ي'
}

// Dice returns the Dice coefficient of the two token sets.
// It is 0 when either side is empty.
func Dice(a, b []string) float64 {
	setA := toSet(a)
	setB := toSet(b)

	den := len(setA) + len(setB)
	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}

	inter := 0
	for t := range setA {
		if _, ok := setB[t]; ok {
			inter++
		}
	}

	return float64(2*inter) / float64(den)
}

func toSet(tokens []string) map[string]struct{} {
	set := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		if t == "" {
			continue
		}
		set[t] = struct{}{}
	}
	return set
}

// Score tokenizes both names and returns their Dice coefficient in [0,1].
func Score(a, b string) float64 {
	return Dice(Tokens(a), Tokens(b))
}

// Similar reports whether Score(a, b) reaches threshold.
// Names without any Arabic-letter token never match.
func Similar(a, b string, threshold float64) bool {
	ta, tb := Tokens(a), Tokens(b)
	if len(ta) == 0 || len(tb) == 0 {
		return false
	}
	return Dice(ta, tb) >= threshold
}
