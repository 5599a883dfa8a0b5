// Package matcher links attendance records from the primary export to
// their counterparts in the secondary export.
//
// The code is the hard partition key: candidates always share the primary
// record's code. Within that partition the matcher tries, in order:
//   - Exact name after normalization
//   - First candidate whose name similarity reaches the threshold
//   - First candidate regardless of name (code strategy only)
//
// Example usage:
//
//	m := matcher.NewMatcher(matcher.DefaultConfig(), secondary)
//	result := m.FindMatch(primary)
//	if result != nil {
//		// Found a counterpart
//		counterpart := result.Record
//	}
package matcher

import (
	"github.com/canary-hr/attendance-reconciler/internal/domain/attendance"
	"github.com/canary-hr/attendance-reconciler/internal/domain/similarity"
)

// Matcher matches primary records against an indexed secondary set
type Matcher struct {
	config     Config
	byCode     Index
	byCodeName Index
}

// NewMatcher indexes the secondary records for matching
func NewMatcher(config Config, secondary []attendance.Record) *Matcher {
	if config.Strategy == "" {
		config.Strategy = StrategyCode
	}
	if config.NameThreshold <= 0 {
		config.NameThreshold = similarity.DefaultThreshold
	}

	return &Matcher{
		config:     config,
		byCode:     BuildIndex(secondary, CodeKey),
		byCodeName: BuildIndex(secondary, CodeNameKey),
	}
}

// Config returns the effective configuration
func (m *Matcher) Config() Config {
	return m.config
}

// HasCode reports whether any secondary record carries code
func (m *Matcher) HasCode(code string) bool {
	return m.byCode.Has(Key(code))
}

// FindMatch finds the counterpart for rec.
// Returns nil if no suitable match found
func (m *Matcher) FindMatch(rec attendance.Record) *MatchResult {
	candidates := m.byCode.Lookup(CodeKey(rec))
	if len(candidates) == 0 {
		return nil
	}

	// Exact normalized name, first in input order
	if exact := m.byCodeName.Lookup(CodeNameKey(rec)); len(exact) > 0 {
		return &MatchResult{
			Record:    exact[0],
			Kind:      KindExact,
			NameScore: similarity.Score(rec.Name, exact[0].Name),
		}
	}

	// Flexible name: first candidate at or above the threshold
	for _, c := range candidates {
		score := similarity.Score(rec.Name, c.Name)
		if score >= m.config.NameThreshold {
			return &MatchResult{Record: c, Kind: KindFuzzy, NameScore: score}
		}
	}

	if m.config.Strategy == StrategyCodeName {
		return nil
	}

	// Code is authoritative: accept the first same-code candidate
	return &MatchResult{
		Record:    candidates[0],
		Kind:      KindCodeOnly,
		NameScore: similarity.Score(rec.Name, candidates[0].Name),
	}
}
