package matcher

import (
	"github.com/canary-hr/attendance-reconciler/internal/domain/attendance"
	"github.com/canary-hr/attendance-reconciler/internal/domain/similarity"
)

// KeyStrategy selects how a primary record is linked to a secondary one.
type KeyStrategy string

const (
	// StrategyCode treats the code as the identity. Names only pick among
	// same-code candidates, and any same-code candidate is accepted.
	StrategyCode KeyStrategy = "code"
	// StrategyCodeName requires the name to agree as well, exactly or
	// fuzzily. A same-code candidate with an unrelated name is rejected.
	StrategyCodeName KeyStrategy = "code_name"
)

// Kind records how a counterpart was accepted.
type Kind string

const (
	KindNone     Kind = ""
	KindExact    Kind = "exact"
	KindFuzzy    Kind = "fuzzy"
	KindCodeOnly Kind = "code_only"
)

// Label returns the Arabic marker shown for pairings accepted on something
// other than an exact name. Exact and unmatched pairings have none.
func (k Kind) Label() string {
	switch k {
	case KindFuzzy:
		return "تطبيع مرن للاسم"
	case KindCodeOnly:
		return "الاسم غير متطابق"
	default:
		return ""
	}
}

// Config holds matcher configuration
type Config struct {
	Strategy      KeyStrategy // Default: code
	NameThreshold float64     // Default: 0.60 (Dice over name tokens)
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Strategy:      StrategyCode,
		NameThreshold: similarity.DefaultThreshold,
	}
}

// MatchResult contains match information
type MatchResult struct {
	Record    attendance.Record
	Kind      Kind
	NameScore float64 // Dice score between the two names
}
