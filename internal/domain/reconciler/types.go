package reconciler

import (
	"fmt"
	"math"

	"github.com/canary-hr/attendance-reconciler/internal/domain/attendance"
	"github.com/canary-hr/attendance-reconciler/internal/domain/matcher"
	"github.com/canary-hr/attendance-reconciler/internal/domain/similarity"
)

// Status is the outcome of comparing one counter.
type Status string

const (
	StatusMatched    Status = "matched"
	StatusMismatched Status = "mismatched"
	StatusIncomplete Status = "incomplete"
)

// Label returns the Arabic label shown in reports.
func (s Status) Label() string {
	switch s {
	case StatusMatched:
		return "مطابق"
	case StatusMismatched:
		return "مخالف"
	case StatusIncomplete:
		return "ناقص"
	default:
		return string(s)
	}
}

// IncompleteBucket decides which records the aggregate "incomplete" count
// takes. The engine itself always marks both counters Incomplete together.
type IncompleteBucket string

const (
	// BucketBoth counts a record as incomplete only when both counters are.
	BucketBoth IncompleteBucket = "both"
	// BucketEither counts a record as incomplete when either counter is.
	BucketEither IncompleteBucket = "either"
)

// Policy collects the behaviours that differ between reconciliation
// variants. The zero value is not valid; start from DefaultPolicy.
type Policy struct {
	KeyStrategy      matcher.KeyStrategy `json:"key_strategy"`
	NameThreshold    float64             `json:"name_threshold"`
	Tolerance        float64             `json:"tolerance"` // 0 = exact equality
	EmitOrphans      bool                `json:"emit_orphans"`
	StrictHeaders    bool                `json:"strict_headers"`
	IncompleteBucket IncompleteBucket    `json:"incomplete_bucket"`
	CodeDigitsOnly   bool                `json:"code_digits_only"`
}

// DefaultPolicy returns the canonical behaviour: code-keyed matching, exact
// counter comparison, no orphan sweep, flexible headers.
func DefaultPolicy() Policy {
	return Policy{
		KeyStrategy:      matcher.StrategyCode,
		NameThreshold:    similarity.DefaultThreshold,
		Tolerance:        0,
		EmitOrphans:      false,
		StrictHeaders:    false,
		IncompleteBucket: BucketBoth,
		CodeDigitsOnly:   false,
	}
}

// Validate rejects policies the engine cannot apply.
func (p Policy) Validate() error {
	switch p.KeyStrategy {
	case matcher.StrategyCode, matcher.StrategyCodeName:
	default:
		return fmt.Errorf("unknown key strategy %q", p.KeyStrategy)
	}
	if !(p.NameThreshold >= 0 && p.NameThreshold <= 1) {
		return fmt.Errorf("name threshold %v outside [0, 1]", p.NameThreshold)
	}
	if math.IsNaN(p.Tolerance) || math.IsInf(p.Tolerance, 0) || p.Tolerance < 0 {
		return fmt.Errorf("tolerance %v is not a finite non-negative number", p.Tolerance)
	}
	switch p.IncompleteBucket {
	case BucketBoth, BucketEither:
	default:
		return fmt.Errorf("unknown incomplete bucket %q", p.IncompleteBucket)
	}
	return nil
}

// Result is one line of the reconciled report. Primary is nil only for
// secondary orphans; Secondary is nil when no counterpart was found.
type Result struct {
	Index     int                `json:"index"`
	Primary   *attendance.Record `json:"primary"`
	Secondary *attendance.Record `json:"secondary"`
	GStatus   Status             `json:"g_status"`
	RStatus   Status             `json:"r_status"`
	Note      string             `json:"note"`
	MatchKind matcher.Kind       `json:"match_kind,omitempty"`
}

// FullyMatched reports whether both counters matched.
func (r Result) FullyMatched() bool {
	return r.GStatus == StatusMatched && r.RStatus == StatusMatched
}

// Run is the outcome of one reconciliation. It is never modified after
// Reconcile returns.
type Run struct {
	Results        []Result `json:"results"`
	Policy         Policy   `json:"policy"`
	PrimaryCount   int      `json:"primary_count"`
	SecondaryCount int      `json:"secondary_count"`
}
