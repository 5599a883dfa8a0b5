// Package report computes summary counts over a reconciliation run and
// derives filtered views of its results. Nothing here modifies the run.
package report

import (
	"fmt"
	"strings"

	"github.com/canary-hr/attendance-reconciler/internal/domain/attendance"
	"github.com/canary-hr/attendance-reconciler/internal/domain/normalize"
	"github.com/canary-hr/attendance-reconciler/internal/domain/reconciler"
)

// Kind selects a classification view.
type Kind string

const (
	KindAll     Kind = "all"
	KindMatch   Kind = "match"
	KindDiff    Kind = "diff"
	KindMissing Kind = "missing"
)

// ParseKind parses a view name. Empty input means KindAll.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case "":
		return KindAll, nil
	case KindAll, KindMatch, KindDiff, KindMissing:
		return k, nil
	default:
		return "", fmt.Errorf("unknown result kind %q", s)
	}
}

// Counts is the summary shown above the report.
type Counts struct {
	Total      int `json:"total"`
	Matched    int `json:"matched"`
	Mismatched int `json:"mismatched"`
	Incomplete int `json:"incomplete"`
}

// IsMatched reports whether both counters matched.
func IsMatched(r reconciler.Result) bool {
	return r.GStatus == reconciler.StatusMatched && r.RStatus == reconciler.StatusMatched
}

// IsMismatched reports whether either counter mismatched, regardless of
// the other one.
func IsMismatched(r reconciler.Result) bool {
	return r.GStatus == reconciler.StatusMismatched || r.RStatus == reconciler.StatusMismatched
}

// IsIncomplete applies the configured bucket rule.
func IsIncomplete(r reconciler.Result, bucket reconciler.IncompleteBucket) bool {
	g := r.GStatus == reconciler.StatusIncomplete
	rr := r.RStatus == reconciler.StatusIncomplete
	if bucket == reconciler.BucketEither {
		return g || rr
	}
	return g && rr
}

// Count tallies results. Buckets can overlap: a record with one counter
// mismatched and the other incomplete counts as mismatched, and also as
// incomplete under BucketEither.
func Count(results []reconciler.Result, bucket reconciler.IncompleteBucket) Counts {
	c := Counts{Total: len(results)}
	for _, r := range results {
		if IsMatched(r) {
			c.Matched++
		}
		if IsMismatched(r) {
			c.Mismatched++
		}
		if IsIncomplete(r, bucket) {
			c.Incomplete++
		}
	}
	return c
}

// Filter returns the results of the given kind that match search.
// The returned slice is new; the input is left untouched.
func Filter(results []reconciler.Result, kind Kind, search string, bucket reconciler.IncompleteBucket) []reconciler.Result {
	q := normalize.Fold(search)

	out := make([]reconciler.Result, 0, len(results))
	for _, r := range results {
		if !ofKind(r, kind, bucket) {
			continue
		}
		if q != "" && !matchesSearch(r, q) {
			continue
		}
		out = append(out, r)
	}
	return out
}

func ofKind(r reconciler.Result, kind Kind, bucket reconciler.IncompleteBucket) bool {
	switch kind {
	case KindMatch:
		return IsMatched(r)
	case KindDiff:
		return IsMismatched(r)
	case KindMissing:
		return IsIncomplete(r, bucket)
	default:
		return true
	}
}

// matchesSearch: q is already folded. Names are compared normalized;
// codes as typed, ignoring Latin case.
func matchesSearch(r reconciler.Result, q string) bool {
	for _, rec := range []*attendance.Record{r.Primary, r.Secondary} {
		if rec == nil {
			continue
		}
		if strings.Contains(normalize.Fold(rec.Name), q) || strings.Contains(strings.ToLower(rec.Code), q) {
			return true
		}
	}
	return false
}
