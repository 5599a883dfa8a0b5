// Package reconciler pairs the primary attendance export with the
// secondary one and classifies each pair per counter.
//
// Reconcile is a pure function of its inputs and Policy: running it twice
// on the same rows yields the same results in the same order.
package reconciler

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/canary-hr/attendance-reconciler/internal/domain/attendance"
	"github.com/canary-hr/attendance-reconciler/internal/domain/matcher"
)

// toleranceSlack absorbs float noise when Policy.Tolerance > 0.
const toleranceSlack = 1e-9

// Reconcile maps both row sets and reconciles them.
func Reconcile(primaryRows, secondaryRows []attendance.RawRow, policy Policy) *Run {
	mapper := attendance.Mapper{CodeDigitsOnly: policy.CodeDigitsOnly}

	primary := make([]attendance.Record, 0, len(primaryRows))
	for _, row := range primaryRows {
		primary = append(primary, mapper.Map(row, attendance.Primary))
	}

	secondary := make([]attendance.Record, 0, len(secondaryRows))
	for _, row := range secondaryRows {
		secondary = append(secondary, mapper.Map(row, attendance.Secondary))
	}

	return ReconcileRecords(primary, secondary, policy)
}

// ReconcileRecords reconciles already mapped records. Every primary record
// yields exactly one result; with EmitOrphans, secondary records whose code
// never appears on the primary side yield one more result each.
func ReconcileRecords(primary, secondary []attendance.Record, policy Policy) *Run {
	m := matcher.NewMatcher(matcher.Config{
		Strategy:      policy.KeyStrategy,
		NameThreshold: policy.NameThreshold,
	}, secondary)

	results := make([]Result, 0, len(primary))
	for _, f := range primary {
		results = append(results, reconcileOne(f, m, policy.Tolerance))
	}

	sortByCode(results, func(r Result) string { return r.Primary.Code })

	if policy.EmitOrphans {
		orphans := findOrphans(primary, secondary)
		sortByCode(orphans, func(r Result) string { return r.Secondary.Code })
		results = append(results, orphans...)
	}

	for i := range results {
		results[i].Index = i + 1
	}

	return &Run{
		Results:        results,
		Policy:         policy,
		PrimaryCount:   len(primary),
		SecondaryCount: len(secondary),
	}
}

func reconcileOne(f attendance.Record, m *matcher.Matcher, tolerance float64) Result {
	primary := f

	match := m.FindMatch(f)
	if match == nil {
		return Result{
			Primary: &primary,
			GStatus: StatusIncomplete,
			RStatus: StatusIncomplete,
			Note:    noteMissingSecondary,
		}
	}

	secondary := match.Record
	var notes noteBuilder

	switch match.Kind {
	case matcher.KindFuzzy:
		notes.flagName(noteFuzzyName)
	case matcher.KindCodeOnly:
		notes.flagName(noteNameMismatch)
	}

	gStatus := compareCounter(f.G, secondary.G, tolerance, &notes, noteVerifyG, noteDeficitG)
	rStatus := compareCounter(f.R, secondary.R, tolerance, &notes, noteVerifyR, noteDeficitR)

	return Result{
		Primary:   &primary,
		Secondary: &secondary,
		GStatus:   gStatus,
		RStatus:   rStatus,
		Note:      notes.String(),
		MatchKind: match.Kind,
	}
}

// compareCounter classifies one counter and records the finding.
// A greater primary value asks for the manual entry to be verified; a
// smaller one quotes the positive deficit to make up.
func compareCounter(p, s, tolerance float64, notes *noteBuilder, verify, deficitPrefix string) Status {
	switch cmp := compareValues(p, s, tolerance); {
	case cmp == 0:
		return StatusMatched
	case cmp > 0:
		notes.counterFinding(verify)
	default:
		notes.counterFinding(deficitPrefix + deficit(p, s))
	}
	return StatusMismatched
}

func compareValues(p, s, tolerance float64) int {
	if tolerance > 0 {
		if math.Abs(p-s) <= tolerance+toleranceSlack {
			return 0
		}
	} else if p == s {
		return 0
	}

	if p > s {
		return 1
	}
	return -1
}

func findOrphans(primary, secondary []attendance.Record) []Result {
	codes := make(map[string]struct{}, len(primary))
	for _, f := range primary {
		codes[f.Code] = struct{}{}
	}

	var orphans []Result
	for _, s := range secondary {
		if _, ok := codes[s.Code]; ok {
			continue
		}
		rec := s
		orphans = append(orphans, Result{
			Secondary: &rec,
			GStatus:   StatusIncomplete,
			RStatus:   StatusIncomplete,
			Note:      noteMissingPrimary,
		})
	}
	return orphans
}

// sortByCode orders results ascending by code: numeric codes first in
// numeric order, then the rest lexicographically. Equal codes keep input
// order.
func sortByCode(results []Result, code func(Result) string) {
	sort.SliceStable(results, func(i, j int) bool {
		return lessCode(code(results[i]), code(results[j]))
	})
}

func lessCode(a, b string) bool {
	na, aNum := numericCode(a)
	nb, bNum := numericCode(b)

	switch {
	case aNum && bNum:
		return na < nb
	case aNum:
		return true
	case bNum:
		return false
	default:
		return a < b
	}
}

func numericCode(code string) (float64, bool) {
	n, err := strconv.ParseFloat(strings.TrimSpace(code), 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}
