package attendance

import (
	"strings"

	"github.com/canary-hr/attendance-reconciler/internal/domain/normalize"
)

// Field is one of the four canonical columns.
type Field int

const (
	FieldCode Field = iota
	FieldName
	FieldG
	FieldR
)

// Generic column labels.
const (
	LabelCode = "الكود"
	LabelName = "الاسم"
	LabelG    = "غ"
	LabelR    = "ر"
)

// Source suffixes used by the exports and by the report writer.
const (
	SuffixPrimary   = " (بصمة)"
	SuffixSecondary = " (يدوي)"
)

// Labels lists the accepted header variants per field in probe order:
// generic label, primary label, secondary label, then Latin fallbacks.
var Labels = map[Field][]string{
	FieldCode: {LabelCode, LabelCode + SuffixPrimary, LabelCode + SuffixSecondary, "code", "emp code", "employee code"},
	FieldName: {LabelName, LabelName + SuffixPrimary, LabelName + SuffixSecondary, "name", "employee name"},
	FieldG:    {LabelG, LabelG + SuffixPrimary, LabelG + SuffixSecondary, "g", "absence"},
	FieldR:    {LabelR, LabelR + SuffixPrimary, LabelR + SuffixSecondary, "r", "rest", "leave"},
}

// Fields in the positional order used by headerless sheets (columns B..E).
var Fields = []Field{FieldCode, FieldName, FieldG, FieldR}

type labelRank struct {
	field Field
	rank  int
}

var canonicalLabels = func() map[string]labelRank {
	m := make(map[string]labelRank)
	for field, labels := range Labels {
		for i, l := range labels {
			m[canonicalLabel(l)] = labelRank{field: field, rank: i}
		}
	}
	return m
}()

func canonicalLabel(s string) string {
	return strings.ToLower(normalize.Arabic(s))
}

// FieldFor reports which field a header label belongs to. Matching ignores
// diacritics, letter variants, extra whitespace and Latin case.
func FieldFor(header string) (Field, bool) {
	lr, ok := canonicalLabels[canonicalLabel(header)]
	return lr.field, ok
}

func (f Field) String() string {
	switch f {
	case FieldCode:
		return "code"
	case FieldName:
		return "name"
	case FieldG:
		return "g"
	case FieldR:
		return "r"
	default:
		return "unknown"
	}
}
