package reconciler

import (
	"github.com/shopspring/decimal"
)

const (
	noteMissingSecondary = "بيانات ناقصة أو غير موجودة في الكشف اليدوي"
	noteMissingPrimary   = "غير موجود في كشف البصمة"
	noteFuzzyName        = "ⓘ تم اعتماد التطبيع المرن للاسم (الكود متطابق)"
	noteNameMismatch     = "ⓘ الاسم غير متطابق (الكود متطابق)"

	noteVerifyG = "يتم التأكد من صحة الادخال اليدوي غ"
	noteVerifyR = "يتم التأكد من صحة الادخال اليدوي ر"

	noteDeficitG = "بعد التأكد من الادخال يتم عمل استيفاء غ بالفارق "
	noteDeficitR = "بعد التأكد من الادخال يتم عمل ر بالفارق "

	noteSeparator = " | "
)

// deficit formats secondary - primary with one decimal place.
func deficit(primary, secondary float64) string {
	return decimal.NewFromFloat(secondary).Sub(decimal.NewFromFloat(primary)).StringFixed(1)
}

// noteBuilder keeps the first counter finding and an optional name flag.
// A name flag alone renders as "": fully matched rows carry no note, the
// flag stays visible through Result.MatchKind.
type noteBuilder struct {
	name    string
	counter string
}

func (n *noteBuilder) flagName(note string) {
	n.name = note
}

// counterFinding is first-write-wins: G findings are recorded before R.
func (n *noteBuilder) counterFinding(note string) {
	if n.counter == "" {
		n.counter = note
	}
}

func (n *noteBuilder) String() string {
	if n.counter == "" {
		return ""
	}
	if n.name != "" {
		return n.name + noteSeparator + n.counter
	}
	return n.counter
}
