package attendance

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// ManualMonthOvercount is the G value the manual export records for a full
// month. It is corrected to ManualMonthDays on the secondary side only.
const (
	ManualMonthOvercount = 31
	ManualMonthDays      = 30
)

// Mapper converts raw rows into records.
type Mapper struct {
	// CodeDigitsOnly strips every non-digit from codes ("EMP-0101" -> "0101").
	CodeDigitsOnly bool
}

// MapRow maps raw with the default Mapper.
func MapRow(raw RawRow, role Role) Record {
	return Mapper{}.Map(raw, role)
}

// Map resolves code, name, G and R from raw. It never fails: anything
// missing or malformed becomes "" or 0.
func (m Mapper) Map(raw RawRow, role Role) Record {
	rec := Record{
		Code: strings.TrimSpace(ToString(lookup(raw, FieldCode))),
		Name: strings.TrimSpace(ToString(lookup(raw, FieldName))),
		G:    Round(ToFloat(lookup(raw, FieldG))),
		R:    Round(ToFloat(lookup(raw, FieldR))),
	}

	if m.CodeDigitsOnly {
		rec.Code = digitsOnly(rec.Code)
	}

	// Month-end overcount in the manual ledger, applied after rounding.
	if role == Secondary && rec.G == ManualMonthOvercount {
		rec.G = ManualMonthDays
	}

	return rec
}

// lookup returns the first present, non-nil value for field. Exact labels
// are probed in order first; then the headers are scanned in column order
// for one that canonicalizes to a known label. The lowest rank wins and
// the leftmost column breaks ties.
func lookup(raw RawRow, field Field) any {
	for _, label := range Labels[field] {
		if v, ok := raw.Get(label); ok && v != nil {
			return v
		}
	}

	var (
		found any
		best  = -1
	)
	for _, header := range raw.Headers {
		v := raw.Values[header]
		if v == nil {
			continue
		}
		lr, ok := canonicalLabels[canonicalLabel(header)]
		if !ok || lr.field != field {
			continue
		}
		if best == -1 || lr.rank < best {
			found, best = v, lr.rank
		}
	}
	return found
}

// Round rounds v to two decimals, half away from zero, after nudging it by
// machine epsilon so that binary representation error does not flip the
// result (1.005 -> 1.01, 6.500000625 -> 6.5).
func Round(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return decimal.NewFromFloat(v + epsilon).Round(2).InexactFloat64()
}

const epsilon = 2.220446049250313e-16

// ToFloat coerces a cell value to a number. Empty, non-numeric and
// non-finite input yields 0.
func ToFloat(v any) float64 {
	var f float64
	switch x := v.(type) {
	case nil:
		return 0
	case float64:
		f = x
	case float32:
		f = float64(x)
	case int:
		f = float64(x)
	case int64:
		f = float64(x)
	case json.Number:
		parsed, err := x.Float64()
		if err != nil {
			return 0
		}
		f = parsed
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return 0
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0
		}
		f = parsed
	default:
		return 0
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// ToString renders a cell value as text. Whole floats print without a
// fractional part so that numeric codes read back as "101", not "101.0".
func ToString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case json.Number:
		return x.String()
	case bool:
		return strconv.FormatBool(x)
	default:
		return ""
	}
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
