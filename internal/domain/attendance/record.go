// Package attendance holds the canonical attendance record and the mapper
// that builds it from a raw spreadsheet row.
package attendance

import "fmt"

// Role identifies which export a record came from.
type Role int

const (
	// Primary is the automated (fingerprint) export.
	Primary Role = iota
	// Secondary is the manually entered export.
	Secondary
)

func (r Role) String() string {
	switch r {
	case Primary:
		return "primary"
	case Secondary:
		return "secondary"
	default:
		return fmt.Sprintf("role(%d)", int(r))
	}
}

// RawRow is one sheet row as produced by a sheet reader: the column
// labels in sheet order and the cell value under each label. Values are
// string, float64, int64, int or nil.
type RawRow struct {
	Headers []string
	Values  map[string]any
}

// NewRawRow builds a row from alternating label, value pairs in column
// order. Pairs whose label is not a string are skipped.
func NewRawRow(pairs ...any) RawRow {
	r := RawRow{Values: make(map[string]any, len(pairs)/2)}
	for i := 0; i+1 < len(pairs); i += 2 {
		if label, ok := pairs[i].(string); ok {
			r.Add(label, pairs[i+1])
		}
	}
	return r
}

// Add appends a column. A label already present keeps its first value.
func (r *RawRow) Add(label string, v any) {
	if r.Values == nil {
		r.Values = make(map[string]any)
	}
	if _, dup := r.Values[label]; dup {
		return
	}
	r.Headers = append(r.Headers, label)
	r.Values[label] = v
}

// Get returns the value under label.
func (r RawRow) Get(label string) (any, bool) {
	v, ok := r.Values[label]
	return v, ok
}

// Record is one employee line after mapping.
// G and R are rounded to two decimals; missing numbers are 0.
type Record struct {
	Code string  `json:"code"`
	Name string  `json:"name"`
	G    float64 `json:"g"`
	R    float64 `json:"r"`
}

// Raw returns the record as a RawRow using the generic labels, so that
// mapping it again yields the same record.
func (r Record) Raw() RawRow {
	return NewRawRow(
		LabelCode, r.Code,
		LabelName, r.Name,
		LabelG, r.G,
		LabelR, r.R,
	)
}
