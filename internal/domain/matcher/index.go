package matcher

import (
	"github.com/canary-hr/attendance-reconciler/internal/domain/attendance"
	"github.com/canary-hr/attendance-reconciler/internal/domain/normalize"
)

// Key is an index key derived from a record.
type Key string

// KeyFunc derives a Key from a record.
type KeyFunc func(attendance.Record) Key

// CodeKey keys a record by its code alone.
func CodeKey(r attendance.Record) Key {
	return Key(r.Code)
}

// CodeNameKey keys a record by code and normalized name.
func CodeNameKey(r attendance.Record) Key {
	return Key(r.Code + "|" + normalize.Arabic(r.Name))
}

// Index groups records by key. Records sharing a key keep their input
// order, which is the tie-break order for candidates.
type Index map[Key][]attendance.Record

// BuildIndex groups records with key.
func BuildIndex(records []attendance.Record, key KeyFunc) Index {
	idx := make(Index)
	for _, r := range records {
		k := key(r)
		idx[k] = append(idx[k], r)
	}
	return idx
}

// Lookup returns the records stored under k, in input order.
func (idx Index) Lookup(k Key) []attendance.Record {
	return idx[k]
}

// Has reports whether any record is stored under k.
func (idx Index) Has(k Key) bool {
	return len(idx[k]) > 0
}
