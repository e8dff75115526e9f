package dispatch

import "reflect"

// Table is a multi-map from type key to the handler records
// subscribed under that key, preserving insertion order within a key.
// It carries no synchronization of its own: callers mutate it only
// under a leftright.Cell's Modify and read it only under Observe.
type Table map[reflect.Type][]Record

// Insert appends rec to the bucket for typ.
func (t Table) Insert(typ reflect.Type, rec Record) {
	t[typ] = append(t[typ], rec)
}

// InsertHinted behaves like Insert, but when typ has no existing
// bucket it preallocates the new one with hintCap instead of letting
// it grow from zero. hintCap <= 0 falls back to ordinary growth.
func (t Table) InsertHinted(typ reflect.Type, rec Record, hintCap int) {
	bucket, ok := t[typ]
	if !ok && hintCap > 0 {
		bucket = make([]Record, 0, hintCap)
	}
	t[typ] = append(bucket, rec)
}

// Remove deletes the record with the given identity from the bucket
// for typ, if present. It reports whether a record was removed.
func (t Table) Remove(typ reflect.Type, id uintptr) bool {
	removed, _ := t.RemoveHinted(typ, id)
	return removed
}

// RemoveHinted behaves like Remove, but when removing the record
// drops the bucket to empty, it also reports the capacity of the
// backing array being discarded, so a caller can feed that number
// into a capacity-hint pool for the next InsertHinted of the same
// type. freedCap is 0 whenever the bucket survives the removal.
func (t Table) RemoveHinted(typ reflect.Type, id uintptr) (removed bool, freedCap int) {
	bucket, ok := t[typ]
	if !ok {
		return false, 0
	}
	for i, rec := range bucket {
		if rec.Identity() == id {
			freed := cap(bucket)
			bucket = append(bucket[:i], bucket[i+1:]...)
			if len(bucket) == 0 {
				delete(t, typ)
				return true, freed
			}
			t[typ] = bucket
			return true, 0
		}
	}
	return false, 0
}

// NewTable returns an empty, ready-to-use Table.
func NewTable() Table { return make(Table) }

// Lookup returns the records subscribed under typ, or nil if none.
func (t Table) Lookup(typ reflect.Type) []Record {
	return t[typ]
}
