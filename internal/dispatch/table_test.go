package dispatch

import (
	"reflect"
	"testing"
)

func TestTable_InsertAndLookup(t *testing.T) {
	tbl := NewTable()
	typ := reflect.TypeFor[testBase]()
	r1 := NewRecord[testBase](func(testBase) {})
	r2 := NewRecord[testBase](func(testBase) {})

	tbl.Insert(typ, r1)
	tbl.Insert(typ, r2)

	got := tbl.Lookup(typ)
	if len(got) != 2 || got[0] != r1 || got[1] != r2 {
		t.Fatalf("expected [r1, r2] in insertion order, got %v", got)
	}
}

func TestTable_RemoveByIdentity(t *testing.T) {
	tbl := NewTable()
	typ := reflect.TypeFor[testBase]()
	r1 := NewRecord[testBase](func(testBase) {})
	r2 := NewRecord[testBase](func(testBase) {})
	tbl.Insert(typ, r1)
	tbl.Insert(typ, r2)

	if !tbl.Remove(typ, r1.Identity()) {
		t.Fatal("expected Remove to report success for an existing record")
	}
	got := tbl.Lookup(typ)
	if len(got) != 1 || got[0] != r2 {
		t.Fatalf("expected [r2] remaining, got %v", got)
	}
}

func TestTable_RemoveDropsEmptyBucket(t *testing.T) {
	tbl := NewTable()
	typ := reflect.TypeFor[testBase]()
	r1 := NewRecord[testBase](func(testBase) {})
	tbl.Insert(typ, r1)
	tbl.Remove(typ, r1.Identity())

	if _, ok := tbl[typ]; ok {
		t.Fatal("expected bucket to be removed once empty")
	}
}

func TestTable_RemoveUnknownIsNoop(t *testing.T) {
	tbl := NewTable()
	typ := reflect.TypeFor[testBase]()
	if tbl.Remove(typ, 12345) {
		t.Fatal("expected Remove on unknown type/identity to report false")
	}
}

func TestTable_InsertHintedPreallocatesNewBucket(t *testing.T) {
	tbl := NewTable()
	typ := reflect.TypeFor[testBase]()
	r1 := NewRecord[testBase](func(testBase) {})

	tbl.InsertHinted(typ, r1, 8)

	if got := cap(tbl[typ]); got != 8 {
		t.Fatalf("expected hinted bucket capacity 8, got %d", got)
	}
}

func TestTable_RemoveHintedReportsFreedCapacityOnlyWhenBucketEmpties(t *testing.T) {
	tbl := NewTable()
	typ := reflect.TypeFor[testBase]()
	r1 := NewRecord[testBase](func(testBase) {})
	r2 := NewRecord[testBase](func(testBase) {})
	tbl.InsertHinted(typ, r1, 8)
	tbl.Insert(typ, r2)

	removed, freed := tbl.RemoveHinted(typ, r1.Identity())
	if !removed || freed != 0 {
		t.Fatalf("expected surviving-bucket removal to report freed=0, got removed=%v freed=%d", removed, freed)
	}

	removed, freed = tbl.RemoveHinted(typ, r2.Identity())
	if !removed || freed == 0 {
		t.Fatalf("expected final removal to report a nonzero freed capacity, got removed=%v freed=%d", removed, freed)
	}
}

func TestTable_RemoveIdempotent(t *testing.T) {
	tbl := NewTable()
	typ := reflect.TypeFor[testBase]()
	r1 := NewRecord[testBase](func(testBase) {})
	tbl.Insert(typ, r1)

	first := tbl.Remove(typ, r1.Identity())
	second := tbl.Remove(typ, r1.Identity())
	if !first {
		t.Fatal("expected first removal to succeed")
	}
	if second {
		t.Fatal("expected second removal to be a no-op")
	}
}
