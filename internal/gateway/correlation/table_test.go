package correlation

import "testing"

func TestRegisterAndFind(t *testing.T) {
	tbl := New(4)
	token := []byte{1, 2, 3}
	tbl.Register(token, Tracker{Kind: KindFloorCall, OriginFloor: 4})

	got, ok := tbl.Find(token)
	if !ok {
		t.Fatalf("expected tracker to be found")
	}
	if got.Kind != KindFloorCall || got.OriginFloor != 4 {
		t.Errorf("got %+v, unexpected tracker contents", got)
	}
}

func TestFindMissingReturnsFalse(t *testing.T) {
	tbl := New(4)
	if _, ok := tbl.Find([]byte{9, 9}); ok {
		t.Fatalf("expected not found")
	}
}

func TestOverflowEvictsOldestRoundRobin(t *testing.T) {
	tbl := New(2)
	tbl.Register([]byte{1}, Tracker{Kind: KindFloorCall})
	tbl.Register([]byte{2}, Tracker{Kind: KindFloorCall})
	tbl.Register([]byte{3}, Tracker{Kind: KindFloorCall}) // evicts token {1}

	if _, ok := tbl.Find([]byte{1}); ok {
		t.Fatalf("expected token {1} to have been evicted")
	}
	if _, ok := tbl.Find([]byte{2}); !ok {
		t.Fatalf("expected token {2} to still be present")
	}
	if _, ok := tbl.Find([]byte{3}); !ok {
		t.Fatalf("expected token {3} to be present")
	}
}

func TestRemoveClearsEntry(t *testing.T) {
	tbl := New(4)
	tbl.Register([]byte{1}, Tracker{Kind: KindCabinRequest})
	tbl.Remove([]byte{1})
	if _, ok := tbl.Find([]byte{1}); ok {
		t.Fatalf("expected entry to be removed")
	}
}

func TestDrainClearsAllEntries(t *testing.T) {
	tbl := New(4)
	tbl.Register([]byte{1}, Tracker{})
	tbl.Register([]byte{2}, Tracker{})
	tbl.Drain()
	if _, ok := tbl.Find([]byte{1}); ok {
		t.Fatalf("expected table to be drained")
	}
	if _, ok := tbl.Find([]byte{2}); ok {
		t.Fatalf("expected table to be drained")
	}
}

func TestRegisterCopiesTokenBytes(t *testing.T) {
	tbl := New(4)
	token := []byte{5, 6, 7}
	tbl.Register(token, Tracker{})
	token[0] = 0xFF // mutate caller's slice after registering

	if _, ok := tbl.Find([]byte{5, 6, 7}); !ok {
		t.Fatalf("expected table to own a defensive copy of the token")
	}
}
