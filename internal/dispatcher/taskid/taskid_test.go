package taskid

import (
	"strings"
	"testing"
	"time"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestMintFormat(t *testing.T) {
	m := NewMinter()
	m.Now = fixedClock(time.Unix(1700000000, 123000000))
	id := m.Mint()
	if !strings.HasPrefix(id, "T_1700000000") {
		t.Fatalf("got %q, want prefix T_1700000000", id)
	}
}

func TestMintNeverEmpty(t *testing.T) {
	m := NewMinter()
	if id := m.Mint(); id == "" {
		t.Fatalf("got empty id")
	}
}

func TestMintStrictlyNonDecreasing(t *testing.T) {
	now := time.Unix(1700000000, 0)
	m := NewMinter()
	m.Now = fixedClock(now)

	var ids []string
	for i := 0; i < 5; i++ {
		ids = append(ids, m.Mint())
	}
	for i := 1; i < len(ids); i++ {
		if ids[i] <= ids[i-1] {
			t.Fatalf("id %d (%q) did not increase over id %d (%q)", i, ids[i], i-1, ids[i-1])
		}
	}
}

func TestMintAdvancesWithClock(t *testing.T) {
	base := time.Unix(1700000000, 0)
	m := NewMinter()
	m.Now = fixedClock(base)
	first := m.Mint()

	m.Now = fixedClock(base.Add(time.Second))
	second := m.Mint()

	if second <= first {
		t.Fatalf("second id %q did not exceed first %q", second, first)
	}
}
