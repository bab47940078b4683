// Package correlation implements the Correlation Table and Request
// Tracker (spec §3, §4.2): a bounded, round-robin-evicted map from
// correlation token to tracker. Grounded on the teacher's
// server/internal/store/store.go, whose TTL eviction policy it replaces
// with the token-keyed circular buffer spec §9's design notes call for.
// Unlike that store, it has neither a mutex nor a clock.
package correlation

import "github.com/liftmesh/liftmesh/internal/metrics"

// RequestKind is the kind of in-flight request a Tracker represents.
type RequestKind string

const (
	KindFloorCall     RequestKind = "FLOOR_CALL"
	KindCabinRequest  RequestKind = "CABIN_REQUEST"
	KindEmergency     RequestKind = "EMERGENCY"
)

// Origin identifies where a response must be routed back to: either the
// field-bus frame that started the request, or a gateway-resource caller
// replying over its own transport session/message id.
type Origin struct {
	FieldBusFrameID   uint16
	HasFieldBusFrame  bool
	SessionHandle     string
	MessageID         uint16
}

// Tracker is the per-in-flight-request record (spec §3).
type Tracker struct {
	Origin          Origin
	Kind            RequestKind
	OriginFloor     int
	TargetFloor     int
	RequestingCarID string
	Direction       string
	Token           []byte
}

// slot holds one table entry; occupied distinguishes an empty slot from
// one carrying a zero-value tracker.
type slot struct {
	token    []byte
	tracker  Tracker
	occupied bool
}

// Table is the bounded, round-robin Correlation Table. Not safe for
// concurrent use — the single-loop cooperative model (spec §5) is the
// only synchronization this type relies on.
type Table struct {
	slots []slot
	next  int
}

// DefaultCapacity matches spec §3's "circular buffer with at least 16
// slots."
const DefaultCapacity = 16

// New creates a Table with capacity slots (DefaultCapacity if capacity <= 0).
func New(capacity int) *Table {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Table{slots: make([]slot, capacity)}
}

// Register stores tracker keyed by a defensive copy of token in the next
// slot in round-robin order, overwriting whatever entry that slot still
// holds, even when other slots are free. The evicted tracker, if any, is
// considered orphaned: any late response for it will be dropped.
func (t *Table) Register(token []byte, tracker Tracker) {
	cp := append([]byte(nil), token...)
	tracker.Token = cp
	t.slots[t.next] = slot{token: cp, tracker: tracker, occupied: true}
	t.next = (t.next + 1) % len(t.slots)
	t.reportOccupancy()
}

// Capacity returns the table's total number of slots.
func (t *Table) Capacity() int { return len(t.slots) }

// Occupancy returns the number of currently occupied slots.
func (t *Table) Occupancy() int {
	n := 0
	for i := range t.slots {
		if t.slots[i].occupied {
			n++
		}
	}
	return n
}

func (t *Table) reportOccupancy() {
	metrics.CorrelationOccupancy.Set(float64(t.Occupancy()))
}

// Find returns the tracker for token by exact length+content match,
// non-destructively.
func (t *Table) Find(token []byte) (Tracker, bool) {
	for i := range t.slots {
		s := &t.slots[i]
		if s.occupied && bytesEqual(s.token, token) {
			return s.tracker, true
		}
	}
	return Tracker{}, false
}

// Remove clears the tracker for token, if present.
func (t *Table) Remove(token []byte) {
	for i := range t.slots {
		s := &t.slots[i]
		if s.occupied && bytesEqual(s.token, token) {
			*s = slot{}
			t.reportOccupancy()
			return
		}
	}
}

// Drain clears every tracker in the table, used on shutdown (spec §5).
func (t *Table) Drain() {
	for i := range t.slots {
		t.slots[i] = slot{}
	}
	t.reportOccupancy()
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
