// Package policy implements the Dispatcher's assignment policy (spec
// §4.6): a category-ranked, distance-scored, first-occurrence-tie-broken
// choice of elevator for a floor call, and the trivial always-the-
// requesting-car rule for cabin requests. Styled after the teacher's
// agent/internal/compute/score.go: a constants block for the weights and
// pure scoring functions with no hidden state.
package policy

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/liftmesh/liftmesh/internal/protocol"
)

// Category is the ranked bucket a candidate car falls into.
type Category int

const (
	CategoryNone Category = iota
	CategoryBusyUnknown
	CategoryNearFinish
	CategoryEnRouteCompatible
	CategoryAvailable
)

// Base scores per category, spec §4.6.
const (
	baseAvailable        = 1000
	baseEnRouteCompatible = 800
	baseNearFinish       = 600
	baseBusyUnknown      = 400
)

// Candidate is one scored car considered for a floor call.
type Candidate struct {
	CarID    string
	Category Category
	Score    int
	Index    int // first-occurrence order, for tie-breaking
}

// ErrNoCandidate is returned when no car in the snapshot can be assigned.
var ErrNoCandidate = fmt.Errorf("policy: no candidate elevator")

// AssignFloorCall implements spec §4.6's ranked scoring for floor calls.
// It returns the winning car id, or ErrNoCandidate if the snapshot is
// empty or every car is ineligible.
func AssignFloorCall(origin int, direction protocol.Direction, elevators []protocol.ObservationWire) (string, error) {
	var best *Candidate
	for i, o := range elevators {
		cand := scoreCandidate(i, origin, direction, o)
		if cand.Category == CategoryNone {
			continue
		}
		if best == nil || cand.Score > best.Score {
			c := cand
			best = &c
		}
	}
	if best == nil {
		return "", ErrNoCandidate
	}
	return best.CarID, nil
}

func scoreCandidate(index, origin int, direction protocol.Direction, o protocol.ObservationWire) Candidate {
	c := Candidate{CarID: o.ID, Index: index}

	if o.Available {
		c.Category = CategoryAvailable
		c.Score = baseAvailable - abs(o.Floor-origin)
		return c
	}

	if o.Target == nil {
		c.Category = CategoryBusyUnknown
		c.Score = baseBusyUnknown - abs(o.Floor-origin)
		return c
	}

	target := *o.Target
	if directionMatches(o.Floor, target, direction) && between(origin, o.Floor, target) {
		c.Category = CategoryEnRouteCompatible
		c.Score = baseEnRouteCompatible - abs(o.Floor-origin)
		return c
	}

	c.Category = CategoryNearFinish
	c.Score = baseNearFinish - abs(target-origin)
	return c
}

func directionMatches(current, target int, direction protocol.Direction) bool {
	switch direction {
	case protocol.DirectionUp:
		return target > current
	case protocol.DirectionDown:
		return target < current
	default:
		return false
	}
}

// between reports whether origin lies between current and target,
// inclusive, regardless of travel direction.
func between(origin, current, target int) bool {
	lo, hi := current, target
	if lo > hi {
		lo, hi = hi, lo
	}
	return origin >= lo && origin <= hi
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// AssignCabinRequest implements spec §4.6's cabin-request rule: the
// assigned car is always the requesting car, no ranking.
func AssignCabinRequest(requestingCarID string) string {
	return requestingCarID
}

// RequestTraceID mints an opaque internal id for dispatcher structured
// logs, distinct from the task id itself (spec §3's T_... format), per
// SPEC_FULL.md §11.
func RequestTraceID() string {
	return uuid.NewString()
}
