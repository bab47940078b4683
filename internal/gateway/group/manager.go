// Package group is the gateway-side scheduling wrapper around
// internal/elevator.Group: it owns the tick cadence and exposes the
// operations the event loop calls each iteration (spec §4.5, §5).
package group

import (
	"time"

	"github.com/liftmesh/liftmesh/internal/elevator"
	"github.com/liftmesh/liftmesh/internal/metrics"
)

// TickInterval is the minimum time between two ticks. The event loop
// calls Manager.MaybeTick on every iteration; with TickInterval equal to
// the gateway's 100ms I/O window this yields spec §5's "one deterministic
// step of local work" per I/O window.
const TickInterval = 100 * time.Millisecond

// Manager schedules elevator.Group.Tick calls on a fixed cadence, driven
// by an injectable clock so tests can advance time deterministically —
// the same now-func pattern the teacher's store.go uses for its eviction
// ticker.
type Manager struct {
	Group *elevator.Group
	Now   func() time.Time

	lastTick time.Time
}

// New wraps g with a real-time clock.
func New(g *elevator.Group) *Manager {
	return &Manager{Group: g, Now: time.Now, lastTick: time.Now()}
}

// MaybeTick advances the group by one tick if TickInterval has elapsed
// since the last tick, and reports whether it did.
func (m *Manager) MaybeTick() bool {
	now := m.Now()
	if now.Sub(m.lastTick) < TickInterval {
		return false
	}
	m.lastTick = now
	m.Group.Tick()
	metrics.TicksTotal.Inc()
	return true
}
