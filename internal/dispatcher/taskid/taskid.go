// Package taskid mints task identifiers in the T_{unix_seconds}{millis:03}
// form spec §3 requires, monotonic within a process at up to 1,000/s. A
// same-millisecond collision (more than one mint in the same ms) appends
// a fixed-width counter suffix rather than breaking the documented
// format — see SPEC_FULL.md §14's collision-handling decision.
package taskid

import (
	"fmt"
	"sync"
	"time"
)

// Minter mints strictly non-decreasing task ids over wall-clock time
// (spec §8.5).
type Minter struct {
	Now func() time.Time

	mu       sync.Mutex
	lastBase string
	counter  int
}

// NewMinter builds a Minter using the real clock.
func NewMinter() *Minter {
	return &Minter{Now: time.Now}
}

// Mint returns the next task id. It never returns an empty string — spec
// §4.6 treats that as a CRITICAL internal failure the caller must map to
// INTERNAL_ERROR, which this implementation avoids by construction.
func (m *Minter) Mint() string {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.Now()
	base := fmt.Sprintf("T_%d%03d", now.Unix(), now.Nanosecond()/1_000_000)
	if base == m.lastBase {
		m.counter++
	} else {
		m.lastBase = base
		m.counter = 0
	}
	if m.counter == 0 {
		return base
	}
	// Suffix starts with '_', which sorts after any digit, so the
	// extended id always compares greater than its base — preserving
	// strict monotonicity without altering the base T_{secs}{millis:03}
	// prefix any downstream parser relies on.
	return fmt.Sprintf("%s_%03d", base, m.counter)
}
