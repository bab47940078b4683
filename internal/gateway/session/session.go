// Package session implements the Secure Session Manager (spec §4.1): a
// single get-or-create handle to the Dispatcher, reconnected on failure
// with a bounded cooperative wait. Grounded on the reconnect-with-backoff
// discipline in the teacher's agent/internal/shipper/shipper.go, adapted
// from a background-goroutine retry loop into the single-loop cooperative
// model spec §5 requires: establishment is pumped in slices from inside
// get_or_create itself, never from a separate goroutine.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/liftmesh/liftmesh/internal/metrics"
	"github.com/liftmesh/liftmesh/internal/protocol"
	"github.com/liftmesh/liftmesh/internal/transport/coap"
)

// State is the discrete lifecycle of the secure session handle (spec §3).
type State string

const (
	StateNone        State = "NONE"
	StateConnecting  State = "CONNECTING"
	StateEstablished State = "ESTABLISHED"
	StateFailed      State = "FAILED"
)

// ErrUnavailable is returned by GetOrCreate when no session could be
// established within the bounded wait.
var ErrUnavailable = errors.New("session: unavailable")

// BoundedWait and PollInterval implement spec §4.1 / §5's "bounded total
// wait (recommended 5s in 100ms increments)".
const (
	BoundedWait  = 5 * time.Second
	PollInterval = 100 * time.Millisecond
)

// Manager owns the single secure session handle to the Dispatcher. It is
// not safe for concurrent use from multiple goroutines — the single-loop
// cooperative model (spec §5) is what makes that safe.
type Manager struct {
	DispatcherAddr string
	Keys           *protocol.KeyFile

	state   State
	conn    *coap.Client
	creating bool
}

// New constructs a Manager for dialing addr with the given key pool.
func New(addr string, keys *protocol.KeyFile) *Manager {
	return &Manager{DispatcherAddr: addr, Keys: keys, state: StateNone}
}

// State returns the current session state.
func (m *Manager) State() State { return m.state }

// stateGauge values match metrics.SessionState's documented encoding.
var stateGauge = map[State]float64{
	StateNone:        0,
	StateConnecting:  1,
	StateEstablished: 2,
	StateFailed:      3,
}

func (m *Manager) setState(s State) {
	m.state = s
	metrics.SessionState.Set(stateGauge[s])
}

// GetOrCreate returns an ESTABLISHED client connection, creating or
// repairing it as needed, per spec §4.1.
func (m *Manager) GetOrCreate(ctx context.Context) (*coap.Client, error) {
	if m.state == StateEstablished && m.conn != nil {
		return m.conn, nil
	}
	if m.creating {
		// A concurrent caller is already driving establishment; in the
		// single-loop model this branch is defensive only.
		return nil, ErrUnavailable
	}
	m.creating = true
	defer func() { m.creating = false }()

	identity := m.identity()
	slog.Info("session: establishing", "dispatcher", m.DispatcherAddr, "identity", identity)
	m.setState(StateConnecting)

	deadline := time.Now().Add(BoundedWait)
	var lastErr error
	for time.Now().Before(deadline) {
		conn, err := coap.Dial(ctx, m.DispatcherAddr, identity, m.Keys)
		if err == nil {
			m.conn = conn
			m.setState(StateEstablished)
			slog.Info("session: established", "dispatcher", m.DispatcherAddr)
			return conn, nil
		}
		lastErr = err
		select {
		case <-ctx.Done():
			m.setState(StateFailed)
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, ctx.Err())
		case <-time.After(PollInterval):
		}
	}
	m.setState(StateFailed)
	slog.Warn("session: establishment timed out", "dispatcher", m.DispatcherAddr, "err", lastErr)
	return nil, ErrUnavailable
}

// OnClosed is the transport event callback for CLOSED/ERROR/SESSION_FAILED
// (spec §4.1). If conn is the current handle, release it.
func (m *Manager) OnClosed(conn *coap.Client) {
	if conn != m.conn {
		return
	}
	m.release()
}

// Release tears down the current session, if any, on shutdown.
func (m *Manager) Release() {
	m.release()
}

func (m *Manager) release() {
	if m.conn != nil {
		_ = m.conn.Close()
	}
	m.conn = nil
	m.setState(StateNone)
}

// identity builds the gateway's presented PSK identity per spec §6:
// Gateway_Client_{pid}_{unix_seconds}.
func (m *Manager) identity() string {
	return fmt.Sprintf("%s%d_%d", protocol.GatewayIdentityPrefix, os.Getpid(), time.Now().Unix())
}
