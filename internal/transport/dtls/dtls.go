// Package dtls wraps pion/dtls/v2 to provide the mutually authenticated,
// pre-shared-key-keyed datagram channel spec §1 and §6 require underneath
// CoAP. Grounded on the PSK dtls.Config usage pattern in
// other_examples/1a86909a_matrix-org-lb__mobile-client.go.go, the only
// CoAP/DTLS source in the retrieved pack.
package dtls

import (
	"context"
	"fmt"
	"net"

	piondtls "github.com/pion/dtls/v2"

	"github.com/liftmesh/liftmesh/internal/protocol"
)

// DialPSK opens a client DTLS connection to addr, presenting identity and
// deriving its key from keys via the deterministic lookup both tiers
// share.
func DialPSK(ctx context.Context, addr, identity string, keys *protocol.KeyFile) (net.Conn, error) {
	cfg := &piondtls.Config{
		PSK: func(hint []byte) ([]byte, error) {
			return keys.Lookup(identity), nil
		},
		PSKIdentityHint: []byte(identity),
		CipherSuites:    []piondtls.CipherSuiteID{piondtls.TLS_PSK_WITH_AES_128_CCM_8},
	}
	raddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("dtls: resolve %s: %w", addr, err)
	}
	conn, err := piondtls.DialWithContext(ctx, "udp", raddr, cfg)
	if err != nil {
		return nil, fmt.Errorf("dtls: dial %s: %w", addr, err)
	}
	return conn, nil
}

// Listener wraps a pion/dtls Listener configured to accept any identity
// with the Gateway_Client_ prefix, deriving the matching key the same way
// the client side does.
type Listener struct {
	inner net.Listener
}

// ListenPSK binds addr and returns a Listener that authenticates peers by
// the shared key pool, rejecting any PSK identity hint lacking the
// Gateway_Client_ prefix.
func ListenPSK(addr string, keys *protocol.KeyFile) (*Listener, error) {
	cfg := &piondtls.Config{
		PSK: func(hint []byte) ([]byte, error) {
			identity := string(hint)
			if len(identity) < len(protocol.GatewayIdentityPrefix) ||
				identity[:len(protocol.GatewayIdentityPrefix)] != protocol.GatewayIdentityPrefix {
				return nil, fmt.Errorf("dtls: identity %q missing required prefix", identity)
			}
			return keys.Lookup(identity), nil
		},
		PSKIdentityHint: []byte(protocol.DispatcherHint),
		CipherSuites:    []piondtls.CipherSuiteID{piondtls.TLS_PSK_WITH_AES_128_CCM_8},
	}
	laddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("dtls: resolve %s: %w", addr, err)
	}
	ln, err := piondtls.Listen("udp", laddr, cfg)
	if err != nil {
		return nil, fmt.Errorf("dtls: listen %s: %w", addr, err)
	}
	return &Listener{inner: ln}, nil
}

// Accept blocks for the next authenticated connection.
func (l *Listener) Accept() (net.Conn, error) { return l.inner.Accept() }

// Close shuts down the listener.
func (l *Listener) Close() error { return l.inner.Close() }
