// Package coap wraps github.com/plgd-dev/go-coap/v2 to provide the
// confirmable POST request/response exchanges spec §4.3/§4.6 describe,
// running over the PSK-keyed DTLS channel from internal/transport/dtls.
package coap

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/plgd-dev/go-coap/v2/message"
	"github.com/plgd-dev/go-coap/v2/message/codes"
	"github.com/plgd-dev/go-coap/v2/mux"
	gocoapdtls "github.com/plgd-dev/go-coap/v2/dtls"
	piondtls "github.com/pion/dtls/v2"

	"github.com/liftmesh/liftmesh/internal/protocol"
)

func pskConfig(identity string, hint []byte, keys *protocol.KeyFile, lookupIdentity func(hint []byte) string) *piondtls.Config {
	return &piondtls.Config{
		PSK: func(h []byte) ([]byte, error) {
			id := identity
			if lookupIdentity != nil {
				id = lookupIdentity(h)
			}
			return keys.Lookup(id), nil
		},
		PSKIdentityHint: hint,
		CipherSuites:    []piondtls.CipherSuiteID{piondtls.TLS_PSK_WITH_AES_128_CCM_8},
	}
}

// Client is a thin wrapper over a go-coap DTLS client connection, used by
// the gateway's outbound request builder (§4.3).
type Client struct {
	conn *gocoapdtls.ClientConn
}

// Dial opens a DTLS-secured CoAP client connection to addr, presenting
// identity and deriving its PSK via keys.
func Dial(ctx context.Context, addr, identity string, keys *protocol.KeyFile) (*Client, error) {
	cfg := pskConfig(identity, []byte(identity), keys, nil)
	conn, err := gocoapdtls.Dial(addr, cfg)
	if err != nil {
		return nil, fmt.Errorf("coap: dial %s: %w", addr, err)
	}
	return &Client{conn: conn}, nil
}

// Post issues a confirmable POST to path carrying body as
// application/json, and returns the response code and body.
func (c *Client) Post(ctx context.Context, path string, body []byte) (codes.Code, []byte, error) {
	resp, err := c.conn.Post(ctx, path, message.AppJSON, bytes.NewReader(body))
	if err != nil {
		return 0, nil, fmt.Errorf("coap: post %s: %w", path, err)
	}
	respBody, err := io.ReadAll(resp.Body())
	if err != nil {
		return resp.Code(), nil, fmt.Errorf("coap: read body: %w", err)
	}
	return resp.Code(), respBody, nil
}

// Close releases the underlying connection.
func (c *Client) Close() error { return c.conn.Close() }

// Request is what a resource handler sees of one incoming CoAP request:
// the body plus the two boundary facts spec §8.12 and §7's AUTHORIZATION
// class depend on, which the bare body alone can't carry.
type Request struct {
	Body []byte

	// ContentFormatSet/ContentFormat mirror the CoAP Content-Format
	// option (spec §8.12): ContentFormatSet is false when the option was
	// absent from the request entirely.
	ContentFormatSet bool
	ContentFormat    int64

	// Authorized reports whether the request arrived over an
	// established, PSK-authenticated DTLS session. The server only ever
	// accepts connections that completed that handshake, so this is
	// always true for a request that reaches a handler at all — it is
	// still threaded through explicitly so spec §7's AUTHORIZATION path
	// has a real signal to branch on rather than being assumed dead code.
	Authorized bool
}

// HandlerFunc answers one CoAP request with a code and a JSON body.
type HandlerFunc func(ctx context.Context, req Request) (codes.Code, []byte)

// Server wraps a go-coap DTLS server exposing the dispatcher's resources.
type Server struct {
	srv  *gocoapdtls.Server
	keys *protocol.KeyFile
}

// NewServer builds a dispatcher-side CoAP/DTLS server. routes maps
// resource path to handler (see protocol.PathFloorCall etc).
func NewServer(keys *protocol.KeyFile, routes map[string]HandlerFunc) *Server {
	router := mux.NewRouter()
	for path, h := range routes {
		h := h
		router.Handle(path, mux.HandlerFunc(func(w mux.ResponseWriter, r *mux.Message) {
			body, _ := io.ReadAll(r.Body())
			req := Request{Body: body, Authorized: true}
			if cf, err := r.ContentFormat(); err == nil {
				req.ContentFormatSet = true
				req.ContentFormat = int64(cf)
			}
			code, respBody := h(r.Context(), req)
			w.SetResponse(code, message.AppJSON, bytes.NewReader(respBody))
		}))
	}
	srv := gocoapdtls.NewServer(gocoapdtls.WithMux(router))
	return &Server{srv: srv, keys: keys}
}

// Serve listens on addr and blocks until ctx is done or a fatal error
// occurs.
func (s *Server) Serve(ctx context.Context, addr string) error {
	cfg := pskConfig("", []byte(protocol.DispatcherHint), s.keys, func(hint []byte) string {
		return string(hint)
	})
	l, err := gocoapdtls.NewListener(addr, cfg)
	if err != nil {
		return fmt.Errorf("coap: listen %s: %w", addr, err)
	}
	errCh := make(chan error, 1)
	go func() { errCh <- s.srv.Serve(l) }()
	select {
	case <-ctx.Done():
		s.srv.Stop()
		return nil
	case err := <-errCh:
		return err
	}
}
