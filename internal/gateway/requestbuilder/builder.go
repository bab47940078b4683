// Package requestbuilder implements the Outbound Request Builder (spec
// §4.3): turns a request kind + event fields + current group state into a
// single secured request addressed to the matching dispatcher resource.
// Because the CoAP transport's Post call is itself a blocking
// confirmable exchange (spec §5's single-loop model pumps I/O, it never
// forks a background responder), the builder hands the response it gets
// straight to the Response Router and returns its outcome — there is no
// separate asynchronous delivery path to wire up.
package requestbuilder

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand"
	"strings"

	"github.com/liftmesh/liftmesh/internal/elevator"
	"github.com/liftmesh/liftmesh/internal/gateway/correlation"
	"github.com/liftmesh/liftmesh/internal/gateway/router"
	"github.com/liftmesh/liftmesh/internal/gateway/session"
	"github.com/liftmesh/liftmesh/internal/metrics"
	"github.com/liftmesh/liftmesh/internal/protocol"
)

// Event is the request-specific event data carried alongside the group
// snapshot, for one of the three request kinds.
type Event struct {
	Kind            correlation.RequestKind
	OriginFloor     int
	Direction       string // SUBIENDO / BAJANDO, floor calls only
	TargetFloor     int    // floor the assigned car is sent to: the call floor for floor calls, the requested floor for cabin requests
	RequestingCarID string // cabin requests and emergencies
	EmergencyKind   string
}

// Builder wires a Session Manager, a Correlation Table, and the Response
// Router into one outbound-request pipeline.
type Builder struct {
	Sessions *session.Manager
	Table    *correlation.Table
	Group    *elevator.Group
	Router   *router.Router
}

// Build performs spec §4.3 steps 1-8, then feeds the dispatcher's answer
// straight to the Response Router (spec §4.4) and returns its Result. A
// nil Result means the attempt was abandoned before a response ever
// arrived (no session, bad payload, or failed dispatch) — spec §4.3
// treats all three as non-fatal, logged abandons.
func (b *Builder) Build(ctx context.Context, ev Event, origin correlation.Origin) *router.Result {
	conn, err := b.Sessions.GetOrCreate(ctx)
	if err != nil {
		slog.Warn("requestbuilder: no session available", "err", err)
		metrics.RequestsTotal.WithLabelValues(string(ev.Kind), "no_session").Inc()
		return nil
	}

	path := SanitizePath(resourcePath(ev.Kind))
	payload, err := b.buildPayload(ev)
	if err != nil {
		slog.Warn("requestbuilder: failed to build payload", "err", err)
		metrics.RequestsTotal.WithLabelValues(string(ev.Kind), "build_error").Inc()
		return nil
	}

	token := newToken()
	b.Table.Register(token, correlation.Tracker{
		Origin:          origin,
		Kind:            ev.Kind,
		OriginFloor:     ev.OriginFloor,
		TargetFloor:     ev.TargetFloor,
		RequestingCarID: ev.RequestingCarID,
		Direction:       ev.Direction,
	})

	code, body, err := conn.Post(ctx, path, payload)
	if err != nil {
		// Dispatch failure is non-fatal (spec §4.3 step 8): the tracker
		// slot will simply be reused by a later request.
		slog.Warn("requestbuilder: dispatch failed", "path", path, "err", err)
		metrics.RequestsTotal.WithLabelValues(string(ev.Kind), "dispatch_error").Inc()
		return nil
	}

	result := b.Router.Route(token, code, body)
	if result != nil && result.OutboundFrame != nil {
		metrics.RequestsTotal.WithLabelValues(string(ev.Kind), "routed").Inc()
	} else {
		metrics.RequestsTotal.WithLabelValues(string(ev.Kind), "dropped").Inc()
	}
	return result
}

func resourcePath(kind correlation.RequestKind) string {
	switch kind {
	case correlation.KindFloorCall:
		return protocol.PathFloorCall
	case correlation.KindCabinRequest:
		return protocol.PathCabinCall
	case correlation.KindEmergency:
		return protocol.PathEmergency
	default:
		return protocol.PathFloorCall
	}
}

func (b *Builder) buildPayload(ev Event) ([]byte, error) {
	observations := toWire(b.Group.Observations())
	switch ev.Kind {
	case correlation.KindFloorCall:
		req := protocol.FloorCallRequest{
			BuildingID:  b.Group.Building,
			OriginFloor: ev.OriginFloor,
			Direction:   protocol.Direction(ev.Direction),
			Elevators:   observations,
		}
		return json.Marshal(req)
	case correlation.KindCabinRequest:
		req := protocol.CabinRequest{
			BuildingID:      b.Group.Building,
			RequestingCarID: ev.RequestingCarID,
			TargetFloor:     ev.TargetFloor,
			Elevators:       observations,
		}
		return json.Marshal(req)
	case correlation.KindEmergency:
		req := protocol.EmergencyRequest{
			BuildingID:      b.Group.Building,
			RequestingCarID: ev.RequestingCarID,
			CurrentFloor:    ev.OriginFloor,
			EmergencyKind:   ev.EmergencyKind,
			Elevators:       observations,
		}
		return json.Marshal(req)
	default:
		return nil, fmt.Errorf("requestbuilder: unknown event kind %q", ev.Kind)
	}
}

func toWire(obs []elevator.Observation) []protocol.ObservationWire {
	out := make([]protocol.ObservationWire, len(obs))
	for i, o := range obs {
		w := protocol.ObservationWire{
			ID:        o.ID,
			Floor:     o.Current,
			Door:      string(o.Door),
			Available: o.Available,
			TaskID:    o.TaskID,
		}
		if o.Target != elevator.NoTarget {
			target := o.Target
			w.Target = &target
		}
		out[i] = w
	}
	return out
}

// SanitizePath implements the path hygiene rule from spec §4.3: strip CR,
// LF, TAB and trailing spaces, and prefix with '/' if missing. Applied to
// every outbound resource path — the dispatcher resources are hardcoded
// constants today, but nothing downstream assumes that stays true, so
// hygiene is enforced here rather than trusted away.
func SanitizePath(p string) string {
	p = strings.NewReplacer("\r", "", "\n", "", "\t", "").Replace(p)
	p = strings.TrimRight(p, " ")
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return p
}

func newToken() []byte {
	tok := make([]byte, 8)
	rand.Read(tok)
	return tok
}
