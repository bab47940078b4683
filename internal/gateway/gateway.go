// Package gateway wires the Secure Session Manager, Correlation Table,
// Outbound Request Builder, Response Router, and Elevator Group State
// Manager into the single cooperative event loop spec §2 and §5 describe:
// pump field-bus I/O for a bounded window, then perform one tick.
package gateway

import (
	"context"
	"log/slog"
	"time"

	"github.com/liftmesh/liftmesh/internal/elevator"
	"github.com/liftmesh/liftmesh/internal/fieldbus"
	"github.com/liftmesh/liftmesh/internal/gateway/correlation"
	"github.com/liftmesh/liftmesh/internal/gateway/escalation"
	"github.com/liftmesh/liftmesh/internal/gateway/group"
	"github.com/liftmesh/liftmesh/internal/gateway/requestbuilder"
	"github.com/liftmesh/liftmesh/internal/gateway/router"
	"github.com/liftmesh/liftmesh/internal/gateway/session"
	"github.com/liftmesh/liftmesh/internal/protocol"
)

// IOWindow is the bounded window the gateway's event loop spends pumping
// field-bus I/O before performing one deterministic step of local work
// (spec §5: "≈100ms on the gateway").
const IOWindow = 100 * time.Millisecond

// Gateway is one building's complete request pipeline.
type Gateway struct {
	Bus        fieldbus.SourceSink
	Group      *elevator.Group
	GroupMgr   *group.Manager
	Sessions   *session.Manager
	Table      *correlation.Table
	Builder    *requestbuilder.Builder
	Router     *router.Router
	Escalation *escalation.Engine
}

// New assembles a Gateway from its building's group and configuration.
func New(bus fieldbus.SourceSink, g *elevator.Group, sessions *session.Manager, esc *escalation.Engine) *Gateway {
	table := correlation.New(correlation.DefaultCapacity)
	rt := &router.Router{Table: table, Group: g}
	return &Gateway{
		Bus:        bus,
		Group:      g,
		GroupMgr:   group.New(g),
		Sessions:   sessions,
		Table:      table,
		Builder:    &requestbuilder.Builder{Sessions: sessions, Table: table, Group: g, Router: rt},
		Router:     rt,
		Escalation: esc,
	}
}

// Run pumps the field-bus for IOWindow and ticks once, repeating until
// ctx is done. It never spawns extra goroutines for group/table/session
// mutation, preserving the single-loop invariant spec §5 relies on.
func (g *Gateway) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			g.shutdown()
			return
		default:
		}

		windowCtx, cancel := context.WithTimeout(ctx, IOWindow)
		frame, err := g.Bus.Recv(windowCtx)
		cancel()
		if err == nil {
			g.handleFrame(ctx, frame)
		}

		g.GroupMgr.MaybeTick()
	}
}

func (g *Gateway) shutdown() {
	g.Sessions.Release()
	g.Table.Drain()
	slog.Info("gateway: shutdown complete", "building", g.Group.Building)
}

func (g *Gateway) handleFrame(ctx context.Context, f fieldbus.Frame) {
	switch f.ID {
	case fieldbus.FrameFloorCall:
		g.handleFloorCall(ctx, f)
	case fieldbus.FrameCabinCall:
		g.handleCabinCall(ctx, f)
	case fieldbus.FrameArrival:
		g.handleArrival(f)
	case fieldbus.FrameEmergency:
		g.handleEmergency(ctx, f)
	default:
		slog.Warn("gateway: unknown frame id", "id", f.ID)
	}
}

func (g *Gateway) handleFloorCall(ctx context.Context, f fieldbus.Frame) {
	payload := f.Payload()
	if len(payload) < 2 {
		return
	}
	originFloor := int(payload[0])
	direction := string(protocol.DirectionUp)
	if payload[1] == fieldbus.DirByteDown {
		direction = string(protocol.DirectionDown)
	}

	result := g.Builder.Build(ctx, requestbuilder.Event{
		Kind:        correlation.KindFloorCall,
		OriginFloor: originFloor,
		TargetFloor: originFloor,
		Direction:   direction,
	}, correlation.Origin{HasFieldBusFrame: true, FieldBusFrameID: f.ID})

	g.applyResult(ctx, f.ID, result)
}

func (g *Gateway) handleCabinCall(ctx context.Context, f fieldbus.Frame) {
	payload := f.Payload()
	if len(payload) < 2 {
		return
	}
	carIdx := int(payload[0])
	targetFloor := int(payload[1])
	car, ok := g.Group.Car(carIdx)
	if !ok {
		slog.Warn("gateway: cabin call for unknown car index", "index", carIdx)
		return
	}

	result := g.Builder.Build(ctx, requestbuilder.Event{
		Kind:            correlation.KindCabinRequest,
		TargetFloor:     targetFloor,
		RequestingCarID: car.ID,
	}, correlation.Origin{HasFieldBusFrame: true, FieldBusFrameID: f.ID})

	g.applyResult(ctx, f.ID, result)
}

func (g *Gateway) handleArrival(f fieldbus.Frame) {
	payload := f.Payload()
	if len(payload) < 2 {
		return
	}
	// Arrival notices are informational only; the group's own tick loop
	// is authoritative for position (spec §4.5). No action required.
}

func (g *Gateway) handleEmergency(ctx context.Context, f fieldbus.Frame) {
	payload := f.Payload()
	if len(payload) < 3 {
		return
	}
	carIdx := int(payload[0])
	currentFloor := int(payload[1])
	emergencyKind := emergencyKindName(payload[2])

	car, ok := g.Group.Car(carIdx)
	if !ok {
		slog.Warn("gateway: emergency for unknown car index", "index", carIdx)
		return
	}

	if g.Escalation != nil {
		g.Escalation.Observe(escalation.Event{
			Building:      g.Group.Building,
			CarID:         car.ID,
			CurrentFloor:  currentFloor,
			EmergencyKind: emergencyKind,
		})
	}

	result := g.Builder.Build(ctx, requestbuilder.Event{
		Kind:            correlation.KindEmergency,
		OriginFloor:     currentFloor,
		RequestingCarID: car.ID,
		EmergencyKind:   emergencyKind,
	}, correlation.Origin{HasFieldBusFrame: true, FieldBusFrameID: f.ID})

	g.applyResult(ctx, f.ID, result)
}

func emergencyKindName(b byte) string {
	switch b {
	case 1:
		return "entrapment"
	case 2:
		return "fire"
	default:
		return "unknown"
	}
}

func (g *Gateway) emitTransportFailure(ctx context.Context, originFrameID uint16) {
	frame := fieldbus.NewFrame(fieldbus.FrameError, []byte{
		byte(originFrameID & 0xFF),
		fieldbus.ErrDispatcherFail,
	})
	_ = g.Bus.Send(ctx, frame)
}

// applyResult emits whatever the Builder/Router pipeline produced for a
// field-bus-originated request: the routed outbound frame on success, or
// a synthesized transport-failure frame when the round trip never
// produced a result at all (no session, bad payload, dispatch error, or
// an unknown/evicted token). GatewayReply is left untouched here — it
// only applies to gateway-resource-originated requests, which the CoAP
// server transport replies to directly, keyed on SessionHandle/MessageID.
func (g *Gateway) applyResult(ctx context.Context, originFrameID uint16, result *router.Result) {
	if result == nil {
		g.emitTransportFailure(ctx, originFrameID)
		return
	}
	if result.OutboundFrame != nil {
		_ = g.Bus.Send(ctx, *result.OutboundFrame)
	}
}
