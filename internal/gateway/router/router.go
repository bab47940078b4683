// Package router implements the Response Router (spec §4.4): takes each
// Dispatcher response and delivers its outcome to the origin that
// requested it, applying successful assignments to the Group State
// Manager and synthesizing field-bus frames on both success and failure.
package router

import (
	"encoding/json"
	"log/slog"
	"strconv"
	"strings"

	"github.com/plgd-dev/go-coap/v2/message/codes"

	"github.com/liftmesh/liftmesh/internal/elevator"
	"github.com/liftmesh/liftmesh/internal/fieldbus"
	"github.com/liftmesh/liftmesh/internal/gateway/correlation"
	"github.com/liftmesh/liftmesh/internal/protocol"
)

// GatewayReply is what the router produces for a gateway-resource-
// originated request (as opposed to a field-bus frame), carrying the
// session/message id to reply to directly.
type GatewayReply struct {
	SessionHandle string
	MessageID     uint16
	Code          codes.Code
	Body          []byte
}

// Result is everything the router produced for one response: at most one
// of OutboundFrame / GatewayReply is set, depending on the tracker's
// origin.
type Result struct {
	OutboundFrame *fieldbus.Frame
	GatewayReply  *GatewayReply
}

// Router wires the Correlation Table to the Group it mutates on success.
type Router struct {
	Table *correlation.Table
	Group *elevator.Group
}

// Route implements spec §4.4's algorithm for one response.
func (r *Router) Route(token []byte, code codes.Code, body []byte) *Result {
	tracker, ok := r.Table.Find(token)
	if !ok {
		slog.Info("router: response for unknown or evicted token, dropping")
		return nil
	}
	defer r.Table.Remove(token)

	if isSuccessCode(code) {
		var resp protocol.SuccessResponse
		if len(body) == 0 {
			return r.fail(tracker, fieldbus.ErrMissingBody)
		}
		if err := json.Unmarshal(body, &resp); err != nil || resp.TaskID == "" || resp.AssignedCarID == "" {
			return r.fail(tracker, fieldbus.ErrMalformedBody)
		}
		r.applyAssignment(tracker, resp)
		return r.succeed(tracker, resp)
	}

	return r.fail(tracker, fieldbus.ErrDispatcherFail)
}

func isSuccessCode(c codes.Code) bool { return c == protocol.CodeSuccess }

func (r *Router) applyAssignment(t correlation.Tracker, resp protocol.SuccessResponse) {
	hint := elevator.MotionStopped
	if t.Direction == string(protocol.DirectionUp) {
		hint = elevator.MotionUp
	} else if t.Direction == string(protocol.DirectionDown) {
		hint = elevator.MotionDown
	}
	r.Group.AssignTask(resp.AssignedCarID, resp.TaskID, t.TargetFloor, hint)
}

func (r *Router) succeed(t correlation.Tracker, resp protocol.SuccessResponse) *Result {
	if t.Origin.HasFieldBusFrame {
		payload := make([]byte, 0, 1+len(resp.TaskID))
		payload = append(payload, carIndexByte(resp.AssignedCarID))
		payload = append(payload, []byte(resp.TaskID)...)
		frame := fieldbus.NewFrame(t.Origin.FieldBusFrameID+1, payload)
		return &Result{OutboundFrame: &frame}
	}
	body, _ := json.Marshal(resp)
	return &Result{GatewayReply: &GatewayReply{
		SessionHandle: t.Origin.SessionHandle,
		MessageID:     t.Origin.MessageID,
		Code:          protocol.CodeSuccess,
		Body:          body,
	}}
}

func (r *Router) fail(t correlation.Tracker, code byte) *Result {
	if t.Origin.HasFieldBusFrame {
		frame := fieldbus.NewFrame(fieldbus.FrameError, []byte{
			byte(t.Origin.FieldBusFrameID & 0xFF),
			code,
		})
		return &Result{OutboundFrame: &frame}
	}
	respCode := protocol.CodeInternal
	switch code {
	case fieldbus.ErrDispatcherFail:
		respCode = protocol.CodeServiceExhausted
	case fieldbus.ErrMalformedBody:
		respCode = protocol.CodeInternal
	case fieldbus.ErrMissingBody:
		respCode = protocol.CodeInternal
	}
	body, _ := json.Marshal(protocol.ErrorResponse{Error: "dispatcher response could not be processed"})
	return &Result{GatewayReply: &GatewayReply{
		SessionHandle: t.Origin.SessionHandle,
		MessageID:     t.Origin.MessageID,
		Code:          respCode,
		Body:          body,
	}}
}

// carIndexByte parses the trailing integer in a car id ("E1A3" -> 2,
// 0-based) per spec §4.4, returning 0xFF if unparsable.
func carIndexByte(carID string) byte {
	idx := strings.LastIndexAny(carID, "A")
	if idx < 0 || idx+1 >= len(carID) {
		return 0xFF
	}
	n, err := strconv.Atoi(carID[idx+1:])
	if err != nil || n < 1 {
		return 0xFF
	}
	return byte(n - 1)
}
