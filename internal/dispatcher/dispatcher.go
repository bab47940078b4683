// Package dispatcher wires request validation, assignment policy, and
// task id minting into the three CoAP resource handlers spec §4.6 and §6
// describe. The dispatcher retains no state beyond its key pool and the
// task id minter's monotonicity guard (spec §4.6, §9).
package dispatcher

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/plgd-dev/go-coap/v2/message/codes"

	"github.com/liftmesh/liftmesh/internal/dispatcher/policy"
	"github.com/liftmesh/liftmesh/internal/dispatcher/taskid"
	"github.com/liftmesh/liftmesh/internal/dispatcher/validate"
	"github.com/liftmesh/liftmesh/internal/metrics"
	"github.com/liftmesh/liftmesh/internal/protocol"
	"github.com/liftmesh/liftmesh/internal/transport/coap"
)

// Dispatcher answers the three dispatcher resources. It is safe for
// concurrent use: it holds no mutable state beyond the task id minter,
// which is itself internally synchronized.
type Dispatcher struct {
	Minter *taskid.Minter
}

// New builds a Dispatcher.
func New() *Dispatcher {
	return &Dispatcher{Minter: taskid.NewMinter()}
}

// Routes returns the resource-path-to-handler map for coap.NewServer.
func (d *Dispatcher) Routes() map[string]coap.HandlerFunc {
	return map[string]coap.HandlerFunc{
		protocol.PathFloorCall: d.handleFloorCall,
		protocol.PathCabinCall: d.handleCabinRequest,
		protocol.PathEmergency: d.handleEmergency,
	}
}

func (d *Dispatcher) handleFloorCall(ctx context.Context, r coap.Request) (codes.Code, []byte) {
	start := time.Now()
	traceID := policy.RequestTraceID()
	defer func() { metrics.AssignmentLatency.Observe(time.Since(start).Seconds()) }()

	if fail, code, body := boundaryCheck(r, traceID, "floor_call"); fail {
		return code, body
	}

	var req protocol.FloorCallRequest
	if err := json.Unmarshal(r.Body, &req); err != nil {
		return validationFailure("id_edificio", "request body is not valid JSON")
	}
	if verr := validate.FloorCall(&req); verr != nil {
		return validationFailure(verr.Field, verr.Message)
	}

	carID, err := policy.AssignFloorCall(req.OriginFloor, req.Direction, req.Elevators)
	if err != nil {
		metrics.AssignmentsTotal.WithLabelValues("floor_call", "exhausted").Inc()
		slog.Warn("dispatcher: floor call exhausted", "trace_id", traceID, "building", req.BuildingID)
		body, _ := json.Marshal(protocol.ErrorResponse{
			Error:       "No elevators available at the moment.",
			Building:    req.BuildingID,
			OriginFloor: req.OriginFloor,
		})
		return protocol.CodeServiceExhausted, body
	}

	return d.respondSuccess(carID, "floor_call", traceID)
}

func (d *Dispatcher) handleCabinRequest(ctx context.Context, r coap.Request) (codes.Code, []byte) {
	start := time.Now()
	traceID := policy.RequestTraceID()
	defer func() { metrics.AssignmentLatency.Observe(time.Since(start).Seconds()) }()

	if fail, code, body := boundaryCheck(r, traceID, "cabin_request"); fail {
		return code, body
	}

	var req protocol.CabinRequest
	if err := json.Unmarshal(r.Body, &req); err != nil {
		return validationFailure("id_edificio", "request body is not valid JSON")
	}
	if verr := validate.CabinRequest(&req); verr != nil {
		return validationFailure(verr.Field, verr.Message)
	}

	carID := policy.AssignCabinRequest(req.RequestingCarID)
	return d.respondSuccess(carID, "cabin_request", traceID)
}

func (d *Dispatcher) handleEmergency(ctx context.Context, r coap.Request) (codes.Code, []byte) {
	traceID := policy.RequestTraceID()
	if fail, code, body := boundaryCheck(r, traceID, "emergency"); fail {
		return code, body
	}

	var req protocol.EmergencyRequest
	if err := json.Unmarshal(r.Body, &req); err != nil {
		return validationFailure("id_edificio", "request body is not valid JSON")
	}
	if verr := validate.Emergency(&req); verr != nil {
		return validationFailure(verr.Field, verr.Message)
	}
	// Emergencies route through the same assign-the-requesting-car rule
	// as cabin requests: the car that raised the emergency is the car
	// the dispatcher acknowledges.
	carID := policy.AssignCabinRequest(req.RequestingCarID)
	return d.respondSuccess(carID, "emergency", traceID)
}

// boundaryCheck applies spec §7's AUTHORIZATION and UNSUPPORTED-MEDIA
// classes ahead of any body parsing, per the boundary cases in spec §8.12.
func boundaryCheck(r coap.Request, traceID, resource string) (fail bool, code codes.Code, body []byte) {
	if !r.Authorized {
		slog.Warn("dispatcher: unauthorized request", "trace_id", traceID, "resource", resource)
		metrics.AssignmentsTotal.WithLabelValues(resource, "unauthorized").Inc()
		errBody, _ := json.Marshal(protocol.ErrorResponse{Error: "request did not arrive over an authorized session"})
		return true, protocol.CodeUnauthorized, errBody
	}
	if !validate.ContentFormat(r.ContentFormatSet, r.ContentFormat) {
		slog.Warn("dispatcher: unsupported content format", "trace_id", traceID, "resource", resource, "content_format", r.ContentFormat)
		metrics.AssignmentsTotal.WithLabelValues(resource, "unsupported_media").Inc()
		errBody, _ := json.Marshal(protocol.ErrorResponse{Error: "content-format must be application/json"})
		return true, protocol.CodeUnsupportedMedia, errBody
	}
	return false, 0, nil
}

func (d *Dispatcher) respondSuccess(carID, resource, traceID string) (codes.Code, []byte) {
	id := d.Minter.Mint()
	if id == "" {
		slog.Error("dispatcher: task id minter returned empty id", "trace_id", traceID, "resource", resource)
		metrics.AssignmentsTotal.WithLabelValues(resource, "internal_error").Inc()
		body, _ := json.Marshal(protocol.ErrorResponse{Error: "internal: could not mint task id"})
		return protocol.CodeInternal, body
	}
	metrics.AssignmentsTotal.WithLabelValues(resource, "success").Inc()
	slog.Info("dispatcher: assigned task", "trace_id", traceID, "resource", resource, "car_id", carID, "task_id", id)
	body, err := json.Marshal(protocol.SuccessResponse{TaskID: id, AssignedCarID: carID})
	if err != nil {
		slog.Error("dispatcher: could not serialize response", "trace_id", traceID, "err", err)
		metrics.AssignmentsTotal.WithLabelValues(resource, "internal_error").Inc()
		errBody, _ := json.Marshal(protocol.ErrorResponse{Error: "internal: could not serialize response"})
		return protocol.CodeInternal, errBody
	}
	return protocol.CodeSuccess, body
}

func validationFailure(field, message string) (codes.Code, []byte) {
	body, _ := json.Marshal(protocol.ErrorResponse{Error: field + ": " + message})
	return protocol.CodeValidationError, body
}
