// Package validate implements the Dispatcher's request validation
// (spec §4.6): per-resource field checks plus the semantic checks that
// apply to each resource (floor range for floor calls and cabin requests,
// direction enum for floor calls, requesting-car presence for cabin
// requests and emergencies).
package validate

import (
	"fmt"

	"github.com/liftmesh/liftmesh/internal/protocol"
)

// MinFloor and MaxFloor bound every floor number per spec §4.6.
const (
	MinFloor = 1
	MaxFloor = 50
)

// Error is a structured validation failure naming the expected field.
type Error struct {
	Field   string
	Message string
}

func (e *Error) Error() string { return fmt.Sprintf("%s: %s", e.Field, e.Message) }

// FloorCall validates a FloorCallRequest per spec §4.6 and the boundary
// cases in spec §8 (9, 10).
func FloorCall(req *protocol.FloorCallRequest) *Error {
	if req.BuildingID == "" {
		return &Error{"id_edificio", "required"}
	}
	if req.OriginFloor < MinFloor || req.OriginFloor > MaxFloor {
		return &Error{"piso_origen_llamada", fmt.Sprintf("must be in [%d, %d]", MinFloor, MaxFloor)}
	}
	if req.Direction != protocol.DirectionUp && req.Direction != protocol.DirectionDown {
		return &Error{"direccion_llamada", "must be SUBIENDO or BAJANDO"}
	}
	return nil
}

// CabinRequest validates a CabinRequest per spec §4.6, including the
// requesting-car-present-in-snapshot check (spec §8.11).
func CabinRequest(req *protocol.CabinRequest) *Error {
	if req.BuildingID == "" {
		return &Error{"id_edificio", "required"}
	}
	if req.RequestingCarID == "" {
		return &Error{"solicitando_ascensor_id", "required"}
	}
	if req.TargetFloor < MinFloor || req.TargetFloor > MaxFloor {
		return &Error{"piso_destino_solicitud", fmt.Sprintf("must be in [%d, %d]", MinFloor, MaxFloor)}
	}
	found := false
	for _, o := range req.Elevators {
		if o.ID == req.RequestingCarID {
			found = true
			break
		}
	}
	if !found {
		return &Error{"solicitando_ascensor_id", "must appear in elevadores_estado"}
	}
	return nil
}

// Emergency validates an EmergencyRequest, reusing the cabin path's
// requesting-car-presence rule since an emergency also names a specific car.
func Emergency(req *protocol.EmergencyRequest) *Error {
	if req.BuildingID == "" {
		return &Error{"id_edificio", "required"}
	}
	if req.RequestingCarID == "" {
		return &Error{"solicitando_ascensor_id", "required"}
	}
	if req.EmergencyKind == "" {
		return &Error{"tipo_emergencia", "required"}
	}
	found := false
	for _, o := range req.Elevators {
		if o.ID == req.RequestingCarID {
			found = true
			break
		}
	}
	if !found {
		return &Error{"solicitando_ascensor_id", "must appear in elevadores_estado"}
	}
	return nil
}

// ContentFormat validates the CoAP content-format option per spec §8.12:
// absent defaults to JSON; present and not JSON is UNSUPPORTED-MEDIA.
func ContentFormat(present bool, value int64) bool {
	if !present {
		return true
	}
	return value == protocol.ContentFormatJSON
}
