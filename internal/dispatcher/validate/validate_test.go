package validate

import (
	"testing"

	"github.com/liftmesh/liftmesh/internal/protocol"
)

func TestFloorCallRejectsOutOfRangeOrigin(t *testing.T) {
	cases := []int{0, 51}
	for _, floor := range cases {
		req := &protocol.FloorCallRequest{
			BuildingID: "E1", OriginFloor: floor, Direction: protocol.DirectionUp,
		}
		if err := FloorCall(req); err == nil {
			t.Errorf("floor %d: expected validation error, got nil", floor)
		}
	}
}

func TestFloorCallRejectsBadDirection(t *testing.T) {
	req := &protocol.FloorCallRequest{
		BuildingID: "E1", OriginFloor: 4, Direction: "UP",
	}
	if err := FloorCall(req); err == nil {
		t.Fatalf("expected validation error for direction \"UP\"")
	}
}

func TestFloorCallAcceptsValidRequest(t *testing.T) {
	req := &protocol.FloorCallRequest{
		BuildingID: "E1", OriginFloor: 4, Direction: protocol.DirectionUp,
	}
	if err := FloorCall(req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCabinRequestRejectsUnknownCar(t *testing.T) {
	req := &protocol.CabinRequest{
		BuildingID:      "E1",
		RequestingCarID: "E1A9",
		TargetFloor:     7,
		Elevators: []protocol.ObservationWire{
			{ID: "E1A1"}, {ID: "E1A2"},
		},
	}
	if err := CabinRequest(req); err == nil {
		t.Fatalf("expected validation error for car absent from snapshot")
	}
}

func TestCabinRequestAcceptsKnownCar(t *testing.T) {
	req := &protocol.CabinRequest{
		BuildingID:      "E1",
		RequestingCarID: "E1A3",
		TargetFloor:     7,
		Elevators: []protocol.ObservationWire{
			{ID: "E1A1"}, {ID: "E1A3"},
		},
	}
	if err := CabinRequest(req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestContentFormatDefaultsToJSONWhenAbsent(t *testing.T) {
	if !ContentFormat(false, 0) {
		t.Fatalf("expected absent content-format to default to accepted")
	}
}

func TestContentFormatRejectsNonJSON(t *testing.T) {
	if ContentFormat(true, 99) {
		t.Fatalf("expected non-JSON content-format to be rejected")
	}
}

func TestContentFormatAcceptsJSON(t *testing.T) {
	if !ContentFormat(true, protocol.ContentFormatJSON) {
		t.Fatalf("expected application/json content-format to be accepted")
	}
}
