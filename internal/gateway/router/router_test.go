package router

import (
	"encoding/json"
	"testing"

	"github.com/liftmesh/liftmesh/internal/elevator"
	"github.com/liftmesh/liftmesh/internal/fieldbus"
	"github.com/liftmesh/liftmesh/internal/gateway/correlation"
	"github.com/liftmesh/liftmesh/internal/protocol"
)

func newRouter() (*Router, *correlation.Table, *elevator.Group) {
	g := elevator.Init("E1", 4, 20)
	tbl := correlation.New(correlation.DefaultCapacity)
	return &Router{Table: tbl, Group: g}, tbl, g
}

// TestRouteSuccessFieldBusOrigin covers scenario S1's response side:
// id = origin+1, data[0] = car index, followed by task id bytes.
func TestRouteSuccessFieldBusOrigin(t *testing.T) {
	r, tbl, g := newRouter()
	tbl.Register([]byte{1, 2}, correlation.Tracker{
		Origin:      correlation.Origin{HasFieldBusFrame: true, FieldBusFrameID: 0x100},
		Kind:        correlation.KindFloorCall,
		TargetFloor: 4,
	})

	body, _ := json.Marshal(protocol.SuccessResponse{TaskID: "T_123", AssignedCarID: "E1A2"})
	result := r.Route([]byte{1, 2}, protocol.CodeSuccess, body)

	if result == nil || result.OutboundFrame == nil {
		t.Fatalf("expected an outbound frame")
	}
	f := result.OutboundFrame
	if f.ID != 0x101 {
		t.Errorf("got frame id %#x, want 0x101", f.ID)
	}
	if f.Payload()[0] != 1 {
		t.Errorf("got car index byte %d, want 1 (E1A2)", f.Payload()[0])
	}
	if string(f.Payload()[1:]) != "T_123" {
		t.Errorf("got task id bytes %q, want T_123", f.Payload()[1:])
	}

	c, _, _ := g.ByID("E1A2")
	if c.Available || c.TaskID != "T_123" || c.Target != 4 {
		t.Errorf("got car state %+v, want assigned", c)
	}

	if _, ok := tbl.Find([]byte{1, 2}); ok {
		t.Errorf("expected tracker to be removed after routing")
	}
}

// TestRouteFailureEmitsErrorFrame covers scenario S2's response side.
func TestRouteFailureEmitsErrorFrame(t *testing.T) {
	r, tbl, _ := newRouter()
	tbl.Register([]byte{9}, correlation.Tracker{
		Origin: correlation.Origin{HasFieldBusFrame: true, FieldBusFrameID: 0x100},
		Kind:   correlation.KindFloorCall,
	})

	body, _ := json.Marshal(protocol.ErrorResponse{Error: "No elevators available at the moment."})
	result := r.Route([]byte{9}, protocol.CodeServiceExhausted, body)

	if result == nil || result.OutboundFrame == nil {
		t.Fatalf("expected an outbound error frame")
	}
	f := result.OutboundFrame
	if f.ID != fieldbus.FrameError {
		t.Errorf("got frame id %#x, want 0xFE", f.ID)
	}
	if f.Payload()[0] != 0x00 {
		t.Errorf("got origin byte %#x, want 0x00 (0x100 & 0xFF)", f.Payload()[0])
	}
	if f.Payload()[1] != fieldbus.ErrDispatcherFail {
		t.Errorf("got error code %#x, want 0x02", f.Payload()[1])
	}
}

func TestRouteUnknownTokenDropsAndReturnsNil(t *testing.T) {
	r, _, _ := newRouter()
	body, _ := json.Marshal(protocol.SuccessResponse{TaskID: "T_1", AssignedCarID: "E1A1"})
	if result := r.Route([]byte{0xFF}, protocol.CodeSuccess, body); result != nil {
		t.Fatalf("expected nil result for unknown token, got %+v", result)
	}
}

func TestRouteMalformedSuccessBodyEmitsCode3(t *testing.T) {
	r, tbl, _ := newRouter()
	tbl.Register([]byte{1}, correlation.Tracker{
		Origin: correlation.Origin{HasFieldBusFrame: true, FieldBusFrameID: 0x200},
	})
	result := r.Route([]byte{1}, protocol.CodeSuccess, []byte("not json"))
	if result == nil || result.OutboundFrame == nil {
		t.Fatalf("expected an outbound error frame")
	}
	if result.OutboundFrame.Payload()[1] != fieldbus.ErrMalformedBody {
		t.Errorf("got error code %#x, want 0x03", result.OutboundFrame.Payload()[1])
	}
}
