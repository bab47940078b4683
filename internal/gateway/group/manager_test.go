package group

import (
	"testing"
	"time"

	"github.com/liftmesh/liftmesh/internal/elevator"
)

func TestMaybeTickRespectsInterval(t *testing.T) {
	g := elevator.Init("E1", 1, 20)
	g.AssignTask("E1A1", "T_1", 5, elevator.MotionStopped)
	m := New(g)

	now := time.Unix(1700000000, 0)
	m.Now = func() time.Time { return now }
	m.lastTick = now

	if m.MaybeTick() {
		t.Fatalf("expected no tick before TickInterval elapses")
	}

	now = now.Add(TickInterval)
	m.Now = func() time.Time { return now }
	if !m.MaybeTick() {
		t.Fatalf("expected a tick once TickInterval elapses")
	}

	c, _, _ := g.ByID("E1A1")
	if c.Current != 2 {
		t.Errorf("got floor %d after one tick, want 2", c.Current)
	}
}
