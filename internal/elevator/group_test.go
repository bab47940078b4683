package elevator

import "testing"

func TestInitPopulatesFixedGroup(t *testing.T) {
	g := Init("E1", 4, 20)
	if g.Len() != 4 {
		t.Fatalf("got %d cars, want 4", g.Len())
	}
	c, ok := g.Car(1)
	if !ok {
		t.Fatalf("car at index 1 not found")
	}
	if c.ID != "E1A2" {
		t.Errorf("got id %q, want E1A2", c.ID)
	}
	if c.Current != 1 || c.Door != DoorClosed || c.Motion != MotionStopped || !c.Available {
		t.Errorf("got unexpected initial state %+v", c)
	}
	if c.Target != NoTarget {
		t.Errorf("got target %d, want NoTarget", c.Target)
	}
}

func TestAssignTaskSetsMotionFromTarget(t *testing.T) {
	g := Init("E1", 1, 20)
	g.AssignTask("E1A1", "T_1", 5, MotionStopped)
	c, _, _ := g.ByID("E1A1")
	if c.Motion != MotionUp {
		t.Errorf("got motion %s, want UP", c.Motion)
	}
	if c.Available {
		t.Errorf("car should no longer be available")
	}
	if c.TaskID != "T_1" || c.Target != 5 {
		t.Errorf("got task/target %q/%d, want T_1/5", c.TaskID, c.Target)
	}
}

func TestAssignTaskUnknownCarLogsAndDoesNotPanic(t *testing.T) {
	g := Init("E1", 1, 20)
	g.AssignTask("E1A9", "T_1", 5, MotionStopped)
	// No assertion beyond "did not panic" — spec §4.5 says fail silently.
}

// TestTickAdvancesOneFloorPerStep covers spec §8.6 and the S5 scenario:
// a car at floor 3 targeting 5 completes after exactly 2 ticks.
func TestTickAdvancesOneFloorPerStep(t *testing.T) {
	g := Init("E1", 1, 20)
	g.AssignTask("E1A1", "T_1", 5, MotionStopped)
	c, _, _ := g.ByID("E1A1")
	c.Current = 3
	g.cars[0] = c

	g.Tick() // closes door (no-op, already closed) and advances to 4
	if got, _, _ := g.ByID("E1A1"); got.Current != 4 {
		t.Fatalf("after tick 1, got floor %d, want 4", got.Current)
	}

	g.Tick() // advances to 5 and completes
	got, _, _ := g.ByID("E1A1")
	if got.Current != 5 {
		t.Fatalf("after tick 2, got floor %d, want 5", got.Current)
	}
	if !got.Available || got.TaskID != "" || got.Target != NoTarget || got.Motion != MotionStopped {
		t.Errorf("got %+v, want completed task state", got)
	}
	if got.Door != DoorOpen {
		t.Errorf("got door %s, want OPEN after completion", got.Door)
	}
}

func TestValidateCatchesAvailableWithTask(t *testing.T) {
	g := Init("E1", 1, 20)
	g.cars[0].Available = true
	g.cars[0].TaskID = "T_1"
	if err := g.Validate(); err == nil {
		t.Fatalf("expected invariant violation, got nil")
	}
}

func TestValidateCatchesMovingWithOpenDoor(t *testing.T) {
	g := Init("E1", 1, 20)
	g.cars[0].Motion = MotionUp
	g.cars[0].Door = DoorOpen
	g.cars[0].Target = 5
	if err := g.Validate(); err == nil {
		t.Fatalf("expected invariant violation, got nil")
	}
}
