package elevator

import (
	"fmt"
	"log/slog"
)

// Group is the fixed-size, ordered collection of Cars belonging to one
// building. It is the single source of truth for fleet state on the
// gateway; the dispatcher only ever sees a Group's Observations.
//
// A Group is not safe for concurrent use. The single-loop cooperative
// model described for the gateway event loop is what makes that safe in
// practice: only the event loop ever calls AssignTask or Tick.
type Group struct {
	Building string
	Floors   int
	cars     []Car
}

// Init builds a Group of nCars cars for building, each starting at floor 1,
// doors closed, stopped, available, with no task.
func Init(building string, nCars, nFloors int) *Group {
	g := &Group{Building: building, Floors: nFloors, cars: make([]Car, nCars)}
	for i := range g.cars {
		g.cars[i] = Car{
			ID:        CarID(building, i+1),
			Current:   1,
			Door:      DoorClosed,
			Motion:    MotionStopped,
			Available: true,
			TaskID:    "",
			Target:    NoTarget,
		}
	}
	return g
}

// Len returns the number of cars in the group.
func (g *Group) Len() int { return len(g.cars) }

// Car returns a copy of the car at index i (0-based, insertion order).
func (g *Group) Car(i int) (Car, bool) {
	if i < 0 || i >= len(g.cars) {
		return Car{}, false
	}
	return g.cars[i], true
}

// ByID returns a copy of the car with the given id and its index.
func (g *Group) ByID(id string) (Car, int, bool) {
	for i := range g.cars {
		if g.cars[i].ID == id {
			return g.cars[i], i, true
		}
	}
	return Car{}, -1, false
}

// Observations returns the ordered snapshot view of every car, in
// insertion order, suitable for inclusion in a dispatch snapshot.
func (g *Group) Observations() []Observation {
	out := make([]Observation, len(g.cars))
	for i := range g.cars {
		out[i] = g.cars[i].Observe()
	}
	return out
}

// AssignTask locates carID and attaches a task to it, per spec §4.5. It
// fails silently (with a log line) if no such car exists — the caller
// has already committed to the response and has no recovery path.
func (g *Group) AssignTask(carID, taskID string, target int, directionHint Motion) {
	for i := range g.cars {
		c := &g.cars[i]
		if c.ID != carID {
			continue
		}
		c.TaskID = taskID
		c.Target = target
		c.Available = false
		switch {
		case target > c.Current:
			c.Motion = MotionUp
		case target < c.Current:
			c.Motion = MotionDown
		case directionHint == MotionUp || directionHint == MotionDown:
			c.Motion = directionHint
		default:
			c.Motion = MotionStopped
		}
		return
	}
	slog.Warn("group: assign_task on unknown car", "building", g.Building, "car_id", carID)
}

// Tick advances every busy car one floor toward its target and completes
// tasks that have arrived, per spec §4.5.
func (g *Group) Tick() {
	for i := range g.cars {
		c := &g.cars[i]
		if c.Available || c.Target == NoTarget {
			continue
		}
		if c.Current == c.Target {
			g.completeTask(c)
			continue
		}
		c.Door = DoorClosed
		if c.Motion == MotionStopped || c.Motion == MotionUnknown {
			if c.Target > c.Current {
				c.Motion = MotionUp
			} else {
				c.Motion = MotionDown
			}
		}
		if c.Motion == MotionUp {
			c.Current++
		} else {
			c.Current--
		}
		if c.Current == c.Target {
			g.completeTask(c)
		}
	}
}

func (g *Group) completeTask(c *Car) {
	completedTask, completedTarget := c.TaskID, c.Target
	c.Door = DoorOpen
	c.Available = true
	c.Motion = MotionStopped
	c.Target = NoTarget
	slog.Info("group: task completed",
		"building", g.Building, "car_id", c.ID,
		"task_id", completedTask, "floor", completedTarget)
	c.TaskID = ""
}

// Validate checks the structural invariants from spec §3. It is used by
// tests, never by the tick loop itself (which is constructed to never
// violate them).
func (g *Group) Validate() error {
	for _, c := range g.cars {
		if c.Available && (c.TaskID != "" || c.Target != NoTarget) {
			return fmt.Errorf("elevator: car %s available but has task/target", c.ID)
		}
		if (c.Motion == MotionUp || c.Motion == MotionDown) && (c.Door != DoorClosed || c.Target == c.Current) {
			return fmt.Errorf("elevator: car %s moving with open door or zero delta", c.ID)
		}
	}
	return nil
}
