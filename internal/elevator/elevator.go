// Package elevator holds the canonical in-memory representation of one
// building's elevator group: the per-car state machine and the fixed-size
// group that owns it. Only the gateway's group state manager (see
// internal/gateway/group) mutates these types; the dispatcher only ever
// reads a point-in-time copy serialized into a dispatch snapshot.
package elevator

import "fmt"

// DoorState is the discrete door position of one car.
type DoorState string

const (
	DoorOpen    DoorState = "OPEN"
	DoorClosing DoorState = "CLOSING"
	DoorClosed  DoorState = "CLOSED"
	DoorOpening DoorState = "OPENING"
)

// Motion is the discrete direction of travel of one car.
type Motion string

const (
	MotionStopped Motion = "STOPPED"
	MotionUp      Motion = "UP"
	MotionDown    Motion = "DOWN"
	MotionUnknown Motion = "UNKNOWN"
)

// NoTarget is the sentinel target floor for a car with no assigned task.
const NoTarget = -1

// Car is one elevator cabin within a Group.
//
// Invariants (hold after every Group.Tick; callers never mutate fields
// directly). Group.AssignTask sets Motion without touching Door, so a car
// assigned while its door is open breaks the second invariant until the
// next Tick closes the door:
//
//	Available == true  implies TaskID == "" && Target == NoTarget
//	Motion == Up/Down  implies Door == Closed && Target != Current
type Car struct {
	ID        string
	Current   int
	Door      DoorState
	Motion    Motion
	Available bool
	TaskID    string
	Target    int
}

// Observation is the read-only view of a Car sent to the dispatcher as part
// of a dispatch snapshot. It is a pure value: the dispatcher never mutates
// or retains it.
type Observation struct {
	ID        string
	Current   int
	Door      DoorState
	Available bool
	TaskID    string // empty when idle
	Target    int    // NoTarget when idle
}

// Observe returns the Observation view of c.
func (c Car) Observe() Observation {
	return Observation{
		ID:        c.ID,
		Current:   c.Current,
		Door:      c.Door,
		Available: c.Available,
		TaskID:    c.TaskID,
		Target:    c.Target,
	}
}

// CarID returns the stable identifier "{building}A{n}" for the nth car
// (1-based) of building.
func CarID(building string, n int) string {
	return fmt.Sprintf("%sA%d", building, n)
}
