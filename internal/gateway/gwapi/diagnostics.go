package gwapi

import (
	"fmt"

	"github.com/liftmesh/liftmesh/internal/elevator"
)

// Hint is one human-readable diagnostic line, generated the way the
// teacher's api/diagnostics.go turns scrape results into operator-facing
// text.
type Hint struct {
	Key    string `json:"key"`
	Level  string `json:"level"` // "info", "warn"
	Title  string `json:"title"`
	Detail string `json:"detail"`
}

// Diagnose generates an ordered list of hints from the group's current
// state: one per unavailable car (a warning when it has no target, an
// info line when it is en route), plus an "all cars idle" fallback when
// every car is available. It does not track how long a car has been busy.
func Diagnose(g *elevator.Group) []Hint {
	var hints []Hint
	for i := 0; i < g.Len(); i++ {
		c, _ := g.Car(i)
		if c.Available {
			continue
		}
		if c.Target == elevator.NoTarget {
			hints = append(hints, Hint{
				Key:   c.ID,
				Level: "warn",
				Title: fmt.Sprintf("car %s busy with no target", c.ID),
				Detail: "availability=false but target=-1; this car will not move on tick " +
					"until a new task is assigned",
			})
			continue
		}
		hints = append(hints, Hint{
			Key:    c.ID,
			Level:  "info",
			Title:  fmt.Sprintf("car %s en route", c.ID),
			Detail: fmt.Sprintf("floor %d -> %d, task %s", c.Current, c.Target, c.TaskID),
		})
	}
	if len(hints) == 0 {
		hints = append(hints, Hint{
			Key:    "all",
			Level:  "info",
			Title:  "all cars idle",
			Detail: "no active tasks in this building",
		})
	}
	return hints
}
