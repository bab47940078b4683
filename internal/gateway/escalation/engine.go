// Package escalation is the [SUPPLEMENT] emergency notification path
// (SPEC_FULL.md §13): an observer that fires webhook deliveries for
// incoming 0x400 emergency frames. Delivery runs synchronously inside
// Observe, ahead of the dispatcher round-trip for the same frame, so each
// hook can delay that round-trip by up to the HTTP client timeout; a failed
// delivery never changes the round-trip's outcome. Grounded on the
// teacher's server/internal/alerts/{engine,condition,webhook}.go:
// cooldown-gated firing and the same three delivery shapes (Slack, Teams,
// generic HTTP). There is no rule set: every event that passes the
// cooldown goes to every hook.
package escalation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// Hook is one configured webhook destination.
type Hook struct {
	Kind string // "slack", "teams", "http"
	URL  string
}

// Event is one emergency frame observation handed to the engine.
type Event struct {
	Building      string
	CarID         string
	CurrentFloor  int
	EmergencyKind string
}

// Engine evaluates incoming emergency events against its hook list and
// delivers notifications, cooldown-gated per (building, car, kind) the
// way the teacher's alert engine gates repeat firings.
type Engine struct {
	Hooks    []Hook
	Cooldown time.Duration
	Client   *http.Client
	Now      func() time.Time

	lastFired map[string]time.Time
}

// DefaultCooldown matches the teacher's alert engine's default re-fire
// suppression window.
const DefaultCooldown = 30 * time.Second

// New builds an Engine with hooks and a real-time clock.
func New(hooks []Hook) *Engine {
	return &Engine{
		Hooks:     hooks,
		Cooldown:  DefaultCooldown,
		Client:    &http.Client{Timeout: 5 * time.Second},
		Now:       time.Now,
		lastFired: make(map[string]time.Time),
	}
}

// Observe evaluates ev and delivers to every configured hook if the
// cooldown for this (building, car, kind) has elapsed. Deliveries run
// before Observe returns; failures are logged, never propagated.
func (e *Engine) Observe(ev Event) {
	key := fmt.Sprintf("%s|%s|%s", ev.Building, ev.CarID, ev.EmergencyKind)
	now := e.Now()
	if last, ok := e.lastFired[key]; ok && now.Sub(last) < e.Cooldown {
		return
	}
	e.lastFired[key] = now

	for _, h := range e.Hooks {
		if err := e.deliver(h, ev); err != nil {
			slog.Warn("escalation: delivery failed", "kind", h.Kind, "url", h.URL, "err", err)
		}
	}
}

func (e *Engine) deliver(h Hook, ev Event) error {
	switch h.Kind {
	case "slack":
		return e.post(h.URL, map[string]string{
			"text": fmt.Sprintf("emergency: %s on car %s (building %s, floor %d)",
				ev.EmergencyKind, ev.CarID, ev.Building, ev.CurrentFloor),
		})
	case "teams":
		return e.post(h.URL, map[string]string{
			"text": fmt.Sprintf("**Emergency** — %s: car %s, building %s, floor %d",
				ev.EmergencyKind, ev.CarID, ev.Building, ev.CurrentFloor),
		})
	default:
		return e.post(h.URL, ev)
	}
}

func (e *Engine) post(url string, body any) error {
	b, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("escalation: marshal: %w", err)
	}
	resp, err := e.Client.Post(url, "application/json", bytes.NewReader(b))
	if err != nil {
		return fmt.Errorf("escalation: post: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("escalation: %s returned status %d", url, resp.StatusCode)
	}
	return nil
}
