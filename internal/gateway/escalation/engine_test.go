package escalation

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestObserveDeliversToAllHooks(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	e := New([]Hook{{Kind: "slack", URL: srv.URL}, {Kind: "teams", URL: srv.URL}})
	e.Observe(Event{Building: "E1", CarID: "E1A1", CurrentFloor: 3, EmergencyKind: "fire"})

	if got := atomic.LoadInt32(&calls); got != 2 {
		t.Fatalf("got %d deliveries, want 2", got)
	}
}

func TestObserveSuppressesWithinCooldown(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	now := time.Unix(1700000000, 0)
	e := New([]Hook{{Kind: "http", URL: srv.URL}})
	e.Now = func() time.Time { return now }

	ev := Event{Building: "E1", CarID: "E1A1", CurrentFloor: 3, EmergencyKind: "fire"}
	e.Observe(ev)
	e.Observe(ev) // same key, within cooldown: suppressed

	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Fatalf("got %d deliveries, want 1 (second suppressed by cooldown)", got)
	}

	now = now.Add(e.Cooldown + time.Second)
	e.Now = func() time.Time { return now }
	e.Observe(ev)

	if got := atomic.LoadInt32(&calls); got != 2 {
		t.Fatalf("got %d deliveries after cooldown elapsed, want 2", got)
	}
}
