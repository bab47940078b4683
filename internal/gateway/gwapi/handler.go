// Package gwapi is the [SUPPLEMENT] gateway operations API
// (SPEC_FULL.md §13): a read-only HTTP surface plus a websocket stream
// exposing live Elevator Group and Correlation Table state for operators.
// Grounded on the teacher's server/internal/api/{handler,types,diagnostics}.go.
// It never mutates group state or the correlation table.
package gwapi

import (
	"encoding/json"
	"net/http"

	"github.com/liftmesh/liftmesh/internal/elevator"
	"github.com/liftmesh/liftmesh/internal/gateway/correlation"
)

// GroupView is the JSON shape returned by /api/v1/group.
type GroupView struct {
	Building string                 `json:"building"`
	Cars     []elevator.Observation `json:"cars"`
}

// CorrelationView is the JSON shape returned by /api/v1/correlation: just
// the occupancy count, never tracker contents — the ops API is read-only
// observation, not a debugging window into in-flight request state.
type CorrelationView struct {
	Occupancy int `json:"occupancy"`
	Capacity  int `json:"capacity"`
}

// Handler serves the read-only ops API.
type Handler struct {
	Group *elevator.Group
	Table *correlation.Table
	Hub   *Hub
	mux   *http.ServeMux
}

// NewHandler builds a Handler and registers its routes. hub may be nil,
// in which case /ws/stream responds 503 rather than panicking.
func NewHandler(g *elevator.Group, tbl *correlation.Table, hub *Hub) *Handler {
	h := &Handler{Group: g, Table: tbl, Hub: hub, mux: http.NewServeMux()}
	h.mux.HandleFunc("/api/v1/health", h.handleHealth)
	h.mux.HandleFunc("/api/v1/group", h.handleGroup)
	h.mux.HandleFunc("/api/v1/diagnostics", h.handleDiagnostics)
	h.mux.HandleFunc("/api/v1/correlation", h.handleCorrelation)
	h.mux.HandleFunc("/ws/stream", h.handleWS)
	return h
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) { h.mux.ServeHTTP(w, r) }

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) handleGroup(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, GroupView{
		Building: h.Group.Building,
		Cars:     h.Group.Observations(),
	})
}

func (h *Handler) handleDiagnostics(w http.ResponseWriter, r *http.Request) {
	hints := Diagnose(h.Group)
	writeJSON(w, http.StatusOK, map[string]any{"hints": hints})
}

func (h *Handler) handleCorrelation(w http.ResponseWriter, r *http.Request) {
	if h.Table == nil {
		http.Error(w, "correlation table unavailable", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, http.StatusOK, CorrelationView{
		Occupancy: h.Table.Occupancy(),
		Capacity:  h.Table.Capacity(),
	})
}

func (h *Handler) handleWS(w http.ResponseWriter, r *http.Request) {
	if h.Hub == nil {
		http.Error(w, "websocket stream unavailable", http.StatusServiceUnavailable)
		return
	}
	h.Hub.ServeWS(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
