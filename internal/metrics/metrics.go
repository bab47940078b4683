// Package metrics defines the process-level Prometheus instrumentation
// shared by both tiers. Not a direct teacher dependency (marocz-
// ObsidianStack only pulls client_model/common transitively, for scraping
// foreign endpoints); used here for self-metrics the way the rest of the
// retrieved pack (octoreflex, kubernaut, dittofs) does, per SPEC_FULL.md §11.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Gateway-side metrics.
var (
	RequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "liftmesh_gateway_requests_total",
		Help: "Outbound requests built by the gateway, by kind and outcome.",
	}, []string{"kind", "outcome"})

	SessionState = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "liftmesh_gateway_session_state",
		Help: "Secure session state: 0=NONE,1=CONNECTING,2=ESTABLISHED,3=FAILED.",
	})

	CorrelationOccupancy = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "liftmesh_gateway_correlation_occupancy",
		Help: "Number of occupied slots in the correlation table.",
	})

	TicksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "liftmesh_gateway_ticks_total",
		Help: "Total number of group ticks performed.",
	})
)

// Dispatcher-side metrics.
var (
	AssignmentLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "liftmesh_dispatcher_assignment_seconds",
		Help:    "Time spent validating and assigning one request.",
		Buckets: prometheus.DefBuckets,
	})

	AssignmentsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "liftmesh_dispatcher_assignments_total",
		Help: "Dispatcher assignment outcomes, by resource and result code class.",
	}, []string{"resource", "class"})
)
