// Package metrics holds the prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "findersfee"

var (
	// ClaimTransitions counts claim state changes.
	// Labels: to (pending, approved, rejected)
	ClaimTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "claims",
		Name:      "transitions_total",
		Help:      "Claim state transitions by target state",
	}, []string{"to"})

	// ClaimConflicts counts reviews that lost to a concurrent or earlier review.
	ClaimConflicts = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "claims",
		Name:      "conflicts_total",
		Help:      "Claim reviews refused because the claim was no longer pending",
	})

	// ReconcileFlags counts approvals whose item could not be marked terminal.
	ReconcileFlags = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "claims",
		Name:      "reconcile_flags_total",
		Help:      "Approved claims flagged for item reconciliation",
	})

	// ReconcileRuns counts reconciliation retries by result.
	// Labels: result (resolved, failed)
	ReconcileRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "claims",
		Name:      "reconcile_runs_total",
		Help:      "Reconciliation task retries by result",
	}, []string{"result"})

	// Notifications counts dispatched notifications.
	// Labels: type, result (sent, failed)
	Notifications = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "notifications",
		Name:      "dispatched_total",
		Help:      "Notifications dispatched by type and result",
	}, []string{"type", "result"})

	// Payments counts payment records by method and status.
	// Labels: method, status (pending, completed, failed, provider_error)
	Payments = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "payments",
		Name:      "total",
		Help:      "Payments by method and resulting status",
	}, []string{"method", "status"})

	// PhotoCache counts photo cache lookups.
	// Labels: result (hit, miss)
	PhotoCache = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "photos",
		Name:      "cache_lookups_total",
		Help:      "Photo cache lookups by result",
	}, []string{"result"})

	// HTTPRequests counts HTTP requests.
	// Labels: method, route (chi route pattern), status
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests by method, route and status",
	}, []string{"method", "route", "status"})

	// HTTPDuration measures HTTP request latency.
	// Labels: method, route
	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})
)
