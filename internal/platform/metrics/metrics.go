// Package metrics declares the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestsTotal counts handled HTTP requests.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "onboarding_http_requests_total",
			Help: "Handled HTTP requests by method, route and status.",
		},
		[]string{"method", "route", "status"},
	)

	// HTTPRequestDuration observes HTTP request latency.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "onboarding_http_request_duration_seconds",
			Help:    "HTTP request latency by method and route.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// TransitionsTotal counts committed workflow transitions.
	TransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "onboarding_transitions_total",
			Help: "Committed request status transitions by action and target status.",
		},
		[]string{"action", "from", "to"},
	)

	// TransitionRejectionsTotal counts transitions refused by a guard.
	TransitionRejectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "onboarding_transition_rejections_total",
			Help: "Transitions refused by the workflow, by error kind.",
		},
		[]string{"kind"},
	)

	// NotificationsTotal counts notification deliveries by sink and outcome.
	NotificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "onboarding_notifications_total",
			Help: "Notification deliveries by sink and outcome.",
		},
		[]string{"sink", "outcome"},
	)

	// NotificationsDropped counts events dropped because the dispatch queue was full.
	NotificationsDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "onboarding_notifications_dropped_total",
			Help: "Notification events dropped on a full queue.",
		},
	)

	// DepositSignalsTotal counts deposit confirmations by source and outcome.
	DepositSignalsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "onboarding_deposit_signals_total",
			Help: "Deposit confirmations by source and outcome.",
		},
		[]string{"source", "outcome"},
	)

	// DocumentUploadBytes observes accepted upload sizes.
	DocumentUploadBytes = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "onboarding_document_upload_bytes",
			Help:    "Size of accepted document uploads.",
			Buckets: prometheus.ExponentialBuckets(16*1024, 2, 10),
		},
	)
)
