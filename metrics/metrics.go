package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ApplicationsScored = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "loan_applications_scored_total",
			Help: "Applications scored, by recommendation tier",
		},
		[]string{"tier"},
	)

	ValidationFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "loan_validation_failures_total",
			Help: "Applications rejected by input validation",
		},
	)

	NarrativeRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "narrative_requests_total",
			Help: "Narrative text requests, by backend and outcome",
		},
		[]string{"backend", "outcome"},
	)

	NarrativeBackendDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "narrative_backend_duration_seconds",
			Help:    "Latency of generative backend calls",
			Buckets: []float64{0.25, 0.5, 1, 2.5, 5, 10, 20, 30, 60},
		},
	)

	ChatMessages = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chat_messages_total",
			Help: "User chat messages processed",
		},
	)

	ChatSessionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "chat_sessions_active",
			Help: "Chat sessions currently held in memory",
		},
	)

	StatsCache = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stats_cache_total",
			Help: "Approval stats cache lookups, by result",
		},
		[]string{"result"},
	)
)
