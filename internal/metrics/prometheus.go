package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ExecutionsTotal counts finished workflow runs by flow and outcome.
	ExecutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "genasl_executions_total",
			Help: "Total number of workflow executions",
		},
		[]string{"flow", "status"},
	)

	// ExecutionDuration tracks end-to-end workflow run duration in seconds.
	ExecutionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "genasl_execution_duration_seconds",
			Help:    "Duration of workflow executions in seconds",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 12), // 100ms to ~200s
		},
		[]string{"flow"},
	)

	// StageRetriesTotal counts retried stage invocations per stage.
	StageRetriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "genasl_stage_retries_total",
			Help: "Total number of retried stage invocations",
		},
		[]string{"stage"},
	)

	// StageFailuresTotal counts stage invocations that failed terminally.
	StageFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "genasl_stage_failures_total",
			Help: "Total number of terminally failed stage invocations",
		},
		[]string{"stage"},
	)

	// SessionsActive tracks the number of open streaming sessions held by
	// this instance.
	SessionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "genasl_sessions_active",
			Help: "Number of currently open streaming sessions",
		},
	)

	// SessionDeliveriesTotal counts result pushes to streaming sessions.
	SessionDeliveriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "genasl_session_deliveries_total",
			Help: "Total number of result deliveries to streaming sessions",
		},
		[]string{"status"},
	)

	// WorkersActive tracks the number of busy worker goroutines.
	WorkersActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "genasl_workers_active",
			Help: "Number of currently active worker goroutines",
		},
	)
)
