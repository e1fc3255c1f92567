// Package metrics holds the Prometheus collectors of the logging pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "fluidhelper"

// Parse outcomes
const (
	OutcomeParsed      = "parsed"
	OutcomeUnparseable = "unparseable"
	OutcomeMalformed   = "malformed"
	OutcomeFailed      = "failed"
)

var (
	ParseResults = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "parse_results_total",
		Help:      "Caregiver messages parsed, by outcome.",
	}, []string{"outcome"})

	RejectedActions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rejected_actions_total",
		Help:      "Candidate actions dropped during sanitization, by kind.",
	}, []string{"kind"})

	CompletionDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "completion_duration_seconds",
		Help:      "Completion service latency, by provider.",
		Buckets:   prometheus.ExponentialBuckets(0.25, 2, 8),
	}, []string{"provider"})

	LoggedActions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logged_actions_total",
		Help:      "Actions persisted, by kind.",
	}, []string{"kind"})

	PersistFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "persist_failures_total",
		Help:      "Actions skipped because the store rejected them, by kind.",
	}, []string{"kind"})

	ReportsSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reports_sent_total",
		Help:      "Reports delivered, by trigger.",
	}, []string{"trigger"})
)
