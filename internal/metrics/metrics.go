// Package metrics holds the Prometheus collectors exposed on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	Evaluations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fuzzyrank",
		Name:      "evaluations_total",
		Help:      "Evaluations by outcome (ok, invalid, degenerate, error).",
	}, []string{"outcome"})

	EvaluationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "fuzzyrank",
		Name:      "evaluation_duration_seconds",
		Help:      "Wall time of a full evaluation including sensitivity analysis.",
		Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
	})

	ConsistencyRatio = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "fuzzyrank",
		Name:      "consistency_ratio",
		Help:      "Consistency ratio of every weighted sibling group.",
		Buckets:   []float64{0.01, 0.025, 0.05, 0.075, 0.1, 0.15, 0.2, 0.3, 0.5, 1},
	})

	ConsistencyWarnings = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "fuzzyrank",
		Name:      "consistency_warnings_total",
		Help:      "Sibling groups whose consistency ratio exceeded the threshold.",
	})

	SensitivitySteps = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "fuzzyrank",
		Name:      "sensitivity_steps_total",
		Help:      "Ranking runs executed by sensitivity sweeps.",
	})

	RankReversals = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "fuzzyrank",
		Name:      "rank_reversals_total",
		Help:      "Sensitivity steps whose ranking differed from the baseline.",
	})

	Jobs = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fuzzyrank",
		Name:      "jobs_total",
		Help:      "Finished background jobs by final status.",
	}, []string{"status"})

	JobsQueued = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "fuzzyrank",
		Name:      "jobs_queued",
		Help:      "Jobs waiting for a worker.",
	})

	JobsRunning = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "fuzzyrank",
		Name:      "jobs_running",
		Help:      "Jobs currently executing.",
	})
)
