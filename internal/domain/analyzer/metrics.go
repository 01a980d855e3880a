package analyzer

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	runsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "finpulse_analyzer_runs_total",
		Help: "Analysis runs by outcome.",
	}, []string{"outcome"})

	runDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "finpulse_analyzer_run_duration_seconds",
		Help:    "Wall time of a successful analysis run.",
		Buckets: prometheus.DefBuckets,
	})
)
