package recommend

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// enhancementOutcomes counts enhancement attempts by result. "fallback"
// covers every failure mode: missing config, transport errors, bad JSON,
// and empty responses.
var enhancementOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "finpulse",
	Subsystem: "recommend",
	Name:      "enhancement_total",
	Help:      "Generative-text enhancement attempts by outcome.",
}, []string{"outcome"})

const (
	outcomeEnhanced = "enhanced"
	outcomeFallback = "fallback"
	outcomeSkipped  = "skipped"
)
