package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

func init() { register(plansGeneratedTotal, providerLatencyMs) }

var plansGeneratedTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "diet_plans_generated_total",
		Help: "Plans produced, labeled by source (provider or fallback).",
	},
	[]string{"source"},
)

var providerLatencyMs = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "ai_provider_latency_ms",
		Help:    "Provider call latency distribution in milliseconds.",
		Buckets: []float64{100, 250, 500, 1000, 2500, 5000, 10000, 20000, 40000, 60000},
	},
	[]string{"provider", "success"},
)

func IncPlanGenerated(source string) {
	plansGeneratedTotal.WithLabelValues(norm(source)).Inc()
}

func ObserveProviderCall(provider string, latencyMs int, success bool) {
	providerLatencyMs.WithLabelValues(norm(provider), strconv.FormatBool(success)).
		Observe(float64(latencyMs))
}
