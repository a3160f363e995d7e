// Package observability provides Prometheus metrics and HTTP middleware
// for monitoring the relay.
package observability

import "github.com/prometheus/client_golang/prometheus"

// LLMBuckets covers latencies from a fast local model to a slow remote one.
var LLMBuckets = []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120}

var (
	// RequestsTotal counts HTTP requests by route, method and status class.
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "prompt_relay_requests_total",
			Help: "Total requests",
		},
		[]string{"route", "method", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "prompt_relay_request_duration_seconds",
			Help:    "Request duration",
			Buckets: LLMBuckets,
		},
		[]string{"route", "method"},
	)

	// EnhancementsTotal counts enhancement attempts. Outcome is "enhanced"
	// or "fallback" when the original prompt was used instead.
	EnhancementsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "prompt_relay_enhancements_total",
			Help: "Prompt enhancement attempts",
		},
		[]string{"outcome"},
	)

	// GenerationsTotal counts generation calls by outcome: success, blocked or error.
	GenerationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "prompt_relay_generations_total",
			Help: "Generation outcomes",
		},
		[]string{"model", "outcome"},
	)

	ProviderLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "prompt_relay_provider_latency_seconds",
			Help:    "Provider latency",
			Buckets: LLMBuckets,
		},
		[]string{"provider"},
	)

	// ProviderTokensTotal counts tokens reported by the remote model by direction (input/output).
	ProviderTokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "prompt_relay_provider_tokens_total",
			Help: "Token count",
		},
		[]string{"model", "direction"},
	)
)

func init() {
	prometheus.MustRegister(
		RequestsTotal,
		RequestDuration,
		EnhancementsTotal,
		GenerationsTotal,
		ProviderLatency,
		ProviderTokensTotal,
	)
}
