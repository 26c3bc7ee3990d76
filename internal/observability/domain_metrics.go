package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	classificationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wealthdesk_classifications_total",
			Help: "Questions routed to each store, including known intents.",
		},
		[]string{"store", "source"},
	)
	translationRejectionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wealthdesk_translation_rejections_total",
			Help: "Model translations rejected by the allow-list.",
		},
		[]string{"store", "reason"},
	)
	fallbackQueriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wealthdesk_fallback_queries_total",
			Help: "Fallback queries substituted for rejected translations.",
		},
		[]string{"store"},
	)
	modelCallLatencyMs = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "wealthdesk_model_call_latency_ms",
			Help:    "Model completion latency in milliseconds.",
			Buckets: []float64{50, 100, 250, 500, 1000, 2500, 5000, 10000, 20000, 30000},
		},
		[]string{"task", "outcome"},
	)
	storeExecutionLatencyMs = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "wealthdesk_store_execution_latency_ms",
			Help:    "Store execution latency in milliseconds.",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 5000},
		},
		[]string{"store", "outcome"},
	)
	apologyResponsesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wealthdesk_apology_responses_total",
			Help: "Responses that carried only apology or narrative text.",
		},
		[]string{"cause"},
	)
)

func init() {
	prometheus.MustRegister(
		classificationsTotal,
		translationRejectionsTotal,
		fallbackQueriesTotal,
		modelCallLatencyMs,
		storeExecutionLatencyMs,
		apologyResponsesTotal,
	)
}

// ObserveClassification records where a question was routed. source is
// "model" or "intent".
func ObserveClassification(store, source string) {
	classificationsTotal.WithLabelValues(store, source).Inc()
}

func ObserveRejection(store, reason string) {
	translationRejectionsTotal.WithLabelValues(store, reason).Inc()
	fallbackQueriesTotal.WithLabelValues(store).Inc()
}

func ObserveModelCall(task, outcome string, elapsed time.Duration) {
	modelCallLatencyMs.WithLabelValues(task, outcome).Observe(float64(elapsed.Milliseconds()))
}

func ObserveStoreExecution(store, outcome string, elapsed time.Duration) {
	storeExecutionLatencyMs.WithLabelValues(store, outcome).Observe(float64(elapsed.Milliseconds()))
}

func IncrementApology(cause string) {
	apologyResponsesTotal.WithLabelValues(cause).Inc()
}
