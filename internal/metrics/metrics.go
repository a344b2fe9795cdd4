package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	BatchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "enrichment_batches_total",
			Help: "Total number of batch enrichment requests by outcome",
		},
		[]string{"outcome"},
	)

	BatchEntitiesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "enrichment_batch_entities_total",
			Help: "Total number of entities settled by batch enrichment, by status",
		},
		[]string{"status"},
	)

	SimilarityWarningsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "enrichment_similarity_warnings_total",
			Help: "Total number of identical product warnings emitted",
		},
	)

	BatchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "enrichment_batch_duration_seconds",
			Help:    "Duration of batch enrichment requests in seconds",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600},
		},
	)

	EntityRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "enrichment_entity_requests_total",
			Help: "Total number of single-entity enrichments by outcome",
		},
		[]string{"outcome"},
	)

	LLMTokensTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "llm_tokens_total",
			Help: "Total number of LLM tokens consumed by direction",
		},
		[]string{"direction"},
	)

	LLMCostUSDTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "llm_cost_usd_total",
			Help: "Accumulated LLM cost in US dollars",
		},
	)

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)

// RecordLLMUsage adds token counts and cost of one enrichment
func RecordLLMUsage(inputTokens, outputTokens int, costUSD float64) {
	LLMTokensTotal.WithLabelValues("input").Add(float64(inputTokens))
	LLMTokensTotal.WithLabelValues("output").Add(float64(outputTokens))
	LLMCostUSDTotal.Add(costUSD)
}
