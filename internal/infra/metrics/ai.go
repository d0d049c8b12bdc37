package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(
		aiTokensIn,
		aiTokensOut,
		aiCallsLatencyMs,
		aiDegradedTotal,
		aiEmptyAnswersTotal,
	)
}

var (
	aiTokensIn = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ai_tokens_in",
			Help: "Sum of prompt (input) tokens per provider/model.",
		},
		[]string{"provider", "model"},
	)

	aiTokensOut = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ai_tokens_out",
			Help: "Sum of completion (output) tokens per provider/model.",
		},
		[]string{"provider", "model"},
	)

	aiCallsLatencyMs = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ai_calls_latency_ms",
			Help:    "AI call latency distribution in milliseconds.",
			Buckets: []float64{250, 500, 1000, 2500, 5000, 10000, 20000, 40000, 80000, 120000},
		},
		[]string{"provider", "model", "success"},
	)

	aiDegradedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ai_degraded_answers_total",
			Help: "Upstream AI failures answered with the unavailable text.",
		},
		[]string{"provider"},
	)

	aiEmptyAnswersTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ai_empty_answers_total",
			Help: "Completions with empty content replaced by the fallback text.",
		},
		[]string{"provider"},
	)
)

func ObserveCompletion(provider, model string, tokensIn, tokensOut int, latencyMs int64, success bool) {
	lbl := []string{norm(provider), norm(model)}
	aiTokensIn.WithLabelValues(lbl...).Add(float64(tokensIn))
	aiTokensOut.WithLabelValues(lbl...).Add(float64(tokensOut))
	aiCallsLatencyMs.WithLabelValues(norm(provider), norm(model), strconv.FormatBool(success)).
		Observe(float64(latencyMs))
}

func IncDegraded(provider string) {
	aiDegradedTotal.WithLabelValues(norm(provider)).Inc()
}

func IncEmptyAnswer(provider string) {
	aiEmptyAnswersTotal.WithLabelValues(norm(provider)).Inc()
}
