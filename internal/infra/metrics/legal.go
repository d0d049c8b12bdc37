package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(legalRequestsTotal, documentBytes, documentFetchFailures, deliveryAttemptsTotal)
}

var (
	legalRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "legal_requests_total",
			Help: "Legal analysis webhook requests by HTTP status code.",
		},
		[]string{"code"},
	)

	documentBytes = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "document_fetch_bytes",
			Help:    "Size of downloaded documents in bytes.",
			Buckets: prometheus.ExponentialBuckets(16<<10, 2, 12), // 16KiB .. 32MiB
		},
	)

	documentFetchFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "document_fetch_failures_total",
			Help: "Document downloads that failed, by reason.",
		},
		[]string{"reason"}, // 'status', 'too_large', 'network'
	)

	deliveryAttemptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_delivery_attempts_total",
			Help: "Chat message delivery attempts by outcome.",
		},
		[]string{"outcome"}, // 'ok', 'http_error', 'network_error'
	)
)

func IncLegalRequest(code int) {
	legalRequestsTotal.WithLabelValues(strconv.Itoa(code)).Inc()
}

func ObserveDocumentBytes(n int) {
	documentBytes.Observe(float64(n))
}

func IncDocumentFetchFailure(reason string) {
	documentFetchFailures.WithLabelValues(norm(reason)).Inc()
}

func IncDeliveryAttempt(outcome string) {
	deliveryAttemptsTotal.WithLabelValues(norm(outcome)).Inc()
}
