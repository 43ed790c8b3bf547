package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Provider call metrics
	providerCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentence_trainer_provider_calls_total",
			Help: "Total number of outbound provider calls",
		},
		[]string{"kind", "provider", "status"},
	)

	providerCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sentence_trainer_provider_call_duration_seconds",
			Help:    "Duration of outbound provider calls in seconds",
			Buckets: []float64{0.05, 0.1, 0.5, 1.0, 2.0, 5.0, 10.0, 30.0},
		},
		[]string{"kind", "provider"},
	)

	providerFallbacksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentence_trainer_provider_fallbacks_total",
			Help: "Total number of calls served by the mock backend after a provider failure",
		},
		[]string{"kind", "provider"},
	)

	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentence_trainer_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sentence_trainer_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	sentencesCreatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentence_trainer_sentences_created_total",
			Help: "Total number of sentences persisted with audio",
		},
		[]string{"kind"},
	)
)

// Provider kinds used as the "kind" label.
const (
	KindTranslation = "translation"
	KindTTS         = "tts"
	KindStorage     = "storage"
	KindGenerator   = "generator"
)

// ObserveProviderCall records one outbound call and its outcome.
func ObserveProviderCall(kind, provider string, started time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	providerCallsTotal.WithLabelValues(kind, provider, status).Inc()
	providerCallDuration.WithLabelValues(kind, provider).Observe(time.Since(started).Seconds())
}

func RecordFallback(kind, provider string) {
	providerFallbacksTotal.WithLabelValues(kind, provider).Inc()
}

func RecordSentenceCreated(kind string) {
	sentencesCreatedTotal.WithLabelValues(kind).Inc()
}

func ObserveHTTPRequest(method, route string, status int, elapsed time.Duration) {
	httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	httpRequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}
