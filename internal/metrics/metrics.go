package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricPrefix = "heat_alert_"

	resultSuccess = "success"
	resultError   = "error"
)

var (
	registerOnce sync.Once

	ingestRequests *prometheus.CounterVec
	ingestLatency  *prometheus.HistogramVec

	throttleDecisions *prometheus.CounterVec
	eventsEnded       prometheus.Counter

	dispatchResults *prometheus.CounterVec
	dispatchLatency prometheus.Histogram
)

// Init registers the service metrics with the default registry.
func Init() {
	registerOnce.Do(func() {
		ingestRequests = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "ingest_requests_total",
				Help: "Total ingested readings by source and result",
			},
			[]string{"source", "result"},
		)
		ingestLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "ingest_latency_seconds",
				Help:    "Ingest latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"result"},
		)
		throttleDecisions = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "throttle_decisions_total",
				Help: "Throttle decisions by kind and reason",
			},
			[]string{"kind", "reason"},
		)
		eventsEnded = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "events_ended_total",
				Help: "Alert events that returned to a non-danger tier",
			},
		)
		dispatchResults = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "dispatch_results_total",
				Help: "Notification dispatch outcomes by stage",
			},
			[]string{"stage", "result"},
		)
		dispatchLatency = prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "dispatch_latency_seconds",
				Help:    "End-to-end dispatch latency in seconds",
				Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30, 60},
			},
		)

		prometheus.MustRegister(
			ingestRequests,
			ingestLatency,
			throttleDecisions,
			eventsEnded,
			dispatchResults,
			dispatchLatency,
		)
	})
}

// ObserveIngest records an ingest attempt.
func ObserveIngest(source, result string, duration time.Duration) {
	if source == "" {
		source = "unknown"
	}
	if result == "" {
		result = resultSuccess
	}
	if ingestRequests != nil {
		ingestRequests.WithLabelValues(source, result).Inc()
	}
	if ingestLatency != nil {
		ingestLatency.WithLabelValues(result).Observe(duration.Seconds())
	}
}

// IncDecision counts a throttle decision.
func IncDecision(kind, reason string) {
	if reason == "" {
		reason = "none"
	}
	if throttleDecisions != nil {
		throttleDecisions.WithLabelValues(kind, reason).Inc()
	}
}

// IncEventEnded counts an alert event reset.
func IncEventEnded() {
	if eventsEnded != nil {
		eventsEnded.Inc()
	}
}

// IncDispatch counts a dispatch stage outcome.
func IncDispatch(stage, result string) {
	if result == "" {
		result = resultSuccess
	}
	if dispatchResults != nil {
		dispatchResults.WithLabelValues(stage, result).Inc()
	}
}

// ObserveDispatch records end-to-end dispatch latency.
func ObserveDispatch(duration time.Duration) {
	if dispatchLatency != nil {
		dispatchLatency.Observe(duration.Seconds())
	}
}

// Exported constants for callers.
const (
	ResultSuccess = resultSuccess
	ResultError   = resultError

	ResultInvalid = "invalid"
	ResultDropped = "dropped"
)
