package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce         sync.Once
	httpRequestsTotal    *prometheus.CounterVec
	httpLatencySeconds   *prometheus.HistogramVec
	analysesTotal        *prometheus.CounterVec
	securityBlocksTotal  prometheus.Counter
	recorderFailures     *prometheus.CounterVec
	patternSetSize       prometheus.Gauge
	securityEventsBusOut *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors used by the advisor.
func RegisterMetrics() {
	registerOnce.Do(func() {
		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "advisor_http_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		httpLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "advisor_http_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		analysesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "advisor_analyses_total",
			Help: "Number of analysed submissions by advice severity.",
		}, []string{"severity"})

		securityBlocksTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "advisor_security_blocks_total",
			Help: "Number of submissions blocked by the cheat-intent filter.",
		})

		recorderFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "advisor_recorder_failures_total",
			Help: "Number of failed submission or security event writes.",
		}, []string{"kind"})

		patternSetSize = prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "advisor_pattern_set_size",
			Help: "Number of cheat-intent phrases in the active pattern set.",
		})

		securityEventsBusOut = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "advisor_security_events_published_total",
			Help: "Security events published to the message bus.",
		}, []string{"result"})

		prometheus.MustRegister(httpRequestsTotal, httpLatencySeconds, analysesTotal, securityBlocksTotal, recorderFailures, patternSetSize, securityEventsBusOut)
	})
}

// HTTPRequests exposes the counter for API requests.
func HTTPRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return httpRequestsTotal
}

// HTTPLatency exposes the latency histogram for API requests.
func HTTPLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return httpLatencySeconds
}

// Analyses exposes the analysed submissions counter.
func Analyses() *prometheus.CounterVec {
	RegisterMetrics()
	return analysesTotal
}

// SecurityBlocks exposes the blocked submissions counter.
func SecurityBlocks() prometheus.Counter {
	RegisterMetrics()
	return securityBlocksTotal
}

// RecorderFailures exposes the failed persistence counter.
func RecorderFailures() *prometheus.CounterVec {
	RegisterMetrics()
	return recorderFailures
}

// PatternSetSize exposes the active pattern set gauge.
func PatternSetSize() prometheus.Gauge {
	RegisterMetrics()
	return patternSetSize
}

// SecurityEventsPublished exposes the bus publish counter.
func SecurityEventsPublished() *prometheus.CounterVec {
	RegisterMetrics()
	return securityEventsBusOut
}
