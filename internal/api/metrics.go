package api

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const metricPrefix = "atmos_"

const (
	resultSuccess = "success"
	resultError   = "error"

	cacheHit  = "hit"
	cacheMiss = "miss"
)

type Metrics struct {
	registry *prometheus.Registry

	portalRequests *prometheus.CounterVec
	portalLatency  *prometheus.HistogramVec
	usageRequests  *prometheus.CounterVec
	readings       prometheus.Gauge
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		portalRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "portal_requests_total",
				Help: "Requests sent to the account center by status code and method",
			},
			[]string{"code", "method"},
		),
		portalLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "portal_request_duration_seconds",
				Help:    "Account center request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"code", "method"},
		),
		usageRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "usage_requests_total",
				Help: "Usage API requests by cache outcome and result",
			},
			[]string{"cache", "result"},
		),
		readings: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: metricPrefix + "last_fetch_readings",
				Help: "Number of readings returned by the last portal retrieval",
			},
		),
	}

	m.registry.MustRegister(
		m.portalRequests,
		m.portalLatency,
		m.usageRequests,
		m.readings,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// InstrumentTransport counts and times every request the portal client
// sends through next.
func (m *Metrics) InstrumentTransport(next http.RoundTripper) http.RoundTripper {
	if next == nil {
		next = http.DefaultTransport
	}
	return promhttp.InstrumentRoundTripperCounter(m.portalRequests,
		promhttp.InstrumentRoundTripperDuration(m.portalLatency, next))
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) observeUsage(cache, result string) {
	m.usageRequests.WithLabelValues(cache, result).Inc()
}

func (m *Metrics) setReadings(n int) {
	m.readings.Set(float64(n))
}
