// Package telemetry exposes the coordinator's prometheus registry and the
// HTTP instrumentation middleware.
package telemetry

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	Registry = prometheus.NewRegistry()

	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wgmesh",
			Name:      "requests_total",
			Help:      "Total number of coordination API requests.",
		},
		[]string{"op", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "wgmesh",
			Name:      "request_duration_seconds",
			Help:      "Latency of coordination API requests.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 13),
		},
		[]string{"op"},
	)

	RegisteredHosts = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "wgmesh",
			Name:      "registered_hosts",
			Help:      "Number of remote hosts currently in the registry.",
		},
	)

	EventsRecorded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wgmesh",
			Name:      "events_recorded_total",
			Help:      "Connect/disconnect events recorded in the event log.",
		},
		[]string{"kind"},
	)

	startTime = time.Now()
	uptime    = prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Namespace: "wgmesh",
			Name:      "uptime_seconds",
			Help:      "Coordinator process uptime in seconds.",
		},
		func() float64 { return time.Since(startTime).Seconds() },
	)
)

func init() {
	Registry.MustRegister(RequestsTotal, RequestDuration, RegisteredHosts, EventsRecorded, uptime)
}

// MetricsHandler serves the registry, mounted at /metrics.
func MetricsHandler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// Instrument wraps a handler to record request counts and latency under the
// given op label.
func Instrument(op string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		next.ServeHTTP(sw, r)

		class := strconv.Itoa(sw.status/100) + "xx"
		RequestsTotal.WithLabelValues(op, class).Inc()
		RequestDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	})
}
