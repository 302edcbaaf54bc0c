package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "monkeywire",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total admin HTTP requests.",
		},
		[]string{"method", "route", "state", "status"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "monkeywire",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Admin HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route", "state", "status"},
	)
	recordsDispatched = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "monkeywire",
			Subsystem: "stream",
			Name:      "records_total",
			Help:      "Records dispatched from the application stream.",
		},
		[]string{"kind"},
	)
	parseErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "monkeywire",
			Subsystem: "stream",
			Name:      "parse_errors_total",
			Help:      "Complete records rejected for a bad shape.",
		},
		[]string{"kind"},
	)
	pendingBytes = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "monkeywire",
			Subsystem: "stream",
			Name:      "pending_bytes",
			Help:      "Bytes held back waiting for the rest of a document.",
		},
	)
	packetsSent = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "monkeywire",
			Subsystem: "playback",
			Name:      "packets_total",
			Help:      "Packets written to the application.",
		},
		[]string{"kind"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			httpRequests,
			httpDuration,
			recordsDispatched,
			parseErrors,
			pendingBytes,
			packetsSent,
		)
	})
}

// RecordHTTPRequest counts one admin request. state is the session phase
// the request was served in.
func RecordHTTPRequest(method, route, state string, status int, duration time.Duration) {
	RegisterMetrics()
	statusLabel := strconv.Itoa(status)
	httpRequests.WithLabelValues(method, route, state, statusLabel).Inc()
	httpDuration.WithLabelValues(method, route, state, statusLabel).Observe(duration.Seconds())
}

func RecordDispatched(kind string) {
	RegisterMetrics()
	recordsDispatched.WithLabelValues(kind).Inc()
}

func RecordParseError(kind string) {
	RegisterMetrics()
	parseErrors.WithLabelValues(kind).Inc()
}

func SetPendingBytes(n int) {
	RegisterMetrics()
	pendingBytes.Set(float64(n))
}

func RecordPacketSent(kind string) {
	RegisterMetrics()
	packetsSent.WithLabelValues(kind).Inc()
}
