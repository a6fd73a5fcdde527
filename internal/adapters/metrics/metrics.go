package metrics

import (
	"net/http"
	"object-gateway/internal/core/domain"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "object_gateway"

// Metrics owns a Prometheus registry with the transfer and HTTP collectors
type Metrics struct {
	reg          *prometheus.Registry
	partBytes    *prometheus.CounterVec
	parts        *prometheus.CounterVec
	retries      *prometheus.CounterVec
	transfers    *prometheus.CounterVec
	transferTime *prometheus.HistogramVec
	inflight     prometheus.Gauge
	requests     *prometheus.CounterVec
	requestTime  *prometheus.HistogramVec
}

// New creates a Metrics instance with a fresh registry
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		reg: reg,
		partBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "transfer",
			Name:      "bytes_total",
			Help:      "Bytes moved by completed parts, partitioned by direction.",
		}, []string{"direction"}),
		parts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "transfer",
			Name:      "parts_total",
			Help:      "Completed parts, partitioned by direction.",
		}, []string{"direction"}),
		retries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "transfer",
			Name:      "retries_total",
			Help:      "Retried storage calls, partitioned by direction.",
		}, []string{"direction"}),
		transfers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "transfer",
			Name:      "finished_total",
			Help:      "Finished transfers, partitioned by direction and terminal state.",
		}, []string{"direction", "state"}),
		transferTime: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "transfer",
			Name:      "duration_seconds",
			Help:      "Histogram of transfer durations.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 14),
		}, []string{"direction", "state"}),
		inflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of inflight HTTP requests.",
		}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests processed, partitioned by status code and method.",
		}, []string{"code", "method"}),
		requestTime: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Histogram of latencies for HTTP requests.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"code", "method"}),
	}

	reg.MustRegister(
		m.partBytes,
		m.parts,
		m.retries,
		m.transfers,
		m.transferTime,
		m.inflight,
		m.requests,
		m.requestTime,
	)
	return m
}

func (m *Metrics) PartCompleted(direction domain.TransferDirection, bytes int64) {
	m.parts.WithLabelValues(string(direction)).Inc()
	m.partBytes.WithLabelValues(string(direction)).Add(float64(bytes))
}

func (m *Metrics) PartRetried(direction domain.TransferDirection) {
	m.retries.WithLabelValues(string(direction)).Inc()
}

func (m *Metrics) TransferFinished(direction domain.TransferDirection, state domain.TransferState, elapsed time.Duration) {
	m.transfers.WithLabelValues(string(direction), string(state)).Inc()
	m.transferTime.WithLabelValues(string(direction), string(state)).Observe(elapsed.Seconds())
}

// Handler serves the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.reg
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Middleware records inflight requests, request counts and latencies
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		m.inflight.Inc()
		defer m.inflight.Dec()

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		code := strconv.Itoa(rec.status)
		m.requests.WithLabelValues(code, r.Method).Inc()
		m.requestTime.WithLabelValues(code, r.Method).Observe(time.Since(start).Seconds())
	})
}
