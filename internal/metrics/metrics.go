// Package metrics exposes Prometheus instrumentation for session operations and HTTP traffic.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "session_server"

// Outcome labels
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Recorder observes session operations. A nil *Recorder is a no-op.
type Recorder struct {
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	requests   *prometheus.CounterVec
}

// NewRecorder creates the collectors and registers them with reg
func NewRecorder(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operations_total",
			Help:      "Session operations by name, outcome and error kind.",
		}, []string{"op", "outcome", "kind"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_duration_seconds",
			Help:      "Latency of session operations.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"op"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status"}),
	}
	reg.MustRegister(r.operations, r.duration, r.requests)
	return r
}

// Observe records one completed operation. kind is the error kind, empty on success.
func (r *Recorder) Observe(op string, started time.Time, kind string) {
	if r == nil {
		return
	}
	outcome := OutcomeSuccess
	if kind != "" {
		outcome = OutcomeFailure
	}
	r.operations.WithLabelValues(op, outcome, kind).Inc()
	r.duration.WithLabelValues(op).Observe(time.Since(started).Seconds())
}

// ObserveRequest counts one HTTP response
func (r *Recorder) ObserveRequest(method, route, status string) {
	if r == nil {
		return
	}
	r.requests.WithLabelValues(method, route, status).Inc()
}
