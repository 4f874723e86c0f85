package client

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records pipeline activity. A nil *Metrics records nothing.
type Metrics struct {
	attempts  *prometheus.CounterVec
	retries   *prometheus.CounterVec
	duration  *prometheus.HistogramVec
	refreshes *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		attempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "clutch_client_attempts_total",
				Help: "HTTP attempts by method and classified outcome.",
			},
			[]string{"method", "outcome"},
		),
		retries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "clutch_client_retries_total",
				Help: "Retries scheduled after a transient failure.",
			},
			[]string{"method"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "clutch_client_attempt_duration_seconds",
				Help:    "Latency of single HTTP attempts in seconds.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method"},
		),
		refreshes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "clutch_client_token_refresh_total",
				Help: "Access token refreshes by result.",
			},
			[]string{"result"},
		),
	}
	reg.MustRegister(m.attempts, m.retries, m.duration, m.refreshes)
	return m
}

// Interceptor measures each attempt; place it directly above the transport.
func (m *Metrics) Interceptor() Interceptor {
	if m == nil {
		return nil
	}
	return func(next Handler) Handler {
		return func(ctx context.Context, req *Request) (*http.Response, error) {
			start := time.Now()
			resp, err := next(ctx, req)
			m.duration.WithLabelValues(req.Method()).Observe(time.Since(start).Seconds())
			m.attempts.WithLabelValues(req.Method(), Classify(resp, err).Kind.String()).Inc()
			return resp, err
		}
	}
}

func (m *Metrics) retried(method string) {
	if m == nil {
		return
	}
	m.retries.WithLabelValues(method).Inc()
}

func (m *Metrics) refreshed(result string) {
	if m == nil {
		return
	}
	m.refreshes.WithLabelValues(result).Inc()
}
