// Package metrics exposes Prometheus collectors for the HTTP surface and the
// AI providers.
package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MikeSquared-Agency/babel/internal/ai"
)

type Metrics struct {
	registry *prometheus.Registry

	requests         *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	providerCalls    *prometheus.CounterVec
	providerDuration *prometheus.HistogramVec
}

// New registers all collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		requests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "babel",
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status code.",
		}, []string{"method", "route", "status"}),
		requestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "babel",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		providerCalls: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "babel",
			Name:      "provider_calls_total",
			Help:      "AI provider calls by provider, operation and outcome.",
		}, []string{"provider", "operation", "outcome"}),
		providerDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "babel",
			Name:      "provider_call_duration_seconds",
			Help:      "AI provider round-trip latency.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60},
		}, []string{"provider", "operation"}),
	}
}

// Handler serves the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Middleware records request counts and latency keyed by chi route pattern,
// so path parameters do not explode label cardinality.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.requests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		m.requestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

func (m *Metrics) observe(provider, operation string, start time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.providerCalls.WithLabelValues(provider, operation, outcome).Inc()
	m.providerDuration.WithLabelValues(provider, operation).Observe(time.Since(start).Seconds())
}

// Completion wraps c so every Generate call is counted and timed.
func (m *Metrics) Completion(provider string, c ai.Completion) ai.Completion {
	return &instrumentedCompletion{next: c, provider: provider, m: m}
}

// Transcription wraps t so every Transcribe call is counted and timed.
func (m *Metrics) Transcription(provider string, t ai.Transcription) ai.Transcription {
	return &instrumentedTranscription{next: t, provider: provider, m: m}
}

type instrumentedCompletion struct {
	next     ai.Completion
	provider string
	m        *Metrics
}

func (c *instrumentedCompletion) Generate(ctx context.Context, prompt string, opts ai.Options) (string, error) {
	start := time.Now()
	out, err := c.next.Generate(ctx, prompt, opts)
	c.m.observe(c.provider, "generate", start, err)
	return out, err
}

type instrumentedTranscription struct {
	next     ai.Transcription
	provider string
	m        *Metrics
}

func (t *instrumentedTranscription) Transcribe(ctx context.Context, audio []byte) (string, error) {
	start := time.Now()
	out, err := t.next.Transcribe(ctx, audio)
	t.m.observe(t.provider, "transcribe", start, err)
	return out, err
}
