// Package metrics exposes Prometheus metrics for the judge service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "judge"

// Metrics owns its registry so several instances can coexist in tests.
// A nil *Metrics records nothing.
type Metrics struct {
	registry *prometheus.Registry

	generateCalls   *prometheus.CounterVec
	projectsScored  *prometheus.CounterVec
	projectDuration prometheus.Histogram
	galleryProjects prometheus.Histogram

	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		generateCalls: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "generate_calls_total",
			Help:      "Calls to the generation service by outcome.",
		}, []string{"outcome"}),
		projectsScored: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "projects_scored_total",
			Help:      "Projects processed by the scoring flow, by outcome (ok, error).",
		}, []string{"outcome"}),
		projectDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "project_score_seconds",
			Help:      "Wall time to fetch and score a single project.",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 40, 80},
		}),
		galleryProjects: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "gallery_projects",
			Help:      "Projects discovered per gallery harvest.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
		}),
		httpRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by endpoint, method and status code.",
		}, []string{"endpoint", "method", "code"}),
		httpRequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by endpoint.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"endpoint", "method"}),
	}
}

func (m *Metrics) RecordGenerate(outcome string) {
	if m == nil {
		return
	}
	m.generateCalls.WithLabelValues(outcome).Inc()
}

func (m *Metrics) RecordProject(failed bool, d time.Duration) {
	if m == nil {
		return
	}
	outcome := "ok"
	if failed {
		outcome = "error"
	}
	m.projectsScored.WithLabelValues(outcome).Inc()
	m.projectDuration.Observe(d.Seconds())
}

func (m *Metrics) RecordGallery(n int) {
	if m == nil {
		return
	}
	m.galleryProjects.Observe(float64(n))
}

func (m *Metrics) RecordHTTP(endpoint, method string, code int, d time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(endpoint, method, strconv.Itoa(code)).Inc()
	m.httpRequestDuration.WithLabelValues(endpoint, method).Observe(d.Seconds())
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Middleware records status and latency for next under the endpoint label.
func (m *Metrics) Middleware(endpoint string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r)
		m.RecordHTTP(endpoint, r.Method, wrapped.statusCode, time.Since(start))
	}
}

// responseWriter captures the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
