// Package metrics exposes Prometheus collectors for analyses, publishing
// and the HTTP surface of the serve command.
package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/harrison/verdict/internal/models"
	"github.com/harrison/verdict/internal/publish"
)

const namespace = "verdict"

// Publish outcomes used as the result label of publish_total.
const (
	PublishOK      = "ok"
	PublishDropped = "dropped"
	PublishError   = "error"
)

// Collector owns a private registry with every verdict collector.
type Collector struct {
	registry         *prometheus.Registry
	analysesTotal    *prometheus.CounterVec
	analysisDuration prometheus.Histogram
	publishTotal     *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	requestTotal     *prometheus.CounterVec
}

// NewCollector constructs a Collector and registers its metrics.
func NewCollector() (*Collector, error) {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		analysesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analyses_total",
			Help:      "Total number of classified submissions.",
		}, []string{"type", "pattern", "category"}),
		analysisDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "analysis_duration_seconds",
			Help:      "Time spent classifying a submission.",
			Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1},
		}),
		publishTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "publish_total",
			Help:      "Reports handed to the publisher, by outcome.",
		}, []string{"result"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Latency distribution for inbound HTTP requests.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
		requestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of inbound HTTP requests.",
		}, []string{"method", "path", "status"}),
	}

	for _, col := range []prometheus.Collector{
		c.analysesTotal,
		c.analysisDuration,
		c.publishTotal,
		c.requestDuration,
		c.requestTotal,
	} {
		if err := c.registry.Register(col); err != nil {
			return nil, err
		}
	}

	return c, nil
}

// Registry returns the underlying registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// ObserveAnalysis counts an analysis and records how long it took.
func (c *Collector) ObserveAnalysis(a models.ErrorAnalysis, took time.Duration) {
	c.analysesTotal.WithLabelValues(string(a.ErrorType), string(a.ErrorPattern), string(a.ErrorCategory)).Inc()
	c.analysisDuration.Observe(took.Seconds())
}

// ObservePublish counts a publish attempt. A full async queue is reported
// as dropped rather than as an error.
func (c *Collector) ObservePublish(err error) {
	c.publishTotal.WithLabelValues(publishResult(err)).Inc()
}

func publishResult(err error) string {
	switch {
	case err == nil:
		return PublishOK
	case errors.Is(err, publish.ErrQueueFull):
		return PublishDropped
	default:
		return PublishError
	}
}

// Handler returns an HTTP handler for exposing Prometheus metrics.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// InstrumentHandler wraps the provided handler to record HTTP metrics.
// When next is a ServeMux the path label is the matched route pattern;
// otherwise it is the request path.
func (c *Collector) InstrumentHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rw := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rw, r)

		path := r.Pattern
		if path == "" {
			path = r.URL.Path
		}
		status := strconv.Itoa(rw.status)
		c.requestTotal.WithLabelValues(r.Method, path, status).Inc()
		c.requestDuration.WithLabelValues(r.Method, path, status).Observe(time.Since(start).Seconds())
	})
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (w *responseWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
