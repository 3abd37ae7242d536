// Package prometheus defines the service metrics and their registration.
package prometheus

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector owns every metric the service exposes.
type Collector struct {
	registry *prometheus.Registry

	assessments   *prometheus.CounterVec
	resolutions   *prometheus.CounterVec
	modelDuration prometheus.Histogram
	httpRequests  *prometheus.CounterVec
	httpDuration  *prometheus.HistogramVec
	reportsSaved  prometheus.Counter
}

// NewCollector builds and registers every metric on a fresh registry.
func NewCollector() *Collector {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())

	c := &Collector{
		registry: registry,
		assessments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "patlytics_assessments_total",
			Help: "Infringement assessments by outcome.",
		}, []string{"outcome"}),
		resolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "patlytics_company_resolutions_total",
			Help: "Company resolutions by tier.",
		}, []string{"tier"}),
		modelDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "patlytics_model_invocation_seconds",
			Help:    "Language model invocation latency.",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30, 60},
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "patlytics_http_requests_total",
			Help: "HTTP requests by method, route, and status.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "patlytics_http_request_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		reportsSaved: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "patlytics_reports_saved_total",
			Help: "Reports persisted successfully.",
		}),
	}
	registry.MustRegister(
		c.assessments,
		c.resolutions,
		c.modelDuration,
		c.httpRequests,
		c.httpDuration,
		c.reportsSaved,
	)
	return c
}

// RecordAssessment counts one completed pipeline run.  A zero duration
// means the pipeline never reached the model.
func (c *Collector) RecordAssessment(outcome string, modelDuration time.Duration) {
	c.assessments.WithLabelValues(outcome).Inc()
	if modelDuration > 0 {
		c.modelDuration.Observe(modelDuration.Seconds())
	}
}

// RecordResolution counts one company resolution by tier.
func (c *Collector) RecordResolution(tier string) {
	c.resolutions.WithLabelValues(tier).Inc()
}

// RecordHTTPRequest counts one served request.
func (c *Collector) RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	c.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.httpDuration.WithLabelValues(route).Observe(duration.Seconds())
}

// RecordReportSaved counts one persisted report.
func (c *Collector) RecordReportSaved() {
	c.reportsSaved.Inc()
}

// Handler returns the scrape endpoint for this collector's registry.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// Nop is a metrics sink that discards everything.  Tests use it.
type Nop struct{}

func (Nop) RecordAssessment(string, time.Duration) {}
func (Nop) RecordResolution(string)                {}
func (Nop) RecordReportSaved()                     {}
