// Package metrics records run counters for a migration in a private
// prometheus registry. A one-shot run has nothing to scrape it, so the
// registry is flushed to a node_exporter textfile at the end.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "catalogbridge"

// Recorder holds the counters of one run.
type Recorder struct {
	registry *prometheus.Registry

	products   *prometheus.CounterVec
	media      *prometheus.CounterVec
	categories prometheus.Counter
	requests   *prometheus.CounterVec
}

// New creates a Recorder with its own registry.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		products: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "products_total",
				Help:      "Target products processed, by outcome.",
			},
			[]string{"outcome"},
		),
		media: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "media_total",
				Help:      "Source images processed, by action.",
			},
			[]string{"action"},
		),
		categories: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "categories_created_total",
				Help:      "Categories created in the target catalog.",
			},
		),
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "api_requests_total",
				Help:      "HTTP requests sent, by API, method and status class.",
			},
			[]string{"api", "method", "status"},
		),
	}
	r.registry.MustRegister(r.products, r.media, r.categories, r.requests)
	return r
}

// Product counts one product outcome.
func (r *Recorder) Product(outcome string) {
	if r == nil {
		return
	}
	r.products.WithLabelValues(outcome).Inc()
}

// Media counts one image action (created, reused, failed).
func (r *Recorder) Media(action string) {
	if r == nil {
		return
	}
	r.media.WithLabelValues(action).Inc()
}

// CategoryCreated counts one created category.
func (r *Recorder) CategoryCreated() {
	if r == nil {
		return
	}
	r.categories.Inc()
}

// Request counts one HTTP exchange. A status of 0 means the request never got a response.
func (r *Recorder) Request(api, method string, status int) {
	if r == nil {
		return
	}
	r.requests.WithLabelValues(api, method, classifyStatus(status)).Inc()
}

// Gatherer exposes the registry, mainly for tests.
func (r *Recorder) Gatherer() prometheus.Gatherer {
	return r.registry
}

// WriteTextfile writes all counters in the text exposition format.
func (r *Recorder) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.registry)
}

// classifyStatus folds an HTTP status code into its class.
func classifyStatus(statusCode int) string {
	switch {
	case statusCode == 0:
		return "error"
	case statusCode >= 100 && statusCode < 600:
		return strconv.Itoa(statusCode/100) + "xx"
	}
	return "unknown"
}
