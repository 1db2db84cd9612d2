// Package prometheus provides Prometheus instrumentation for the scrape pipeline.
package prometheus

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics bundles Prometheus collectors for the scrape pipeline.
type Metrics struct {
	Registry           *prometheus.Registry
	FetchesTotal       *prometheus.CounterVec
	FetchDuration      prometheus.Histogram
	ProductsSavedTotal prometheus.Counter
	TasksTotal         *prometheus.CounterVec
	TaskRetriesTotal   prometheus.Counter
	QueueDepth         prometheus.Gauge
	ProxyHealthy       prometheus.Gauge
	Completeness       prometheus.Histogram
}

// NewMetrics constructs and registers all metrics on a dedicated registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	fetches := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pricewatch_fetches_total",
			Help: "Total page fetches by platform and outcome.",
		},
		[]string{"platform", "outcome"},
	)
	fetchDuration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "pricewatch_fetch_duration_seconds",
			Help:    "Page fetch latency.",
			Buckets: prometheus.DefBuckets,
		},
	)
	productsSaved := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "pricewatch_products_saved_total",
			Help: "Total product snapshots saved.",
		},
	)
	tasks := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pricewatch_tasks_total",
			Help: "Total scrape tasks processed by result.",
		},
		[]string{"result"},
	)
	taskRetries := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "pricewatch_task_retries_total",
			Help: "Total task-level retries enqueued.",
		},
	)
	queueDepth := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "pricewatch_queue_depth",
			Help: "Pending tasks in the scrape queue.",
		},
	)
	proxyHealthy := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "pricewatch_proxy_pool_healthy",
			Help: "Healthy proxies reported by the pool.",
		},
	)
	completeness := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "pricewatch_product_completeness",
			Help:    "Completeness score of mapped products.",
			Buckets: prometheus.LinearBuckets(0, 0.1, 11),
		},
	)

	registry.MustRegister(fetches, fetchDuration, productsSaved, tasks, taskRetries, queueDepth, proxyHealthy, completeness)

	return &Metrics{
		Registry:           registry,
		FetchesTotal:       fetches,
		FetchDuration:      fetchDuration,
		ProductsSavedTotal: productsSaved,
		TasksTotal:         tasks,
		TaskRetriesTotal:   taskRetries,
		QueueDepth:         queueDepth,
		ProxyHealthy:       proxyHealthy,
		Completeness:       completeness,
	}
}

// Handler returns an HTTP handler serving the bundle's registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

// IncFetch increments the fetch counter for a platform and outcome.
func (m *Metrics) IncFetch(platform, outcome string) {
	if m == nil {
		return
	}
	m.FetchesTotal.WithLabelValues(platform, outcome).Inc()
}

// ObserveFetchDuration records a page fetch duration.
func (m *Metrics) ObserveFetchDuration(d time.Duration) {
	if m == nil {
		return
	}
	m.FetchDuration.Observe(d.Seconds())
}

// IncProductSaved increments the saved products counter.
func (m *Metrics) IncProductSaved() {
	if m == nil {
		return
	}
	m.ProductsSavedTotal.Inc()
}

// IncTask increments the task counter for a result label.
func (m *Metrics) IncTask(result string) {
	if m == nil {
		return
	}
	m.TasksTotal.WithLabelValues(result).Inc()
}

// IncTaskRetry increments the task retry counter.
func (m *Metrics) IncTaskRetry() {
	if m == nil {
		return
	}
	m.TaskRetriesTotal.Inc()
}

// SetQueueDepth records the current number of pending tasks.
func (m *Metrics) SetQueueDepth(n int) {
	if m == nil {
		return
	}
	m.QueueDepth.Set(float64(n))
}

// SetProxyHealthy records the number of healthy proxies in the pool.
func (m *Metrics) SetProxyHealthy(n int) {
	if m == nil {
		return
	}
	m.ProxyHealthy.Set(float64(n))
}

// ObserveCompleteness records a mapped product's completeness score.
func (m *Metrics) ObserveCompleteness(score float64) {
	if m == nil {
		return
	}
	m.Completeness.Observe(score)
}
