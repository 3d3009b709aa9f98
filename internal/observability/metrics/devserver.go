package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// DevServerMetrics contains metrics for the stand-in backend.
type DevServerMetrics struct {
	Requests     *prometheus.CounterVec
	Predictions  *prometheus.CounterVec
	Users        prometheus.Gauge
	RateLimited  prometheus.Counter
	ClassifyTime prometheus.Histogram
	CacheHits    prometheus.Counter
}

// NewDevServerMetrics creates and registers the dev server metrics.
func NewDevServerMetrics(registry *prometheus.Registry) (*DevServerMetrics, error) {
	m := &DevServerMetrics{
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "retinascan_devserver_requests_total",
			Help: "Requests served by the development backend",
		}, []string{"method", "route", "status"}),
		Predictions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "retinascan_devserver_predictions_total",
			Help: "Predictions made by the stub classifier, by grade",
		}, []string{"grade"}),
		Users: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "retinascan_devserver_users",
			Help: "Registered accounts",
		}),
		RateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "retinascan_devserver_rate_limited_total",
			Help: "Auth requests rejected by the rate limiter",
		}),
		ClassifyTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "retinascan_devserver_classify_seconds",
			Help:    "Stub classifier latency",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 10),
		}),
		CacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "retinascan_devserver_classify_cache_hits_total",
			Help: "Uploads answered from the classification cache",
		}),
	}
	if err := registry.Register(m); err != nil {
		return nil, fmt.Errorf("failed to register devserver metrics: %w", err)
	}
	return m, nil
}

// Describe implements the prometheus.Collector interface.
func (m *DevServerMetrics) Describe(ch chan<- *prometheus.Desc) {
	m.Requests.Describe(ch)
	m.Predictions.Describe(ch)
	m.Users.Describe(ch)
	m.RateLimited.Describe(ch)
	m.ClassifyTime.Describe(ch)
	m.CacheHits.Describe(ch)
}

// Collect implements the prometheus.Collector interface.
func (m *DevServerMetrics) Collect(ch chan<- prometheus.Metric) {
	m.Requests.Collect(ch)
	m.Predictions.Collect(ch)
	m.Users.Collect(ch)
	m.RateLimited.Collect(ch)
	m.ClassifyTime.Collect(ch)
	m.CacheHits.Collect(ch)
}
