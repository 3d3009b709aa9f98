// Package metrics provides Prometheus metrics for the RetinaScan client and
// the development backend.
package metrics

import (
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels for operation counters.
const (
	OutcomeSuccess     = "success"
	OutcomeTransport   = "transport_failure"
	OutcomeApplication = "application_failure"
	OutcomeValidation  = "validation_failure"
	OutcomeRejected    = "rejected"
	OutcomeStale       = "stale"
)

// ClientMetrics contains the metrics recorded by the view controller and its HTTP client.
type ClientMetrics struct {
	Operations        *prometheus.CounterVec
	OperationDuration *prometheus.HistogramVec
	HTTPRequests      *prometheus.CounterVec
	HTTPLatency       *prometheus.HistogramVec
	Notifications     *prometheus.CounterVec
	UploadSize        prometheus.Histogram

	inflight sync.Map // *http.Request -> time.Time
}

// NewClientMetrics creates and registers the client metrics.
func NewClientMetrics(registry *prometheus.Registry) (*ClientMetrics, error) {
	m := &ClientMetrics{}
	m.initMetrics()
	if err := registry.Register(m); err != nil {
		return nil, fmt.Errorf("failed to register client metrics: %w", err)
	}
	return m, nil
}

func (m *ClientMetrics) initMetrics() {
	m.Operations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "retinascan_operations_total",
		Help: "User actions handled by the view controller, by operation and outcome",
	}, []string{"operation", "outcome"})

	m.OperationDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "retinascan_operation_duration_seconds",
		Help:    "Time from user action to rendered outcome",
		Buckets: prometheus.ExponentialBuckets(0.005, 2, 12),
	}, []string{"operation"})

	m.HTTPRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "retinascan_http_requests_total",
		Help: "Backend requests by method, path and status code",
	}, []string{"method", "path", "status"})

	m.HTTPLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "retinascan_http_request_duration_seconds",
		Help:    "Backend request latency",
		Buckets: prometheus.ExponentialBuckets(0.005, 2, 12),
	}, []string{"method", "path"})

	m.Notifications = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "retinascan_notifications_total",
		Help: "Toast notifications shown, by type",
	}, []string{"type"})

	m.UploadSize = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "retinascan_upload_size_bytes",
		Help:    "Size of images submitted for analysis",
		Buckets: prometheus.ExponentialBuckets(16*1024, 2, 10),
	})
}

// RecordOperation counts one finished operation and its duration.
func (m *ClientMetrics) RecordOperation(operation, outcome string, d time.Duration) {
	m.Operations.WithLabelValues(operation, outcome).Inc()
	m.OperationDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// RecordNotification counts one toast.
func (m *ClientMetrics) RecordNotification(toastType string) {
	m.Notifications.WithLabelValues(toastType).Inc()
}

// ObserveUpload records an upload size.
func (m *ClientMetrics) ObserveUpload(sizeBytes int) {
	m.UploadSize.Observe(float64(sizeBytes))
}

// HTTPHooks is satisfied by *httpclient.Client.
type HTTPHooks interface {
	SetBeforeRequestHook(fn func(*http.Request))
	SetAfterResponseHook(fn func(*http.Request, *http.Response, error))
}

// Instrument installs request counting and latency hooks on c.
func (m *ClientMetrics) Instrument(c HTTPHooks) {
	c.SetBeforeRequestHook(func(req *http.Request) {
		m.inflight.Store(req, time.Now())
	})
	c.SetAfterResponseHook(func(req *http.Request, resp *http.Response, err error) {
		status := "error"
		if err == nil && resp != nil {
			status = strconv.Itoa(resp.StatusCode)
		}
		m.HTTPRequests.WithLabelValues(req.Method, req.URL.Path, status).Inc()
		if v, ok := m.inflight.LoadAndDelete(req); ok {
			if start, ok := v.(time.Time); ok {
				m.HTTPLatency.WithLabelValues(req.Method, req.URL.Path).Observe(time.Since(start).Seconds())
			}
		}
	})
}

// Describe implements the prometheus.Collector interface.
func (m *ClientMetrics) Describe(ch chan<- *prometheus.Desc) {
	m.Operations.Describe(ch)
	m.OperationDuration.Describe(ch)
	m.HTTPRequests.Describe(ch)
	m.HTTPLatency.Describe(ch)
	m.Notifications.Describe(ch)
	m.UploadSize.Describe(ch)
}

// Collect implements the prometheus.Collector interface.
func (m *ClientMetrics) Collect(ch chan<- prometheus.Metric) {
	m.Operations.Collect(ch)
	m.OperationDuration.Collect(ch)
	m.HTTPRequests.Collect(ch)
	m.HTTPLatency.Collect(ch)
	m.Notifications.Collect(ch)
	m.UploadSize.Collect(ch)
}
