// Package observability wires the Prometheus registry used by the client and
// the development backend.
package observability

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tphakala/retinascan/internal/observability/metrics"
)

// Metrics holds all the metric collectors for the application.
type Metrics struct {
	registry  *prometheus.Registry
	Client    *metrics.ClientMetrics
	DevServer *metrics.DevServerMetrics
}

// NewMetrics creates a registry with all collectors registered.
func NewMetrics() (*Metrics, error) {
	registry := prometheus.NewRegistry()

	clientMetrics, err := metrics.NewClientMetrics(registry)
	if err != nil {
		return nil, fmt.Errorf("failed to create client metrics: %w", err)
	}

	devServerMetrics, err := metrics.NewDevServerMetrics(registry)
	if err != nil {
		return nil, fmt.Errorf("failed to create devserver metrics: %w", err)
	}

	return &Metrics{
		registry:  registry,
		Client:    clientMetrics,
		DevServer: devServerMetrics,
	}, nil
}

// Registry returns the underlying registry, e.g. for metrics.Summarize.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		ErrorHandling: promhttp.HTTPErrorOnError,
	})
}
