// Package observability wires the Prometheus collectors of a harvest run into
// one registry and exports it to a Pushgateway when the run ends.
package observability

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/push"

	"github.com/pinggame/pingharvest/internal/errors"
	"github.com/pinggame/pingharvest/internal/observability/metrics"
)

// Metrics holds all the metric collectors for the application.
type Metrics struct {
	registry *prometheus.Registry
	Harvest  *metrics.HarvestMetrics
	HTTP     *metrics.HTTPClientMetrics
	Errors   *metrics.ErrorMetrics
}

// NewMetrics creates a new instance of Metrics, initializing all metric collectors
// on a fresh registry.
// It returns an error if any metric collector fails to initialize.
func NewMetrics() (*Metrics, error) {
	registry := prometheus.NewRegistry()

	harvestMetrics, err := metrics.NewHarvestMetrics(registry)
	if err != nil {
		return nil, fmt.Errorf("failed to create harvest metrics: %w", err)
	}

	httpMetrics, err := metrics.NewHTTPClientMetrics(registry)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP client metrics: %w", err)
	}

	errorMetrics, err := metrics.NewErrorMetrics(registry)
	if err != nil {
		return nil, fmt.Errorf("failed to create error metrics: %w", err)
	}

	if err := registry.Register(collectors.NewGoCollector()); err != nil {
		return nil, fmt.Errorf("failed to register Go collector: %w", err)
	}

	return &Metrics{
		registry: registry,
		Harvest:  harvestMetrics,
		HTTP:     httpMetrics,
		Errors:   errorMetrics,
	}, nil
}

// Registry returns the registry all collectors are registered on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Push sends the registry to a Prometheus Pushgateway under job, grouped by run ID.
func (m *Metrics) Push(ctx context.Context, gatewayURL, job, runID string) error {
	pusher := push.New(gatewayURL, job).Gatherer(m.registry)
	if runID != "" {
		pusher = pusher.Grouping("run_id", runID)
	}

	if err := pusher.PushContext(ctx); err != nil {
		return errors.New(err).
			Component("observability").
			Category(errors.CategoryNetwork).
			Context("operation", "pushgateway_push").
			Context("job", job).
			Build()
	}
	return nil
}
