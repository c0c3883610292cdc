package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/pinggame/pingharvest/internal/errors"
)

// ErrorMetrics counts structured errors by component and category.
type ErrorMetrics struct {
	errorsTotal *prometheus.CounterVec
	registry    *prometheus.Registry
}

// NewErrorMetrics creates and registers error metrics
func NewErrorMetrics(registry *prometheus.Registry) (*ErrorMetrics, error) {
	m := &ErrorMetrics{registry: registry}
	m.errorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pingharvest_errors_total",
			Help: "Total number of structured errors built, by component and category",
		},
		[]string{"component", "category"},
	)
	if err := registry.Register(m); err != nil {
		return nil, fmt.Errorf("failed to register error metrics: %w", err)
	}
	return m, nil
}

// Hook returns an error hook suitable for errors.AddErrorHook
func (m *ErrorMetrics) Hook() errors.ErrorHook {
	return func(ee *errors.EnhancedError) {
		m.errorsTotal.WithLabelValues(ee.GetComponent(), ee.GetCategory()).Inc()
	}
}

// Collect implements the prometheus.Collector interface.
func (m *ErrorMetrics) Collect(ch chan<- prometheus.Metric) {
	m.errorsTotal.Collect(ch)
}

// Describe implements the prometheus.Collector interface.
func (m *ErrorMetrics) Describe(ch chan<- *prometheus.Desc) {
	m.errorsTotal.Describe(ch)
}
