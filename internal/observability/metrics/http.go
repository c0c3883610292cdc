package metrics

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// HTTPClientMetrics counts outbound HTTP requests made by the image search
// and download stages.
type HTTPClientMetrics struct {
	requestsTotal *prometheus.CounterVec
	registry      *prometheus.Registry
}

// NewHTTPClientMetrics creates and registers outbound HTTP metrics
func NewHTTPClientMetrics(registry *prometheus.Registry) (*HTTPClientMetrics, error) {
	m := &HTTPClientMetrics{registry: registry}
	m.requestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pingharvest_http_requests_total",
			Help: "Total number of outbound HTTP requests",
		},
		[]string{"host", "status_code"}, // status_code: 200, 404 or "error" when no response arrived
	)
	if err := registry.Register(m); err != nil {
		return nil, fmt.Errorf("failed to register HTTP client metrics: %w", err)
	}
	return m, nil
}

// Observe records one request. Its signature matches httpclient's after-response hook.
func (m *HTTPClientMetrics) Observe(req *http.Request, resp *http.Response, err error) {
	host := HostUnknown
	if req != nil && req.URL != nil && req.URL.Host != "" {
		host = req.URL.Host
	}

	status := StatusTransportError
	if err == nil && resp != nil {
		status = strconv.Itoa(resp.StatusCode)
	}

	m.requestsTotal.WithLabelValues(host, status).Inc()
}

// Collect implements the prometheus.Collector interface.
func (m *HTTPClientMetrics) Collect(ch chan<- prometheus.Metric) {
	m.requestsTotal.Collect(ch)
}

// Describe implements the prometheus.Collector interface.
func (m *HTTPClientMetrics) Describe(ch chan<- *prometheus.Desc) {
	m.requestsTotal.Describe(ch)
}
