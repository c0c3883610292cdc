package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// HarvestMetrics contains all Prometheus metrics related to a harvest run.
type HarvestMetrics struct {
	NamesDiscoveredTotal prometheus.Counter
	NamesSelectedTotal   prometheus.Counter
	LocalizationsTotal   *prometheus.CounterVec
	SearchRequestsTotal  prometheus.Counter
	CandidatesTotal      prometheus.Counter
	DownloadsTotal       prometheus.Counter
	DownloadErrorsTotal  prometheus.Counter
	DownloadDuration     prometheus.Histogram
	RecordsWrittenTotal  prometheus.Counter
	registry             *prometheus.Registry
}

// NewHarvestMetrics creates a new instance of HarvestMetrics registered on registry.
func NewHarvestMetrics(registry *prometheus.Registry) (*HarvestMetrics, error) {
	m := &HarvestMetrics{registry: registry}
	m.initMetrics()
	if err := registry.Register(m); err != nil {
		return nil, fmt.Errorf("failed to register harvest metrics: %w", err)
	}
	return m, nil
}

// initMetrics initializes all metrics for HarvestMetrics.
func (m *HarvestMetrics) initMetrics() {
	m.NamesDiscoveredTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "pingharvest_names_discovered_total",
		Help: "Total number of entity names returned by discovery.",
	})

	m.NamesSelectedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "pingharvest_names_selected_total",
		Help: "Total number of entity names selected for harvesting.",
	})

	m.LocalizationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pingharvest_localizations_total",
		Help: "Localized name lookups by outcome (strategy name, miss or cache).",
	}, []string{"outcome"})

	m.SearchRequestsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "pingharvest_search_requests_total",
		Help: "Total number of image search requests.",
	})

	m.CandidatesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "pingharvest_candidates_total",
		Help: "Total number of candidate image URLs returned by search.",
	})

	m.DownloadsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "pingharvest_downloads_total",
		Help: "Total number of successful image downloads.",
	})

	m.DownloadErrorsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "pingharvest_download_errors_total",
		Help: "Total number of failed image downloads.",
	})

	m.DownloadDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "pingharvest_download_duration_seconds",
		Help:    "Duration of image downloads in seconds.",
		Buckets: prometheus.ExponentialBuckets(BucketStart10ms, BucketFactor2, BucketCount12),
	})

	m.RecordsWrittenTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "pingharvest_records_written_total",
		Help: "Total number of manifest records written.",
	})
}

// NamesDiscovered implements Recorder.
func (m *HarvestMetrics) NamesDiscovered(n int) {
	m.NamesDiscoveredTotal.Add(float64(n))
}

// NamesSelected implements Recorder.
func (m *HarvestMetrics) NamesSelected(n int) {
	m.NamesSelectedTotal.Add(float64(n))
}

// Localization implements Recorder.
func (m *HarvestMetrics) Localization(outcome string) {
	m.LocalizationsTotal.WithLabelValues(outcome).Inc()
}

// SearchRequest implements Recorder.
func (m *HarvestMetrics) SearchRequest(candidates int) {
	m.SearchRequestsTotal.Inc()
	m.CandidatesTotal.Add(float64(candidates))
}

// Download implements Recorder.
func (m *HarvestMetrics) Download(d time.Duration, err error) {
	m.DownloadDuration.Observe(d.Seconds())
	if err != nil {
		m.DownloadErrorsTotal.Inc()
		return
	}
	m.DownloadsTotal.Inc()
}

// RecordsWritten implements Recorder.
func (m *HarvestMetrics) RecordsWritten(n int) {
	m.RecordsWrittenTotal.Add(float64(n))
}

// Collect implements the prometheus.Collector interface.
func (m *HarvestMetrics) Collect(ch chan<- prometheus.Metric) {
	m.NamesDiscoveredTotal.Collect(ch)
	m.NamesSelectedTotal.Collect(ch)
	m.LocalizationsTotal.Collect(ch)
	m.SearchRequestsTotal.Collect(ch)
	m.CandidatesTotal.Collect(ch)
	m.DownloadsTotal.Collect(ch)
	m.DownloadErrorsTotal.Collect(ch)
	m.DownloadDuration.Collect(ch)
	m.RecordsWrittenTotal.Collect(ch)
}

// Describe implements the prometheus.Collector interface.
func (m *HarvestMetrics) Describe(ch chan<- *prometheus.Desc) {
	m.NamesDiscoveredTotal.Describe(ch)
	m.NamesSelectedTotal.Describe(ch)
	m.LocalizationsTotal.Describe(ch)
	m.SearchRequestsTotal.Describe(ch)
	m.CandidatesTotal.Describe(ch)
	m.DownloadsTotal.Describe(ch)
	m.DownloadErrorsTotal.Describe(ch)
	m.DownloadDuration.Describe(ch)
	m.RecordsWrittenTotal.Describe(ch)
}

var _ Recorder = (*HarvestMetrics)(nil)
