// Package metrics provides custom Prometheus metrics for pingharvest.
package metrics

import "time"

// Recorder is the set of harvest events the orchestrator reports.
// Components depend on this interface rather than on Prometheus types.
type Recorder interface {
	// NamesDiscovered records the size of the discovery result.
	NamesDiscovered(n int)
	// NamesSelected records how many names survived shuffling and capping.
	NamesSelected(n int)
	// Localization records which strategy settled a lookup, or a miss/cache outcome.
	Localization(outcome string)
	// SearchRequest records one image search and the candidates it returned.
	SearchRequest(candidates int)
	// Download records one download attempt and its duration.
	Download(d time.Duration, err error)
	// RecordsWritten records the number of manifest entries persisted.
	RecordsWritten(n int)
}

// NopRecorder discards everything.
type NopRecorder struct{}

func (NopRecorder) NamesDiscovered(int) {}
func (NopRecorder) NamesSelected(int) {}
func (NopRecorder) Localization(string) {}
func (NopRecorder) SearchRequest(int) {}
func (NopRecorder) Download(time.Duration, error) {}
func (NopRecorder) RecordsWritten(int) {}

var _ Recorder = NopRecorder{}
