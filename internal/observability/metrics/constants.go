// Package metrics provides constants used across metric definitions.
package metrics

// Label values for localization outcomes besides the strategy names.
const (
	// OutcomeCache is recorded when a localization was answered from the memo.
	OutcomeCache = "cache"
	// OutcomeMiss is recorded when no strategy found a localized name.
	OutcomeMiss = "miss"
)

// Label values for outbound HTTP results.
const (
	// StatusTransportError replaces the status code when no response arrived.
	StatusTransportError = "error"
	// HostUnknown is used when a request carries no URL host.
	HostUnknown = "unknown"
)

// Histogram bucket configuration constants.
const (
	// BucketStart10ms is the starting bucket for 10ms histograms (10ms to ~40s range).
	BucketStart10ms = 0.01
	// BucketFactor2 is the common exponential growth factor of 2 for histogram buckets.
	BucketFactor2 = 2
	// BucketCount12 defines 12 exponential buckets.
	BucketCount12 = 12
)
