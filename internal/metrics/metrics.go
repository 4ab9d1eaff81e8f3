// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	// Auth metrics
	IncLoginSuccess()
	IncLoginFailure(reason string) // reason: "credentials" or "deactivated"
	IncRegistration()
	IncTokenRejected(reason string) // reason: "missing", "invalid", "expired", "user_gone", "deactivated"

	// Data endpoint metrics
	IncSeriesCacheHit()
	IncSeriesCacheMiss()
	ObserveSeriesLookupDuration(duration time.Duration)

	// Insight metrics
	IncAnalysisStored()
	IncSimulationStored()
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
