package metrics

import "time"

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

// IncLoginSuccess is a no-op.
func (n *NoopRecorder) IncLoginSuccess() {}

// IncLoginFailure is a no-op.
func (n *NoopRecorder) IncLoginFailure(reason string) {}

// IncRegistration is a no-op.
func (n *NoopRecorder) IncRegistration() {}

// IncTokenRejected is a no-op.
func (n *NoopRecorder) IncTokenRejected(reason string) {}

// IncSeriesCacheHit is a no-op.
func (n *NoopRecorder) IncSeriesCacheHit() {}

// IncSeriesCacheMiss is a no-op.
func (n *NoopRecorder) IncSeriesCacheMiss() {}

// ObserveSeriesLookupDuration is a no-op.
func (n *NoopRecorder) ObserveSeriesLookupDuration(duration time.Duration) {}

// IncAnalysisStored is a no-op.
func (n *NoopRecorder) IncAnalysisStored() {}

// IncSimulationStored is a no-op.
func (n *NoopRecorder) IncSimulationStored() {}
