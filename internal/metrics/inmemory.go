package metrics

import (
	"sync"
	"sync/atomic"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	LoginSuccess        uint64
	LoginFailures       map[string]uint64
	Registrations       uint64
	TokensRejected      map[string]uint64
	SeriesCacheHits     uint64
	SeriesCacheMisses   uint64
	SeriesLookupCount   uint64
	SeriesLookupTotalNs int64
	AnalysesStored      uint64
	SimulationsStored   uint64
}

// InMemoryRecorder stores metrics in memory for tests and diagnostics.
type InMemoryRecorder struct {
	loginSuccess        uint64
	registrations       uint64
	seriesCacheHits     uint64
	seriesCacheMisses   uint64
	seriesLookupCount   uint64
	seriesLookupTotalNs int64
	analysesStored      uint64
	simulationsStored   uint64

	mu             sync.Mutex
	loginFailures  map[string]uint64
	tokensRejected map[string]uint64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{
		loginFailures:  make(map[string]uint64),
		tokensRejected: make(map[string]uint64),
	}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	m.mu.Lock()
	failures := make(map[string]uint64, len(m.loginFailures))
	for k, v := range m.loginFailures {
		failures[k] = v
	}
	rejected := make(map[string]uint64, len(m.tokensRejected))
	for k, v := range m.tokensRejected {
		rejected[k] = v
	}
	m.mu.Unlock()

	return Snapshot{
		LoginSuccess:        atomic.LoadUint64(&m.loginSuccess),
		LoginFailures:       failures,
		Registrations:       atomic.LoadUint64(&m.registrations),
		TokensRejected:      rejected,
		SeriesCacheHits:     atomic.LoadUint64(&m.seriesCacheHits),
		SeriesCacheMisses:   atomic.LoadUint64(&m.seriesCacheMisses),
		SeriesLookupCount:   atomic.LoadUint64(&m.seriesLookupCount),
		SeriesLookupTotalNs: atomic.LoadInt64(&m.seriesLookupTotalNs),
		AnalysesStored:      atomic.LoadUint64(&m.analysesStored),
		SimulationsStored:   atomic.LoadUint64(&m.simulationsStored),
	}
}

// IncLoginSuccess increments the successful login counter.
func (m *InMemoryRecorder) IncLoginSuccess() {
	atomic.AddUint64(&m.loginSuccess, 1)
}

// IncLoginFailure increments the login failure counter for a reason.
func (m *InMemoryRecorder) IncLoginFailure(reason string) {
	m.mu.Lock()
	m.loginFailures[reason]++
	m.mu.Unlock()
}

// IncRegistration increments the registration counter.
func (m *InMemoryRecorder) IncRegistration() {
	atomic.AddUint64(&m.registrations, 1)
}

// IncTokenRejected increments the token rejection counter for a reason.
func (m *InMemoryRecorder) IncTokenRejected(reason string) {
	m.mu.Lock()
	m.tokensRejected[reason]++
	m.mu.Unlock()
}

// IncSeriesCacheHit increments the series cache hit counter.
func (m *InMemoryRecorder) IncSeriesCacheHit() {
	atomic.AddUint64(&m.seriesCacheHits, 1)
}

// IncSeriesCacheMiss increments the series cache miss counter.
func (m *InMemoryRecorder) IncSeriesCacheMiss() {
	atomic.AddUint64(&m.seriesCacheMisses, 1)
}

// ObserveSeriesLookupDuration records a series lookup duration.
func (m *InMemoryRecorder) ObserveSeriesLookupDuration(duration time.Duration) {
	atomic.AddUint64(&m.seriesLookupCount, 1)
	atomic.AddInt64(&m.seriesLookupTotalNs, duration.Nanoseconds())
}

// IncAnalysisStored increments the stored analysis counter.
func (m *InMemoryRecorder) IncAnalysisStored() {
	atomic.AddUint64(&m.analysesStored, 1)
}

// IncSimulationStored increments the stored simulation counter.
func (m *InMemoryRecorder) IncSimulationStored() {
	atomic.AddUint64(&m.simulationsStored, 1)
}
