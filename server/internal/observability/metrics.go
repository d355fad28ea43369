package observability

import (
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// Metrics collects counters for bot turns, events and recognizer latency.
// It also implements EventRecorder, counting events by name.
type Metrics struct {
	mu sync.Mutex

	turnTotal  atomic.Int64
	turnFailed atomic.Int64

	events    map[string]*atomic.Int64
	providers map[string]*ProviderMetrics

	// Last maxDurations recognizer durations.
	durations    []time.Duration
	maxDurations int
}

// ProviderMetrics represents metrics for one recognizer provider.
type ProviderMetrics struct {
	callCount     atomic.Int64
	totalDuration atomic.Int64 // milliseconds
	errorCount    atomic.Int64
}

// NewMetrics creates a new metrics collector.
func NewMetrics(maxDurations int) *Metrics {
	if maxDurations <= 0 {
		maxDurations = 1000
	}
	return &Metrics{
		events:       make(map[string]*atomic.Int64),
		providers:    make(map[string]*ProviderMetrics),
		durations:    make([]time.Duration, 0, maxDurations),
		maxDurations: maxDurations,
	}
}

// RecordTurn records a handled turn.
func (m *Metrics) RecordTurn() {
	m.turnTotal.Add(1)
}

// RecordTurnFailure records a turn that ended in an error.
func (m *Metrics) RecordTurnFailure() {
	m.turnFailed.Add(1)
}

// RecordEvent counts the event by name.
func (m *Metrics) RecordEvent(name string, _ ...slog.Attr) {
	m.mu.Lock()
	c, ok := m.events[name]
	if !ok {
		c = &atomic.Int64{}
		m.events[name] = c
	}
	m.mu.Unlock()
	c.Add(1)
}

// RecordRecognition records one recognizer call.
func (m *Metrics) RecordRecognition(provider string, duration time.Duration, err error) {
	m.mu.Lock()
	if len(m.durations) >= m.maxDurations {
		m.durations = m.durations[1:]
	}
	m.durations = append(m.durations, duration)
	pm := m.providerLocked(provider)
	m.mu.Unlock()

	pm.callCount.Add(1)
	pm.totalDuration.Add(duration.Milliseconds())
	if err != nil {
		pm.errorCount.Add(1)
	}
}

func (m *Metrics) providerLocked(provider string) *ProviderMetrics {
	pm, ok := m.providers[provider]
	if !ok {
		pm = &ProviderMetrics{}
		m.providers[provider] = pm
	}
	return pm
}

// EventCount returns how many times name was recorded.
func (m *Metrics) EventCount(name string) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.events[name]; ok {
		return c.Load()
	}
	return 0
}

// Reset resets all metrics.
func (m *Metrics) Reset() {
	m.turnTotal.Store(0)
	m.turnFailed.Store(0)

	m.mu.Lock()
	m.events = make(map[string]*atomic.Int64)
	m.providers = make(map[string]*ProviderMetrics)
	m.durations = make([]time.Duration, 0, m.maxDurations)
	m.mu.Unlock()
}

// Snapshot returns a snapshot of current metrics.
func (m *Metrics) Snapshot() *MetricsSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	events := make(map[string]int64, len(m.events))
	for name, c := range m.events {
		events[name] = c.Load()
	}
	providers := make(map[string]*ProviderSnapshot, len(m.providers))
	for name, pm := range m.providers {
		ps := &ProviderSnapshot{
			CallCount:     pm.callCount.Load(),
			TotalDuration: pm.totalDuration.Load(),
			ErrorCount:    pm.errorCount.Load(),
		}
		if ps.CallCount > 0 {
			ps.AverageDuration = ps.TotalDuration / ps.CallCount
		}
		providers[name] = ps
	}

	return &MetricsSnapshot{
		TurnTotal:     m.turnTotal.Load(),
		TurnFailed:    m.turnFailed.Load(),
		Events:        events,
		Providers:     providers,
		DurationCount: len(m.durations),
		P95Duration:   percentile(m.durations, 0.95).Milliseconds(),
	}
}

func percentile(durations []time.Duration, p float64) time.Duration {
	if len(durations) == 0 {
		return 0
	}
	sorted := make([]time.Duration, len(durations))
	copy(sorted, durations)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	idx := int(float64(len(sorted)-1) * p)
	return sorted[idx]
}

// MetricsSnapshot represents a point-in-time snapshot of metrics.
type MetricsSnapshot struct {
	TurnTotal     int64                        `json:"turn_total"`
	TurnFailed    int64                        `json:"turn_failed"`
	Events        map[string]int64             `json:"events"`
	Providers     map[string]*ProviderSnapshot `json:"providers"`
	DurationCount int                          `json:"duration_count"`
	P95Duration   int64                        `json:"p95_duration_ms"`
}

// ProviderSnapshot represents metrics for one recognizer provider.
type ProviderSnapshot struct {
	CallCount       int64 `json:"call_count"`
	TotalDuration   int64 `json:"total_duration_ms"`
	ErrorCount      int64 `json:"error_count"`
	AverageDuration int64 `json:"average_duration_ms"`
}

// SuccessRate returns the turn success rate as a percentage (0-100).
func (s *MetricsSnapshot) SuccessRate() float64 {
	if s.TurnTotal == 0 {
		return 100.0
	}
	return float64(s.TurnTotal-s.TurnFailed) / float64(s.TurnTotal) * 100.0
}

var _ EventRecorder = (*Metrics)(nil)
var _ EventRecorder = (*SlogRecorder)(nil)
