package database

import (
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Metrics tracks query counters for the health endpoint and periodic logs.
type Metrics struct {
	logger *zap.Logger

	queryCount    atomic.Int64
	errorCount    atomic.Int64
	slowQueries   atomic.Int64
	totalDuration atomic.Int64 // nanoseconds
}

// MetricsSnapshot is a point-in-time copy of the counters.
type MetricsSnapshot struct {
	Timestamp        time.Time     `json:"timestamp"`
	QueryCount       int64         `json:"query_count"`
	ErrorCount       int64         `json:"error_count"`
	SlowQueryCount   int64         `json:"slow_query_count"`
	AvgQueryDuration time.Duration `json:"avg_query_duration"`
}

func NewMetrics(logger *zap.Logger) *Metrics {
	return &Metrics{logger: logger}
}

// RecordQuery accumulates one query observation.
func (m *Metrics) RecordQuery(duration time.Duration, err error) {
	m.queryCount.Add(1)
	m.totalDuration.Add(int64(duration))
	if err != nil {
		m.errorCount.Add(1)
	}
	if duration > 200*time.Millisecond {
		m.slowQueries.Add(1)
	}
}

// Snapshot returns a copy of the current counters.
func (m *Metrics) Snapshot() *MetricsSnapshot {
	count := m.queryCount.Load()
	snapshot := &MetricsSnapshot{
		Timestamp:      time.Now(),
		QueryCount:     count,
		ErrorCount:     m.errorCount.Load(),
		SlowQueryCount: m.slowQueries.Load(),
	}
	if count > 0 {
		snapshot.AvgQueryDuration = time.Duration(m.totalDuration.Load() / count)
	}
	return snapshot
}
