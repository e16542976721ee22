package infra

import (
	"sync/atomic"
	"time"
)

// Metrics provides lightweight observability without external
// dependencies. Uses atomic operations for thread-safety.
type Metrics struct {
	// Counters
	framesProcessed atomic.Uint64
	tradesExecuted  atomic.Uint64
	tradesRejected  atomic.Uint64
	newsEmitted     atomic.Uint64
	errorsTotal     atomic.Uint64

	// Frame latency tracking
	frameLatencySumNs atomic.Int64
	frameLatencyCount atomic.Uint64

	// Gauges
	activeConnections atomic.Int32
}

// GlobalMetrics is the singleton metrics instance.
var GlobalMetrics = &Metrics{}

// RecordFrame records one processed simulation frame with its latency.
func (m *Metrics) RecordFrame(latencyNs int64) {
	m.framesProcessed.Add(1)
	m.frameLatencySumNs.Add(latencyNs)
	m.frameLatencyCount.Add(1)
}

// RecordTrade records an executed trade.
func (m *Metrics) RecordTrade() {
	m.tradesExecuted.Add(1)
}

// RecordTradeRejected records a rejected trade.
func (m *Metrics) RecordTradeRejected() {
	m.tradesRejected.Add(1)
}

// RecordNews records an emitted news event.
func (m *Metrics) RecordNews() {
	m.newsEmitted.Add(1)
}

// RecordError records an error occurrence.
func (m *Metrics) RecordError() {
	m.errorsTotal.Add(1)
}

// IncrementConnections increments active connections by 1.
func (m *Metrics) IncrementConnections() {
	m.activeConnections.Add(1)
}

// DecrementConnections decrements active connections by 1.
func (m *Metrics) DecrementConnections() {
	m.activeConnections.Add(-1)
}

// MetricsSnapshot is a point-in-time view of all metrics, shaped for
// the status endpoint.
type MetricsSnapshot struct {
	FramesProcessed   uint64    `json:"frames_processed"`
	TradesExecuted    uint64    `json:"trades_executed"`
	TradesRejected    uint64    `json:"trades_rejected"`
	NewsEmitted       uint64    `json:"news_emitted"`
	ErrorsTotal       uint64    `json:"errors_total"`
	AvgFrameLatencyNs int64     `json:"avg_frame_latency_ns"`
	ActiveConnections int32     `json:"active_connections"`
	Timestamp         time.Time `json:"timestamp"`
}

// Snapshot returns current metrics as a snapshot.
func (m *Metrics) Snapshot() MetricsSnapshot {
	var avgLatency int64
	count := m.frameLatencyCount.Load()
	if count > 0 {
		avgLatency = m.frameLatencySumNs.Load() / int64(count)
	}

	return MetricsSnapshot{
		FramesProcessed:   m.framesProcessed.Load(),
		TradesExecuted:    m.tradesExecuted.Load(),
		TradesRejected:    m.tradesRejected.Load(),
		NewsEmitted:       m.newsEmitted.Load(),
		ErrorsTotal:       m.errorsTotal.Load(),
		AvgFrameLatencyNs: avgLatency,
		ActiveConnections: m.activeConnections.Load(),
		Timestamp:         time.Now(),
	}
}

// Reset clears all metrics (for testing).
func (m *Metrics) Reset() {
	m.framesProcessed.Store(0)
	m.tradesExecuted.Store(0)
	m.tradesRejected.Store(0)
	m.newsEmitted.Store(0)
	m.errorsTotal.Store(0)
	m.frameLatencySumNs.Store(0)
	m.frameLatencyCount.Store(0)
	m.activeConnections.Store(0)
}
