package infra

import (
	"testing"
)

func TestMetrics_RecordFrame(t *testing.T) {
	m := &Metrics{}

	m.RecordFrame(1000)
	m.RecordFrame(2000)
	m.RecordFrame(3000)

	snap := m.Snapshot()

	if snap.FramesProcessed != 3 {
		t.Errorf("Expected 3 frames, got %d", snap.FramesProcessed)
	}

	// Average latency: (1000 + 2000 + 3000) / 3 = 2000
	if snap.AvgFrameLatencyNs != 2000 {
		t.Errorf("Expected avg latency 2000, got %d", snap.AvgFrameLatencyNs)
	}
}

func TestMetrics_Trades(t *testing.T) {
	m := &Metrics{}

	m.RecordTrade()
	m.RecordTrade()
	m.RecordTradeRejected()

	snap := m.Snapshot()
	if snap.TradesExecuted != 2 {
		t.Errorf("Expected 2 trades, got %d", snap.TradesExecuted)
	}
	if snap.TradesRejected != 1 {
		t.Errorf("Expected 1 rejection, got %d", snap.TradesRejected)
	}
}

func TestMetrics_Connections(t *testing.T) {
	m := &Metrics{}

	m.IncrementConnections()
	m.IncrementConnections()
	m.IncrementConnections()

	snap := m.Snapshot()
	if snap.ActiveConnections != 3 {
		t.Errorf("Expected 3 connections, got %d", snap.ActiveConnections)
	}

	m.DecrementConnections()
	snap = m.Snapshot()
	if snap.ActiveConnections != 2 {
		t.Errorf("Expected 2 connections, got %d", snap.ActiveConnections)
	}
}

func TestMetrics_Reset(t *testing.T) {
	m := &Metrics{}

	m.RecordFrame(1000)
	m.RecordNews()
	m.RecordError()
	m.IncrementConnections()

	m.Reset()
	snap := m.Snapshot()

	if snap.FramesProcessed != 0 {
		t.Error("Expected 0 frames after reset")
	}
	if snap.NewsEmitted != 0 {
		t.Error("Expected 0 news after reset")
	}
	if snap.ErrorsTotal != 0 {
		t.Error("Expected 0 errors after reset")
	}
	if snap.ActiveConnections != 0 {
		t.Error("Expected 0 connections after reset")
	}
}
