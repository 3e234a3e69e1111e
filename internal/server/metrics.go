package server

import (
	"sync/atomic"
	"time"

	"go.uber.org/zap/zapcore"

	"github.com/Brownie44l1/miniserver/internal/response"
)

// Metrics holds server runtime counters
type Metrics struct {
	ConnectionsTotal  atomic.Int64
	ActiveConnections atomic.Int64
	ResponsesTotal    atomic.Int64
	Responses4xx      atomic.Int64
	Responses5xx      atomic.Int64
	BytesWritten      atomic.Int64
	SocketErrors      atomic.Int64
	InternalErrors    atomic.Int64

	// Time from accept to the last response byte, summed over responses.
	TotalLatencyNs atomic.Int64
}

func (m *Metrics) connOpened() {
	m.ConnectionsTotal.Add(1)
	m.ActiveConnections.Add(1)
}

func (m *Metrics) connClosed() {
	m.ActiveConnections.Add(-1)
}

// RecordResponse records a response that was written in full
func (m *Metrics) RecordResponse(status int, written int64, duration time.Duration) {
	m.ResponsesTotal.Add(1)
	m.BytesWritten.Add(written)
	m.TotalLatencyNs.Add(duration.Nanoseconds())

	switch {
	case response.IsClientError(status):
		m.Responses4xx.Add(1)
	case response.IsServerError(status):
		m.Responses5xx.Add(1)
	}
}

// AverageLatency returns average response latency
func (m *Metrics) AverageLatency() time.Duration {
	total := m.ResponsesTotal.Load()
	if total == 0 {
		return 0
	}
	return time.Duration(m.TotalLatencyNs.Load() / total)
}

// MetricsSnapshot is a point-in-time copy of Metrics
type MetricsSnapshot struct {
	ConnectionsTotal  int64
	ActiveConnections int64
	ResponsesTotal    int64
	Responses4xx      int64
	Responses5xx      int64
	BytesWritten      int64
	SocketErrors      int64
	InternalErrors    int64
	AverageLatency    time.Duration
}

func (m *Metrics) Snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		ConnectionsTotal:  m.ConnectionsTotal.Load(),
		ActiveConnections: m.ActiveConnections.Load(),
		ResponsesTotal:    m.ResponsesTotal.Load(),
		Responses4xx:      m.Responses4xx.Load(),
		Responses5xx:      m.Responses5xx.Load(),
		BytesWritten:      m.BytesWritten.Load(),
		SocketErrors:      m.SocketErrors.Load(),
		InternalErrors:    m.InternalErrors.Load(),
		AverageLatency:    m.AverageLatency(),
	}
}

// MarshalLogObject implements zapcore.ObjectMarshaler
func (s MetricsSnapshot) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddInt64("connections", s.ConnectionsTotal)
	enc.AddInt64("active", s.ActiveConnections)
	enc.AddInt64("responses", s.ResponsesTotal)
	enc.AddInt64("responses4xx", s.Responses4xx)
	enc.AddInt64("responses5xx", s.Responses5xx)
	enc.AddInt64("bytesWritten", s.BytesWritten)
	enc.AddInt64("socketErrors", s.SocketErrors)
	enc.AddInt64("internalErrors", s.InternalErrors)
	enc.AddDuration("averageLatency", s.AverageLatency)
	return nil
}
