package main

import (
	"sort"
	"sync"
	"time"

	"github.com/hako/durafmt"
)

// ToolsMetrics counts requests and failures per endpoint.
type ToolsMetrics struct {
	start time.Time

	mu        sync.RWMutex
	requests  map[string]uint64
	failures  map[string]uint64
	throttled uint64
}

type endpointStats struct {
	Endpoint string `json:"endpoint"`
	Requests uint64 `json:"requests"`
	Failures uint64 `json:"failures"`
}

type statsSnapshot struct {
	StartedAt     string          `json:"started_at"`
	UptimeSeconds int64           `json:"uptime_seconds"`
	Uptime        string          `json:"uptime"`
	Throttled     uint64          `json:"throttled"`
	Endpoints     []endpointStats `json:"endpoints"`
}

func NewToolsMetrics() *ToolsMetrics {
	return &ToolsMetrics{
		start:    time.Now(),
		requests: make(map[string]uint64),
		failures: make(map[string]uint64),
	}
}

func (m *ToolsMetrics) RecordRequest(endpoint string, failed bool) {
	if m == nil {
		return
	}
	m.mu.Lock()
	m.requests[endpoint]++
	if failed {
		m.failures[endpoint]++
	}
	m.mu.Unlock()
}

func (m *ToolsMetrics) RecordThrottled() {
	if m == nil {
		return
	}
	m.mu.Lock()
	m.throttled++
	m.mu.Unlock()
}

func (m *ToolsMetrics) Uptime(now time.Time) time.Duration {
	if m == nil {
		return 0
	}
	return now.Sub(m.start)
}

// Snapshot returns a copy of the counters sorted by endpoint.
func (m *ToolsMetrics) Snapshot(now time.Time) statsSnapshot {
	up := m.Uptime(now)
	snap := statsSnapshot{
		StartedAt:     m.start.UTC().Format(time.RFC3339),
		UptimeSeconds: int64(up / time.Second),
		Uptime:        humanUptime(up),
	}
	m.mu.RLock()
	snap.Throttled = m.throttled
	for ep, n := range m.requests {
		snap.Endpoints = append(snap.Endpoints, endpointStats{
			Endpoint: ep,
			Requests: n,
			Failures: m.failures[ep],
		})
	}
	m.mu.RUnlock()
	sort.Slice(snap.Endpoints, func(i, j int) bool {
		return snap.Endpoints[i].Endpoint < snap.Endpoints[j].Endpoint
	})
	return snap
}

// humanUptime renders d as its two largest units, e.g. "3 hours 12 minutes".
func humanUptime(d time.Duration) string {
	if d < time.Second {
		return "just started"
	}
	return durafmt.Parse(d.Truncate(time.Second)).LimitFirstN(2).String()
}
