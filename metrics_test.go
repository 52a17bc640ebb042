package main

import (
	"testing"
	"time"
)

func TestHumanUptime(t *testing.T) {
	cases := []struct {
		d    time.Duration
		want string
	}{
		{0, "just started"},
		{500 * time.Millisecond, "just started"},
		{90 * time.Second, "1 minute 30 seconds"},
		{3*time.Hour + 12*time.Minute + 5*time.Second, "3 hours 12 minutes"},
	}
	for _, tc := range cases {
		if got := humanUptime(tc.d); got != tc.want {
			t.Fatalf("humanUptime(%s) = %q, want %q", tc.d, got, tc.want)
		}
	}
}

func TestToolsMetricsSnapshot(t *testing.T) {
	m := NewToolsMetrics()
	m.RecordRequest("validate", false)
	m.RecordRequest("base58", false)
	m.RecordRequest("base58", true)
	m.RecordThrottled()

	snap := m.Snapshot(m.start.Add(2 * time.Minute))
	if snap.UptimeSeconds != 120 || snap.Throttled != 1 {
		t.Fatalf("snapshot = %+v", snap)
	}
	if len(snap.Endpoints) != 2 || snap.Endpoints[0].Endpoint != "base58" {
		t.Fatalf("endpoints not sorted: %+v", snap.Endpoints)
	}
	if e := snap.Endpoints[0]; e.Requests != 2 || e.Failures != 1 {
		t.Fatalf("base58 stats = %+v", e)
	}

	var nilMetrics *ToolsMetrics
	nilMetrics.RecordRequest("x", true)
	nilMetrics.RecordThrottled()
}
