package main

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestParseLogLevel(t *testing.T) {
	cases := map[string]logLevel{
		"debug":   logLevelDebug,
		" INFO ":  logLevelInfo,
		"":        logLevelInfo,
		"warning": logLevelWarn,
		"error":   logLevelError,
	}
	for in, want := range cases {
		got, err := parseLogLevel(in)
		if err != nil || got != want {
			t.Fatalf("parseLogLevel(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := parseLogLevel("trace"); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}

func TestFormatAttrs(t *testing.T) {
	cases := []struct {
		attrs []any
		want  string
	}{
		{nil, ""},
		{[]any{"path", "/api/base58"}, "path=/api/base58"},
		{[]any{"status", 200, "dur", time.Second}, "status=200 dur=1s"},
		{[]any{"reason", "bad input here"}, `reason="bad input here"`},
		{[]any{"a", 1, "dangling"}, "a=1 dangling"},
	}
	for _, tc := range cases {
		if got := formatAttrs(tc.attrs); got != tc.want {
			t.Fatalf("formatAttrs(%v) = %q, want %q", tc.attrs, got, tc.want)
		}
	}
}

func TestFormatLogLine(t *testing.T) {
	evt := logEvent{
		at:    time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
		level: logLevelWarn,
		msg:   "dropping quick link",
		attrs: []any{"label", "x"},
	}
	want := "2024-01-02T03:04:05Z [WARN] dropping quick link label=x\n"
	if got := formatLogLine(evt); got != want {
		t.Fatalf("formatLogLine = %q, want %q", got, want)
	}
}

// TestToolsLoggerRoutesByLevel verifies errors reach the error writer,
// debug lines only reach the debug writer, and Stop drains the queue.
func TestToolsLoggerRoutesByLevel(t *testing.T) {
	l := newToolsLogger()
	var mainBuf, errBuf, debugBuf bytes.Buffer
	l.configureWriters(&mainBuf, &errBuf, &debugBuf, nil)
	l.setLevel(logLevelDebug)

	l.Info("started", "addr", ":8080")
	l.Debug("http request", "path", "/")
	l.Error("boom", "error", "bad")
	l.Stop()

	if !strings.Contains(mainBuf.String(), "[INFO] started addr=:8080") {
		t.Fatalf("main log missing info line: %q", mainBuf.String())
	}
	if !strings.Contains(mainBuf.String(), "[ERROR] boom") || !strings.Contains(errBuf.String(), "[ERROR] boom") {
		t.Fatalf("error line missing: main=%q err=%q", mainBuf.String(), errBuf.String())
	}
	if strings.Contains(mainBuf.String(), "http request") || !strings.Contains(debugBuf.String(), "http request") {
		t.Fatalf("debug routing wrong: main=%q debug=%q", mainBuf.String(), debugBuf.String())
	}
	if strings.Contains(errBuf.String(), "started") {
		t.Fatalf("info line leaked into error log")
	}

	l.Info("after stop")
	if strings.Contains(mainBuf.String(), "after stop") {
		t.Fatalf("logger wrote after Stop")
	}
}

func TestToolsLoggerLevelFilter(t *testing.T) {
	l := newToolsLogger()
	var buf bytes.Buffer
	l.configureWriters(&buf, nil, nil, nil)
	l.setLevel(logLevelWarn)
	if l.enabled(logLevelInfo) {
		t.Fatalf("info should be disabled at warn level")
	}
	l.Info("hidden")
	l.Warn("shown")
	l.Stop()
	if strings.Contains(buf.String(), "hidden") || !strings.Contains(buf.String(), "shown") {
		t.Fatalf("level filter wrong: %q", buf.String())
	}
}
