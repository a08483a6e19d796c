package logger

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/harrison/paver/internal/report"
)

func TestNormalizeLogLevel(t *testing.T) {
	tests := map[string]string{
		"":        "info",
		"DEBUG":   "debug",
		" warn ":  "warn",
		"verbose": "info",
		"trace":   "trace",
	}
	for in, want := range tests {
		assert.Equal(t, want, normalizeLogLevel(in), "input %q", in)
	}
}

func TestConsoleLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := NewConsoleLogger(&buf, "warn")

	l.LogDebug("debug %d", 1)
	l.LogInfo("info %d", 2)
	l.LogWarn("warn %d", 3)
	l.LogError("error %d", 4)

	out := buf.String()
	assert.NotContains(t, out, "debug 1")
	assert.NotContains(t, out, "info 2")
	assert.Contains(t, out, "[WARN] warn 3")
	assert.Contains(t, out, "[ERROR] error 4")
}

func TestConsoleLogger_Format(t *testing.T) {
	var buf bytes.Buffer
	l := NewConsoleLogger(&buf, "trace")
	l.LogTrace("hello %s", "world")

	line := buf.String()
	assert.Regexp(t, `^\[\d{2}:\d{2}:\d{2}\] \[TRACE\] hello world\n$`, line)
}

func TestConsoleLogger_NilWriter(t *testing.T) {
	l := NewConsoleLogger(nil, "debug")
	assert.NotPanics(t, func() {
		l.LogInfo("dropped")
		l.LogSummary(report.Totals{}, time.Second)
	})
}

func TestConsoleLogger_NoColorForBuffers(t *testing.T) {
	var buf bytes.Buffer
	l := NewConsoleLogger(&buf, "info")
	assert.False(t, l.colorOutput)
}

func TestConsoleLogger_Concurrent(t *testing.T) {
	var buf bytes.Buffer
	l := NewConsoleLogger(&buf, "info")

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			l.LogInfo("message %d", n)
		}(i)
	}
	wg.Wait()

	assert.Len(t, strings.Split(strings.TrimSpace(buf.String()), "\n"), 20)
}

func TestConsoleLogger_LogSummary(t *testing.T) {
	var buf bytes.Buffer
	l := NewConsoleLogger(&buf, "info")

	l.LogSummary(report.Totals{DocumentsChecked: 3, Errors: 1, Warnings: 2}, 1500*time.Millisecond)
	out := buf.String()
	assert.Contains(t, out, "Summary: documents: 3, errors: 1, warnings: 2 (1.5s)")
	assert.NotContains(t, out, "passed", "command counters omitted when nothing ran")

	buf.Reset()
	l.LogSummary(report.Totals{DocumentsChecked: 1, DocumentsVerified: 1, CommandsPassed: 2, CommandsTimedOut: 1}, 90*time.Second)
	out = buf.String()
	assert.Contains(t, out, "verified: 1, passed: 2, failed: 0, timed out: 1")
	assert.Contains(t, out, "(1m30s)")
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "150ms", formatDuration(150*time.Millisecond))
	assert.Equal(t, "1.2s", formatDuration(1200*time.Millisecond))
	assert.Equal(t, "2m30s", formatDuration(150*time.Second))
}
