package logger

import (
	"bytes"
	"strings"
	"testing"
)

func TestLogLevel(t *testing.T) {
	tests := []struct {
		level    Level
		expected string
	}{
		{LevelDebug, "DEBUG"},
		{LevelInfo, "INFO"},
		{LevelWarn, "WARN"},
		{LevelError, "ERROR"},
		{Level(99), "UNKNOWN"},
	}

	for _, tt := range tests {
		if got := tt.level.String(); got != tt.expected {
			t.Errorf("Level(%d).String() = %s, want %s", tt.level, got, tt.expected)
		}
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    Level
		wantErr bool
	}{
		{"debug", LevelDebug, false},
		{"INFO", LevelInfo, false},
		{"", LevelInfo, false},
		{"warning", LevelWarn, false},
		{" error ", LevelError, false},
		{"verbose", LevelInfo, true},
	}

	for _, tt := range tests {
		got, err := ParseLevel(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLevel(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseLevel(%q) = %s, want %s", tt.input, got, tt.want)
		}
	}
}

func TestLoggerOutput(t *testing.T) {
	buf := &bytes.Buffer{}
	l := New(buf, LevelDebug)

	l.Debug("generator", "debug message")
	l.Info("generator", "info message")
	l.Warn("generator", "warn message")
	l.Error("generator", "error message")

	output := buf.String()

	for _, want := range []string{"[DEBUG]", "[INFO]", "[WARN]", "[ERROR]", "[generator]"} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %s in output", want)
		}
	}
}

func TestLoggerLevel(t *testing.T) {
	buf := &bytes.Buffer{}
	l := New(buf, LevelWarn)

	l.Debug("", "debug message")
	l.Info("", "info message")
	l.Warn("", "warn message")
	l.Error("", "error message")

	output := buf.String()

	if strings.Contains(output, "[DEBUG]") {
		t.Error("DEBUG should be filtered")
	}
	if strings.Contains(output, "[INFO]") {
		t.Error("INFO should be filtered")
	}
	if !strings.Contains(output, "[WARN]") {
		t.Error("expected WARN log")
	}
	if !strings.Contains(output, "[ERROR]") {
		t.Error("expected ERROR log")
	}
	if l.Enabled(LevelInfo) {
		t.Error("INFO should not be enabled at WARN level")
	}
}

func TestLoggerSetLevel(t *testing.T) {
	buf := &bytes.Buffer{}
	l := New(buf, LevelError)

	l.Info("", "should not appear")

	if strings.Contains(buf.String(), "should not appear") {
		t.Error("INFO should be filtered at ERROR level")
	}

	l.SetLevel(LevelInfo)
	l.Info("", "should appear")

	if !strings.Contains(buf.String(), "should appear") {
		t.Error("INFO should appear after SetLevel")
	}
}

func TestLoggerSetOutput(t *testing.T) {
	first := &bytes.Buffer{}
	second := &bytes.Buffer{}
	l := New(first, LevelInfo)

	l.SetOutput(second)
	l.Info("", "redirected")

	if first.Len() != 0 {
		t.Errorf("expected nothing in original output, got: %s", first.String())
	}
	if !strings.Contains(second.String(), "redirected") {
		t.Error("expected message in new output")
	}
}

func TestLoggerWithoutComponent(t *testing.T) {
	buf := &bytes.Buffer{}
	l := New(buf, LevelInfo)

	l.Info("", "message without component")

	output := buf.String()

	if strings.Contains(output, "[]") {
		t.Error("should not have empty brackets for component")
	}
	if !strings.Contains(output, "message without component") {
		t.Error("expected message in output")
	}
}

func TestLoggerFormatArgs(t *testing.T) {
	buf := &bytes.Buffer{}
	l := New(buf, LevelInfo)

	l.Info("batch", "count: %d, name: %s", 42, "test")

	output := buf.String()

	if !strings.Contains(output, "count: 42, name: test") {
		t.Errorf("expected formatted message, got: %s", output)
	}
}

func TestScopedLogger(t *testing.T) {
	buf := &bytes.Buffer{}
	l := New(buf, LevelDebug)

	batch := l.For("batch")
	batch.For("read-heavy").Info("seed %d", 7)
	batch.Warn("no workloads")

	output := buf.String()

	if !strings.Contains(output, "[INFO] [batch/read-heavy] seed 7") {
		t.Errorf("expected nested component tag, got: %s", output)
	}
	if !strings.Contains(output, "[WARN] [batch] no workloads") {
		t.Errorf("expected parent component tag, got: %s", output)
	}
}

func TestScopedLoggerComponent(t *testing.T) {
	l := New(&bytes.Buffer{}, LevelInfo)

	tests := []struct {
		scoped *Scoped
		want   string
	}{
		{l.For("api"), "api"},
		{l.For("api").For("stream-1"), "api/stream-1"},
		{l.For("api").For(""), "api"},
		{l.For("").For("progress"), "progress"},
	}

	for _, tt := range tests {
		if got := tt.scoped.Component(); got != tt.want {
			t.Errorf("Component() = %q, want %q", got, tt.want)
		}
	}
}

func TestScopedLoggerFollowsLevel(t *testing.T) {
	buf := &bytes.Buffer{}
	l := New(buf, LevelWarn)
	s := l.For("generator")

	s.Debug("hidden")
	s.Info("hidden")
	if buf.Len() != 0 {
		t.Errorf("expected filtered output, got: %s", buf.String())
	}
	if s.Enabled(LevelInfo) {
		t.Error("INFO should not be enabled at WARN level")
	}

	l.SetLevel(LevelDebug)
	s.Debug("visible")
	if !strings.Contains(buf.String(), "[DEBUG] [generator] visible") {
		t.Errorf("expected debug output after SetLevel, got: %s", buf.String())
	}
}
