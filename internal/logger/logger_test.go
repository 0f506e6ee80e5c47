package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]Level{
		"DEBUG":   DEBUG,
		"info":    INFO,
		"Warn":    WARN,
		"WARNING": WARN,
		"ERROR":   ERROR,
		"bogus":   INFO,
		"":        INFO,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestLoggerFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(Config{Level: WARN, Output: &buf})
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	l.Info("hidden")
	l.Warn("shown", F("id", "abc"))

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("INFO entry written at WARN level: %q", out)
	}
	if !strings.Contains(out, "WARN") || !strings.Contains(out, "shown | id=abc") {
		t.Errorf("missing WARN entry: %q", out)
	}
	if !strings.Contains(out, "logger_test.go") {
		t.Errorf("caller not reported: %q", out)
	}
}

func TestWithFieldsKeepsParentFields(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(Config{Level: DEBUG, Output: &buf})
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	child := l.WithFields(F("component", "sync"))
	child.Debug("tick", F("n", 1))
	l.Debug("plain")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %q", len(lines), buf.String())
	}
	if !strings.HasSuffix(lines[0], "tick | component=sync n=1") {
		t.Errorf("child line = %q", lines[0])
	}
	if strings.Contains(lines[1], "component") {
		t.Errorf("parent logger picked up child fields: %q", lines[1])
	}
}

func TestFileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "test.log")

	if err := Init(Config{Level: INFO, FilePath: path, MaxSizeMB: 1, MaxBackups: 1}); err != nil {
		t.Fatalf("Init() failed: %v", err)
	}
	Info("written to file", F("k", "v"))
	if err := Close(); err != nil {
		t.Fatalf("Close() failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	if !strings.Contains(string(data), "written to file | k=v") {
		t.Errorf("log file content = %q", string(data))
	}

	// Global helpers are no-ops once closed
	Info("after close")
}
