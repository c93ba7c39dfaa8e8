package log

import (
	"sync"
	"testing"
)

type testLogger struct {
	mu      sync.Mutex
	entries []string
}

func (l *testLogger) add(s string) {
	l.mu.Lock()
	l.entries = append(l.entries, s)
	l.mu.Unlock()
}

func (l *testLogger) Info(_ map[string]any, msg string)  { l.add("INFO:" + msg) }
func (l *testLogger) Error(_ map[string]any, msg string) { l.add("ERROR:" + msg) }
func (l *testLogger) Debug(_ map[string]any, msg string) { l.add("DEBUG:" + msg) }
func (l *testLogger) Warn(_ map[string]any, msg string)  { l.add("WARN:" + msg) }
func (l *testLogger) Panic(_ map[string]any, msg string) {}
func (l *testLogger) Fatal(_ map[string]any, msg string) {}

func TestActualZapLogger(t *testing.T) {
	Debug(map[string]any{
		"label": "xn--bcher-kva",
		"safe":  true,
	}, "test debug")
	Info(nil, "test info")
	Warn(nil, "test warn")
	Error(nil, "test error")
	defer func() {
		if r := recover(); r == nil {
			t.Fatal("expected panic, but none occurred")
		}
	}()
	Panic(nil, "test panic")
}

func TestSetLoggerAndGlobalLogging(t *testing.T) {
	orig := GetLogger()
	defer SetLogger(orig)
	tlog := &testLogger{}
	SetLogger(tlog)

	Info(nil, "info msg")
	Error(nil, "error msg")
	Debug(nil, "debug msg")
	Warn(nil, "warn msg")

	expected := []string{
		"INFO:info msg",
		"ERROR:error msg",
		"DEBUG:debug msg",
		"WARN:warn msg",
	}
	if len(tlog.entries) != len(expected) {
		t.Fatalf("expected %d log entries, got %d", len(expected), len(tlog.entries))
	}
	for i, msg := range expected {
		if tlog.entries[i] != msg {
			t.Errorf("expected log[%d] = %q, got %q", i, msg, tlog.entries[i])
		}
	}
}

func TestConfigure_ValidLevels(t *testing.T) {
	orig := GetLogger()
	defer SetLogger(orig)

	if err := Configure("dev", "debug"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := Configure("prod", "INFO"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestConfigure_InvalidLevel(t *testing.T) {
	orig := GetLogger()
	defer SetLogger(orig)

	if err := Configure("dev", "notalevel"); err == nil {
		t.Fatal("expected error for invalid log level, got nil")
	}
	if GetLogger() != orig {
		t.Error("failed Configure must keep the previous logger")
	}
}

func TestNoopLogger_TestAllLevels(t *testing.T) {
	orig := GetLogger()
	defer SetLogger(orig)
	SetLogger(NewNoopLogger())

	Debug(nil, "debug message")
	Info(nil, "info message")
	Warn(nil, "warn message")
	Error(nil, "error message")
	Panic(nil, "panic message")
	Fatal(nil, "fatal message")
}
