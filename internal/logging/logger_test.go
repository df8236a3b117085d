package logging

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestLoggerFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriterLogger(LevelWarn, &buf)

	l.Info("dropped %d", 1)
	l.Warn("kept %d", 2)
	l.Error("kept %d", 3)
	if err := l.Close(); err != nil {
		t.Fatal(err)
	}

	out := buf.String()
	if strings.Contains(out, "dropped") {
		t.Errorf("info line should be filtered: %q", out)
	}
	if !strings.Contains(out, "[WARN] kept 2") || !strings.Contains(out, "[ERROR] kept 3") {
		t.Errorf("missing lines: %q", out)
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]LogLevel{
		"debug":    LevelDebug,
		"INFO":     LevelInfo,
		" warn ":   LevelWarn,
		"warning":  LevelWarn,
		"error":    LevelError,
		"critical": LevelCritical,
		"bogus":    LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestOpenLogFileRotatesStaleFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "logs", "aria.log")
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("old\n"), 0644); err != nil {
		t.Fatal(err)
	}
	old := time.Now().Add(-2 * defaultMaxLogAge)
	if err := os.Chtimes(path, old, old); err != nil {
		t.Fatal(err)
	}

	f, err := openLogFile(path)
	if err != nil {
		t.Fatalf("openLogFile: %v", err)
	}
	f.Close()

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected rotated file plus fresh file, got %d entries", len(entries))
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(data) != 0 {
		t.Errorf("fresh log should be empty, got %q", data)
	}
}

func TestGlobalHelpersNilSafe(t *testing.T) {
	global.Store(nil)
	Info("no logger %s", "installed")
	if err := Shutdown(); err != nil {
		t.Fatal(err)
	}
}

func TestLoggingAfterCloseIsDiscarded(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriterLogger(LevelDebug, &buf)

	l.Info("before")
	if err := l.Close(); err != nil {
		t.Fatal(err)
	}
	l.Info("after")
	if err := l.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "before") || strings.Contains(out, "after") {
		t.Fatalf("output = %q", out)
	}
}

func TestShutdownWhileLogging(t *testing.T) {
	global.Store(NewWriterLogger(LevelDebug, io.Discard))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				Info("worker %d line %d", n, j)
			}
		}(i)
	}
	if err := Shutdown(); err != nil {
		t.Fatal(err)
	}
	wg.Wait()

	if GlobalLogger() != nil {
		t.Fatal("logger still installed after Shutdown")
	}
	Warn("after shutdown")
}
