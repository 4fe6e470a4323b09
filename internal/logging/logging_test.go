package logging

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARN":    slog.LevelWarn,
		"error":   slog.LevelError,
		"info":    slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Fatalf("ParseLevel(%q) = %v; want %v", in, got, want)
		}
	}
}

func TestSetupWritesConsoleAndFile(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var console bytes.Buffer
	file := filepath.Join(t.TempDir(), "logs", "smoke.log")
	closer, err := Setup("warn", file, &console)
	if err != nil {
		t.Fatalf("Setup() error = %v", err)
	}

	slog.Info("hidden at warn")
	slog.Warn("link destination mismatch", "url", "https://www.mozilla.org/")
	if err := closer.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	if strings.Contains(console.String(), "hidden at warn") {
		t.Fatalf("console contains info record: %s", console.String())
	}
	if !strings.Contains(console.String(), "link destination mismatch") {
		t.Fatalf("console = %q; want warn record", console.String())
	}
	data, err := os.ReadFile(file)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), "url=https://www.mozilla.org/") {
		t.Fatalf("log file = %q; want url attr", data)
	}
}
