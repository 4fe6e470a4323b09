package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

type record struct {
	Scenario string `json:"scenario"`
	Status   string `json:"status"`
}

func TestJSONLWriterFlushesOnClose(t *testing.T) {
	dir := t.TempDir()
	w := NewJSONLWriter(dir, "results", "runs", 8, 1)
	fixed := time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)
	w.now = func() time.Time { return fixed }

	for _, r := range []record{{"footer-section", "passed"}, {"tabzilla-links", "failed"}} {
		if err := w.Write(r); err != nil {
			t.Fatalf("Write() error = %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	path := filepath.Join(dir, "2026-05-04", "results", "runs.jsonl")
	if got := w.Path(fixed); got != path {
		t.Fatalf("Path() = %q; want %q", got, path)
	}
	got, err := ReadJSONL[record](path)
	if err != nil {
		t.Fatalf("ReadJSONL() error = %v", err)
	}
	if len(got) != 2 || got[1].Scenario != "tabzilla-links" || got[1].Status != "failed" {
		t.Fatalf("ReadJSONL() = %+v", got)
	}
}

func TestJSONLWriterRejectsWritesAfterClose(t *testing.T) {
	w := NewJSONLWriter(t.TempDir(), "results", "runs", 1, 1)
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := w.Write(record{}); err != ErrWriterClosed {
		t.Fatalf("Write() after Close = %v; want ErrWriterClosed", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("second Close() error = %v", err)
	}
}

func TestReadJSONLMissingAndMalformed(t *testing.T) {
	dir := t.TempDir()
	recs, err := ReadJSONL[record](filepath.Join(dir, "nope.jsonl"))
	if err != nil || recs != nil {
		t.Fatalf("ReadJSONL(missing) = %v, %v; want nil, nil", recs, err)
	}

	path := filepath.Join(dir, "bad.jsonl")
	if err := os.WriteFile(path, []byte("{\"scenario\":\"a\"}\n\nnot json\n"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	recs, err = ReadJSONL[record](path)
	if err == nil {
		t.Fatal("ReadJSONL(malformed) error = nil")
	}
	if len(recs) != 1 {
		t.Fatalf("ReadJSONL(malformed) kept %d records; want 1", len(recs))
	}
}
