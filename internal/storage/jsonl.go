// Package storage persists run records as date-partitioned JSON lines.
package storage

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

var ErrWriterClosed = errors.New("jsonl writer is closed")

// JSONLWriter writes records asynchronously to
// <baseDir>/<YYYY-MM-DD>/<subDir>/<name>.jsonl, rotating by size through
// lumberjack and by UTC date on the first write of a new day.
type JSONLWriter struct {
	baseDir   string
	subDir    string
	name      string
	maxSizeMB int
	now       func() time.Time

	writeCh   chan any
	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup

	mu          sync.Mutex
	currentDate string
	logger      *lumberjack.Logger
}

// NewJSONLWriter starts a writer. A non-positive bufferSize means 256.
func NewJSONLWriter(baseDir, subDir, name string, bufferSize, maxSizeMB int) *JSONLWriter {
	if bufferSize <= 0 {
		bufferSize = 256
	}
	if maxSizeMB <= 0 {
		maxSizeMB = 25
	}
	if name == "" {
		name = "records"
	}
	w := &JSONLWriter{
		baseDir:   baseDir,
		subDir:    subDir,
		name:      name,
		maxSizeMB: maxSizeMB,
		now:       time.Now,
		writeCh:   make(chan any, bufferSize),
		done:      make(chan struct{}),
	}

	w.wg.Add(1)
	go w.writeLoop()
	return w
}

// Path returns the file records for date are written to.
func (w *JSONLWriter) Path(date time.Time) string {
	return filepath.Join(w.baseDir, date.UTC().Format("2006-01-02"), w.subDir, w.name+".jsonl")
}

// Write queues a record without blocking. A full buffer drops the record.
func (w *JSONLWriter) Write(record any) error {
	select {
	case <-w.done:
		return ErrWriterClosed
	default:
	}
	select {
	case w.writeCh <- record:
		return nil
	case <-w.done:
		return ErrWriterClosed
	default:
		slog.Warn("jsonl write buffer full, dropping record", "subdir", w.subDir)
		return fmt.Errorf("jsonl buffer full")
	}
}

// Close flushes queued records and closes the file.
func (w *JSONLWriter) Close() error {
	w.closeOnce.Do(func() { close(w.done) })
	w.wg.Wait()

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.logger != nil {
		err := w.logger.Close()
		w.logger = nil
		return err
	}
	return nil
}

func (w *JSONLWriter) writeLoop() {
	defer w.wg.Done()

	for {
		select {
		case record := <-w.writeCh:
			w.writeRecord(record)
		case <-w.done:
			w.drain()
			return
		}
	}
}

func (w *JSONLWriter) drain() {
	timeout := time.After(5 * time.Second)
	for {
		select {
		case record := <-w.writeCh:
			w.writeRecord(record)
		case <-timeout:
			slog.Warn("jsonl writer close timeout, some records may be lost", "subdir", w.subDir)
			return
		default:
			return
		}
	}
}

func (w *JSONLWriter) writeRecord(record any) {
	data, err := json.Marshal(record)
	if err != nil {
		slog.Error("jsonl marshal failed", "error", err, "subdir", w.subDir)
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	now := w.now().UTC()
	if date := now.Format("2006-01-02"); date != w.currentDate || w.logger == nil {
		if err := w.rotateForDate(now); err != nil {
			slog.Error("jsonl rotate failed", "error", err, "subdir", w.subDir)
			return
		}
	}
	if _, err := w.logger.Write(append(data, '\n')); err != nil {
		slog.Error("jsonl write failed", "error", err, "subdir", w.subDir)
	}
}

func (w *JSONLWriter) rotateForDate(now time.Time) error {
	if w.logger != nil {
		_ = w.logger.Close()
		w.logger = nil
	}

	filename := w.Path(now)
	if err := os.MkdirAll(filepath.Dir(filename), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	w.logger = &lumberjack.Logger{
		Filename:   filename,
		MaxSize:    w.maxSizeMB,
		MaxBackups: 100,
		MaxAge:     30,
		LocalTime:  false,
	}
	w.currentDate = now.Format("2006-01-02")
	slog.Debug("opened jsonl file", "file", filename)
	return nil
}

// ReadJSONL decodes every non-blank line of path. A missing file yields no
// records.
func ReadJSONL[T any](path string) ([]T, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer func() { _ = f.Close() }()

	var out []T
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 1024), 10*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		var rec T
		if err := json.Unmarshal([]byte(text), &rec); err != nil {
			return out, fmt.Errorf("%s:%d: %w", path, line, err)
		}
		out = append(out, rec)
	}
	return out, scanner.Err()
}
