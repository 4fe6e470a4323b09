// Package logging configures the process-wide slog logger.
package logging

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

// ParseLevel maps debug|info|warn|error to a slog level. Anything else is info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Setup installs a text handler writing to console and, when filename is set,
// to a rotated log file. The returned closer flushes the file.
func Setup(level, filename string, console io.Writer) (io.Closer, error) {
	if console == nil {
		console = os.Stdout
	}
	writers := []io.Writer{console}
	var closer io.Closer = io.NopCloser(nil)

	if filename != "" {
		if err := os.MkdirAll(filepath.Dir(filename), 0o755); err != nil {
			return nil, err
		}
		logWriter := &lumberjack.Logger{
			Filename:   filename,
			MaxSize:    25,
			MaxBackups: 10,
			MaxAge:     14,
			Compress:   true,
		}
		writers = append(writers, logWriter)
		closer = logWriter
	}

	h := slog.NewTextHandler(io.MultiWriter(writers...), &slog.HandlerOptions{Level: ParseLevel(level)})
	slog.SetDefault(slog.New(h))
	return closer, nil
}
