package api

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// requestLogger logs one line per request with the matched route pattern.
// Server errors log at Warn; event streams log at Debug once they close.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		attrs := []any{
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", middleware.GetReqID(r.Context()),
		}
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				attrs = append(attrs, "route", pattern)
			}
			if id := rctx.URLParam("snapshot_id"); id != "" {
				attrs = append(attrs, "snapshot_id", id)
			}
		}

		level := slog.LevelInfo
		switch {
		case ww.Status() >= http.StatusInternalServerError:
			level = slog.LevelWarn
		case strings.HasPrefix(r.URL.Path, "/api/v1/events"):
			level = slog.LevelDebug
		}
		slog.Log(r.Context(), level, "http request", attrs...)
	})
}
