package relay

import (
	"fmt"
	"net/http"
	"strings"
	"time"
)

const heartbeatInterval = 15 * time.Second

// parseFeeds reads the optional ?feeds=a,b filter. nil accepts every feed.
func parseFeeds(r *http.Request) map[string]bool {
	q := r.URL.Query().Get("feeds")
	if q == "" {
		return nil
	}
	filter := make(map[string]bool)
	for _, f := range strings.Split(q, ",") {
		if f = strings.TrimSpace(f); f != "" {
			filter[f] = true
		}
	}
	return filter
}

// SSEHandler streams broker events as server-sent events.
func SSEHandler(broker *Broker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		flusher, ok := w.(http.Flusher)
		if !ok {
			http.Error(w, "streaming not supported", http.StatusInternalServerError)
			return
		}
		feedFilter := parseFeeds(r)

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.Header().Set("X-Accel-Buffering", "no")
		flusher.Flush()

		id, ch := broker.Subscribe()
		defer broker.Unsubscribe(id)

		heartbeat := time.NewTicker(heartbeatInterval)
		defer heartbeat.Stop()

		for {
			select {
			case <-r.Context().Done():
				return
			case <-heartbeat.C:
				_, _ = fmt.Fprint(w, ": ping\n\n")
				flusher.Flush()
			case evt, ok := <-ch:
				if !ok {
					return
				}
				if feedFilter != nil && !feedFilter[evt.Feed] {
					continue
				}
				_, _ = fmt.Fprintf(w, "id: %d\nevent: %s\ndata: %s\n\n", evt.ID, evt.Feed, evt.Payload)
				flusher.Flush()
			}
		}
	}
}
