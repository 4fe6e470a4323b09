package relay

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"
)

// WebSocketHandler streams broker events as JSON text frames. Client frames
// are read only to notice when the peer goes away.
func WebSocketHandler(broker *Broker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		feedFilter := parseFeeds(r)

		conn, _, _, err := ws.UpgradeHTTP(r, w)
		if err != nil {
			slog.Warn("relay websocket upgrade failed", "error", err)
			return
		}
		defer func() { _ = conn.Close() }()

		id, ch := broker.Subscribe()
		defer broker.Unsubscribe(id)

		gone := make(chan struct{})
		go func() {
			defer close(gone)
			for {
				if _, _, err := wsutil.ReadClientData(conn); err != nil {
					return
				}
			}
		}()

		for {
			select {
			case <-gone:
				return
			case <-r.Context().Done():
				return
			case evt, ok := <-ch:
				if !ok {
					return
				}
				if feedFilter != nil && !feedFilter[evt.Feed] {
					continue
				}
				data, err := json.Marshal(evt)
				if err != nil {
					continue
				}
				if err := wsutil.WriteServerText(conn, data); err != nil {
					slog.Debug("relay websocket write failed", "error", err)
					return
				}
			}
		}
	}
}
