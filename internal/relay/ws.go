package relay

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"
)

// wsFrame is the message shape sent to websocket clients.
type wsFrame struct {
	Feed string          `json:"feed"`
	Data json.RawMessage `json:"data"`
}

// WSHandler returns an http.HandlerFunc that streams relay events over a
// websocket. Same ?feeds= filter as the SSE handler.
func WSHandler(broker *Broker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		feedFilter := parseFeedFilter(r.URL.Query().Get("feeds"))

		conn, _, _, err := ws.UpgradeHTTP(r, w)
		if err != nil {
			slog.Debug("websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
			return
		}

		id, ch := broker.Subscribe()
		slog.Debug("websocket subscriber connected", "id", id, "remote", r.RemoteAddr)

		closed := make(chan struct{})

		// Reader: we expect no client payloads, but reading is required to
		// observe close frames and connection loss.
		go func() {
			defer close(closed)
			for {
				if _, _, err := wsutil.ReadClientData(conn); err != nil {
					return
				}
			}
		}()

		go func() {
			defer func() {
				broker.Unsubscribe(id)
				if err := conn.Close(); err != nil {
					slog.Debug("websocket close failed", "id", id, "error", err)
				}
				slog.Debug("websocket subscriber disconnected", "id", id)
			}()

			for {
				select {
				case <-closed:
					return
				case evt, ok := <-ch:
					if !ok {
						return
					}
					if feedFilter != nil && !feedFilter[evt.Feed] {
						continue
					}
					frame, err := json.Marshal(wsFrame{Feed: evt.Feed, Data: rawPayload(evt.Payload)})
					if err != nil {
						continue
					}
					if err := wsutil.WriteServerText(conn, frame); err != nil {
						return
					}
				}
			}
		}()
	}
}

// rawPayload embeds the payload as raw JSON when it already is JSON, quoted
// otherwise.
func rawPayload(p string) json.RawMessage {
	trimmed := strings.TrimSpace(p)
	if json.Valid([]byte(trimmed)) && trimmed != "" {
		return json.RawMessage(trimmed)
	}
	quoted, _ := json.Marshal(p)
	return json.RawMessage(quoted)
}
