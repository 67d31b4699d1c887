package realtime

import (
	"context"
	"net/http"
	"slices"

	"github.com/gorilla/websocket"
)

// NewUpgrader accepts any origin when allowed is empty or contains "*".
func NewUpgrader(allowed []string) *websocket.Upgrader {
	return &websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowed) == 0 || slices.Contains(allowed, "*") {
				return true
			}
			return slices.Contains(allowed, r.Header.Get("Origin"))
		},
	}
}

// ServeWS upgrades the request and attaches the session to the hub. Events
// from the session are handled by handler.
func (h *Hub) ServeWS(upgrader *websocket.Upgrader, handler Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			h.logger.Info("Realtime hub: upgrade failed", "error", err.Error())
			return
		}

		c := newClient(h, conn, handler, h.logger)
		if !h.join(c) {
			_ = conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
			conn.Close()
			return
		}

		// The request context ends when this handler returns.
		ctx := context.WithoutCancel(r.Context())
		go c.writePump()
		go c.dispatch(ctx)
		go c.readPump()
	}
}
