package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/gorilla/websocket"

	"github.com/skilledge/skilledge-server/internal/logger"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	maxMessageSize = 64 << 10

	sendBufferSize  = 256
	inboxBufferSize = 64
)

// Handler processes the inbound events of one session. Returned events are
// sent back to that session only.
type Handler interface {
	HandleEvent(ctx context.Context, ev Event) ([]Event, error)
}

// Client is one websocket session. Inbound frames are queued on the inbox
// and handled one at a time by dispatch.
type Client struct {
	hub     *Hub
	conn    *websocket.Conn
	send    chan []byte
	inbox   chan Event
	handler Handler
	logger  *logger.Logger
}

func newClient(hub *Hub, conn *websocket.Conn, handler Handler, logger *logger.Logger) *Client {
	return &Client{
		hub:     hub,
		conn:    conn,
		send:    make(chan []byte, sendBufferSize),
		inbox:   make(chan Event, inboxBufferSize),
		handler: handler,
		logger:  logger,
	}
}

// readPump decodes frames into the inbox until the connection fails.
func (c *Client) readPump() {
	defer func() {
		close(c.inbox)
		c.hub.leave(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Debug("Realtime client: read failed", "error", err.Error())
			}
			return
		}

		var ev Event
		if err := json.Unmarshal(message, &ev); err != nil || ev.Event == "" {
			c.reply(errorEvent(errors.New("malformed frame")))
			continue
		}
		c.inbox <- ev
	}
}

// dispatch handles inbox events in arrival order.
func (c *Client) dispatch(ctx context.Context) {
	for ev := range c.inbox {
		replies, err := c.handler.HandleEvent(ctx, ev)
		if err != nil {
			c.logger.Info("Realtime client: event rejected",
				"event", ev.Event,
				"error", err.Error())
			c.reply(errorEvent(err))
			continue
		}
		for _, r := range replies {
			c.reply(r)
		}
	}
}

func (c *Client) reply(ev Event) {
	c.hub.send(c, ev)
}

// writePump writes queued frames and keeps the connection alive with pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func errorEvent(err error) Event {
	ev, _ := NewEvent(EventError, ErrorPayload{Error: err.Error()})
	return ev
}
