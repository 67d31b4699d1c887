package realtime

import (
	"context"
	"encoding/json"

	"github.com/skilledge/skilledge-server/internal/logger"
	"github.com/skilledge/skilledge-server/internal/metrics"
	"github.com/skilledge/skilledge-server/internal/model"
)

type directMessage struct {
	client  *Client
	payload []byte
}

// Hub owns the set of connected sessions. All sends pass through Run, so a
// session observes its own frames in emission order.
type Hub struct {
	clients    map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte
	direct     chan directMessage
	done       chan struct{}

	metrics *metrics.Metrics
	logger  *logger.Logger
}

var _ model.Broadcaster = (*Hub)(nil)

// NewHub creates a hub. A nil m gets unregistered collectors.
func NewHub(m *metrics.Metrics, logger *logger.Logger) *Hub {
	if m == nil {
		m = metrics.New(nil)
	}
	return &Hub{
		clients:    make(map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte),
		direct:     make(chan directMessage),
		done:       make(chan struct{}),
		metrics:    m,
		logger:     logger,
	}
}

// Run processes registrations and fan-out until ctx is done. Remaining
// sessions are closed on exit.
func (h *Hub) Run(ctx context.Context) {
	defer func() {
		close(h.done)
		for c := range h.clients {
			h.remove(c)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case c := <-h.register:
			h.clients[c] = struct{}{}
			h.metrics.RealtimeSessions.Inc()
			h.logger.Debug("Realtime hub: session connected", "sessions", len(h.clients))
		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				h.remove(c)
				h.logger.Debug("Realtime hub: session disconnected", "sessions", len(h.clients))
			}
		case msg := <-h.direct:
			if _, ok := h.clients[msg.client]; ok {
				h.deliver(msg.client, msg.payload)
			}
		case payload := <-h.broadcast:
			for c := range h.clients {
				h.deliver(c, payload)
			}
		}
	}
}

// deliver never blocks the loop: a session whose buffer is full is dropped.
func (h *Hub) deliver(c *Client, payload []byte) {
	select {
	case c.send <- payload:
	default:
		h.remove(c)
		h.metrics.RealtimeDropped.Inc()
		h.logger.Warn("Realtime hub: dropped slow session", "sessions", len(h.clients))
	}
}

func (h *Hub) remove(c *Client) {
	delete(h.clients, c)
	close(c.send)
	h.metrics.RealtimeSessions.Dec()
}

func (h *Hub) BroadcastProgress(event model.ProgressBroadcast) {
	h.publish(EventProgressBroadcast, event)
}

func (h *Hub) BroadcastLeaderboard(entries []model.LeaderboardEntry) {
	if entries == nil {
		entries = []model.LeaderboardEntry{}
	}
	h.publish(EventLeaderboardUpdate, entries)
}

func (h *Hub) publish(name string, data any) {
	ev, err := NewEvent(name, data)
	if err != nil {
		h.logger.Error("Realtime hub: failed to encode event", "event", name, "error", err.Error())
		return
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		h.logger.Error("Realtime hub: failed to encode frame", "event", name, "error", err.Error())
		return
	}

	select {
	case h.broadcast <- payload:
		h.metrics.Broadcasts.WithLabelValues(name).Inc()
	case <-h.done:
	}
}

// send queues a frame for one session.
func (h *Hub) send(c *Client, ev Event) {
	payload, err := json.Marshal(ev)
	if err != nil {
		h.logger.Error("Realtime hub: failed to encode frame", "event", ev.Event, "error", err.Error())
		return
	}
	select {
	case h.direct <- directMessage{client: c, payload: payload}:
	case <-h.done:
	}
}

func (h *Hub) join(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) leave(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}
