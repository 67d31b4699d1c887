package client

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/skilledge/skilledge-server/internal/logger"
	"github.com/skilledge/skilledge-server/internal/realtime"
)

const (
	minReconnectDelay = time.Second
	maxReconnectDelay = 30 * time.Second
)

// Watcher follows the server's realtime channel, reconnecting until its
// context is done. Every successful connect notifies the client so queued
// changes are flushed.
type Watcher struct {
	url    string
	client *Client
	logger *logger.Logger
}

// NewWatcher derives the websocket URL from the server base URL.
func NewWatcher(serverURL string, client *Client, logger *logger.Logger) (*Watcher, error) {
	u, err := url.Parse(strings.TrimRight(serverURL, "/") + "/ws")
	if err != nil {
		return nil, fmt.Errorf("failed to parse server url: %w", err)
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	return &Watcher{url: u.String(), client: client, logger: logger}, nil
}

// Watch calls fn for every event received until ctx is done.
func (w *Watcher) Watch(ctx context.Context, fn func(realtime.Event)) error {
	delay := minReconnectDelay
	for {
		err := w.session(ctx, fn)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		w.logger.Info("Watcher: connection lost", "error", err.Error(), "retry_in", delay.String())

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay = min(delay*2, maxReconnectDelay)
	}
}

func (w *Watcher) session(ctx context.Context, fn func(realtime.Event)) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, w.url, nil)
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}
	defer conn.Close()

	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	join, err := realtime.NewEvent(realtime.EventJoin, realtime.JoinPayload{Name: w.client.Name()})
	if err != nil {
		return err
	}
	if err := conn.WriteJSON(join); err != nil {
		return fmt.Errorf("failed to join: %w", err)
	}

	w.client.Notify()

	for {
		var ev realtime.Event
		if err := conn.ReadJSON(&ev); err != nil {
			return err
		}
		fn(ev)
	}
}
