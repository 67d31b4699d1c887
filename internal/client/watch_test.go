package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skilledge/skilledge-server/internal/realtime"
	tu "github.com/skilledge/skilledge-server/internal/testutil"
)

func TestNewWatcher_Scheme(t *testing.T) {
	c := New("alice", nil, nil, nil, 0, tu.MakeNoopLogger())

	w, err := NewWatcher("http://localhost:8080/", c, tu.MakeNoopLogger())
	require.NoError(t, err)
	assert.Equal(t, "ws://localhost:8080/ws", w.url)

	w, err = NewWatcher("https://skilledge.dev", c, tu.MakeNoopLogger())
	require.NoError(t, err)
	assert.Equal(t, "wss://skilledge.dev/ws", w.url)
}

func TestWatcher_JoinsAndReconnects(t *testing.T) {
	var (
		upgrader websocket.Upgrader
		conns    atomic.Int32
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if !assert.NoError(t, err) {
			return
		}
		defer conn.Close()
		conns.Add(1)

		var join realtime.Event
		if !assert.NoError(t, conn.ReadJSON(&join)) {
			return
		}
		assert.Equal(t, realtime.EventJoin, join.Event)
		assert.JSONEq(t, `{"name":"alice"}`, string(join.Data))

		ev, _ := realtime.NewEvent(realtime.EventLeaderboardUpdate, []string{})
		_ = conn.WriteJSON(ev)
	}))
	defer srv.Close()

	c := New("alice", nil, nil, nil, 0, tu.MakeNoopLogger())
	w, err := NewWatcher(srv.URL, c, tu.MakeNoopLogger())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	events := make(chan realtime.Event, 4)
	done := make(chan error, 1)
	go func() {
		done <- w.Watch(ctx, func(ev realtime.Event) { events <- ev })
	}()

	for i := 0; i < 2; i++ {
		select {
		case ev := <-events:
			assert.Equal(t, realtime.EventLeaderboardUpdate, ev.Event)
		case <-ctx.Done():
			t.Fatal("timed out waiting for event")
		}
	}
	cancel()

	assert.ErrorIs(t, <-done, context.Canceled)
	assert.GreaterOrEqual(t, conns.Load(), int32(2))
	assert.Len(t, c.notify, 1)
}
