package realtime

import (
	"encoding/json"
	"fmt"
)

const (
	EventJoin              = "join"
	EventProgressUpdate    = "progress:update"
	EventLeaderboardUpdate = "leaderboard:update"
	EventProgressBroadcast = "progress:broadcast"
	EventError             = "error"
)

// Event is one websocket frame in either direction.
type Event struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// NewEvent encodes data as the payload of a named event.
func NewEvent(name string, data any) (Event, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return Event{}, fmt.Errorf("failed to encode %s payload: %w", name, err)
	}
	return Event{Event: name, Data: raw}, nil
}

// JoinPayload is the data of a join event.
type JoinPayload struct {
	Name string `json:"name"`
}

// ErrorPayload is the data of an error reply.
type ErrorPayload struct {
	Error string `json:"error"`
}
