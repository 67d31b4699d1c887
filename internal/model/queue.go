package model

import "time"

// QueueEntry is a change persisted on the client until the server
// acknowledges it.
type QueueEntry struct {
	ID        int64
	Change    Change
	CreatedAt time.Time
}
