package model

// DefaultLeaderboardSize is the number of entries pushed to clients.
const DefaultLeaderboardSize = 20

// LeaderboardEntry is a read-only projection of a user.
type LeaderboardEntry struct {
	Name   string   `json:"name"`
	Points int      `json:"points"`
	Badges []string `json:"badges"`
}

// ProgressBroadcast is pushed to every session after a successful merge.
type ProgressBroadcast struct {
	Name     string `json:"name"`
	Points   int    `json:"points"`
	Badge    string `json:"badge"`
	ModuleID string `json:"moduleId"`
	Path     *Path  `json:"path"`
}

// Broadcaster fans out merge results to all connected sessions.
type Broadcaster interface {
	BroadcastProgress(event ProgressBroadcast)
	BroadcastLeaderboard(entries []LeaderboardEntry)
}
