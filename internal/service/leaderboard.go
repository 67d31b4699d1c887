package service

import (
	"context"
	"fmt"
	"slices"

	"github.com/skilledge/skilledge-server/internal/model"
)

// Project sorts users by points descending and truncates the result to n.
// Ties keep the order of users, which stores return in insertion order.
func Project(users []model.User, n int) []model.LeaderboardEntry {
	sorted := slices.Clone(users)
	slices.SortStableFunc(sorted, func(a, b model.User) int {
		return b.Points - a.Points
	})

	if n >= 0 && len(sorted) > n {
		sorted = sorted[:n]
	}

	entries := make([]model.LeaderboardEntry, 0, len(sorted))
	for _, u := range sorted {
		badges := slices.Clone(u.Badges)
		if badges == nil {
			badges = []string{}
		}
		entries = append(entries, model.LeaderboardEntry{Name: u.Name, Points: u.Points, Badges: badges})
	}
	return entries
}

// Leaderboard recomputes the projection from storage on every call.
type Leaderboard struct {
	users model.UserStore
	size  int
}

func NewLeaderboard(users model.UserStore, size int) *Leaderboard {
	if size <= 0 {
		size = model.DefaultLeaderboardSize
	}
	return &Leaderboard{users: users, size: size}
}

// TopN returns the n best users.
func (l *Leaderboard) TopN(ctx context.Context, n int) ([]model.LeaderboardEntry, error) {
	users, err := l.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return Project(users, n), nil
}

// Snapshot returns the configured top of the leaderboard.
func (l *Leaderboard) Snapshot(ctx context.Context) ([]model.LeaderboardEntry, error) {
	return l.TopN(ctx, l.size)
}
