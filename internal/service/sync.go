package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/skilledge/skilledge-server/internal/logger"
	"github.com/skilledge/skilledge-server/internal/metrics"
	"github.com/skilledge/skilledge-server/internal/model"
)

// Sync orchestrates a merge: one atomic read-modify-write of the user, a
// leaderboard recomputation and the realtime fan-out.
type Sync struct {
	users       model.UserStore
	merger      *Merger
	leaderboard *Leaderboard
	broadcaster model.Broadcaster
	metrics     *metrics.Metrics
	logger      *logger.Logger

	// publishMu orders snapshot and fan-out so the last leaderboard sent
	// is never older than the last merge committed.
	publishMu sync.Mutex
}

func NewSync(
	users model.UserStore,
	merger *Merger,
	leaderboard *Leaderboard,
	broadcaster model.Broadcaster,
	metrics *metrics.Metrics,
	logger *logger.Logger,
) *Sync {
	return &Sync{
		users:       users,
		merger:      merger,
		leaderboard: leaderboard,
		broadcaster: broadcaster,
		metrics:     metrics,
		logger:      logger,
	}
}

// Merge applies a client batch to the authoritative record of req.Name.
func (s *Sync) Merge(ctx context.Context, req model.SyncRequest) (model.MergeResult, error) {
	s.logger.Debug("Sync service: merging batch",
		"name", req.Name,
		"changes", len(req.Changes))

	if err := req.Validate(); err != nil {
		s.logger.Info("Sync service: rejected batch",
			"name", req.Name,
			"error", err.Error())
		s.observe("invalid", 0)
		return model.MergeResult{}, err
	}

	return s.merge(ctx, req.Name, req.Path, req.Changes, nil)
}

// ProgressUpdate merges a realtime progress report. The reported point
// delta is ignored: points are only ever derived from completed modules.
func (s *Sync) ProgressUpdate(ctx context.Context, update model.ProgressUpdate) (model.MergeResult, error) {
	req := model.SyncRequest{Name: update.Name, Path: update.Path}
	if update.ModuleID != "" {
		req.Changes = model.Changes{model.CompleteModule{ModuleID: update.ModuleID}}
	}

	if err := req.Validate(); err != nil {
		s.observe("invalid", 0)
		return model.MergeResult{}, err
	}
	if p := update.PathProgress; p != nil && (*p < 0 || *p > 100) {
		s.observe("invalid", 0)
		return model.MergeResult{}, model.NewValidationError("pathProgress", fmt.Sprintf("must be within 0..100, got %v", *p))
	}

	return s.merge(ctx, req.Name, req.Path, req.Changes, update.PathProgress)
}

func (s *Sync) merge(ctx context.Context, name string, path *model.Path, changes model.Changes, pathProgress *float64) (model.MergeResult, error) {
	var res model.MergeResult
	user, err := s.users.Mutate(ctx, name, func(user *model.User) error {
		res = s.merger.Apply(user, path, changes)
		if pathProgress != nil {
			if user.Path == nil {
				user.Path = &model.Path{}
			}
			user.Path.Progress = *pathProgress
		}
		return nil
	})
	if err != nil {
		s.logger.Error("Sync service: failed to persist merge",
			"name", name,
			"error", err.Error())
		s.observe("error", 0)
		return model.MergeResult{}, fmt.Errorf("failed to merge changes: %w", err)
	}
	res.User = user

	s.logger.Info("Sync service: batch merged",
		"name", name,
		"applied", res.Applied,
		"ignored", res.Ignored,
		"awarded", res.Awarded,
		"points", user.Points)
	s.observe("ok", res.Awarded)

	s.publish(ctx, res)
	return res, nil
}

func (s *Sync) publish(ctx context.Context, res model.MergeResult) {
	if s.broadcaster == nil {
		return
	}

	s.publishMu.Lock()
	defer s.publishMu.Unlock()

	s.broadcaster.BroadcastProgress(model.ProgressBroadcast{
		Name:     res.User.Name,
		Points:   res.User.Points,
		Badge:    res.LastBadge(),
		ModuleID: res.ModuleID,
		Path:     res.User.Path,
	})

	entries, err := s.leaderboard.Snapshot(ctx)
	if err != nil {
		s.logger.Error("Sync service: failed to recompute leaderboard",
			"name", res.User.Name,
			"error", err.Error())
		return
	}
	s.broadcaster.BroadcastLeaderboard(entries)
}

func (s *Sync) observe(result string, awarded int) {
	if s.metrics == nil {
		return
	}
	s.metrics.Merges.WithLabelValues(result).Inc()
	if awarded > 0 {
		s.metrics.PointsAwarded.Add(float64(awarded))
	}
}

// Join registers name if it is unknown and returns the current leaderboard
// for the joining session only.
func (s *Sync) Join(ctx context.Context, name string) ([]model.LeaderboardEntry, error) {
	if name == "" {
		return nil, model.NewValidationError("name", "missing name")
	}

	_, err := s.users.GetByName(ctx, name)
	if errors.Is(err, model.ErrNotFound) {
		_, err = s.users.Create(ctx, model.NewUser(name))
		if err == nil {
			s.logger.Info("Sync service: user registered on join", "name", name)
		}
		if errors.Is(err, model.ErrAlreadyExists) {
			err = nil
		}
	}
	if err != nil {
		s.logger.Error("Sync service: failed to resolve joining user",
			"name", name,
			"error", err.Error())
		return nil, fmt.Errorf("failed to resolve user: %w", err)
	}

	return s.Leaderboard(ctx)
}

// Leaderboard returns the configured top of the leaderboard.
func (s *Sync) Leaderboard(ctx context.Context) ([]model.LeaderboardEntry, error) {
	entries, err := s.leaderboard.Snapshot(ctx)
	if err != nil {
		s.logger.Error("Sync service: failed to compute leaderboard", "error", err.Error())
		return nil, err
	}
	return entries, nil
}
