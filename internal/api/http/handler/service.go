package handler

import (
	"context"

	"github.com/skilledge/skilledge-server/internal/model"
)

// SyncService merges progress and serves the leaderboard.
type SyncService interface {
	Merge(ctx context.Context, req model.SyncRequest) (model.MergeResult, error)
	ProgressUpdate(ctx context.Context, update model.ProgressUpdate) (model.MergeResult, error)
	Join(ctx context.Context, name string) ([]model.LeaderboardEntry, error)
	Leaderboard(ctx context.Context) ([]model.LeaderboardEntry, error)
}

// AuthService registers and logs in users.
type AuthService interface {
	Register(ctx context.Context, name, password string) (string, model.User, error)
	Login(ctx context.Context, name, password string) (string, model.User, error)
	Me(ctx context.Context, name string) (model.User, error)
}

// CourseService reads and seeds the course catalogue.
type CourseService interface {
	List(ctx context.Context) ([]model.Course, error)
	Get(ctx context.Context, slug string) (model.Course, error)
	SeedDemo(ctx context.Context) ([]model.Course, error)
}

// CertificateService issues and looks up achievement certificates.
type CertificateService interface {
	Issue(ctx context.Context, name string, achievement model.Achievement) (model.Certificate, error)
	Get(ctx context.Context, hash string) (model.Certificate, error)
}
