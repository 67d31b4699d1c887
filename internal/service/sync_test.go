package service

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/skilledge/skilledge-server/internal/metrics"
	"github.com/skilledge/skilledge-server/internal/mocks"
	"github.com/skilledge/skilledge-server/internal/model"
	"github.com/skilledge/skilledge-server/internal/repository/file"
	tu "github.com/skilledge/skilledge-server/internal/testutil"
)

func newFileStore(t *testing.T) *file.Store {
	t.Helper()
	s, err := file.Open(filepath.Join(t.TempDir(), "data.json"))
	require.NoError(t, err)
	return s
}

func newSync(store model.UserStore, b model.Broadcaster, policy AwardPolicy) *Sync {
	return NewSync(store, NewMerger(policy, 10), NewLeaderboard(store, 20), b, metrics.New(nil), tu.MakeNoopLogger())
}

func TestSync_Merge_NewUserCompletesModule(t *testing.T) {
	ctx := context.Background()
	store := newFileStore(t)
	b := mocks.NewBroadcaster(t)
	b.On("BroadcastProgress", mock.MatchedBy(func(e model.ProgressBroadcast) bool {
		return e.Name == "alice" && e.Points == 10 && e.Badge == "Completed: mod1" && e.ModuleID == "mod1"
	})).Once()
	b.On("BroadcastLeaderboard", []model.LeaderboardEntry{{Name: "alice", Points: 10, Badges: []string{"Completed: mod1"}}}).Once()

	res, err := newSync(store, b, AwardFirstCompletion).Merge(ctx, model.SyncRequest{
		Name:    "alice",
		Changes: model.Changes{model.CompleteModule{ModuleID: "mod1"}},
	})
	require.NoError(t, err)

	assert.Equal(t, 10, res.User.Points)
	assert.Equal(t, []string{"Completed: mod1"}, res.User.Badges)
	assert.Equal(t, []model.ModuleProgress{{ID: "mod1", Completed: true}}, res.User.Modules)

	stored, err := store.GetByName(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 10, stored.Points)
}

func TestSync_Merge_ReplayedBatchAwardsOnce(t *testing.T) {
	ctx := context.Background()
	store := newFileStore(t)
	b := mocks.NewBroadcaster(t)
	b.On("BroadcastProgress", mock.Anything)
	b.On("BroadcastLeaderboard", mock.Anything)
	s := newSync(store, b, AwardFirstCompletion)

	req := model.SyncRequest{Name: "alice", Changes: model.Changes{model.CompleteModule{ModuleID: "mod1"}}}
	_, err := s.Merge(ctx, req)
	require.NoError(t, err)
	res, err := s.Merge(ctx, req)
	require.NoError(t, err)

	assert.Equal(t, 10, res.User.Points)
	assert.Equal(t, 0, res.Awarded)
	assert.Empty(t, res.LastBadge())
}

func TestSync_Merge_PerChangePolicyAwardsReplay(t *testing.T) {
	ctx := context.Background()
	store := newFileStore(t)
	b := mocks.NewBroadcaster(t)
	b.On("BroadcastProgress", mock.Anything)
	b.On("BroadcastLeaderboard", mock.Anything)
	s := newSync(store, b, AwardPerChange)

	req := model.SyncRequest{Name: "alice", Changes: model.Changes{model.CompleteModule{ModuleID: "mod1"}}}
	_, err := s.Merge(ctx, req)
	require.NoError(t, err)
	res, err := s.Merge(ctx, req)
	require.NoError(t, err)

	assert.Equal(t, 20, res.User.Points)
	assert.Len(t, res.User.Modules, 1)
}

func TestSync_Merge_MissingName(t *testing.T) {
	store := mocks.NewUserStore(t)
	b := mocks.NewBroadcaster(t)

	_, err := newSync(store, b, AwardFirstCompletion).Merge(context.Background(), model.SyncRequest{
		Changes: model.Changes{model.CompleteModule{ModuleID: "mod1"}},
	})
	require.Error(t, err)
	assert.True(t, model.IsValidation(err))
}

func TestSync_Merge_InvalidChangeRejectsWholeBatch(t *testing.T) {
	store := mocks.NewUserStore(t)
	b := mocks.NewBroadcaster(t)

	_, err := newSync(store, b, AwardFirstCompletion).Merge(context.Background(), model.SyncRequest{
		Name: "alice",
		Changes: model.Changes{
			model.CompleteModule{ModuleID: "mod1"},
			model.CompleteModule{},
		},
	})
	require.Error(t, err)
	assert.True(t, model.IsValidation(err))
	assert.Contains(t, err.Error(), "changes[1]")
}

func TestSync_Merge_StorageFailureIsRetryable(t *testing.T) {
	store := mocks.NewUserStore(t)
	b := mocks.NewBroadcaster(t)
	store.On("Mutate", mock.Anything, "alice", mock.Anything).
		Return(model.User{}, model.NewStorageError("commit transaction", errors.New("disk full")))

	m := metrics.New(nil)
	s := NewSync(store, NewMerger(AwardFirstCompletion, 10), NewLeaderboard(store, 20), b, m, tu.MakeNoopLogger())

	_, err := s.Merge(context.Background(), model.SyncRequest{
		Name:    "alice",
		Changes: model.Changes{model.CompleteModule{ModuleID: "mod1"}},
	})
	require.Error(t, err)
	assert.True(t, model.IsStorage(err))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.Merges.WithLabelValues("error")))
}

func TestSync_Merge_LeaderboardFailureStillSucceeds(t *testing.T) {
	store := mocks.NewUserStore(t)
	b := mocks.NewBroadcaster(t)
	store.On("Mutate", mock.Anything, "alice", mock.Anything).
		Return(func(_ context.Context, name string, fn func(*model.User) error) (model.User, error) {
			u := model.NewUser(name)
			return u, fn(&u)
		})
	store.On("List", mock.Anything).Return(nil, errors.New("down"))
	b.On("BroadcastProgress", mock.Anything).Once()

	res, err := newSync(store, b, AwardFirstCompletion).Merge(context.Background(), model.SyncRequest{
		Name:    "alice",
		Changes: model.Changes{model.CompleteModule{ModuleID: "mod1"}},
	})
	require.NoError(t, err)
	assert.Equal(t, 10, res.User.Points)
	b.AssertNotCalled(t, "BroadcastLeaderboard", mock.Anything)
}

func TestSync_ProgressUpdate(t *testing.T) {
	ctx := context.Background()
	store := newFileStore(t)
	b := mocks.NewBroadcaster(t)
	b.On("BroadcastProgress", mock.Anything)
	b.On("BroadcastLeaderboard", mock.Anything)
	s := newSync(store, b, AwardFirstCompletion)

	progress := 42.0
	res, err := s.ProgressUpdate(ctx, model.ProgressUpdate{
		Name:         "bob",
		ModuleID:     "mod2",
		PointsDelta:  500,
		PathProgress: &progress,
	})
	require.NoError(t, err)

	assert.Equal(t, 10, res.User.Points)
	require.NotNil(t, res.User.Path)
	assert.Equal(t, 42.0, res.User.Path.Progress)
}

func TestSync_ProgressUpdate_MarksPathModule(t *testing.T) {
	ctx := context.Background()
	store := newFileStore(t)
	b := mocks.NewBroadcaster(t)
	b.On("BroadcastProgress", mock.Anything)
	b.On("BroadcastLeaderboard", mock.Anything)

	res, err := newSync(store, b, AwardFirstCompletion).ProgressUpdate(ctx, model.ProgressUpdate{
		Name:     "carol",
		ModuleID: "mod1",
		Path:     &model.Path{Title: "Frontend", Modules: []model.PathModule{{ID: "mod1"}, {ID: "mod2"}}},
	})
	require.NoError(t, err)

	want := []model.PathModule{{ID: "mod1", Completed: true}, {ID: "mod2"}}
	require.NotNil(t, res.User.Path)
	assert.Equal(t, want, res.User.Path.Modules)

	stored, err := store.GetByName(ctx, "carol")
	require.NoError(t, err)
	assert.Equal(t, want, stored.Path.Modules)
}

// recordingBroadcaster keeps every leaderboard it was asked to send.
type recordingBroadcaster struct {
	mu     sync.Mutex
	boards [][]model.LeaderboardEntry
}

func (r *recordingBroadcaster) BroadcastProgress(model.ProgressBroadcast) {}

func (r *recordingBroadcaster) BroadcastLeaderboard(entries []model.LeaderboardEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.boards = append(r.boards, entries)
}

// slowListStore parks the first List after reading until release is closed.
type slowListStore struct {
	*file.Store
	once    sync.Once
	listed  chan struct{}
	release chan struct{}
	mutated chan string
}

func (s *slowListStore) List(ctx context.Context) ([]model.User, error) {
	users, err := s.Store.List(ctx)
	s.once.Do(func() {
		close(s.listed)
		<-s.release
	})
	return users, err
}

func (s *slowListStore) Mutate(ctx context.Context, name string, fn func(*model.User) error) (model.User, error) {
	u, err := s.Store.Mutate(ctx, name, fn)
	s.mutated <- name
	return u, err
}

func TestSync_Merge_LastLeaderboardIncludesLatestMerge(t *testing.T) {
	ctx := context.Background()
	store := &slowListStore{
		Store:   newFileStore(t),
		listed:  make(chan struct{}),
		release: make(chan struct{}),
		mutated: make(chan string, 2),
	}
	b := &recordingBroadcaster{}
	s := newSync(store, b, AwardFirstCompletion)

	var wg sync.WaitGroup
	merge := func(name string) {
		defer wg.Done()
		_, err := s.Merge(ctx, model.SyncRequest{Name: name, Changes: model.Changes{model.CompleteModule{ModuleID: "mod1"}}})
		assert.NoError(t, err)
	}

	wg.Add(1)
	go merge("alice")
	<-store.listed

	wg.Add(1)
	go merge("bob")
	for name := range store.mutated {
		if name == "bob" {
			break
		}
	}
	// let bob reach the fan-out while alice still holds a stale snapshot
	time.Sleep(50 * time.Millisecond)
	close(store.release)
	wg.Wait()

	b.mu.Lock()
	defer b.mu.Unlock()
	require.Len(t, b.boards, 2)
	assert.Len(t, b.boards[1], 2)
}

func TestSync_ProgressUpdate_InvalidProgress(t *testing.T) {
	s := newSync(mocks.NewUserStore(t), mocks.NewBroadcaster(t), AwardFirstCompletion)

	bad := 120.0
	_, err := s.ProgressUpdate(context.Background(), model.ProgressUpdate{Name: "bob", PathProgress: &bad})
	require.Error(t, err)
	assert.True(t, model.IsValidation(err))
}

func TestSync_Join_CreatesUnknownUserWithoutBroadcast(t *testing.T) {
	ctx := context.Background()
	store := newFileStore(t)
	b := mocks.NewBroadcaster(t)
	s := newSync(store, b, AwardFirstCompletion)

	_, err := store.Mutate(ctx, "alice", func(u *model.User) error {
		u.Points = 30
		return nil
	})
	require.NoError(t, err)

	entries, err := s.Join(ctx, "carol")
	require.NoError(t, err)

	carol, err := store.GetByName(ctx, "carol")
	require.NoError(t, err)
	assert.Equal(t, 0, carol.Points)
	assert.Empty(t, carol.Badges)
	assert.Nil(t, carol.Path)

	assert.Equal(t, []string{"alice", "carol"}, names(entries))
	b.AssertNotCalled(t, "BroadcastProgress", mock.Anything)
	b.AssertNotCalled(t, "BroadcastLeaderboard", mock.Anything)
}

func TestSync_Join_Idempotent(t *testing.T) {
	ctx := context.Background()
	store := newFileStore(t)
	s := newSync(store, mocks.NewBroadcaster(t), AwardFirstCompletion)

	_, err := s.Join(ctx, "carol")
	require.NoError(t, err)
	entries, err := s.Join(ctx, "carol")
	require.NoError(t, err)

	assert.Len(t, entries, 1)
}

func TestSync_Join_LostCreateRace(t *testing.T) {
	store := mocks.NewUserStore(t)
	store.On("GetByName", mock.Anything, "carol").Return(model.User{}, model.ErrNotFound)
	store.On("Create", mock.Anything, mock.Anything).Return(model.User{}, model.ErrAlreadyExists)
	store.On("List", mock.Anything).Return([]model.User{scored("carol", 0)}, nil)

	entries, err := newSync(store, mocks.NewBroadcaster(t), AwardFirstCompletion).Join(context.Background(), "carol")
	require.NoError(t, err)
	assert.Equal(t, []string{"carol"}, names(entries))
}

func TestSync_Join_MissingName(t *testing.T) {
	_, err := newSync(mocks.NewUserStore(t), mocks.NewBroadcaster(t), AwardFirstCompletion).Join(context.Background(), "")
	assert.True(t, model.IsValidation(err))
}
