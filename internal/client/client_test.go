package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skilledge/skilledge-server/internal/api/http/handler"
	"github.com/skilledge/skilledge-server/internal/client/store"
	"github.com/skilledge/skilledge-server/internal/model"
	"github.com/skilledge/skilledge-server/internal/repository/file"
	"github.com/skilledge/skilledge-server/internal/service"
	tu "github.com/skilledge/skilledge-server/internal/testutil"
)

// server is a sync endpoint backed by the real merge service that can be
// switched offline or paused mid-request.
type server struct {
	*httptest.Server
	users   *file.Store
	offline atomic.Bool
	hold    chan struct{}
	entered chan struct{}
}

func newServer(t *testing.T) *server {
	t.Helper()
	log := tu.MakeNoopLogger()

	users, err := file.Open(filepath.Join(t.TempDir(), "server.json"))
	require.NoError(t, err)

	syncService := service.NewSync(users,
		service.NewMerger(service.AwardFirstCompletion, service.DefaultPointsPerModule),
		service.NewLeaderboard(users, model.DefaultLeaderboardSize),
		nil, nil, log)
	h := handler.NewSync(syncService, log)

	s := &server{users: users}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /sync", func(w http.ResponseWriter, r *http.Request) {
		if s.offline.Load() {
			http.Error(w, `{"error":"unavailable"}`, http.StatusServiceUnavailable)
			return
		}
		if s.hold != nil {
			s.entered <- struct{}{}
			<-s.hold
		}
		h.Sync(w, r)
	})
	mux.HandleFunc("GET /leaderboard", h.Leaderboard)
	s.Server = httptest.NewServer(mux)
	t.Cleanup(s.Close)
	return s
}

func (s *server) points(t *testing.T, name string) int {
	t.Helper()
	u, err := s.users.GetByName(context.Background(), name)
	require.NoError(t, err)
	return u.Points
}

func newClient(t *testing.T, url, name string) (*Client, *store.Store) {
	t.Helper()
	local, err := store.Open(context.Background(), filepath.Join(t.TempDir(), "local.db"))
	require.NoError(t, err)
	t.Cleanup(func() { local.Close() })

	return New(name, local, local, NewHTTPTransport(url, 2*time.Second), 0, tu.MakeNoopLogger()), local
}

func TestClient_OfflineThenRecover(t *testing.T) {
	srv := newServer(t)
	c, local := newClient(t, srv.URL, "dave")
	ctx := context.Background()
	srv.offline.Store(true)

	for _, id := range []string{"mod1", "mod2", "mod1"} {
		res, err := c.Submit(ctx, model.CompleteModule{ModuleID: id})
		require.NoError(t, err)
		assert.False(t, res.Synced)
	}

	_, err := c.Flush(ctx)
	require.Error(t, err)
	var ne *model.NetworkError
	require.ErrorAs(t, err, &ne)
	assert.Equal(t, http.StatusServiceUnavailable, ne.StatusCode)

	n, err := local.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	cached, err := local.GetUser(ctx, "dave")
	require.NoError(t, err)
	assert.Len(t, cached.Modules, 2)
	assert.Zero(t, cached.Points)

	srv.offline.Store(false)
	res, err := c.Flush(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Sent)
	assert.Equal(t, 20, res.User.Points)
	assert.Equal(t, 20, srv.points(t, "dave"))

	n, err = local.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	cached, err = local.GetUser(ctx, "dave")
	require.NoError(t, err)
	assert.Equal(t, 20, cached.Points)
}

func TestClient_SubmitOnline(t *testing.T) {
	srv := newServer(t)
	c, local := newClient(t, srv.URL, "alice")
	ctx := context.Background()

	res, err := c.Submit(ctx, model.CompleteModule{ModuleID: "mod1"})
	require.NoError(t, err)
	assert.True(t, res.Synced)
	assert.Equal(t, 10, res.User.Points)
	assert.Equal(t, []string{"Completed: mod1"}, res.User.Badges)

	n, err := local.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestClient_EnqueueDuringFlushStaysQueued(t *testing.T) {
	srv := newServer(t)
	srv.hold = make(chan struct{})
	srv.entered = make(chan struct{})
	c, local := newClient(t, srv.URL, "erin")
	ctx := context.Background()

	_, err := c.Enqueue(ctx, model.CompleteModule{ModuleID: "mod1"})
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, err := c.Flush(ctx)
		done <- err
	}()

	<-srv.entered
	late, err := c.Enqueue(ctx, model.CompleteModule{ModuleID: "mod2"})
	require.NoError(t, err)
	close(srv.hold)
	require.NoError(t, <-done)

	pending, err := local.Pending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, late.ID, pending[0].ID)
	assert.Equal(t, 10, srv.points(t, "erin"))
}

func TestClient_ReplayedBatchAwardsOnce(t *testing.T) {
	srv := newServer(t)
	c, _ := newClient(t, srv.URL, "frank")
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := c.Enqueue(ctx, model.CompleteModule{ModuleID: "mod1"})
		require.NoError(t, err)
		_, err = c.Flush(ctx)
		require.NoError(t, err)
	}

	assert.Equal(t, 10, srv.points(t, "frank"))
}

func TestClient_EnqueueValidates(t *testing.T) {
	c, local := newClient(t, "http://127.0.0.1:1", "alice")
	ctx := context.Background()

	_, err := c.Enqueue(ctx, model.CompleteModule{})
	assert.True(t, model.IsValidation(err))

	_, err = c.Submit(ctx, model.SubmitLab{LabID: "lab1"})
	assert.True(t, model.IsValidation(err))

	n, err := local.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestClient_UnreachableServerIsNetworkError(t *testing.T) {
	c, local := newClient(t, "http://127.0.0.1:1", "alice")
	ctx := context.Background()

	res, err := c.Submit(ctx, model.SetGoal{Goal: "frontend"})
	require.NoError(t, err)
	assert.False(t, res.Synced)

	_, err = c.Flush(ctx)
	assert.True(t, model.IsNetwork(err))

	n, err := local.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestClient_FlushEmptyQueueSendsNothing(t *testing.T) {
	srv := newServer(t)
	srv.offline.Store(true)
	c, _ := newClient(t, srv.URL, "alice")

	res, err := c.Flush(context.Background())
	require.NoError(t, err)
	assert.Zero(t, res.Sent)
}

func TestClient_ClearDropsQueue(t *testing.T) {
	c, local := newClient(t, "http://127.0.0.1:1", "alice")
	ctx := context.Background()

	_, err := c.Enqueue(ctx, model.CompleteInterview{Score: 80})
	require.NoError(t, err)

	removed, err := c.Clear(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	n, err := local.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestClient_SetPathTravelsWithBatch(t *testing.T) {
	srv := newServer(t)
	c, _ := newClient(t, srv.URL, "gina")
	ctx := context.Background()

	require.NoError(t, c.SetPath(ctx, model.Path{Title: "Frontend", Progress: 25, Modules: []model.PathModule{{ID: "mod1"}}}))
	assert.True(t, model.IsValidation(c.SetPath(ctx, model.Path{Progress: 101})))

	res, err := c.Submit(ctx, model.CompleteModule{ModuleID: "mod1"})
	require.NoError(t, err)
	require.NotNil(t, res.User.Path)
	assert.Equal(t, "Frontend", res.User.Path.Title)
	assert.True(t, res.User.Path.Modules[0].Completed)
}

func TestClient_RunFlushesOnNotify(t *testing.T) {
	srv := newServer(t)
	c, local := newClient(t, srv.URL, "hank")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	_, err := c.Enqueue(ctx, model.CompleteModule{ModuleID: "mod1"})
	require.NoError(t, err)

	go c.Run(ctx, time.Hour)
	c.Notify()

	assert.Eventually(t, func() bool {
		n, err := local.Count(context.Background())
		return err == nil && n == 0
	}, 2*time.Second, 10*time.Millisecond)
}

type failingTransport struct{}

func (failingTransport) Sync(context.Context, model.SyncRequest) (model.User, error) {
	return model.User{}, &model.NetworkError{Err: errors.New("timeout")}
}

func TestClient_RunKeepsQueueOnFailure(t *testing.T) {
	local, err := store.Open(context.Background(), filepath.Join(t.TempDir(), "local.db"))
	require.NoError(t, err)
	defer local.Close()

	c := New("ivy", local, local, failingTransport{}, time.Second, tu.MakeNoopLogger())
	ctx, cancel := context.WithCancel(context.Background())

	_, err = c.Enqueue(ctx, model.CompleteModule{ModuleID: "mod1"})
	require.NoError(t, err)

	stopped := make(chan struct{})
	go func() {
		c.Run(ctx, 5*time.Millisecond)
		close(stopped)
	}()
	time.Sleep(30 * time.Millisecond)
	cancel()
	<-stopped

	n, err := local.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestClient_StatusWhileOffline(t *testing.T) {
	c, _ := newClient(t, "http://127.0.0.1:1", "jill")
	ctx := context.Background()

	for _, id := range []string{"mod1", "mod2"} {
		_, err := c.Submit(ctx, model.CompleteModule{ModuleID: id})
		require.NoError(t, err)
	}
	_, err := c.Enqueue(ctx, model.SetGoal{Goal: "backend"})
	require.NoError(t, err)

	st, err := c.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, st.Pending)
	assert.Equal(t, []model.ModuleProgress{{ID: "mod1", Completed: true}, {ID: "mod2", Completed: true}}, st.Completed)
	assert.Equal(t, "jill", st.User.Name)
	assert.Zero(t, st.User.Points)
}
