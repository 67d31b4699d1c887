package handler

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/skilledge/skilledge-server/internal/mocks"
	"github.com/skilledge/skilledge-server/internal/model"
	"github.com/skilledge/skilledge-server/internal/realtime"
	tu "github.com/skilledge/skilledge-server/internal/testutil"
)

func event(t *testing.T, name string, data any) realtime.Event {
	t.Helper()
	ev, err := realtime.NewEvent(name, data)
	require.NoError(t, err)
	return ev
}

func TestRealtime_Join(t *testing.T) {
	svc := mocks.NewSyncService(t)
	svc.On("Join", mock.Anything, "carol").Return([]model.LeaderboardEntry{{Name: "carol", Badges: []string{}}}, nil)

	replies, err := NewRealtime(svc, tu.MakeNoopLogger()).
		HandleEvent(context.Background(), event(t, realtime.EventJoin, realtime.JoinPayload{Name: "carol"}))
	require.NoError(t, err)
	require.Len(t, replies, 1)
	assert.Equal(t, realtime.EventLeaderboardUpdate, replies[0].Event)

	var entries []model.LeaderboardEntry
	require.NoError(t, json.Unmarshal(replies[0].Data, &entries))
	assert.Equal(t, "carol", entries[0].Name)
}

func TestRealtime_ProgressUpdate(t *testing.T) {
	svc := mocks.NewSyncService(t)
	svc.On("ProgressUpdate", mock.Anything, mock.MatchedBy(func(u model.ProgressUpdate) bool {
		return u.Name == "alice" && u.ModuleID == "mod1" && u.PointsDelta == 999
	})).Return(model.MergeResult{}, nil)

	replies, err := NewRealtime(svc, tu.MakeNoopLogger()).HandleEvent(context.Background(),
		event(t, realtime.EventProgressUpdate, model.ProgressUpdate{Name: "alice", ModuleID: "mod1", PointsDelta: 999}))
	require.NoError(t, err)
	assert.Empty(t, replies)
}

func TestRealtime_Errors(t *testing.T) {
	svc := mocks.NewSyncService(t)
	svc.On("Join", mock.Anything, "alice").Return(nil, model.NewStorageError("get user", errors.New("dial tcp 10.0.0.5:5432")))
	h := NewRealtime(svc, tu.MakeNoopLogger())

	_, err := h.HandleEvent(context.Background(), realtime.Event{Event: realtime.EventJoin})
	assert.True(t, model.IsValidation(err))

	_, err = h.HandleEvent(context.Background(), event(t, realtime.EventJoin, realtime.JoinPayload{Name: "alice"}))
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "10.0.0.5")

	replies, err := h.HandleEvent(context.Background(), realtime.Event{Event: "chat"})
	assert.NoError(t, err)
	assert.Empty(t, replies)
}
