package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/skilledge/skilledge-server/internal/logger"
	"github.com/skilledge/skilledge-server/internal/model"
	"github.com/skilledge/skilledge-server/internal/realtime"
)

// Realtime handles the inbound events of websocket sessions.
type Realtime struct {
	syncService SyncService
	logger      *logger.Logger
}

var _ realtime.Handler = (*Realtime)(nil)

func NewRealtime(syncService SyncService, logger *logger.Logger) *Realtime {
	return &Realtime{syncService: syncService, logger: logger}
}

// HandleEvent answers join with the leaderboard for that session alone and
// merges progress:update. Broadcasts are sent by the sync service.
func (h *Realtime) HandleEvent(ctx context.Context, ev realtime.Event) ([]realtime.Event, error) {
	replies, err := h.handle(ctx, ev)
	if err != nil && !model.IsValidation(err) {
		h.logger.Error("Realtime handler: event failed",
			"event", ev.Event,
			"error", err.Error())
		_, message := statusOf(err)
		return nil, errors.New(message)
	}
	return replies, err
}

func (h *Realtime) handle(ctx context.Context, ev realtime.Event) ([]realtime.Event, error) {
	switch ev.Event {
	case realtime.EventJoin:
		var p realtime.JoinPayload
		if err := unmarshalData(ev, &p); err != nil {
			return nil, err
		}
		entries, err := h.syncService.Join(ctx, p.Name)
		if err != nil {
			return nil, err
		}
		if entries == nil {
			entries = []model.LeaderboardEntry{}
		}
		reply, err := realtime.NewEvent(realtime.EventLeaderboardUpdate, entries)
		if err != nil {
			return nil, err
		}
		return []realtime.Event{reply}, nil

	case realtime.EventProgressUpdate:
		var update model.ProgressUpdate
		if err := unmarshalData(ev, &update); err != nil {
			return nil, err
		}
		if _, err := h.syncService.ProgressUpdate(ctx, update); err != nil {
			return nil, err
		}
		return nil, nil

	default:
		h.logger.Debug("Realtime handler: ignoring event", "event", ev.Event)
		return nil, nil
	}
}

func unmarshalData(ev realtime.Event, dst any) error {
	if len(ev.Data) == 0 {
		return model.NewValidationError("data", fmt.Sprintf("missing %s payload", ev.Event))
	}
	if err := json.Unmarshal(ev.Data, dst); err != nil {
		if model.IsValidation(err) {
			return err
		}
		return model.NewValidationError("data", fmt.Sprintf("malformed %s payload", ev.Event))
	}
	return nil
}
