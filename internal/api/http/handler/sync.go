package handler

import (
	"net/http"

	"github.com/skilledge/skilledge-server/internal/logger"
	"github.com/skilledge/skilledge-server/internal/model"
)

// Sync handles batch sync and leaderboard requests.
type Sync struct {
	syncService SyncService
	logger      *logger.Logger
}

func NewSync(syncService SyncService, logger *logger.Logger) *Sync {
	return &Sync{syncService: syncService, logger: logger}
}

// Sync merges a queued batch and returns the authoritative user.
func (h *Sync) Sync(w http.ResponseWriter, r *http.Request) {
	var req model.SyncRequest
	if err := decode(w, r, &req); err != nil {
		h.logger.Info("Sync handler: malformed batch", "error", err.Error())
		handleError(w, err)
		return
	}

	h.logger.Debug("Sync handler: processing batch",
		"name", req.Name,
		"changes", len(req.Changes))

	res, err := h.syncService.Merge(r.Context(), req)
	if err != nil {
		handleError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, model.SyncResponse{User: res.User})
}

func (h *Sync) Leaderboard(w http.ResponseWriter, r *http.Request) {
	entries, err := h.syncService.Leaderboard(r.Context())
	if err != nil {
		handleError(w, err)
		return
	}
	if entries == nil {
		entries = []model.LeaderboardEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}
