package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/skilledge/skilledge-server/internal/api/http/middleware"
)

const pingTimeout = 2 * time.Second

// Pinger reports whether a storage backend is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// StatsProvider exposes request counters for the network status endpoint.
type StatsProvider interface {
	Snapshot() middleware.StatsSnapshot
	Uptime() time.Duration
}

type healthResponse struct {
	Status  string `json:"status"`
	Storage string `json:"storage"`
	Message string `json:"message"`
}

type networkStatusResponse struct {
	Status    string                   `json:"status"`
	Uptime    float64                  `json:"uptime"`
	Stats     middleware.StatsSnapshot `json:"stats"`
	Timestamp time.Time                `json:"timestamp"`
}

// Health reports liveness of the server and its storage backend.
type Health struct {
	storage string
	pinger  Pinger
	stats   StatsProvider
}

// NewHealth takes the name of the active storage backend, "postgres" or
// "file", and its pinger.
func NewHealth(storage string, pinger Pinger, stats StatsProvider) *Health {
	return &Health{storage: storage, pinger: pinger, stats: stats}
}

func (h *Health) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), pingTimeout)
	defer cancel()

	if err := h.pinger.Ping(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, healthResponse{
			Status:  "unhealthy",
			Storage: h.storage,
			Message: "storage is unreachable",
		})
		return
	}

	writeJSON(w, http.StatusOK, healthResponse{
		Status:  "ok",
		Storage: h.storage,
		Message: "SkillEdge API is running",
	})
}

func (h *Health) NetworkStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, networkStatusResponse{
		Status:    "online",
		Uptime:    h.stats.Uptime().Seconds(),
		Stats:     h.stats.Snapshot(),
		Timestamp: time.Now().UTC(),
	})
}
