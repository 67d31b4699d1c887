package middleware

import (
	"net/http"
	"sync"
	"time"
)

// StatsSnapshot is a point-in-time copy of the request counters.
type StatsSnapshot struct {
	TotalRequests       int64      `json:"totalRequests"`
	SuccessfulRequests  int64      `json:"successfulRequests"`
	FailedRequests      int64      `json:"failedRequests"`
	AverageResponseTime float64    `json:"averageResponseTime"`
	LastRequest         *time.Time `json:"lastRequest"`
	StartTime           time.Time  `json:"startTime"`
}

// Stats counts requests for the network status endpoint.
type Stats struct {
	mu          sync.Mutex
	total       int64
	successful  int64
	failed      int64
	totalTime   time.Duration
	lastRequest time.Time
	startTime   time.Time
	now         func() time.Time
}

func NewStats() *Stats {
	return &Stats{startTime: time.Now().UTC(), now: time.Now}
}

// Record counts one finished request. Statuses of 400 and above are failures.
func (s *Stats) Record(status int, duration time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.total++
	if status >= http.StatusBadRequest {
		s.failed++
	} else {
		s.successful++
	}
	s.totalTime += duration
	s.lastRequest = s.now().UTC()
}

func (s *Stats) Snapshot() StatsSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := StatsSnapshot{
		TotalRequests:      s.total,
		SuccessfulRequests: s.successful,
		FailedRequests:     s.failed,
		StartTime:          s.startTime,
	}
	if s.total > 0 {
		snap.AverageResponseTime = float64(s.totalTime.Milliseconds()) / float64(s.total)
		last := s.lastRequest
		snap.LastRequest = &last
	}
	return snap
}

// Uptime is the time since the stats were created.
func (s *Stats) Uptime() time.Duration {
	return s.now().Sub(s.startTime)
}

func (s *Stats) Handle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := wrap(w)
		next.ServeHTTP(ww, r)
		s.Record(ww.statusCode, time.Since(start))
	})
}
