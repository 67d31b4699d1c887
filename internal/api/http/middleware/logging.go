package middleware

import (
	"net/http"
	"time"

	"github.com/skilledge/skilledge-server/internal/logger"
)

// Logging logs every HTTP request with its duration and status.
type Logging struct {
	logger *logger.Logger
}

func NewLogging(logger *logger.Logger) *Logging {
	return &Logging{logger: logger}
}

func (l *Logging) Handle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := wrap(w)

		l.logger.Debug("HTTP request started",
			"method", r.Method,
			"path", r.URL.Path)

		next.ServeHTTP(ww, r)

		duration := time.Since(start)
		args := []any{
			"method", r.Method,
			"path", r.URL.Path,
			"duration_ms", duration.Milliseconds(),
			"status", ww.statusCode,
		}
		if ww.statusCode >= http.StatusInternalServerError {
			l.logger.Error("HTTP request failed", args...)
			return
		}
		l.logger.Info("HTTP request completed", args...)
	})
}
