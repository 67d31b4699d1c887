package middleware

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/skilledge/skilledge-server/internal/metrics"
)

// Monitor feeds request counts and latencies into Prometheus.
type Monitor struct {
	metrics *metrics.Metrics
}

func NewMonitor(metrics *metrics.Metrics) *Monitor {
	return &Monitor{metrics: metrics}
}

func (m *Monitor) Handle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := wrap(w)

		next.ServeHTTP(ww, r)

		path := routeTemplate(r)
		m.metrics.HTTPRequests.WithLabelValues(path, r.Method, http.StatusText(ww.statusCode)).Inc()
		m.metrics.HTTPDuration.WithLabelValues(path, r.Method).Observe(time.Since(start).Seconds())

		switch ww.statusCode {
		case http.StatusUnauthorized:
			m.metrics.AuthRejections.WithLabelValues("401_unauthorized").Inc()
		case http.StatusForbidden:
			m.metrics.AuthRejections.WithLabelValues("403_forbidden").Inc()
		}
	})
}

// routeTemplate keeps label cardinality bounded for routes with variables.
func routeTemplate(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tpl, err := route.GetPathTemplate(); err == nil {
			return tpl
		}
	}
	return r.URL.Path
}
