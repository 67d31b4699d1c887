package router

import (
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/skilledge/skilledge-server/internal/api/http/handler"
	"github.com/skilledge/skilledge-server/internal/api/http/middleware"
	"github.com/skilledge/skilledge-server/internal/config"
	"github.com/skilledge/skilledge-server/internal/logger"
	"github.com/skilledge/skilledge-server/internal/metrics"
	"github.com/skilledge/skilledge-server/internal/model"
	"github.com/skilledge/skilledge-server/internal/realtime"
)

// Services groups what the routes call into. Certificates may be nil when
// object storage is disabled; its routes are then not registered.
type Services struct {
	Sync         handler.SyncService
	Auth         handler.AuthService
	Courses      handler.CourseService
	Certificates handler.CertificateService
}

// Router builds the HTTP surface of the server.
type Router struct {
	services       Services
	hub            *realtime.Hub
	tokenManager   model.TokenManager
	contextManager model.ContextManager
	storage        string
	pinger         handler.Pinger
	stats          *middleware.Stats
	rateLimit      *middleware.RateLimit
	metrics        *metrics.Metrics
	gatherer       prometheus.Gatherer
	config         *config.Config
	logger         *logger.Logger
}

func New(
	services Services,
	hub *realtime.Hub,
	tokenManager model.TokenManager,
	contextManager model.ContextManager,
	storage string,
	pinger handler.Pinger,
	stats *middleware.Stats,
	rateLimit *middleware.RateLimit,
	metrics *metrics.Metrics,
	gatherer prometheus.Gatherer,
	config *config.Config,
	logger *logger.Logger,
) *Router {
	return &Router{
		services:       services,
		hub:            hub,
		tokenManager:   tokenManager,
		contextManager: contextManager,
		storage:        storage,
		pinger:         pinger,
		stats:          stats,
		rateLimit:      rateLimit,
		metrics:        metrics,
		gatherer:       gatherer,
		config:         config,
		logger:         logger,
	}
}

// Register wires every route and middleware and returns the root handler.
func (r *Router) Register() http.Handler {
	root := mux.NewRouter()
	root.Use(
		middleware.NewLogging(r.logger).Handle,
		r.stats.Handle,
		middleware.NewMonitor(r.metrics).Handle,
		r.rateLimit.Handle,
	)

	root.Handle("/metrics", middleware.BasicAuth(r.config.Metrics.User, r.config.Metrics.Password)(
		promhttp.HandlerFor(r.gatherer, promhttp.HandlerOpts{}),
	)).Methods(http.MethodGet)

	r.registerRealtimeRoutes(root)

	// The sync core is reachable both at the root and under /api.
	r.registerSyncRoutes(root)
	api := root.PathPrefix("/api").Subrouter()
	r.registerSyncRoutes(api)
	r.registerHealthRoutes(api)
	r.registerCourseRoutes(api)
	r.registerAuthRoutes(api)
	if r.services.Certificates != nil {
		r.registerCertificateRoutes(api)
	}

	cors := handlers.CORS(
		handlers.AllowedOrigins(r.config.HTTP.AllowedOrigins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
		handlers.ExposedHeaders([]string{"Content-Length"}),
	)
	return cors(root)
}

func (r *Router) registerSyncRoutes(m *mux.Router) {
	h := handler.NewSync(r.services.Sync, r.logger)
	m.HandleFunc("/sync", h.Sync).Methods(http.MethodPost)
	m.HandleFunc("/leaderboard", h.Leaderboard).Methods(http.MethodGet)
}

func (r *Router) registerHealthRoutes(m *mux.Router) {
	h := handler.NewHealth(r.storage, r.pinger, r.stats)
	m.HandleFunc("/health", h.Health).Methods(http.MethodGet)
	m.HandleFunc("/network-status", h.NetworkStatus).Methods(http.MethodGet)
}

func (r *Router) registerCourseRoutes(m *mux.Router) {
	h := handler.NewCourse(r.services.Courses, r.logger)
	m.HandleFunc("/courses", h.List).Methods(http.MethodGet)
	m.HandleFunc("/courses/seed-demo", h.SeedDemo).Methods(http.MethodPost)
	m.HandleFunc("/courses/{slug}", h.Get).Methods(http.MethodGet)
}

func (r *Router) registerAuthRoutes(m *mux.Router) {
	h := handler.NewAuth(r.services.Auth, r.contextManager, r.logger)
	m.HandleFunc("/auth/register", h.Register).Methods(http.MethodPost)
	m.HandleFunc("/auth/login", h.Login).Methods(http.MethodPost)

	protected := m.PathPrefix("").Subrouter()
	protected.Use(r.authenticate().Handle)
	protected.HandleFunc("/me", h.Me).Methods(http.MethodGet)
}

func (r *Router) registerCertificateRoutes(m *mux.Router) {
	h := handler.NewCertificate(r.services.Certificates, r.contextManager, r.logger)
	m.HandleFunc("/certificates/{hash}", h.Get).Methods(http.MethodGet)

	protected := m.PathPrefix("").Subrouter()
	protected.Use(r.authenticate().Handle)
	protected.HandleFunc("/certificates", h.Issue).Methods(http.MethodPost)
}

func (r *Router) registerRealtimeRoutes(m *mux.Router) {
	upgrader := realtime.NewUpgrader(r.config.HTTP.AllowedOrigins)
	m.HandleFunc("/ws", r.hub.ServeWS(upgrader, handler.NewRealtime(r.services.Sync, r.logger))).Methods(http.MethodGet)
}

func (r *Router) authenticate() *middleware.Authenticate {
	return middleware.NewAuthenticate(r.tokenManager, r.contextManager, r.logger)
}
