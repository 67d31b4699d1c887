package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	httpctx "github.com/skilledge/skilledge-server/internal/api/http/context"
	"github.com/skilledge/skilledge-server/internal/api/http/handler"
	"github.com/skilledge/skilledge-server/internal/api/http/middleware"
	"github.com/skilledge/skilledge-server/internal/api/http/router"
	"github.com/skilledge/skilledge-server/internal/config"
	"github.com/skilledge/skilledge-server/internal/logger"
	"github.com/skilledge/skilledge-server/internal/metrics"
	"github.com/skilledge/skilledge-server/internal/model"
	"github.com/skilledge/skilledge-server/internal/realtime"
	"github.com/skilledge/skilledge-server/internal/repository/file"
	"github.com/skilledge/skilledge-server/internal/repository/postgres"
	"github.com/skilledge/skilledge-server/internal/server"
	"github.com/skilledge/skilledge-server/internal/service"
	storage "github.com/skilledge/skilledge-server/internal/storage/minio"
	"github.com/skilledge/skilledge-server/internal/token"
)

var (
	buildVersion = "N/A" // set by ldflags
	buildDate    = "N/A" // set by ldflags
	buildCommit  = "N/A" // set by ldflags
)

const rateLimitCleanupInterval = time.Minute

// stores is the persistence selected at startup.
type stores struct {
	name    string
	users   model.UserStore
	courses model.CourseStore
	pinger  handler.Pinger
	close   func() error
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT, os.Interrupt)
	defer stop()

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	logger := logger.New(cfg.LogLevel, cfg.LogFormat)

	st, err := openStores(ctx, cfg.Database, logger)
	if err != nil {
		logger.Fatal("failed to initialize storage", "error", err)
	}
	defer st.close()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	policy, err := service.ParseAwardPolicy(cfg.Sync.AwardPolicy)
	if err != nil {
		logger.Fatal("invalid award policy", "error", err)
	}

	hub := realtime.NewHub(m, logger)
	go hub.Run(ctx)

	tokenManager := token.NewJWT(cfg.JWT.Secret, cfg.JWT.TTL)
	leaderboard := service.NewLeaderboard(st.users, cfg.Sync.LeaderboardSize)
	merger := service.NewMerger(policy, cfg.Sync.PointsPerModule)

	services := router.Services{
		Sync:    service.NewSync(st.users, merger, leaderboard, hub, m, logger),
		Auth:    service.NewAuth(st.users, tokenManager, logger),
		Courses: service.NewCourses(st.courses, logger),
	}

	if cfg.Storage.Enabled {
		certificates, err := newCertificateService(ctx, cfg, st.users, logger)
		if err != nil {
			logger.Fatal("failed to initialize certificate storage", "error", err)
		}
		services.Certificates = certificates
	}

	rateLimit := middleware.NewRateLimit(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
	if err := rateLimit.TrustProxies(cfg.RateLimit.TrustedProxies); err != nil {
		logger.Fatal("invalid rate limit config", "error", err)
	}
	go rateLimit.Cleanup(ctx, rateLimitCleanupInterval)

	r := router.New(
		services,
		hub,
		tokenManager,
		httpctx.NewManager(),
		st.name,
		st.pinger,
		middleware.NewStats(),
		rateLimit,
		m,
		registry,
		cfg,
		logger,
	)

	httpServer := server.NewHTTPServer(&http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTP.Port),
		Handler:      r.Register(),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	})

	sl := server.NewListener(cfg.HTTP.EnableHTTPS, cfg.HTTP.CertFileName, cfg.HTTP.PrivateKeyFileName)

	var wg sync.WaitGroup
	wg.Add(1)
	go func(s model.Server) {
		defer wg.Done()
		logger.Info("Starting server on", "address", s.Address(), "storage", st.name, "award_policy", string(policy))
		if err := s.Start(sl); err != nil {
			logger.Error("failed to start server", "error", err)
			stop()
		}
	}(httpServer)

	logAppVersion()

	<-ctx.Done()
	logger.Info("received interruption signal, shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Stop(shutdownCtx); err != nil {
		logger.Error("error during server shutdown", "error", err, "address", httpServer.Address())
	}

	wg.Wait()
	logger.Info("shutdown complete")
}

func logAppVersion() {
	tmpl := `
Build version: %s
Build date: %s
Build commit: %s
`

	fmt.Printf(tmpl, buildVersion, buildDate, buildCommit)
}

// openStores connects to Postgres when a DSN is configured. Without one, or
// when the database is unreachable, the JSON file store is used.
func openStores(ctx context.Context, cfg config.Database, logger *logger.Logger) (stores, error) {
	if cfg.DSN != "" {
		db, err := postgres.NewConection(ctx, cfg.DSN)
		if err == nil {
			return stores{
				name:    "postgres",
				users:   postgres.NewUserRepository(db),
				courses: postgres.NewCourseRepository(db),
				pinger:  db,
				close:   db.Close,
			}, nil
		}
		logger.Warn("postgres unavailable, falling back to file storage", "error", err, "file", cfg.FallbackFile)
	}

	fs, err := file.Open(cfg.FallbackFile)
	if err != nil {
		return stores{}, fmt.Errorf("failed to open file storage: %w", err)
	}
	return stores{
		name:    "file",
		users:   fs,
		courses: fs.Courses(),
		pinger:  fs,
		close:   func() error { return nil },
	}, nil
}

func newCertificateService(ctx context.Context, cfg *config.Config, users model.UserStore, logger *logger.Logger) (*service.Certificates, error) {
	minioClient, err := minio.New(cfg.Storage.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.Storage.AccessKey, cfg.Storage.SecretKey, ""),
		Secure: cfg.Storage.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	storageClient, err := storage.NewClient(ctx, minioClient, cfg.Storage.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage client: %w", err)
	}

	return service.NewCertificates(storage.NewCertificateStore(storageClient), users, cfg.Certificate.Secret, cfg.Certificate.Issuer, logger), nil
}
