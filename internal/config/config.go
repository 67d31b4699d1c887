package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config contains server configuration parameters.
type Config struct {
	LogLevel    int         `env:"LOG_LEVEL" envDefault:"0"`
	LogFormat   string      `env:"LOG_FORMAT" envDefault:"text"`
	HTTP        HTTP        `envPrefix:"HTTP_"`
	Database    Database    `envPrefix:"DATABASE_"`
	JWT         JWT         `envPrefix:"JWT_"`
	Storage     Storage     `envPrefix:"MINIO_"`
	Sync        Sync        `envPrefix:"SYNC_"`
	RateLimit   RateLimit   `envPrefix:"RATE_LIMIT_"`
	Metrics     Metrics     `envPrefix:"METRICS_"`
	Certificate Certificate `envPrefix:"CERTIFICATE_"`
}

// HTTP contains HTTP server parameters.
type HTTP struct {
	Port               string        `env:"PORT" envDefault:"4000"`
	EnableHTTPS        bool          `env:"ENABLE_HTTPS" envDefault:"false"`
	CertFileName       string        `env:"CERT_FILE_NAME" envDefault:"cert.pem"`
	PrivateKeyFileName string        `env:"PRIVATE_KEY_FILE_NAME" envDefault:"key.pem"`
	ReadTimeout        time.Duration `env:"READ_TIMEOUT" envDefault:"15s"`
	WriteTimeout       time.Duration `env:"WRITE_TIMEOUT" envDefault:"15s"`
	IdleTimeout        time.Duration `env:"IDLE_TIMEOUT" envDefault:"60s"`
	AllowedOrigins     []string      `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`
}

// Database contains database connection parameters. An empty DSN selects
// the JSON file store.
type Database struct {
	DSN          string `env:"DSN"`
	FallbackFile string `env:"FALLBACK_FILE" envDefault:"data.json"`
}

// JWT contains JWT-related parameters.
type JWT struct {
	Secret string        `env:"SECRET" envDefault:"devsecret"`
	TTL    time.Duration `env:"TTL" envDefault:"168h"`
}

// Storage contains object storage parameters.
type Storage struct {
	Enabled   bool   `env:"ENABLED" envDefault:"false"`
	Endpoint  string `env:"ENDPOINT" envDefault:"localhost:9000"`
	AccessKey string `env:"ACCESS_KEY" envDefault:"skilledge-access-key"`
	SecretKey string `env:"SECRET_KEY" envDefault:"skilledge-secret-key"`
	Bucket    string `env:"BUCKET_NAME" envDefault:"skilledge-certificates"`
	UseSSL    bool   `env:"USE_SSL" envDefault:"false"`
}

// Sync contains merge engine parameters.
type Sync struct {
	AwardPolicy     string `env:"AWARD_POLICY" envDefault:"first_completion"`
	PointsPerModule int    `env:"POINTS_PER_MODULE" envDefault:"10"`
	LeaderboardSize int    `env:"LEADERBOARD_SIZE" envDefault:"20"`
}

// RateLimit contains per-client request limits. A zero RPS disables limiting.
type RateLimit struct {
	RPS            float64  `env:"RPS" envDefault:"20"`
	Burst          int      `env:"BURST" envDefault:"40"`
	// TrustedProxies lists proxy addresses or CIDRs whose
	// X-Forwarded-For is used as the client address.
	TrustedProxies []string `env:"TRUSTED_PROXIES" envSeparator:","`
}

// Metrics contains credentials guarding the metrics endpoint.
type Metrics struct {
	User     string `env:"USER" envDefault:"metrics"`
	Password string `env:"PASSWORD" envDefault:"metrics"`
}

// Certificate contains certificate signing parameters.
type Certificate struct {
	Secret string `env:"SECRET" envDefault:"skilledge-dev-signing-key"`
	Issuer string `env:"ISSUER" envDefault:"SkillEdge Platform"`
}

// NewConfig loads configuration from environment variables.
func NewConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	switch cfg.Sync.AwardPolicy {
	case "first_completion", "per_change":
	default:
		return nil, fmt.Errorf("failed to parse config: unknown SYNC_AWARD_POLICY %q", cfg.Sync.AwardPolicy)
	}

	return &cfg, nil
}

// Client contains sync client configuration parameters.
type Client struct {
	LogLevel      int           `env:"LOG_LEVEL" envDefault:"0"`
	LogFormat     string        `env:"LOG_FORMAT" envDefault:"text"`
	ServerURL     string        `env:"CLIENT_SERVER_URL" envDefault:"http://localhost:4000"`
	DataDir       string        `env:"CLIENT_DATA_DIR" envDefault:".skilledge"`
	SyncTimeout   time.Duration `env:"CLIENT_SYNC_TIMEOUT" envDefault:"10s"`
	FlushInterval time.Duration `env:"CLIENT_FLUSH_INTERVAL" envDefault:"30s"`
	Name          string        `env:"CLIENT_NAME"`
}

// NewClientConfig loads client configuration from environment variables.
func NewClientConfig() (*Client, error) {
	_ = godotenv.Load()

	cfg := Client{}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse client config: %w", err)
	}

	return &cfg, nil
}
