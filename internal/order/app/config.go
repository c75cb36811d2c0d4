package app

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/aussiebroadwan/bitebank/internal/order/imagestore"
	"github.com/aussiebroadwan/bitebank/pkg/envx"
	"github.com/aussiebroadwan/bitebank/pkg/httpx"
	"github.com/aussiebroadwan/bitebank/pkg/jwtx"
)

type Config struct {
	Secret string // Required: HS256 secret shared with the auth service

	DatabaseFile string // Optional: path to SQLite database file (default: ./order.db)

	ImageStore     string // Optional: local or minio (default: local)
	ImageDir       string // Optional: directory for the local image store (default: ./uploads/images)
	MaxUploadBytes int64  // Optional: upload size cap in bytes (default: 5 MiB)

	MinioEndpoint  string // Required for minio: host:port
	MinioAccessKey string // Required for minio
	MinioSecretKey string // Required for minio
	MinioBucket    string // Optional: bucket name (default: meal-images)
	MinioUseSSL    bool   // Optional: use https (default: false)

	AllowedOrigins []string // Optional: CORS origins (default: http://localhost:3000)

	Env                 string        // Environment (dev, staging, prod) (default: dev)
	LogLevel            string        // Log level (debug, info, warn, error) (default: info)
	LogFormat           string        // Log format (json, text) (default: json)
	Port                int           // HTTP server port (default: 8002)
	ShutdownGracePeriod time.Duration // Graceful shutdown timeout (default: 10s)
}

// LoadConfig reads the environment, after loading an optional .env file.
func LoadConfig() (Config, error) {
	if err := envx.LoadDotenv(); err != nil {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	cfg := Config{
		Secret: os.Getenv("AUTH_SECRET"),

		DatabaseFile: envx.String("ORDER_DATABASE_FILE", "order.db"),

		ImageStore:     envx.String("ORDER_IMAGE_STORE", imagestore.BackendLocal),
		ImageDir:       envx.String("ORDER_IMAGE_DIR", "uploads/images"),
		MaxUploadBytes: envx.Int64("ORDER_MAX_UPLOAD_BYTES", 5<<20),

		MinioEndpoint:  os.Getenv("MINIO_ENDPOINT"),
		MinioAccessKey: os.Getenv("MINIO_ACCESS_KEY"),
		MinioSecretKey: os.Getenv("MINIO_SECRET_KEY"),
		MinioBucket:    envx.String("MINIO_BUCKET", "meal-images"),
		MinioUseSSL:    envx.Bool("MINIO_USE_SSL", false),

		AllowedOrigins: envx.List("CORS_ALLOWED_ORIGINS", httpx.DefaultAllowedOrigins),

		Env:                 envx.String("ENV", "dev"),
		LogLevel:            envx.String("LOG_LEVEL", "info"),
		LogFormat:           envx.String("LOG_FORMAT", "json"),
		Port:                envx.Int("PORT", 8002),
		ShutdownGracePeriod: envx.Duration("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
	}

	return cfg, cfg.Validate()
}

// Validate rejects configurations the service cannot start with.
func (c Config) Validate() error {
	var errs []error

	if c.Secret == "" {
		errs = append(errs, errors.New("AUTH_SECRET is required"))
	} else if len(c.Secret) < jwtx.MinSecretLength {
		errs = append(errs, fmt.Errorf("AUTH_SECRET must be at least %d bytes", jwtx.MinSecretLength))
	}

	if c.DatabaseFile == "" {
		errs = append(errs, errors.New("ORDER_DATABASE_FILE is required"))
	}

	if c.MaxUploadBytes <= 0 {
		errs = append(errs, errors.New("ORDER_MAX_UPLOAD_BYTES must be positive"))
	}

	switch c.ImageStore {
	case imagestore.BackendLocal:
		if c.ImageDir == "" {
			errs = append(errs, errors.New("ORDER_IMAGE_DIR is required for the local image store"))
		}
	case imagestore.BackendMinio:
		if c.MinioEndpoint == "" || c.MinioAccessKey == "" || c.MinioSecretKey == "" {
			errs = append(errs, errors.New("MINIO_ENDPOINT, MINIO_ACCESS_KEY and MINIO_SECRET_KEY are required for the minio image store"))
		}
		if c.MinioBucket == "" {
			errs = append(errs, errors.New("MINIO_BUCKET is required for the minio image store"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown ORDER_IMAGE_STORE %q", c.ImageStore))
	}

	return errors.Join(errs...)
}
