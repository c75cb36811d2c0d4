package app

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/aussiebroadwan/bitebank/internal/gateway/forward"
	"github.com/aussiebroadwan/bitebank/pkg/envx"
	"github.com/aussiebroadwan/bitebank/pkg/httpx"
	"github.com/aussiebroadwan/bitebank/pkg/jwtx"
)

// Token verification modes.
const (
	VerifyRemote = "remote" // ask the auth service
	VerifyLocal  = "local"  // check the signature in-process with AUTH_SECRET
)

type Config struct {
	AuthURL         string        // Optional: auth service base URL (default: http://localhost:8001)
	OrderURL        string        // Optional: order service base URL (default: http://localhost:8002)
	UpstreamTimeout time.Duration // Optional: wait for upstream response headers (default: 10s)
	MaxIdleConns    int           // Optional: pooled idle connections per upstream (default: 100)

	VerifyMode string // Optional: remote or local (default: remote)
	Secret     string // Required in local mode: shared HS256 secret

	AllowedOrigins []string // Optional: CORS origins (default: http://localhost:3000)

	Env                 string        // Environment (dev, staging, prod) (default: dev)
	LogLevel            string        // Log level (debug, info, warn, error) (default: info)
	LogFormat           string        // Log format (json, text) (default: json)
	Port                int           // HTTP server port (default: 8000)
	ShutdownGracePeriod time.Duration // Graceful shutdown timeout (default: 10s)
}

// LoadConfig reads the environment, after loading an optional .env file.
func LoadConfig() (Config, error) {
	if err := envx.LoadDotenv(); err != nil {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	cfg := Config{
		AuthURL:         envx.String("GATEWAY_AUTH_URL", "http://localhost:8001"),
		OrderURL:        envx.String("GATEWAY_ORDER_URL", "http://localhost:8002"),
		UpstreamTimeout: envx.Duration("GATEWAY_UPSTREAM_TIMEOUT", forward.DefaultTimeout),
		MaxIdleConns:    envx.Int("GATEWAY_MAX_IDLE_CONNS", 100),

		VerifyMode: envx.String("GATEWAY_VERIFY_MODE", VerifyRemote),
		Secret:     os.Getenv("AUTH_SECRET"),

		AllowedOrigins: envx.List("CORS_ALLOWED_ORIGINS", httpx.DefaultAllowedOrigins),

		Env:                 envx.String("ENV", "dev"),
		LogLevel:            envx.String("LOG_LEVEL", "info"),
		LogFormat:           envx.String("LOG_FORMAT", "json"),
		Port:                envx.Int("PORT", 8000),
		ShutdownGracePeriod: envx.Duration("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
	}

	return cfg, cfg.Validate()
}

// Validate rejects configurations the gateway cannot start with.
func (c Config) Validate() error {
	var errs []error

	for name, raw := range map[string]string{"GATEWAY_AUTH_URL": c.AuthURL, "GATEWAY_ORDER_URL": c.OrderURL} {
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, fmt.Errorf("%s must be an absolute URL, got %q", name, raw))
		}
	}

	if c.UpstreamTimeout <= 0 {
		errs = append(errs, errors.New("GATEWAY_UPSTREAM_TIMEOUT must be positive"))
	}

	switch c.VerifyMode {
	case VerifyRemote:
	case VerifyLocal:
		if len(c.Secret) < jwtx.MinSecretLength {
			errs = append(errs, fmt.Errorf("AUTH_SECRET of at least %d bytes is required in local verify mode", jwtx.MinSecretLength))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown GATEWAY_VERIFY_MODE %q", c.VerifyMode))
	}

	return errors.Join(errs...)
}
