package app

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/aussiebroadwan/bitebank/pkg/cryptox"
	"github.com/aussiebroadwan/bitebank/pkg/envx"
	"github.com/aussiebroadwan/bitebank/pkg/jwtx"
)

// Supported credential store drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Config struct {
	Secret   string        // Required: HS256 signing secret, at least 32 bytes
	TokenTTL time.Duration // Optional: access token lifetime (default: 60m)

	DatabaseDriver string // Optional: sqlite or postgres (default: sqlite)
	DatabaseFile   string // Optional: path to SQLite database file (default: ./auth.db)
	DatabaseURL    string // Required for postgres: connection URL

	PasswordHash string // Optional: argon2id or bcrypt for new hashes (default: argon2id)
	PepperFile   string // Optional: path to the argon2id pepper file (default: ./pepper)
	BcryptCost   int    // Optional: bcrypt work factor (default: 10)
	DefaultRole  string // Optional: role for users registering without one (default: USER)

	Env                 string        // Environment (dev, staging, prod) (default: dev)
	LogLevel            string        // Log level (debug, info, warn, error) (default: info)
	LogFormat           string        // Log format (json, text) (default: json)
	Port                int           // HTTP server port (default: 8001)
	ShutdownGracePeriod time.Duration // Graceful shutdown timeout (default: 10s)
}

// LoadConfig reads the environment, after loading an optional .env file.
func LoadConfig() (Config, error) {
	if err := envx.LoadDotenv(); err != nil {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	cfg := Config{
		Secret:   os.Getenv("AUTH_SECRET"),
		TokenTTL: envx.Duration("AUTH_TOKEN_TTL", jwtx.DefaultAccessTokenTTL),

		DatabaseDriver: envx.String("AUTH_DATABASE_DRIVER", DriverSQLite),
		DatabaseFile:   envx.String("AUTH_DATABASE_FILE", "auth.db"),
		DatabaseURL:    os.Getenv("AUTH_DATABASE_URL"),

		PasswordHash: envx.String("AUTH_PASSWORD_HASH", cryptox.SchemeArgon2id),
		PepperFile:   envx.String("AUTH_PEPPER_FILE", "pepper"),
		BcryptCost:   envx.Int("AUTH_BCRYPT_COST", 0),
		DefaultRole:  envx.String("AUTH_DEFAULT_ROLE", "USER"),

		Env:                 envx.String("ENV", "dev"),
		LogLevel:            envx.String("LOG_LEVEL", "info"),
		LogFormat:           envx.String("LOG_FORMAT", "json"),
		Port:                envx.Int("PORT", 8001),
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

	if c.TokenTTL <= 0 {
		errs = append(errs, errors.New("AUTH_TOKEN_TTL must be positive"))
	}

	switch c.DatabaseDriver {
	case DriverSQLite:
		if c.DatabaseFile == "" {
			errs = append(errs, errors.New("AUTH_DATABASE_FILE is required for sqlite"))
		}
	case DriverPostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("AUTH_DATABASE_URL is required for postgres"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown AUTH_DATABASE_DRIVER %q", c.DatabaseDriver))
	}

	switch c.PasswordHash {
	case cryptox.SchemeArgon2id, cryptox.SchemeBcrypt:
	default:
		errs = append(errs, fmt.Errorf("unknown AUTH_PASSWORD_HASH %q", c.PasswordHash))
	}

	return errors.Join(errs...)
}
