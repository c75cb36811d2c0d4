package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	return Config{
		Secret:         "0123456789abcdef0123456789abcdef",
		TokenTTL:       time.Hour,
		DatabaseDriver: DriverSQLite,
		DatabaseFile:   "auth.db",
		PasswordHash:   "argon2id",
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"missing secret", func(c *Config) { c.Secret = "" }, "AUTH_SECRET is required"},
		{"short secret", func(c *Config) { c.Secret = "short" }, "at least 32 bytes"},
		{"zero ttl", func(c *Config) { c.TokenTTL = 0 }, "AUTH_TOKEN_TTL"},
		{"unknown driver", func(c *Config) { c.DatabaseDriver = "mysql" }, "AUTH_DATABASE_DRIVER"},
		{"postgres without url", func(c *Config) { c.DatabaseDriver = DriverPostgres }, "AUTH_DATABASE_URL"},
		{"unknown hash", func(c *Config) { c.PasswordHash = "md5" }, "AUTH_PASSWORD_HASH"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestLoadConfig(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("AUTH_SECRET", "0123456789abcdef0123456789abcdef")
	t.Setenv("AUTH_TOKEN_TTL", "15m")
	t.Setenv("AUTH_PASSWORD_HASH", "bcrypt")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, 15*time.Minute, cfg.TokenTTL)
	require.Equal(t, DriverSQLite, cfg.DatabaseDriver)
	require.Equal(t, "bcrypt", cfg.PasswordHash)
	require.Equal(t, 8001, cfg.Port)
	require.Equal(t, "USER", cfg.DefaultRole)
}

func TestLoadConfigRejectsMissingSecret(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("AUTH_SECRET", "")

	_, err := LoadConfig()
	require.ErrorContains(t, err, "AUTH_SECRET")
}
