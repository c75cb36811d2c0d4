package app

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aussiebroadwan/bitebank/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func validConfig() Config {
	return Config{
		AuthURL:             "http://auth:8001",
		OrderURL:            "http://order:8002",
		UpstreamTimeout:     time.Second,
		VerifyMode:          VerifyRemote,
		ShutdownGracePeriod: time.Second,
		LogLevel:            "error",
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid remote", func(*Config) {}, ""},
		{"valid local", func(c *Config) { c.VerifyMode = VerifyLocal; c.Secret = testSecret }, ""},
		{"local without secret", func(c *Config) { c.VerifyMode = VerifyLocal }, "AUTH_SECRET"},
		{"relative auth url", func(c *Config) { c.AuthURL = "auth:8001" }, "GATEWAY_AUTH_URL"},
		{"empty order url", func(c *Config) { c.OrderURL = "" }, "GATEWAY_ORDER_URL"},
		{"zero timeout", func(c *Config) { c.UpstreamTimeout = 0 }, "GATEWAY_UPSTREAM_TIMEOUT"},
		{"unknown mode", func(c *Config) { c.VerifyMode = "trust-me" }, "GATEWAY_VERIFY_MODE"},
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

func TestLoadConfigDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, "http://localhost:8001", cfg.AuthURL)
	require.Equal(t, VerifyRemote, cfg.VerifyMode)
	require.Equal(t, 10*time.Second, cfg.UpstreamTimeout)
	require.Equal(t, []string{"http://localhost:3000"}, cfg.AllowedOrigins)
	require.Equal(t, 8000, cfg.Port)
}

func TestLocalVerifyMode(t *testing.T) {
	order := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(order.Close)

	cfg := validConfig()
	cfg.OrderURL = order.URL
	cfg.VerifyMode = VerifyLocal
	cfg.Secret = testSecret

	application, err := New(cfg)
	require.NoError(t, err)

	codec, err := jwtx.NewHS256Codec([]byte(testSecret))
	require.NoError(t, err)
	tok, err := codec.Encode("alice", 1, "USER", time.Minute)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/meals", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec := httptest.NewRecorder()
	application.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code)
}
