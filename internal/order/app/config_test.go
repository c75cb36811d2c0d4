package app

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aussiebroadwan/bitebank/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func validConfig(t *testing.T) Config {
	dir := t.TempDir()
	return Config{
		Secret:              testSecret,
		DatabaseFile:        filepath.Join(dir, "order.db"),
		ImageStore:          "local",
		ImageDir:            filepath.Join(dir, "images"),
		MaxUploadBytes:      1 << 20,
		MinioBucket:         "meal-images",
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
		{"valid local", func(*Config) {}, ""},
		{"valid minio", func(c *Config) {
			c.ImageStore = "minio"
			c.MinioEndpoint, c.MinioAccessKey, c.MinioSecretKey = "minio:9000", "key", "secret"
		}, ""},
		{"missing secret", func(c *Config) { c.Secret = "" }, "AUTH_SECRET is required"},
		{"short secret", func(c *Config) { c.Secret = "short" }, "at least 32 bytes"},
		{"minio without credentials", func(c *Config) { c.ImageStore = "minio" }, "MINIO_ENDPOINT"},
		{"unknown image store", func(c *Config) { c.ImageStore = "s3" }, "ORDER_IMAGE_STORE"},
		{"zero upload cap", func(c *Config) { c.MaxUploadBytes = 0 }, "ORDER_MAX_UPLOAD_BYTES"},
		{"no database", func(c *Config) { c.DatabaseFile = "" }, "ORDER_DATABASE_FILE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig(t)
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
	t.Run("defaults", func(t *testing.T) {
		t.Chdir(t.TempDir())
		t.Setenv("AUTH_SECRET", testSecret)

		cfg, err := LoadConfig()
		require.NoError(t, err)
		require.Equal(t, 8002, cfg.Port)
		require.Equal(t, "local", cfg.ImageStore)
		require.Equal(t, int64(5<<20), cfg.MaxUploadBytes)
		require.Equal(t, []string{"http://localhost:3000"}, cfg.AllowedOrigins)
	})

	t.Run("dotenv", func(t *testing.T) {
		dir := t.TempDir()
		t.Chdir(dir)
		env := "AUTH_SECRET=" + testSecret + "\nORDER_MAX_UPLOAD_BYTES=2048\nCORS_ALLOWED_ORIGINS=https://a.example, https://b.example\n"
		require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(env), 0o600))
		// Loaded values are process wide; clear them once the test ends
		t.Setenv("AUTH_SECRET", "")
		t.Setenv("ORDER_MAX_UPLOAD_BYTES", "")
		t.Setenv("CORS_ALLOWED_ORIGINS", "")
		require.NoError(t, os.Unsetenv("AUTH_SECRET"))
		require.NoError(t, os.Unsetenv("ORDER_MAX_UPLOAD_BYTES"))
		require.NoError(t, os.Unsetenv("CORS_ALLOWED_ORIGINS"))

		cfg, err := LoadConfig()
		require.NoError(t, err)
		require.Equal(t, testSecret, cfg.Secret)
		require.Equal(t, int64(2048), cfg.MaxUploadBytes)
		require.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	})
}

func TestNewServesMeals(t *testing.T) {
	cfg := validConfig(t)
	app, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.db.Close() })

	codec, err := jwtx.NewHS256Codec([]byte(testSecret))
	require.NoError(t, err)
	token, err := codec.Encode("alice", 1, "USER", time.Minute)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/meals",
		strings.NewReader(`{"name":"Kvass","price":2,"blood_type":"A-","available":true}`))
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	app.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = httptest.NewRecorder()
	app.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	_, err = os.Stat(cfg.ImageDir)
	require.NoError(t, err)

	// A token signed with another secret is refused
	other, err := jwtx.NewHS256Codec([]byte(strings.Repeat("x", 32)))
	require.NoError(t, err)
	forged, err := other.Encode("mallory", 2, "ADMIN", time.Minute)
	require.NoError(t, err)

	req = httptest.NewRequest(http.MethodGet, "/meals", nil)
	req.Header.Set("Authorization", "Bearer "+forged)
	rec = httptest.NewRecorder()
	app.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}
