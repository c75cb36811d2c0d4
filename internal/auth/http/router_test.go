package http

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/aussiebroadwan/bitebank/internal/auth/service"
	"github.com/aussiebroadwan/bitebank/internal/auth/store/drivers/sqlite"
	"github.com/aussiebroadwan/bitebank/pkg/authsdk"
	"github.com/aussiebroadwan/bitebank/pkg/cryptox"
	"github.com/aussiebroadwan/bitebank/pkg/jwtx"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newTestRouter(t *testing.T) (*Router, *sqlite.Store) {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, st.ApplyMigrations())
	t.Cleanup(func() { _ = st.Close() })

	hasher, err := cryptox.NewHasher(cryptox.SchemeBcrypt, "", bcrypt.MinCost)
	require.NoError(t, err)
	codec, err := jwtx.NewHS256Codec([]byte(testSecret))
	require.NoError(t, err)

	svc := &service.AuthService{Store: st, Hasher: hasher, Codec: codec}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	r := NewRouter(svc, "test", st, logger)
	r.ApplyRoutes()
	return r, st
}

func do(t *testing.T, h http.Handler, method, path, body string, hdr map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	req.RemoteAddr = "10.0.0.1:1234"
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func TestRegisterEndpoint(t *testing.T) {
	r, _ := newTestRouter(t)

	t.Run("returns a bearer token", func(t *testing.T) {
		rec := do(t, r, http.MethodPost, "/auth/register",
			`{"username":"alice","email":"alice@example.com","password":"pw"}`, nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		tok := decode[authsdk.TokenResponse](t, rec)
		require.NotEmpty(t, tok.AccessToken)
		require.Equal(t, "bearer", tok.TokenType)
		require.Equal(t, 3600, tok.ExpiresIn)
		require.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	})

	t.Run("duplicate username", func(t *testing.T) {
		rec := do(t, r, http.MethodPost, "/auth/register",
			`{"username":"alice","email":"other@example.com","password":"pw"}`, nil)
		require.Equal(t, http.StatusBadRequest, rec.Code)

		body := decode[authsdk.ErrorResponse](t, rec)
		require.Equal(t, "invalid_request", body.Error)
		require.Equal(t, "username already exists", body.ErrorDescription)
	})

	t.Run("duplicate email", func(t *testing.T) {
		rec := do(t, r, http.MethodPost, "/auth/register",
			`{"username":"bob","email":"alice@example.com","password":"pw"}`, nil)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Equal(t, "email already registered", decode[authsdk.ErrorResponse](t, rec).ErrorDescription)
	})

	t.Run("missing fields", func(t *testing.T) {
		rec := do(t, r, http.MethodPost, "/auth/register", `{"username":"carol"}`, nil)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Equal(t, "invalid_request", decode[authsdk.ErrorResponse](t, rec).Error)
	})

	t.Run("malformed json", func(t *testing.T) {
		rec := do(t, r, http.MethodPost, "/auth/register", `{"username":`, nil)
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("body too large", func(t *testing.T) {
		big := `{"username":"dave","email":"d@example.com","password":"` + strings.Repeat("x", maxBodyBytes) + `"}`
		rec := do(t, r, http.MethodPost, "/auth/register", big, nil)
		require.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	})
}

func TestTokenEndpoint(t *testing.T) {
	r, _ := newTestRouter(t)

	rec := do(t, r, http.MethodPost, "/auth/register",
		`{"username":"alice","email":"alice@example.com","password":"secret","role":"ADMIN"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	for _, path := range []string{"/auth/token", "/auth/login"} {
		t.Run("json login via "+path, func(t *testing.T) {
			rec := do(t, r, http.MethodPost, path, `{"username":"alice","password":"secret"}`, nil)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			require.Equal(t, "bearer", decode[authsdk.TokenResponse](t, rec).TokenType)
		})
	}

	t.Run("form login", func(t *testing.T) {
		form := url.Values{"username": {"alice"}, "password": {"secret"}}
		rec := do(t, r, http.MethodPost, "/auth/token", form.Encode(),
			map[string]string{"Content-Type": "application/x-www-form-urlencoded"})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	})

	t.Run("wrong password and unknown user look the same", func(t *testing.T) {
		wrong := do(t, r, http.MethodPost, "/auth/login", `{"username":"alice","password":"nope"}`, nil)
		unknown := do(t, r, http.MethodPost, "/auth/login", `{"username":"mallory","password":"nope"}`, nil)

		require.Equal(t, http.StatusUnauthorized, wrong.Code)
		require.Equal(t, http.StatusUnauthorized, unknown.Code)
		require.Equal(t, wrong.Body.String(), unknown.Body.String())
		require.Equal(t, "incorrect username or password", decode[authsdk.ErrorResponse](t, wrong).ErrorDescription)
	})

	t.Run("method not allowed", func(t *testing.T) {
		rec := do(t, r, http.MethodGet, "/auth/token", "", nil)
		require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	})
}

func TestTokenEndpointRateLimit(t *testing.T) {
	r, _ := newTestRouter(t)

	body := `{"username":"alice","password":"wrong"}`
	for range 5 {
		rec := do(t, r, http.MethodPost, "/auth/token", body, nil)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	}

	rec := do(t, r, http.MethodPost, "/auth/token", body, nil)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)

	// Another username from the same address has its own budget
	rec = do(t, r, http.MethodPost, "/auth/token", `{"username":"bob","password":"wrong"}`, nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestVerifyTokenAndMe(t *testing.T) {
	r, st := newTestRouter(t)

	rec := do(t, r, http.MethodPost, "/auth/register",
		`{"username":"alice","email":"alice@example.com","password":"pw"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	token := decode[authsdk.TokenResponse](t, rec).AccessToken

	user, err := st.Users().GetUserByUsername(t.Context(), "alice")
	require.NoError(t, err)

	t.Run("verify-token returns the identity", func(t *testing.T) {
		rec := do(t, r, http.MethodPost, "/auth/verify-token", `{"token":"`+token+`"}`, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		id := decode[authsdk.IdentityResponse](t, rec)
		require.Equal(t, authsdk.IdentityResponse{Username: "alice", ID: user.ID, Role: "USER"}, id)
	})

	t.Run("verify-token rejects garbage", func(t *testing.T) {
		rec := do(t, r, http.MethodPost, "/auth/verify-token", `{"token":"not.a.jwt"}`, nil)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Equal(t, "invalid_token", decode[authsdk.ErrorResponse](t, rec).Error)
	})

	t.Run("verify-token rejects expired tokens", func(t *testing.T) {
		codec, err := jwtx.NewHS256Codec([]byte(testSecret))
		require.NoError(t, err)
		codec.Now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
		old, err := codec.Encode("alice", user.ID, "USER", time.Minute)
		require.NoError(t, err)

		rec := do(t, r, http.MethodPost, "/auth/verify-token", `{"token":"`+old+`"}`, nil)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("me requires a bearer token", func(t *testing.T) {
		rec := do(t, r, http.MethodGet, "/auth/me", "", nil)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Contains(t, rec.Header().Get("WWW-Authenticate"), `error="invalid_token"`)
	})

	t.Run("me returns the caller", func(t *testing.T) {
		rec := do(t, r, http.MethodGet, "/auth/me", "", map[string]string{"Authorization": "Bearer " + token})
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "alice", decode[authsdk.IdentityResponse](t, rec).Username)
	})
}

func TestHealthEndpoints(t *testing.T) {
	r, st := newTestRouter(t)

	t.Run("livez", func(t *testing.T) {
		rec := do(t, r, http.MethodGet, "/livez", "", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		body := decode[authsdk.HealthResponse](t, rec)
		require.Equal(t, "ok", body.Status)
		require.Equal(t, "test", body.Version)
	})

	t.Run("readyz ok", func(t *testing.T) {
		rec := do(t, r, http.MethodGet, "/readyz", "", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "ok", decode[authsdk.HealthResponse](t, rec).Checks["database"])
	})

	t.Run("readyz degraded once the store is closed", func(t *testing.T) {
		require.NoError(t, st.Close())

		rec := do(t, r, http.MethodGet, "/readyz", "", nil)
		require.Equal(t, http.StatusServiceUnavailable, rec.Code)
		require.Equal(t, "degraded", decode[authsdk.HealthResponse](t, rec).Status)
	})

	t.Run("request id is echoed", func(t *testing.T) {
		rec := do(t, r, http.MethodGet, "/livez", "", map[string]string{"X-Request-ID": "abc123"})
		require.Equal(t, "abc123", rec.Header().Get("X-Request-ID"))
	})
}
