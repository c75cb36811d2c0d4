package authsdk

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aussiebroadwan/bitebank/pkg/slogx"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/register", func(w http.ResponseWriter, r *http.Request) {
		var req RegisterRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if req.Username == "taken" {
			ErrUsernameExists.WriteError(w)
			return
		}
		writeTestJSON(w, TokenResponse{AccessToken: "tok-" + req.Username, TokenType: "bearer", ExpiresIn: 3600})
	})
	mux.HandleFunc("POST /auth/token", func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if req.Password != "pw" {
			ErrInvalidCredentials.WriteError(w)
			return
		}
		writeTestJSON(w, TokenResponse{AccessToken: "tok-" + req.Username, TokenType: "bearer"})
	})
	mux.HandleFunc("POST /auth/verify-token", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "req-1", r.Header.Get("X-Request-ID"))
		var req VerifyTokenRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if req.Token != "good" {
			ErrInvalidToken.WriteError(w)
			return
		}
		writeTestJSON(w, IdentityResponse{Username: "alice", ID: 1, Role: "USER"})
	})
	mux.HandleFunc("GET /auth/me", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer good" {
			ErrInvalidToken.WriteError(w)
			return
		}
		writeTestJSON(w, IdentityResponse{Username: "alice", ID: 1, Role: "USER"})
	})
	mux.HandleFunc("GET /livez", func(w http.ResponseWriter, r *http.Request) {
		writeTestJSON(w, HealthResponse{Status: "ok"})
	})
	mux.HandleFunc("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("down"))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func writeTestJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func TestRegister(t *testing.T) {
	c := NewSDKClient(newTestServer(t).URL + "/")

	t.Run("success", func(t *testing.T) {
		tok, err := c.Register(t.Context(), RegisterRequest{Username: "alice", Email: "a@x", Password: "pw"})
		require.NoError(t, err)
		require.Equal(t, "tok-alice", tok.AccessToken)
		require.Equal(t, "bearer", tok.TokenType)
		require.Equal(t, 3600, tok.ExpiresIn)
	})

	t.Run("duplicate", func(t *testing.T) {
		_, err := c.Register(t.Context(), RegisterRequest{Username: "taken", Email: "a@x", Password: "pw"})

		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		require.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
		require.Equal(t, "username already exists", apiErr.Description)
	})
}

func TestLogin(t *testing.T) {
	c := NewSDKClient(newTestServer(t).URL)

	tok, err := c.Login(t.Context(), "alice", "pw")
	require.NoError(t, err)
	require.Equal(t, "tok-alice", tok.AccessToken)

	_, err = c.Login(t.Context(), "alice", "nope")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestVerifyToken(t *testing.T) {
	c := NewSDKClient(newTestServer(t).URL)
	ctx := slogx.WithRequestID(t.Context(), "req-1")

	id, err := c.VerifyToken(ctx, "good")
	require.NoError(t, err)
	require.Equal(t, &IdentityResponse{Username: "alice", ID: 1, Role: "USER"}, id)

	_, err = c.VerifyToken(ctx, "bad")
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestMe(t *testing.T) {
	c := NewSDKClient(newTestServer(t).URL)

	id, err := c.Me(t.Context(), "good")
	require.NoError(t, err)
	require.Equal(t, "alice", id.Username)

	_, err = c.Me(t.Context(), "bad")
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestHealth(t *testing.T) {
	c := NewSDKClient(newTestServer(t).URL)

	h, err := c.GetLiveness(t.Context())
	require.NoError(t, err)
	require.Equal(t, "ok", h.Status)

	// Non-JSON error bodies fall back to a generic error
	_, err = c.GetReadiness(t.Context())
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusServiceUnavailable, apiErr.StatusCode)
	require.Equal(t, ErrorCodeServerError, apiErr.Code)

	require.NoError(t, c.Ping(t.Context()))
}

func TestUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewSDKClient(url).Login(t.Context(), "alice", "pw")
	require.ErrorIs(t, err, ErrUnreachable)

	var apiErr *APIError
	require.False(t, errors.As(err, &apiErr))

	require.ErrorIs(t, NewSDKClient(url).Ping(t.Context()), ErrUnreachable)
}

func TestAPIErrorWrite(t *testing.T) {
	rec := httptest.NewRecorder()
	ErrInvalidRequest.WithDescription("username is required").WriteError(rec)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	require.JSONEq(t, `{"error":"invalid_request","error_description":"username is required"}`, rec.Body.String())

	// The shared instance is untouched
	require.Equal(t, "the request is malformed or missing required parameters", ErrInvalidRequest.Description)
}
