package auth_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/aussiebroadwan/bitebank/pkg/authsdk"
	"github.com/stretchr/testify/require"
)

// postLogin sends a raw login request and returns the response, so tests can
// look at status and headers the SDK does not expose.
func postLogin(t *testing.T, baseURL, username, password string) *http.Response {
	t.Helper()

	body, err := json.Marshal(authsdk.LoginRequest{Username: username, Password: password})
	require.NoError(t, err)

	req, err := http.NewRequestWithContext(t.Context(), http.MethodPost, baseURL+"/auth/token", bytes.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })

	return resp
}

// TestRateLimitTokenEndpoint verifies that /auth/token is rate limited.
// This endpoint has strict limits (5 req/min) to slow brute force attacks.
func TestRateLimitTokenEndpoint(t *testing.T) {
	client := authsdk.NewSDKClient(setupAuthContainerWithDefaultRateLimits(t))
	ctx := t.Context()

	for range 5 {
		_, err := client.Login(ctx, "wronguser", "wrongpass")
		assertUnauthorized(t, err, "request should fail on credentials, not rate limit")
	}

	_, err := client.Login(ctx, "wronguser", "wrongpass")
	var apiErr *authsdk.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusTooManyRequests, apiErr.StatusCode)
	require.Equal(t, "rate_limit_exceeded", apiErr.Code)
}

// TestRateLimitResponseFormat verifies the rate limit response carries the
// shared error body and the limit headers.
func TestRateLimitResponseFormat(t *testing.T) {
	baseURL := setupAuthContainerWithDefaultRateLimits(t)

	for range 5 {
		resp := postLogin(t, baseURL, "wronguser", "wrongpass")
		_, _ = io.Copy(io.Discard, resp.Body)
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	}

	resp := postLogin(t, baseURL, "wronguser", "wrongpass")
	require.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	require.Contains(t, resp.Header.Get("Content-Type"), "application/json")
	require.NotEmpty(t, resp.Header.Get("Retry-After"))
	require.Equal(t, "5", resp.Header.Get("X-RateLimit-Limit"))
	require.Equal(t, "1m0s", resp.Header.Get("X-RateLimit-Window"))

	var body authsdk.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Equal(t, "rate_limit_exceeded", body.Error)
	require.NotEmpty(t, body.ErrorDescription)
}

// TestRateLimitCompositeKeys verifies the login limiter keys on IP and
// username, so one exhausted username does not lock out another.
func TestRateLimitCompositeKeys(t *testing.T) {
	baseURL := setupAuthContainerWithDefaultRateLimits(t)

	for range 6 {
		resp := postLogin(t, baseURL, "victim", "guess")
		_, _ = io.Copy(io.Discard, resp.Body)
	}
	require.Equal(t, http.StatusTooManyRequests, postLogin(t, baseURL, "victim", "guess").StatusCode)

	// Same IP, different username gets its own budget
	require.Equal(t, http.StatusUnauthorized, postLogin(t, baseURL, "bystander", "guess").StatusCode)
}

// TestRateLimitLoginAliasHasOwnBudget verifies /auth/login is limited
// separately from /auth/token.
func TestRateLimitLoginAliasHasOwnBudget(t *testing.T) {
	baseURL := setupAuthContainerWithDefaultRateLimits(t)

	for range 6 {
		resp := postLogin(t, baseURL, "eve", "guess")
		_, _ = io.Copy(io.Discard, resp.Body)
	}

	body, err := json.Marshal(authsdk.LoginRequest{Username: "eve", Password: "guess"})
	require.NoError(t, err)
	resp, err := http.Post(baseURL+"/auth/login", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

// TestRateLimitHealthEndpoints verifies health checks tolerate frequent polling.
func TestRateLimitHealthEndpoints(t *testing.T) {
	client := authsdk.NewSDKClient(setupAuthContainerWithDefaultRateLimits(t))

	for range 50 {
		health, err := client.GetLiveness(t.Context())
		assertHealthy(t, health, err)
	}
}

// TestRateLimitConcurrentRequests verifies the limiter under concurrent load
// on a lenient endpoint.
func TestRateLimitConcurrentRequests(t *testing.T) {
	baseURL := setupAuthContainerWithDefaultRateLimits(t)
	httpClient := &http.Client{Timeout: 5 * time.Second}

	const numRequests = 20
	statuses := make(chan int, numRequests)

	var wg sync.WaitGroup
	for range numRequests {
		wg.Go(func() {
			resp, err := httpClient.Get(baseURL + "/readyz")
			if err != nil {
				statuses <- 0
				return
			}
			defer resp.Body.Close()
			statuses <- resp.StatusCode
		})
	}
	wg.Wait()
	close(statuses)

	for status := range statuses {
		require.Equal(t, http.StatusOK, status)
	}
}
