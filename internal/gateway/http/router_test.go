package http

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aussiebroadwan/bitebank/internal/gateway/forward"
	"github.com/aussiebroadwan/bitebank/pkg/authsdk"
	"github.com/aussiebroadwan/bitebank/pkg/httpx"
	"github.com/stretchr/testify/require"
)

// fakeOrder records what reaches the order service.
type fakeOrder struct {
	hits     atomic.Int32
	lastAuth atomic.Value
	lastPath atomic.Value
}

func (o *fakeOrder) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	o.hits.Add(1)
	o.lastAuth.Store(r.Header.Get("Authorization"))
	o.lastPath.Store(r.Method + " " + r.URL.Path)

	switch {
	case r.URL.Path == "/livez":
		httpx.WriteJSON(w, http.StatusOK, authsdk.HealthResponse{Status: "ok"})
	case r.URL.Path == "/meals/404":
		authsdk.ErrNotFound.WithDescription("meal does not exist").WriteError(w)
	case strings.HasPrefix(r.URL.Path, "/uploads/images/"):
		w.Header().Set("Content-Type", "image/jpeg")
		_, _ = w.Write([]byte{0xff, 0xd8, 0xff, 0xe0})
	default:
		httpx.WriteJSON(w, http.StatusOK, []string{})
	}
}

// fakeAuth answers the routes the gateway uses on the auth service.
func fakeAuth(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/token", func(w http.ResponseWriter, r *http.Request) {
		var req authsdk.LoginRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if req.Password != "pw123" {
			authsdk.ErrInvalidCredentials.WriteError(w)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, authsdk.TokenResponse{AccessToken: "good", TokenType: "bearer"})
	})
	mux.HandleFunc("POST /auth/register", func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		require.JSONEq(t, `{"username":"alice","email":"a@x.com","password":"pw123"}`, string(b))
		httpx.WriteJSON(w, http.StatusOK, authsdk.TokenResponse{AccessToken: "good", TokenType: "bearer"})
	})
	mux.HandleFunc("POST /auth/verify-token", func(w http.ResponseWriter, r *http.Request) {
		var req authsdk.VerifyTokenRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if req.Token != "good" {
			authsdk.ErrInvalidToken.WriteError(w)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, authsdk.IdentityResponse{Username: "alice", ID: 1, Role: "USER"})
	})
	mux.HandleFunc("GET /livez", func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, authsdk.HealthResponse{Status: "ok"})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newGateway(t *testing.T, authURL, orderURL string) *Router {
	t.Helper()

	client := forward.NewClient(2*time.Second, 4)
	auth, err := forward.New("auth", authURL, client)
	require.NoError(t, err)
	order, err := forward.New("order", orderURL, client)
	require.NoError(t, err)

	authClient := authsdk.NewSDKClientWithHTTP(authURL, client)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	r := NewRouter(auth, order, forward.RemoteVerifier(authClient), nil, "test", logger)
	r.Ready = []Upstream{
		{Name: "auth", Client: authClient},
		{Name: "order", Client: authsdk.NewSDKClientWithHTTP(orderURL, client)},
	}
	r.ApplyRoutes()
	return r
}

func serve(h http.Handler, method, path, body string, hdr map[string]string) *httptest.ResponseRecorder {
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
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

func bearer(tok string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + tok}
}

func TestGatewayAuthPassthrough(t *testing.T) {
	order := &fakeOrder{}
	orderSrv := httptest.NewServer(order)
	t.Cleanup(orderSrv.Close)
	gw := newGateway(t, fakeAuth(t).URL, orderSrv.URL)

	t.Run("register body reaches auth untouched", func(t *testing.T) {
		rec := serve(gw, http.MethodPost, "/auth/register", `{"username":"alice","email":"a@x.com","password":"pw123"}`, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "bearer", decodeBody[authsdk.TokenResponse](t, rec).TokenType)
	})

	t.Run("login alias goes to /auth/token", func(t *testing.T) {
		rec := serve(gw, http.MethodPost, "/auth/login", `{"username":"alice","password":"pw123"}`, nil)
		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("bad credentials relayed verbatim", func(t *testing.T) {
		rec := serve(gw, http.MethodPost, "/auth/token", `{"username":"alice","password":"wrongpw"}`, nil)
		require.Equal(t, http.StatusUnauthorized, rec.Code)

		body := decodeBody[authsdk.ErrorResponse](t, rec)
		require.Equal(t, "incorrect username or password", body.ErrorDescription)
	})

	require.Zero(t, order.hits.Load())
}

func TestGatewayProtectedRoutes(t *testing.T) {
	order := &fakeOrder{}
	orderSrv := httptest.NewServer(order)
	t.Cleanup(orderSrv.Close)
	gw := newGateway(t, fakeAuth(t).URL, orderSrv.URL)

	t.Run("missing token never reaches order", func(t *testing.T) {
		rec := serve(gw, http.MethodGet, "/meals", "", nil)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Zero(t, order.hits.Load())
	})

	t.Run("invalid token never reaches order", func(t *testing.T) {
		rec := serve(gw, http.MethodGet, "/meals", "", bearer("forged"))
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Zero(t, order.hits.Load())
	})

	routes := []struct{ method, path string }{
		{http.MethodGet, "/meals"},
		{http.MethodPost, "/meals"},
		{http.MethodGet, "/meals/3"},
		{http.MethodPut, "/meals/3"},
		{http.MethodDelete, "/meals/3"},
		{http.MethodGet, "/shopping_cart/1"},
		{http.MethodPost, "/shopping_cart"},
		{http.MethodPut, "/shopping_cart/9"},
		{http.MethodDelete, "/shopping_cart/9"},
		{http.MethodGet, "/orders"},
		{http.MethodGet, "/orders/1"},
		{http.MethodPost, "/orders"},
		{http.MethodPut, "/orders/5"},
		{http.MethodDelete, "/orders/5"},
		{http.MethodPost, "/upload"},
	}
	for _, rt := range routes {
		t.Run(rt.method+" "+rt.path, func(t *testing.T) {
			body := ""
			if rt.method == http.MethodPost || rt.method == http.MethodPut {
				body = "{}"
			}
			rec := serve(gw, rt.method, rt.path, body, bearer("good"))
			require.Equal(t, http.StatusOK, rec.Code)
			require.Equal(t, rt.method+" "+rt.path, order.lastPath.Load())
			require.Equal(t, "Bearer good", order.lastAuth.Load())
		})
	}

	t.Run("downstream rejection relayed", func(t *testing.T) {
		rec := serve(gw, http.MethodGet, "/meals/404", "", bearer("good"))
		require.Equal(t, http.StatusNotFound, rec.Code)
		require.Equal(t, "meal does not exist", decodeBody[authsdk.ErrorResponse](t, rec).ErrorDescription)
	})

	t.Run("image streamed with its content type", func(t *testing.T) {
		rec := serve(gw, http.MethodGet, "/uploads/images/01J.jpg", "", bearer("good"))
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "image/jpeg", rec.Header().Get("Content-Type"))
		require.Equal(t, []byte{0xff, 0xd8, 0xff, 0xe0}, rec.Body.Bytes())
	})

	t.Run("unknown route", func(t *testing.T) {
		rec := serve(gw, http.MethodGet, "/admin", "", bearer("good"))
		require.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestGatewayUpstreamFailures(t *testing.T) {
	down := httptest.NewServer(http.NotFoundHandler())
	downURL := down.URL
	down.Close()

	t.Run("order unreachable", func(t *testing.T) {
		gw := newGateway(t, fakeAuth(t).URL, downURL)
		rec := serve(gw, http.MethodGet, "/meals", "", bearer("good"))
		require.Equal(t, http.StatusBadGateway, rec.Code)
		require.Equal(t, "upstream_unavailable", decodeBody[authsdk.ErrorResponse](t, rec).Error)
	})

	t.Run("auth unreachable on a protected route", func(t *testing.T) {
		order := &fakeOrder{}
		orderSrv := httptest.NewServer(order)
		t.Cleanup(orderSrv.Close)

		gw := newGateway(t, downURL, orderSrv.URL)
		rec := serve(gw, http.MethodGet, "/meals", "", bearer("good"))
		require.Equal(t, http.StatusBadGateway, rec.Code)
		require.Zero(t, order.hits.Load())
	})

	t.Run("auth unreachable on login", func(t *testing.T) {
		gw := newGateway(t, downURL, downURL)
		rec := serve(gw, http.MethodPost, "/auth/token", `{"username":"a","password":"b"}`, nil)
		require.Equal(t, http.StatusBadGateway, rec.Code)
	})
}

func TestGatewayAuthThrottled(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/verify-token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "30")
		httpx.WriteError(w, http.StatusTooManyRequests, "rate_limit_exceeded", "Too many requests. Please try again later.")
	})
	authSrv := httptest.NewServer(mux)
	t.Cleanup(authSrv.Close)

	order := &fakeOrder{}
	orderSrv := httptest.NewServer(order)
	t.Cleanup(orderSrv.Close)
	gw := newGateway(t, authSrv.URL, orderSrv.URL)

	rec := serve(gw, http.MethodGet, "/meals", "", bearer("good"))
	require.Equal(t, http.StatusBadGateway, rec.Code)
	require.Empty(t, rec.Header().Get("WWW-Authenticate"))
	require.Equal(t, "upstream_unavailable", decodeBody[authsdk.ErrorResponse](t, rec).Error)
	require.Zero(t, order.hits.Load())
}

func TestGatewayHealth(t *testing.T) {
	order := &fakeOrder{}
	orderSrv := httptest.NewServer(order)
	t.Cleanup(orderSrv.Close)
	gw := newGateway(t, fakeAuth(t).URL, orderSrv.URL)

	rec := serve(gw, http.MethodGet, "/livez", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = serve(gw, http.MethodGet, "/readyz", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	health := decodeBody[authsdk.HealthResponse](t, rec)
	require.Equal(t, map[string]string{"auth": "ok", "order": "ok"}, health.Checks)

	orderSrv.Close()
	rec = serve(gw, http.MethodGet, "/readyz", "", nil)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	health = decodeBody[authsdk.HealthResponse](t, rec)
	require.Equal(t, "ok", health.Checks["auth"])
	require.NotEqual(t, "ok", health.Checks["order"])
}

func TestGatewayCORSPreflight(t *testing.T) {
	order := &fakeOrder{}
	orderSrv := httptest.NewServer(order)
	t.Cleanup(orderSrv.Close)
	gw := newGateway(t, fakeAuth(t).URL, orderSrv.URL)

	rec := serve(gw, http.MethodOptions, "/meals", "", map[string]string{
		"Origin":                         "http://localhost:3000",
		"Access-Control-Request-Method":  http.MethodPost,
		"Access-Control-Request-Headers": "Authorization, Content-Type",
	})
	require.Less(t, rec.Code, 300)
	require.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
	require.Zero(t, order.hits.Load())
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}
