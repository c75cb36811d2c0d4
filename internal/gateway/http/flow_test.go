package http

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	authhttp "github.com/aussiebroadwan/bitebank/internal/auth/http"
	"github.com/aussiebroadwan/bitebank/internal/auth/service"
	"github.com/aussiebroadwan/bitebank/internal/auth/store/drivers/sqlite"
	"github.com/aussiebroadwan/bitebank/pkg/authsdk"
	"github.com/aussiebroadwan/bitebank/pkg/cryptox"
	"github.com/aussiebroadwan/bitebank/pkg/jwtx"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// realAuth runs the auth service router in-process.
func realAuth(t *testing.T) *httptest.Server {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, st.ApplyMigrations())
	t.Cleanup(func() { _ = st.Close() })

	hasher, err := cryptox.NewHasher(cryptox.SchemeBcrypt, "", bcrypt.MinCost)
	require.NoError(t, err)
	codec, err := jwtx.NewHS256Codec([]byte("0123456789abcdef0123456789abcdef"))
	require.NoError(t, err)

	svc := &service.AuthService{Store: st, Hasher: hasher, Codec: codec}
	r := authhttp.NewRouter(svc, "test", st, slog.New(slog.NewTextHandler(io.Discard, nil)))
	r.ApplyRoutes()

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func TestRegisterThenCallProtectedRoute(t *testing.T) {
	order := &fakeOrder{}
	orderSrv := httptest.NewServer(order)
	t.Cleanup(orderSrv.Close)

	gw := httptest.NewServer(newGateway(t, realAuth(t).URL, orderSrv.URL))
	t.Cleanup(gw.Close)

	client := authsdk.NewSDKClient(gw.URL)
	ctx := t.Context()

	tok, err := client.Register(ctx, authsdk.RegisterRequest{Username: "alice", Email: "a@x.com", Password: "pw123"})
	require.NoError(t, err)
	require.Equal(t, "bearer", tok.TokenType)

	// The token is forwarded downstream byte for byte
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, gw.URL+"/meals", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+tok.AccessToken)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	_ = resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "Bearer "+tok.AccessToken, order.lastAuth.Load())

	// No header, no forwarding
	hits := order.hits.Load()
	resp, err = http.Get(gw.URL + "/meals")
	require.NoError(t, err)
	_ = resp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.Equal(t, hits, order.hits.Load())

	// Wrong password gets the generic message
	_, err = client.Login(ctx, "alice", "wrongpw")
	require.ErrorIs(t, err, authsdk.ErrInvalidCredentials)

	var apiErr *authsdk.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, "incorrect username or password", apiErr.Description)

	// Registering the same username again is a client error
	_, err = client.Register(ctx, authsdk.RegisterRequest{Username: "alice", Email: "b@x.com", Password: "pw"})
	require.ErrorIs(t, err, authsdk.ErrUsernameExists)
}

// Each service serves its own API document even when linked into one binary.
func TestSwaggerDocsPerService(t *testing.T) {
	gw := newGateway(t, fakeAuth(t).URL, fakeAuth(t).URL)
	auth := realAuth(t)

	rec := serve(gw, http.MethodGet, "/swagger/doc.json", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "BiteBank Gateway API")

	resp, err := http.Get(auth.URL + "/swagger/doc.json")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, string(body), "BiteBank Authentication Service API")
}
