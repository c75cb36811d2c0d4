package httpx

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/aussiebroadwan/bitebank/pkg/jwtx"
	"github.com/aussiebroadwan/bitebank/pkg/slogx"
)

// ErrVerifierUnavailable is returned by a Verifier whose backend could not be
// reached. The guard answers 502 instead of 401 for it.
var ErrVerifierUnavailable = errors.New("httpx: token verifier unavailable")

// Verifier turns a bearer token into the caller's identity.
type Verifier interface {
	VerifyToken(ctx context.Context, token string) (Identity, error)
}

// VerifierFunc adapts a function to the Verifier interface.
type VerifierFunc func(ctx context.Context, token string) (Identity, error)

func (f VerifierFunc) VerifyToken(ctx context.Context, token string) (Identity, error) {
	return f(ctx, token)
}

// LocalVerifier verifies tokens in-process with a shared-secret codec.
func LocalVerifier(v jwtx.Verifier) Verifier {
	return VerifierFunc(func(_ context.Context, token string) (Identity, error) {
		claims, err := v.Verify(token)
		if err != nil {
			return Identity{}, err
		}
		return Identity{
			Username: claims.Username(),
			UserID:   claims.UserID,
			Role:     claims.Role,
		}, nil
	})
}

// AuthnMiddleware rejects requests without a valid bearer token and stores the
// verified Identity in the request context for the wrapped handler.
func AuthnMiddleware(v Verifier) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			raw, ok := BearerToken(r)
			if !ok {
				writeBearerError(w, "missing bearer token")
				return
			}

			id, err := v.VerifyToken(ctx, raw)
			if errors.Is(err, ErrVerifierUnavailable) {
				log.Error("token verifier unavailable", "err", err)
				WriteError(w, http.StatusBadGateway, "upstream_unavailable", "could not reach the authentication service")
				return
			}
			if err != nil {
				log.Warn("jwt verify failed", "err", err)
				writeBearerError(w, "could not validate credentials")
				return
			}

			ctx = WithIdentity(ctx, id)
			ctx = slogx.WithContext(ctx, log.With("user", id.Username))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// BearerToken extracts the token from an "Authorization: Bearer <token>"
// header. The scheme is matched case-insensitively.
func BearerToken(r *http.Request) (string, bool) {
	authz := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(authz, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", false
	}
	return token, true
}

// RFC 6750-compliant error response for bearer auth.
func writeBearerError(w http.ResponseWriter, desc string) {
	w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token", error_description="`+desc+`"`)
	WriteError(w, http.StatusUnauthorized, "invalid_token", desc)
}
