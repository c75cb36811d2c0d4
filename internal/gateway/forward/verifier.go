package forward

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/aussiebroadwan/bitebank/pkg/authsdk"
	"github.com/aussiebroadwan/bitebank/pkg/httpx"
)

// RemoteVerifier checks tokens by calling the auth service. Only a 400 or 401
// answer rejects the token. Any other failure, a 429 included, means the auth
// service could not vouch for it and is reported as httpx.ErrVerifierUnavailable.
func RemoteVerifier(client *authsdk.SDKClient) httpx.Verifier {
	return httpx.VerifierFunc(func(ctx context.Context, token string) (httpx.Identity, error) {
		id, err := client.VerifyToken(ctx, token)
		if err != nil {
			var apiErr *authsdk.APIError
			if errors.As(err, &apiErr) && rejectsToken(apiErr.StatusCode) {
				return httpx.Identity{}, err
			}
			return httpx.Identity{}, fmt.Errorf("%w: %w", httpx.ErrVerifierUnavailable, err)
		}

		return httpx.Identity{
			Username: id.Username,
			UserID:   id.ID,
			Role:     id.Role,
		}, nil
	})
}

func rejectsToken(status int) bool {
	return status == http.StatusBadRequest || status == http.StatusUnauthorized
}
