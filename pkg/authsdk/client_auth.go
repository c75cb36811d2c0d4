package authsdk

import (
	"context"
	"net/http"
)

// Register creates a user and returns a token for it.
func (c *SDKClient) Register(ctx context.Context, req RegisterRequest) (*TokenResponse, error) {
	resp, err := c.doJSON(ctx, http.MethodPost, "/auth/register", req)
	if err != nil {
		return nil, err
	}

	var tok TokenResponse
	if err := decodeJSON(resp, &tok, http.StatusOK); err != nil {
		return nil, err
	}
	return &tok, nil
}

// Login exchanges a username and password for a token.
func (c *SDKClient) Login(ctx context.Context, username, password string) (*TokenResponse, error) {
	resp, err := c.doJSON(ctx, http.MethodPost, "/auth/token", LoginRequest{
		Username: username,
		Password: password,
	})
	if err != nil {
		return nil, err
	}

	var tok TokenResponse
	if err := decodeJSON(resp, &tok, http.StatusOK); err != nil {
		return nil, err
	}
	return &tok, nil
}

// VerifyToken asks the auth service who a token belongs to. A rejected token
// comes back as an *APIError with status 401.
func (c *SDKClient) VerifyToken(ctx context.Context, token string) (*IdentityResponse, error) {
	resp, err := c.doJSON(ctx, http.MethodPost, "/auth/verify-token", VerifyTokenRequest{Token: token})
	if err != nil {
		return nil, err
	}

	var id IdentityResponse
	if err := decodeJSON(resp, &id, http.StatusOK); err != nil {
		return nil, err
	}
	return &id, nil
}

// Me returns the identity of the bearer token.
func (c *SDKClient) Me(ctx context.Context, token string) (*IdentityResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/auth/me", nil, map[string]string{
		"Authorization": "Bearer " + token,
	})
	if err != nil {
		return nil, err
	}

	var id IdentityResponse
	if err := decodeJSON(resp, &id, http.StatusOK); err != nil {
		return nil, err
	}
	return &id, nil
}
