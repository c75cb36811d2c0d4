package authsdk

import "github.com/aussiebroadwan/bitebank/pkg/httpx"

// ============================================================================
// Internal Response Types (used for JSON unmarshaling)
// ============================================================================

// ErrorResponse is the wire shape of an error body. Client code should use
// the APIError type from errors.go instead.
type ErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// ============================================================================
// Auth Types
// ============================================================================

// RegisterRequest is the body of POST /auth/register.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`

	// Role defaults to "USER" when empty
	Role string `json:"role,omitempty"`
}

// LoginRequest is the body of POST /auth/token (and its /auth/login alias).
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// TokenResponse is returned by register and login.
type TokenResponse struct {
	// AccessToken is the HS256 JWT used to authenticate API requests
	AccessToken string `json:"access_token"`

	// TokenType is always "bearer"
	TokenType string `json:"token_type"`

	// ExpiresIn is the lifetime in seconds of the access token
	ExpiresIn int `json:"expires_in"`
}

// VerifyTokenRequest is the body of POST /auth/verify-token.
type VerifyTokenRequest struct {
	Token string `json:"token"`
}

// IdentityResponse describes the user a token was minted for.
type IdentityResponse struct {
	Username string `json:"username"`
	ID       int64  `json:"id"`
	Role     string `json:"role"`
}

// ============================================================================
// Health Types
// ============================================================================

// HealthResponse is the body of /livez and /readyz. It is shared with the
// servers, which write it through pkg/httpx.
type HealthResponse = httpx.HealthResponse
