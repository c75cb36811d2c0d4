package jwtx

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultAccessTokenTTL is the lifetime of tokens minted on register/login.
const DefaultAccessTokenTTL = 60 * time.Minute

// Claims are the access-token claims shared by every service. The wire
// shape is {"sub": username, "id": user id, "role": role, "exp": ..., "iat": ...}.
type Claims struct {
	jwt.RegisteredClaims

	// UserID is the numeric id of the user the token was minted for.
	UserID int64 `json:"id"`

	// Role is carried for downstream services, nothing enforces it yet.
	Role string `json:"role,omitempty"`
}

// NewAccessClaims builds claims expiring ttl after now.
func NewAccessClaims(subject string, userID int64, role string, ttl time.Duration, now time.Time) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		UserID: userID,
		Role:   role,
	}
}

// Username returns the subject claim.
func (c *Claims) Username() string { return c.Subject }

// ValidateRequired makes sure the claims identify a user.
func (c *Claims) ValidateRequired() error {
	if c.Subject == "" || c.UserID == 0 {
		return ErrInvalidClaim
	}
	if c.ExpiresAt == nil {
		return ErrInvalidClaim
	}
	return nil
}
