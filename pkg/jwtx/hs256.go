package jwtx

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// MinSecretLength is the shortest signing secret NewHS256Codec accepts.
const MinSecretLength = 32

var (
	_ Signer   = (*HS256Codec)(nil)
	_ Verifier = (*HS256Codec)(nil)
)

// HS256Codec signs and verifies tokens with a single shared secret. It is
// safe for concurrent use; the secret never changes after construction.
type HS256Codec struct {
	secret []byte

	// Now is the clock used for iat/exp and expiry checks. Defaults to time.Now.
	Now func() time.Time
}

// NewHS256Codec returns a codec for the given secret.
func NewHS256Codec(secret []byte) (*HS256Codec, error) {
	if len(secret) < MinSecretLength {
		return nil, ErrWeakSecret
	}

	key := make([]byte, len(secret))
	copy(key, secret)

	return &HS256Codec{secret: key, Now: time.Now}, nil
}

func (c *HS256Codec) Alg() string { return jwt.SigningMethodHS256.Alg() }

// Encode mints a token for the user that expires ttl from now.
func (c *HS256Codec) Encode(subject string, userID int64, role string, ttl time.Duration) (string, error) {
	return c.Sign(NewAccessClaims(subject, userID, role, ttl, c.now()))
}

// Sign signs an already built claim set.
func (c *HS256Codec) Sign(claims Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("jwtx: sign: %w", err)
	}
	return signed, nil
}

// Decode is an alias of Verify that reads better at call sites minting and
// reading tokens in the same place.
func (c *HS256Codec) Decode(token string) (Claims, error) {
	return c.Verify(token)
}

// Verify parses the token, checks the signature and expiry, and returns the
// claims. Errors are one of ErrMalformed, ErrAlgMismatch, ErrInvalidSig,
// ErrExpired or ErrInvalidClaim.
func (c *HS256Codec) Verify(tokenStr string) (Claims, error) {
	parser := jwt.NewParser(
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)

	var claims Claims
	_, err := parser.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (any, error) {
		if t.Method == nil || t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, ErrAlgMismatch
		}
		return c.secret, nil
	})
	if err != nil {
		return Claims{}, mapParseError(err)
	}

	if err := claims.ValidateRequired(); err != nil {
		return Claims{}, err
	}

	return claims, nil
}

func (c *HS256Codec) now() time.Time {
	if c.Now == nil {
		return time.Now()
	}
	return c.Now()
}

func mapParseError(err error) error {
	switch {
	case errors.Is(err, ErrAlgMismatch):
		return ErrAlgMismatch
	case errors.Is(err, jwt.ErrTokenMalformed):
		return ErrMalformed
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return ErrInvalidSig
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrExpired
	case errors.Is(err, jwt.ErrTokenRequiredClaimMissing):
		return ErrInvalidClaim
	default:
		return fmt.Errorf("%w: %v", ErrInvalidClaim, err)
	}
}
