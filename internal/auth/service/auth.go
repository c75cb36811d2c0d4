package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aussiebroadwan/bitebank/internal/auth/domain"
	"github.com/aussiebroadwan/bitebank/internal/auth/store"
	"github.com/aussiebroadwan/bitebank/pkg/cryptox"
	"github.com/aussiebroadwan/bitebank/pkg/jwtx"
	"github.com/aussiebroadwan/bitebank/pkg/slogx"
)

// TokenTypeBearer is the only token type handed out.
const TokenTypeBearer = "bearer"

// Field limits, matching the users schema.
const (
	maxUsernameLen = 64
	maxEmailLen    = 254
	maxRoleLen     = 50
)

var (
	ErrInvalidInput       = errors.New("invalid_input")
	ErrDuplicateUsername  = errors.New("username already exists")
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("incorrect username or password")
	ErrUnauthorized       = errors.New("could not validate credentials")
)

// RegisterInput is a new account request. Role is optional.
type RegisterInput struct {
	Username string
	Email    string
	Password string
	Role     string
}

type AuthService struct {
	Store  store.Store
	Hasher *cryptox.Hasher
	Codec  *jwtx.HS256Codec

	// AccessTTL is the token lifetime, jwtx.DefaultAccessTokenTTL when zero.
	AccessTTL time.Duration

	// DefaultRole is given to users registering without one.
	DefaultRole string
}

// Register creates the user and returns a token for it straight away.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (domain.TokenResult, error) {
	l := slogx.FromContext(ctx)

	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	in.Role = strings.TrimSpace(in.Role)
	if err := validateRegister(in); err != nil {
		return domain.TokenResult{}, err
	}
	if in.Role == "" {
		in.Role = s.defaultRole()
	}

	hash, err := s.Hasher.Hash(in.Password)
	if errors.Is(err, cryptox.ErrPasswordTooLong) {
		return domain.TokenResult{}, fmt.Errorf("%w: password is too long", ErrInvalidInput)
	}
	if err != nil {
		return domain.TokenResult{}, fmt.Errorf("hash password: %w", err)
	}

	// No existence pre-check: the insert is the only arbiter of uniqueness
	user, err := s.Store.Users().CreateUser(ctx, domain.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         in.Role,
	})
	switch {
	case errors.Is(err, store.ErrUsernameTaken):
		return domain.TokenResult{}, ErrDuplicateUsername
	case errors.Is(err, store.ErrEmailTaken):
		return domain.TokenResult{}, ErrDuplicateEmail
	case errors.Is(err, store.ErrAlreadyExists):
		return domain.TokenResult{}, ErrDuplicateUsername
	case err != nil:
		return domain.TokenResult{}, fmt.Errorf("create user: %w", err)
	}

	l.Info("user registered", slog.Int64("user_id", user.ID), slog.String("role", user.Role))

	return s.mint(user)
}

// Login checks the password and returns a fresh token. Unknown users and
// wrong passwords both return ErrInvalidCredentials after the same amount of
// hashing work.
func (s *AuthService) Login(ctx context.Context, username, password string) (domain.TokenResult, error) {
	l := slogx.FromContext(ctx)

	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return domain.TokenResult{}, ErrInvalidCredentials
	}

	user, err := s.Store.Users().GetUserByUsername(ctx, username)
	if errors.Is(err, store.ErrNotFound) {
		_ = s.Hasher.VerifyDummy(password)
		return domain.TokenResult{}, ErrInvalidCredentials
	}
	if err != nil {
		return domain.TokenResult{}, fmt.Errorf("lookup user: %w", err)
	}

	err = s.Hasher.Verify(password, user.PasswordHash)
	if errors.Is(err, cryptox.ErrPasswordMismatch) {
		l.Info("login failed", slog.Int64("user_id", user.ID))
		return domain.TokenResult{}, ErrInvalidCredentials
	}
	if err != nil {
		l.Error("stored password hash unusable", slog.Int64("user_id", user.ID), slog.Any("err", err))
		return domain.TokenResult{}, fmt.Errorf("verify password: %w", err)
	}

	return s.mint(user)
}

// Verify decodes an access token into the identity it carries.
func (s *AuthService) Verify(ctx context.Context, token string) (domain.Identity, error) {
	claims, err := s.Codec.Verify(strings.TrimSpace(token))
	if err != nil {
		slogx.FromContext(ctx).Debug("token rejected", slog.Any("err", err))
		return domain.Identity{}, ErrUnauthorized
	}

	return domain.Identity{
		Username: claims.Username(),
		UserID:   claims.UserID,
		Role:     claims.Role,
	}, nil
}

func (s *AuthService) mint(u domain.User) (domain.TokenResult, error) {
	ttl := s.ttl()
	token, err := s.Codec.Encode(u.Username, u.ID, u.Role, ttl)
	if err != nil {
		return domain.TokenResult{}, fmt.Errorf("mint token: %w", err)
	}

	return domain.TokenResult{
		AccessToken: token,
		TokenType:   TokenTypeBearer,
		ExpiresIn:   int(ttl.Seconds()),
	}, nil
}

func (s *AuthService) ttl() time.Duration {
	if s.AccessTTL <= 0 {
		return jwtx.DefaultAccessTokenTTL
	}
	return s.AccessTTL
}

func (s *AuthService) defaultRole() string {
	if s.DefaultRole == "" {
		return domain.DefaultRole
	}
	return s.DefaultRole
}

func validateRegister(in RegisterInput) error {
	switch {
	case in.Username == "":
		return fmt.Errorf("%w: username is required", ErrInvalidInput)
	case in.Email == "":
		return fmt.Errorf("%w: email is required", ErrInvalidInput)
	case in.Password == "":
		return fmt.Errorf("%w: password is required", ErrInvalidInput)
	case len(in.Username) > maxUsernameLen:
		return fmt.Errorf("%w: username is too long", ErrInvalidInput)
	case len(in.Email) > maxEmailLen:
		return fmt.Errorf("%w: email is too long", ErrInvalidInput)
	case len(in.Role) > maxRoleLen:
		return fmt.Errorf("%w: role is too long", ErrInvalidInput)
	}
	return nil
}
