package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/aussiebroadwan/bitebank/internal/auth/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")

	// ErrUsernameTaken and ErrEmailTaken say which unique constraint a
	// CreateUser call tripped. Both match ErrAlreadyExists.
	ErrUsernameTaken = fmt.Errorf("%w: username", ErrAlreadyExists)
	ErrEmailTaken    = fmt.Errorf("%w: email", ErrAlreadyExists)
)

// Store is the root data access interface. Concrete drivers (sqlite, postgres)
// implement this and expose sub-repositories to keep concerns tidy and
// testable.
type Store interface {
	Users() Users

	ApplyMigrations() error

	// Close releases the underlying pool.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

type Users interface {
	// GetUserByID returns a user by id.
	GetUserByID(ctx context.Context, id int64) (domain.User, error)

	// GetUserByUsername is used during login.
	GetUserByUsername(ctx context.Context, username string) (domain.User, error)

	// CreateUser inserts a new user in a single statement and returns it
	// with the id and timestamps assigned by the database. Uniqueness is left
	// to the UNIQUE constraints: a clash returns ErrUsernameTaken or
	// ErrEmailTaken.
	CreateUser(ctx context.Context, u domain.User) (domain.User, error)
}
