package domain

import "time"

// DefaultRole is assigned when registration does not name one.
const DefaultRole = "USER"

type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string // argon2id (PHC) or bcrypt encoded
	Role         string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
