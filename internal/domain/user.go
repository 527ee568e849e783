package domain

import (
	"errors"
	"time"
)

// User represents a registered account holder. Authorization is group
// membership: a user sees and mutates only groups they belong to.
type User struct {
	ID             string
	Email          string
	Name           string
	Avatar         *string
	HashedPassword string
	CreatedAt      time.Time
	UpdatedAt      time.Time
	Active         bool
}

// Authentication errors
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)
