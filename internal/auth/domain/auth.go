// Package domain defines the identity boundary. User identity is owned by the
// hosted auth backend; this service only ever verifies opaque tokens against
// it and never mints identities of its own.
package domain

import (
	"context"
	"errors"
)

var (
	ErrUnauthorized  = errors.New("unauthorized")
	ErrInvalidConfig = errors.New("auth_config_invalid")
)

// User is the verified identity attached to an authenticated request.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Verifier resolves an opaque bearer token into a User via the hosted auth
// backend. Implementations must return ErrUnauthorized for missing, expired
// or unknown tokens.
type Verifier interface {
	Verify(ctx context.Context, token string) (*User, error)
}
