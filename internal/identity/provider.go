// Package identity adapts external identity providers to the verifier the
// HTTP layer needs: turn a bearer credential into a verified UID and email.
package identity

import (
	"context"
	"errors"
)

var (
	ErrTokenExpired   = errors.New("identity token expired")
	ErrInvalidToken   = errors.New("identity token malformed")
	ErrEmailExists    = errors.New("email already registered")
	ErrBadCredentials = errors.New("invalid email or password")
)

// Identity is a verified principal as reported by the provider.
type Identity struct {
	UID   string
	Email string
}

type Provider interface {
	// VerifyToken validates a bearer credential. Expired and malformed
	// tokens are reported as ErrTokenExpired and ErrInvalidToken; any other
	// failure is returned as is.
	VerifyToken(ctx context.Context, token string) (*Identity, error)
	// CreateUser registers a new email/password identity and returns its UID.
	CreateUser(ctx context.Context, email, password, displayName string) (string, error)
}

// PasswordAuthenticator is implemented by providers that accept a password
// login on this API instead of on the client.
type PasswordAuthenticator interface {
	Login(ctx context.Context, email, password string) (token string, id *Identity, err error)
}
