package domain

import (
	"errors"
	"time"
)

// ErrUnauthenticated is returned when an operation requires a principal and
// none could be resolved from the request credential.
var ErrUnauthenticated = errors.New("not authenticated")

// Principal is an authenticated actor resolved from a request credential.
type Principal struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// TokenIssuer issues tokens (e.g. JWT) for an authenticated principal.
type TokenIssuer interface {
	Issue(userID, email, role string, expiry time.Duration) (string, error)
}

// TokenVerifier verifies a credential and returns the principal it carries.
// Implementations must treat invalid, malformed or expired credentials as a
// verification failure, never as a panic or a partial principal.
type TokenVerifier interface {
	Verify(token string) (*Principal, error)
}
