package token

import "errors"

var (
	// ErrInvalidToken is returned when the token cannot be parsed or verified.
	ErrInvalidToken = errors.New("invalid token")
	// ErrInvalidPublicKey is returned when the public key is invalid.
	ErrInvalidPublicKey = errors.New("invalid public key")
	// ErrUnauthenticated is returned when no principal is attached to the context.
	ErrUnauthenticated = errors.New("authentication required")
	// ErrForbidden is returned when the principal lacks the required role.
	ErrForbidden = errors.New("Access denied. Admin only.") //nolint:staticcheck // user-facing message
)
