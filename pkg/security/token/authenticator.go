package token

import (
	"context"
	"strings"
)

// Authenticator turns a bearer credential into a principal-carrying context.
type Authenticator struct {
	validator Validator
}

func NewAuthenticator(v Validator) *Authenticator {
	return &Authenticator{validator: v}
}

// Authenticate accepts either a raw token or an "Authorization: Bearer <token>"
// header value. Only access tokens are accepted.
func (a *Authenticator) Authenticate(ctx context.Context, credential string) (context.Context, *Principal, error) {
	raw := stripBearer(credential)
	if raw == "" {
		return ctx, nil, ErrUnauthenticated
	}

	p, err := a.validator.ValidateToken(raw)
	if err != nil {
		return ctx, nil, err
	}
	if !p.IsAccess() {
		return ctx, nil, ErrInvalidToken
	}
	return ContextWithPrincipal(ctx, p), p, nil
}

const bearerScheme = "bearer"

// stripBearer removes a case-insensitive "Bearer" scheme, including a bare one.
func stripBearer(credential string) string {
	raw := strings.TrimSpace(credential)
	if len(raw) < len(bearerScheme) || !strings.EqualFold(raw[:len(bearerScheme)], bearerScheme) {
		return raw
	}
	rest := raw[len(bearerScheme):]
	if rest != "" && rest[0] != ' ' && rest[0] != '\t' {
		return raw
	}
	return strings.TrimSpace(rest)
}
