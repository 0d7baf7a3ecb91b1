package token

import "time"

const RoleAdmin = "admin"

// Principal is the authenticated caller.
type Principal struct {
	// UserID is the token subject, the hex ObjectID of the user.
	UserID string
	Role   string
	Email  string
	Name   string
	// Type is the token type, "access" for API calls.
	Type      string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

func (p *Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

func (p *Principal) IsAccess() bool {
	return p.Type == "access"
}

// RequireRole returns ErrUnauthenticated for a nil principal and ErrForbidden
// when the role does not match.
func RequireRole(p *Principal, role string) error {
	if p == nil {
		return ErrUnauthenticated
	}
	if p.Role != role {
		return ErrForbidden
	}
	return nil
}
