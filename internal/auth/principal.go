package auth

import (
	"context"

	"github.com/RonaldAllanRivera/ride-info/internal/domain"
)

// Principal is the authenticated caller of a request.
type Principal struct {
	UserID int64
	Email  string
	Role   domain.Role
}

// IsAdmin is the single authorization predicate of the API: the caller must
// be authenticated and hold the admin role.
func IsAdmin(p *Principal) bool {
	return p != nil && p.Role == domain.RoleAdmin
}

type principalKey struct{}

// WithPrincipal returns a child context carrying p.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFrom returns the principal stored in ctx, if any.
func PrincipalFrom(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(*Principal)
	return p, ok && p != nil
}
