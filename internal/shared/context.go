package shared

import (
	"context"
	"time"
)

// Principal is the immutable snapshot of the authenticated identity for one
// request. It is placed in the request context by the auth middleware and is
// read-only everywhere else.
type Principal struct {
	ID          string
	Email       string
	Name        string
	AvatarURL   string
	TokenID     string
	TokenExpiry time.Time
}

type principalContextKey struct{}

// ContextWithPrincipal stores the principal in context.
func ContextWithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalContextKey{}, p)
}

// PrincipalFromContext extracts the principal from context, nil when the
// request is unauthenticated.
func PrincipalFromContext(ctx context.Context) *Principal {
	p, _ := ctx.Value(principalContextKey{}).(*Principal)
	return p
}
