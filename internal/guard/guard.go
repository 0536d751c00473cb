// Package guard provides role-based route protection. The authenticated
// guard is the auth middleware itself; the middlewares here layer role
// predicates on top of an already-authenticated principal.
package guard

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/bloodlink/bloodlink/internal/platform/httpx"
	"github.com/bloodlink/bloodlink/internal/shared"
)

// RoleResolver maps an email to its resolved role and account status.
type RoleResolver interface {
	Resolve(ctx context.Context, email string) (shared.Role, shared.AccountStatus, error)
}

// Middleware wires role guards for HTTP handlers.
type Middleware struct {
	Resolver RoleResolver
	Logger   *slog.Logger
}

// RequireAdmin grants access only to admins.
func (m Middleware) RequireAdmin(next http.Handler) http.Handler {
	return m.require(next, func(role shared.Role) bool {
		return role == shared.RoleAdmin
	})
}

// RequireVolunteerOrAdmin grants access to volunteers and admins.
func (m Middleware) RequireVolunteerOrAdmin(next http.Handler) http.Handler {
	return m.require(next, func(role shared.Role) bool {
		return role == shared.RoleVolunteer || role == shared.RoleAdmin
	})
}

// require evaluates the predicate over the resolved role. An unresolved
// role never passes any predicate, and a resolution failure is an error
// response rather than a default-role grant.
func (m Middleware) require(next http.Handler, allowed func(shared.Role) bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal := shared.PrincipalFromContext(r.Context())
		if principal == nil {
			httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "authentication required")
			return
		}

		role, _, err := m.Resolver.Resolve(r.Context(), principal.Email)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				httpx.Problem(w, http.StatusForbidden, "Forbidden", "no role for account")
				return
			}
			if m.Logger != nil {
				m.Logger.Error("guard resolve role", slog.String("email", principal.Email), slog.Any("error", err))
			}
			httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
			return
		}
		if !role.Resolved() || !allowed(role) {
			httpx.Problem(w, http.StatusForbidden, "Forbidden", "insufficient role")
			return
		}
		next.ServeHTTP(w, r)
	})
}
