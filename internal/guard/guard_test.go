package guard

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bloodlink/bloodlink/internal/shared"
)

type stubResolver struct {
	role shared.Role
	err  error
}

func (s stubResolver) Resolve(context.Context, string) (shared.Role, shared.AccountStatus, error) {
	return s.role, shared.StatusActive, s.err
}

func protected() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func requestAs(email string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if email == "" {
		return req
	}
	ctx := shared.ContextWithPrincipal(req.Context(), &shared.Principal{ID: "u1", Email: email})
	return req.WithContext(ctx)
}

func TestRequireAdmin(t *testing.T) {
	cases := []struct {
		name string
		role shared.Role
		err  error
		want int
	}{
		{name: "admin allowed", role: shared.RoleAdmin, want: http.StatusOK},
		{name: "volunteer denied", role: shared.RoleVolunteer, want: http.StatusForbidden},
		{name: "donor denied", role: shared.RoleDonor, want: http.StatusForbidden},
		{name: "unresolved never grants", role: shared.RoleUnresolved, want: http.StatusForbidden},
		{name: "missing account denied", err: shared.ErrNotFound, want: http.StatusForbidden},
		{name: "resolver failure is an error not a grant", err: errors.New("db down"), want: http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m := Middleware{Resolver: stubResolver{role: tc.role, err: tc.err}, Logger: slog.Default()}
			rec := httptest.NewRecorder()
			m.RequireAdmin(protected()).ServeHTTP(rec, requestAs("someone@example.com"))
			assert.Equal(t, tc.want, rec.Code)
		})
	}
}

func TestRequireAdminUnauthenticated(t *testing.T) {
	m := Middleware{Resolver: stubResolver{role: shared.RoleAdmin}}
	rec := httptest.NewRecorder()
	m.RequireAdmin(protected()).ServeHTTP(rec, requestAs(""))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireVolunteerOrAdmin(t *testing.T) {
	cases := []struct {
		role shared.Role
		want int
	}{
		{shared.RoleAdmin, http.StatusOK},
		{shared.RoleVolunteer, http.StatusOK},
		{shared.RoleDonor, http.StatusForbidden},
		{shared.RoleUnresolved, http.StatusForbidden},
	}
	for _, tc := range cases {
		m := Middleware{Resolver: stubResolver{role: tc.role}}
		rec := httptest.NewRecorder()
		m.RequireVolunteerOrAdmin(protected()).ServeHTTP(rec, requestAs("someone@example.com"))
		assert.Equal(t, tc.want, rec.Code, "role %q", tc.role)
	}
}
