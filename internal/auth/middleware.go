package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/bloodlink/bloodlink/internal/platform/httpx"
	"github.com/bloodlink/bloodlink/internal/shared"
)

// Authenticator authorizes inbound requests. Every protected route runs
// through RequireToken: a missing, invalid or revoked credential yields 401,
// a blocked account yields 403 and revokes the presented token so the client
// is forced to sign in again.
type Authenticator struct {
	tokens  *TokenManager
	service *Service
	logger  *slog.Logger
}

// NewAuthenticator constructs an Authenticator.
func NewAuthenticator(tokens *TokenManager, service *Service, logger *slog.Logger) *Authenticator {
	return &Authenticator{tokens: tokens, service: service, logger: logger}
}

// RequireToken is the middleware guarding authenticated routes.
func (a *Authenticator) RequireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := bearerToken(r)
		if raw == "" {
			httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "missing bearer token")
			return
		}

		claims, err := a.tokens.Parse(r.Context(), raw)
		if err != nil {
			httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "invalid or expired token")
			return
		}

		_, status, err := a.service.Resolve(r.Context(), claims.Email)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "unknown account")
				return
			}
			a.logger.Error("resolve account", slog.String("email", claims.Email), slog.Any("error", err))
			httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
			return
		}
		if status == shared.StatusBlocked {
			if err := a.tokens.Revoke(r.Context(), claims); err != nil {
				a.logger.Warn("revoke blocked token", slog.Any("error", err))
			}
			httpx.Problem(w, http.StatusForbidden, "Forbidden", "account blocked")
			return
		}

		principal := &shared.Principal{
			ID:          claims.UserID,
			Email:       claims.Email,
			Name:        claims.Name,
			AvatarURL:   claims.AvatarURL,
			TokenID:     claims.ID,
			TokenExpiry: claims.ExpiresAt.Time,
		}
		next.ServeHTTP(w, r.WithContext(shared.ContextWithPrincipal(r.Context(), principal)))
	})
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
