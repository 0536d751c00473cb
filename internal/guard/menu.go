package guard

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/bloodlink/bloodlink/internal/platform/httpx"
	"github.com/bloodlink/bloodlink/internal/shared"
)

// MenuEntry is one dashboard navigation link.
type MenuEntry struct {
	Label string `json:"label"`
	Path  string `json:"path"`
	Icon  string `json:"icon"`
}

var menuTable = map[shared.Role][]MenuEntry{
	shared.RoleAdmin: {
		{Label: "Dashboard", Path: "/dashboard", Icon: "layout-dashboard"},
		{Label: "Profile", Path: "/dashboard/profile", Icon: "user"},
		{Label: "All Users", Path: "/dashboard/all-users", Icon: "users"},
		{Label: "All Requests", Path: "/dashboard/all-blood-donation-request", Icon: "file-heart"},
	},
	shared.RoleVolunteer: {
		{Label: "Dashboard", Path: "/dashboard", Icon: "layout-dashboard"},
		{Label: "Profile", Path: "/dashboard/profile", Icon: "user"},
		{Label: "All Requests", Path: "/dashboard/all-blood-donation-request", Icon: "file-heart"},
		{Label: "My Requests", Path: "/dashboard/my-donation-requests", Icon: "file-heart"},
		{Label: "Create Request", Path: "/dashboard/create-donation-request", Icon: "plus-circle"},
	},
	shared.RoleDonor: {
		{Label: "Dashboard", Path: "/dashboard", Icon: "layout-dashboard"},
		{Label: "Profile", Path: "/dashboard/profile", Icon: "user"},
		{Label: "My Requests", Path: "/dashboard/my-donation-requests", Icon: "file-heart"},
		{Label: "Create Request", Path: "/dashboard/create-donation-request", Icon: "plus-circle"},
		{Label: "Make Donation", Path: "/dashboard/funding", Icon: "hand-heart"},
	},
}

// MenuFor returns the ordered navigation entries for a role. Unresolved or
// unknown roles fall back to the donor menu; access decisions are never made
// here, only link visibility.
func MenuFor(role shared.Role) []MenuEntry {
	if entries, ok := menuTable[role]; ok {
		return entries
	}
	return menuTable[shared.RoleDonor]
}

// Handler serves the navigation menu for the signed-in principal.
type Handler struct {
	Resolver RoleResolver
	Logger   *slog.Logger
}

// Navigation resolves the principal's role and returns its menu.
func (h *Handler) Navigation(w http.ResponseWriter, r *http.Request) {
	principal := shared.PrincipalFromContext(r.Context())
	if principal == nil {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "authentication required")
		return
	}
	role, _, err := h.Resolver.Resolve(r.Context(), principal.Email)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		h.Logger.Error("navigation resolve role", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"role": role,
		"menu": MenuFor(role),
	})
}
