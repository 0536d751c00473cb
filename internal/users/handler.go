package users

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/bloodlink/bloodlink/internal/platform/httpx"
	"github.com/bloodlink/bloodlink/internal/shared"
)

// Handler wires HTTP endpoints for account administration.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountAdminRoutes registers the admin-only account routes. The caller is
// responsible for wrapping the router in the admin guard.
func (h *Handler) MountAdminRoutes(r chi.Router) {
	r.Get("/users", h.List)
	r.Post("/users", h.Create)
	r.Patch("/users/{id}/role", h.ChangeRole)
	r.Patch("/users/{id}/status", h.ChangeStatus)
}

// MountProfileRoutes registers the profile routes. Accounts read and edit
// their own profile; admins may reach anyone's.
func (h *Handler) MountProfileRoutes(r chi.Router) {
	r.Get("/users/{id}", h.Get)
	r.Put("/users/{id}", h.UpdateProfile)
}

// List serves one page of accounts.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := ListQuery{Page: 1, Limit: shared.DefaultPageSize}
	if page, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && page > 0 {
		q.Page = page
	}
	if limit, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && limit > 0 && limit <= 100 {
		q.Limit = limit
	}
	if status := r.URL.Query().Get("status"); status == string(shared.StatusActive) || status == string(shared.StatusBlocked) {
		q.Status = status
	}
	q.Search = strings.TrimSpace(r.URL.Query().Get("search"))

	envelope, err := h.service.List(r.Context(), q)
	if err != nil {
		h.logger.Error("list users", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, envelope)
}

// Get fetches one account by id.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	u, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if !h.allowSelfOrAdmin(w, r, u) {
		return
	}
	httpx.JSON(w, http.StatusOK, u)
}

// Create adds a new account.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var in CreateInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if err := h.validator.Struct(in); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	created, err := h.service.Create(r.Context(), in)
	if err != nil {
		h.logger.Error("create user", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, created)
}

// UpdateProfile edits an account's profile.
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	target, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if !h.allowSelfOrAdmin(w, r, target) {
		return
	}

	var in ProfileInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if err := h.validator.Struct(in); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	updated, err := h.service.UpdateProfile(r.Context(), target.ID, in)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, updated)
}

// ChangeRole reassigns an account's role.
func (h *Handler) ChangeRole(w http.ResponseWriter, r *http.Request) {
	var in RoleInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if err := h.validator.Struct(in); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	updated, err := h.service.ChangeRole(r.Context(), chi.URLParam(r, "id"), in.Role)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, updated)
}

// ChangeStatus blocks or unblocks an account.
func (h *Handler) ChangeStatus(w http.ResponseWriter, r *http.Request) {
	var in StatusInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if err := h.validator.Struct(in); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	updated, err := h.service.ChangeStatus(r.Context(), chi.URLParam(r, "id"), in.Status)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, updated)
}

// allowSelfOrAdmin admits the target account itself and admins. It mirrors
// the ownership rule on donation requests.
func (h *Handler) allowSelfOrAdmin(w http.ResponseWriter, r *http.Request, target *User) bool {
	principal := shared.PrincipalFromContext(r.Context())
	if principal == nil {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "authentication required")
		return false
	}
	if principal.ID == target.ID || strings.EqualFold(principal.Email, target.Email) {
		return true
	}
	self, err := h.service.Lookup(r.Context(), principal.Email)
	if err != nil || self.Role != shared.RoleAdmin {
		httpx.Problem(w, http.StatusForbidden, "Forbidden", "not your resource")
		return false
	}
	return true
}

// RoleLookup serves GET /users/role/{email}. A signed-in account may ask
// about itself; admins may ask about anyone.
func (h *Handler) RoleLookup(w http.ResponseWriter, r *http.Request) {
	email := chi.URLParam(r, "email")
	principal := shared.PrincipalFromContext(r.Context())
	if principal == nil {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "authentication required")
		return
	}

	if !strings.EqualFold(principal.Email, email) {
		self, err := h.service.Lookup(r.Context(), principal.Email)
		if err != nil || self.Role != shared.RoleAdmin {
			httpx.Problem(w, http.StatusForbidden, "Forbidden", "not your resource")
			return
		}
	}

	lookup, err := h.service.Lookup(r.Context(), email)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, lookup)
}
