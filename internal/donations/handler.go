package donations

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/bloodlink/bloodlink/internal/guard"
	"github.com/bloodlink/bloodlink/internal/platform/httpx"
	"github.com/bloodlink/bloodlink/internal/shared"
)

// Handler wires HTTP endpoints for the donation-request lifecycle.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	resolver  guard.RoleResolver
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, resolver guard.RoleResolver) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		resolver:  resolver,
		validator: validator.New(),
	}
}

// ListPublic serves the public browse view. It defaults to pending
// requests unless a status filter is given.
func (h *Handler) ListPublic(w http.ResponseWriter, r *http.Request) {
	q := parseListQuery(r)
	if q.Status == nil {
		pending := StatusPending
		q.Status = &pending
	}
	h.list(w, r, q)
}

// ListAll serves the admin/volunteer view over every request.
func (h *Handler) ListAll(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, parseListQuery(r))
}

// ListMine serves the requester-scoped view. Only the requester (or an
// admin) may read it.
func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
	email := chi.URLParam(r, "email")
	if !h.allowSelfOrAdmin(w, r, email) {
		return
	}
	q := parseListQuery(r)
	q.RequesterEmail = strings.ToLower(email)
	h.list(w, r, q)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request, q ListQuery) {
	envelope, err := h.service.List(r.Context(), q)
	if err != nil {
		h.logger.Error("list donation requests", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, envelope)
}

// GetDetail fetches one request by id.
func (h *Handler) GetDetail(w http.ResponseWriter, r *http.Request) {
	detail, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, detail)
}

// Create records a new pending request for the signed-in principal.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var in RequestInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if err := h.validator.Struct(in); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	principal := shared.PrincipalFromContext(r.Context())
	created, err := h.service.Create(r.Context(), principal, in)
	if err != nil {
		h.logger.Error("create donation request", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, created)
}

// Update edits an existing request (owner only).
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var in RequestInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if err := h.validator.Struct(in); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	principal := shared.PrincipalFromContext(r.Context())
	updated, err := h.service.Update(r.Context(), principal, chi.URLParam(r, "id"), in)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, updated)
}

// Transition moves a request to a new status (admin/volunteer, enforced by
// the route guard; the legal edge set is enforced here).
func (h *Handler) Transition(w http.ResponseWriter, r *http.Request) {
	var in TransitionInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if err := h.validator.Struct(in); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	updated, err := h.service.Transition(r.Context(), chi.URLParam(r, "id"), in.Status)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, updated)
}

// Delete removes a request (owner or admin).
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	principal := shared.PrincipalFromContext(r.Context())
	role, _, err := h.resolver.Resolve(r.Context(), principal.Email)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		h.logger.Error("resolve role for delete", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}

	if err := h.service.Delete(r.Context(), principal, role, chi.URLParam(r, "id")); err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Dashboard serves the requester's summary counts and recent requests.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	email := chi.URLParam(r, "email")
	if !h.allowSelfOrAdmin(w, r, email) {
		return
	}
	summary, err := h.service.Dashboard(r.Context(), strings.ToLower(email))
	if err != nil {
		h.logger.Error("donation dashboard", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, summary)
}

func (h *Handler) allowSelfOrAdmin(w http.ResponseWriter, r *http.Request, email string) bool {
	principal := shared.PrincipalFromContext(r.Context())
	if principal == nil {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "authentication required")
		return false
	}
	if strings.EqualFold(principal.Email, email) {
		return true
	}
	role, _, err := h.resolver.Resolve(r.Context(), principal.Email)
	if err == nil && role == shared.RoleAdmin {
		return true
	}
	httpx.Problem(w, http.StatusForbidden, "Forbidden", "not your resource")
	return false
}

func parseListQuery(r *http.Request) ListQuery {
	q := ListQuery{
		Page:   1,
		Limit:  shared.DefaultPageSize,
		Search: strings.TrimSpace(r.URL.Query().Get("search")),
	}
	if page, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && page > 0 {
		q.Page = page
	}
	if limit, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && limit > 0 && limit <= 100 {
		q.Limit = limit
	}
	if raw := r.URL.Query().Get("status"); raw != "" {
		if status, ok := ParseStatus(raw); ok {
			q.Status = &status
		}
	}
	return q
}
