package funding

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/bloodlink/bloodlink/internal/platform/httpx"
	"github.com/bloodlink/bloodlink/internal/shared"
)

// Handler wires HTTP endpoints for the contribution flow.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// Checkout starts a hosted checkout session for the signed-in account.
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	var in CheckoutInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if err := h.validator.Struct(in); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	principal := shared.PrincipalFromContext(r.Context())
	resp, err := h.service.Checkout(r.Context(), principal, in.Amount)
	if err != nil {
		h.logger.Error("open checkout session", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, resp)
}

// Confirm reconciles a finished checkout session. The endpoint is safe to
// retry; a session is only ever counted once.
func (h *Handler) Confirm(w http.ResponseWriter, r *http.Request) {
	var in ConfirmInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if err := h.validator.Struct(in); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	paid, err := h.service.Confirm(r.Context(), in.SessionID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, paid)
}

// List serves one page of paid contributions with the running total.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := ListQuery{
		Page:      1,
		Limit:     shared.DefaultPageSize,
		SessionID: strings.TrimSpace(r.URL.Query().Get("session_id")),
	}
	if page, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && page > 0 {
		q.Page = page
	}
	if limit, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && limit > 0 && limit <= 100 {
		q.Limit = limit
	}

	envelope, summary, err := h.service.List(r.Context(), q)
	if err != nil {
		h.logger.Error("list funding", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"data":       envelope.Data,
		"pagination": envelope.Pagination,
		"summary":    summary,
	})
}
