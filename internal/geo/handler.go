package geo

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/bloodlink/bloodlink/internal/platform/httpx"
)

// Handler wires the public reference-data endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers the public reference-data routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/blood-groups", h.BloodGroups)
	r.Get("/districts", h.Districts)
	// The route keeps the spelling the clients already call.
	r.Get("/upzillas/{districtId}", h.Upazilas)
	r.Get("/donors/search", h.SearchDonors)
}

// BloodGroups serves the fixed ABO/Rh set.
func (h *Handler) BloodGroups(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, h.service.BloodGroups())
}

// Districts serves every district.
func (h *Handler) Districts(w http.ResponseWriter, r *http.Request) {
	districts, err := h.service.Districts(r.Context())
	if err != nil {
		h.logger.Error("list districts", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, districts)
}

// Upazilas serves the upazilas of one district.
func (h *Handler) Upazilas(w http.ResponseWriter, r *http.Request) {
	districtID, err := strconv.ParseInt(chi.URLParam(r, "districtId"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "districtId must be numeric")
		return
	}

	upazilas, err := h.service.Upazilas(r.Context(), districtID)
	if err != nil {
		h.logger.Error("list upazilas", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, upazilas)
}

// SearchDonors serves the public donor search.
func (h *Handler) SearchDonors(w http.ResponseWriter, r *http.Request) {
	q := DonorQuery{
		BloodGroup: strings.TrimSpace(r.URL.Query().Get("bloodGroup")),
		Upazila:    strings.TrimSpace(r.URL.Query().Get("upazila")),
	}
	if id, err := strconv.ParseInt(r.URL.Query().Get("districtId"), 10, 64); err == nil && id > 0 {
		q.DistrictID = id
	}

	donors, err := h.service.SearchDonors(r.Context(), q)
	if err != nil {
		h.logger.Error("search donors", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, donors)
}
