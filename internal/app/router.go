package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/bloodlink/bloodlink/internal/auth"
	"github.com/bloodlink/bloodlink/internal/donations"
	"github.com/bloodlink/bloodlink/internal/funding"
	"github.com/bloodlink/bloodlink/internal/geo"
	"github.com/bloodlink/bloodlink/internal/guard"
	"github.com/bloodlink/bloodlink/internal/observability"
	"github.com/bloodlink/bloodlink/internal/stats"
	"github.com/bloodlink/bloodlink/internal/users"
	"github.com/bloodlink/bloodlink/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger            *slog.Logger
	Config            *Config
	Authenticator     *auth.Authenticator
	Guard             guard.Middleware
	AuthHandler       *auth.Handler
	NavigationHandler *guard.Handler
	DonationsHandler  *donations.Handler
	UsersHandler      *users.Handler
	FundingHandler    *funding.Handler
	GeoHandler        *geo.Handler
	StatsHandler      *stats.Handler
	JobHandler        *jobs.Handler
	Metrics           *observability.Metrics
}

// NewRouter constructs the chi.Router with BloodLink defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}
	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}

	r.Route("/auth", params.AuthHandler.MountRoutes)

	// Public reference data and browse views.
	params.GeoHandler.MountRoutes(r)
	r.Get("/donations", params.DonationsHandler.ListPublic)
	r.Get("/donations/{id}", params.DonationsHandler.GetDetail)
	r.Get("/funding", params.FundingHandler.List)

	// Everything below requires a valid bearer token.
	r.Group(func(r chi.Router) {
		r.Use(params.Authenticator.RequireToken)

		r.Get("/navigation", params.NavigationHandler.Navigation)
		r.Get("/users/role/{email}", params.UsersHandler.RoleLookup)
		params.UsersHandler.MountProfileRoutes(r)

		r.Post("/donations", params.DonationsHandler.Create)
		r.Put("/donations/{id}", params.DonationsHandler.Update)
		r.Delete("/donations/{id}", params.DonationsHandler.Delete)
		r.Get("/donations/user/{email}", params.DonationsHandler.ListMine)
		r.Get("/donations/dashboard/{email}", params.DonationsHandler.Dashboard)

		r.Post("/payment-checkout-session", params.FundingHandler.Checkout)
		r.Post("/payment-success", params.FundingHandler.Confirm)

		// Volunteers and admins manage the request pipeline.
		r.Group(func(r chi.Router) {
			r.Use(params.Guard.RequireVolunteerOrAdmin)
			r.Get("/all-donations", params.DonationsHandler.ListAll)
			r.Patch("/donations/{id}/status", params.DonationsHandler.Transition)
		})

		// Admin-only surface.
		r.Group(func(r chi.Router) {
			r.Use(params.Guard.RequireAdmin)
			params.UsersHandler.MountAdminRoutes(r)
			r.Get("/dashboard/stats", params.StatsHandler.Overview)
		})
	})

	return r
}
