package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/TRINEXTA/LeadSynch-sub006/internal/service/campaign"
)

// RouterOptions configures NewRouter.
type RouterOptions struct {
	CORSOrigins []string
	// Health is optional; nil registers only the liveness probe.
	Health *HealthChecker
}

// NewRouter builds the HTTP surface: health probes, Prometheus metrics and
// the tenant-scoped campaign API under /api.
func NewRouter(svc *campaign.Service, opts RouterOptions) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	origins := opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", TenantHeader},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         300,
	}))

	if opts.Health != nil {
		r.Get("/health", opts.Health.HandleHealth)
		r.Get("/health/ready", opts.Health.HandleReadiness)
	}
	r.Get("/health/live", handleLiveness)
	r.Handle("/metrics", promhttp.Handler())

	h := &CampaignHandler{svc: svc}
	r.Route("/api", func(r chi.Router) {
		r.Use(requireTenant)
		r.Route("/campaigns", func(r chi.Router) {
			r.Get("/", h.List)
			r.Post("/", h.Create)
			r.Route("/{campaignID}", func(r chi.Router) {
				r.Get("/", h.Get)
				r.Delete("/", h.Delete)
				r.Post("/activate", h.Activate)
				r.Post("/close", h.Close)

				r.Get("/users", h.ListUsers)
				r.Post("/users", h.AddUser)
				r.Delete("/users/{userID}", h.RemoveUser)
				r.Get("/users/{userID}/leads", h.OwnedLeads)
				r.Post("/transfer", h.Transfer)

				r.Get("/verify", h.Verify)
				r.Post("/reconcile", h.Reconcile)
			})
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not_found", "route not found")
	})
	return r
}
