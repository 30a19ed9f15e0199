/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:  Unique ID per request for tracing
  2. Logger:     zerolog access log
  3. Recoverer:  Panic recovery (500 instead of crash)
  4. Metrics:    Prometheus request count and latency
  5. CORS:       Cross-origin requests for frontend

ROUTE GROUPS:
  /healthz, /metrics   Public
  /scenarios/*         Demo data (dev only, not mounted otherwise)
  everything else      Behind ProfileMiddleware

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/warp/jobs-ledger/metrics"
)

// RouterOptions controls environment-dependent routes.
type RouterOptions struct {
	AllowedOrigins []string
	EnableDemo     bool
}

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, opts RouterOptions) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(RequestLogger(h.Log))
	r.Use(middleware.Recoverer)
	r.Use(metrics.Instrument)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", ProfileHeader},
		AllowCredentials: true,
	}))

	r.Get("/healthz", h.Health)
	r.Handle("/metrics", metrics.Handler())

	if opts.EnableDemo {
		r.Route("/scenarios", func(r chi.Router) {
			r.Get("/", h.ListScenarios)
			r.Get("/current", h.GetCurrentScenario)
			r.Post("/load", h.LoadScenario)
		})
	}

	r.Group(func(r chi.Router) {
		r.Use(h.ProfileMiddleware)

		r.Get("/me", h.GetProfile)

		r.Route("/contracts", func(r chi.Router) {
			r.Get("/", h.ListContracts)
			r.Get("/{id}", h.GetContract)
		})

		r.Route("/jobs", func(r chi.Router) {
			r.Get("/unpaid", h.ListUnpaidJobs)
			r.Post("/{job_id}/pay", h.PayForJob)
		})

		r.Post("/balances/deposit/{userId}", h.Deposit)
		r.Get("/movements", h.ListMovements)
	})

	return r
}
