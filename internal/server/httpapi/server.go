// Package httpapi exposes the admin and public REST surface over chi.
package httpapi

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/and161185/numfetch/internal/limiter"
	"github.com/and161185/numfetch/internal/repository"
	"github.com/and161185/numfetch/internal/service"
	"github.com/and161185/numfetch/internal/upstream"
)

// Server wires services into HTTP handlers.
type Server struct {
	log      *zap.Logger
	auth     service.AuthService
	ranges   service.RangeService
	profiles service.ProfileService
	cycling  service.CyclingService
	gateway  upstream.Gateway
	cfg      repository.ConfigRepository
	lim      limiter.Limiter
	baseURL  string
	ping     func(context.Context) error
}

// New constructs the HTTP server with injected services.
func New(
	log *zap.Logger,
	auth service.AuthService,
	ranges service.RangeService,
	profiles service.ProfileService,
	cycling service.CyclingService,
	gateway upstream.Gateway,
	cfg repository.ConfigRepository,
	lim limiter.Limiter,
	baseURL string,
	ping func(context.Context) error,
) *Server {
	return &Server{
		log:      log,
		auth:     auth,
		ranges:   ranges,
		profiles: profiles,
		cycling:  cycling,
		gateway:  gateway,
		cfg:      cfg,
		lim:      lim,
		baseURL:  baseURL,
		ping:     ping,
	}
}

// Routes assembles the router: public endpoints are rate limited, admin
// endpoints sit behind the JWT middleware.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(Recover(s.log))
	r.Use(RequestLogger(s.log))

	r.Get("/", s.handleRoot)

	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(RateLimit(s.lim, s.log))
			r.Get("/health", s.handleHealth)
			r.Get("/fetch-number", s.handleFetchNumber)
			r.Get("/fetch-number/range/{range}", s.handleFetchNumberRange)
		})

		r.Route("/admin", func(r chi.Router) {
			r.With(RateLimit(s.lim, s.log)).Post("/login", s.handleLogin)

			r.Group(func(r chi.Router) {
				r.Use(RequireAuth(s.auth))
				r.Get("/dashboard", s.handleDashboard)

				r.Get("/ranges", s.handleListRanges)
				r.Post("/ranges", s.handleCreateRange)
				r.Put("/ranges/{id}", s.handleUpdateRange)
				r.Delete("/ranges/{id}", s.handleDeleteRange)

				r.Get("/balance", s.handleBalance)
				r.Get("/test-numbers", s.handleTestNumbers)

				r.Get("/timer/status", s.handleTimerStatus)
				r.Post("/timer/start", s.handleTimerStart)
				r.Post("/timer/stop", s.handleTimerStop)
				r.Post("/timer/cycle", s.handleTimerCycle)

				r.Post("/pause", s.handlePause)

				r.Get("/profiles", s.handleListProfiles)
				r.Post("/profiles", s.handleCreateProfile)
				r.Post("/profiles/{id}/activate", s.handleActivateProfile)
				r.Post("/profiles/{id}/login", s.handleLoginProfile)
				r.Delete("/profiles/{id}", s.handleDeleteProfile)
			})
		})
	})

	return r
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Number Fetcher API",
		"status":  "running",
	})
}
