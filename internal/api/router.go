package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/good-yellow-bee/anfrage/internal/api/middleware"
)

// RelayPath is where the notification relay is mounted.
const RelayPath = "/functions/notify-project"

// setupRouter creates and configures the chi router with all routes.
func (s *Server) setupRouter() *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestLogger(s.config.Verbose))
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.Recoverer)
	r.Use(middleware.PrometheusMiddleware)

	r.Route("/api", func(r chi.Router) {
		r.Post("/project-request", s.intake.SubmitFull)
		r.Post("/project-request-lite", s.intake.SubmitLite)
		r.With(middleware.RateLimit(s.limiters[ScopeTelemetry], ScopeTelemetry)).
			Post("/telemetry/view", s.telemetry.RecordView)

		r.NotFound(func(w http.ResponseWriter, r *http.Request) {
			Message(w, http.StatusNotFound, MsgNotFound)
		})
	})

	if s.options.Relay != nil {
		r.Handle(RelayPath, s.options.Relay)
	}

	// Health checks (public, no rate limit)
	r.Get("/health", s.healthHandler.Health)
	r.Get("/health/live", s.healthHandler.Live)
	r.Get("/health/ready", s.healthHandler.Ready)

	r.Mount("/", s.web.Routes())

	return r
}
