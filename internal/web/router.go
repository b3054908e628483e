package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/csrf"

	apimw "github.com/good-yellow-bee/anfrage/internal/api/middleware"
	"github.com/good-yellow-bee/anfrage/internal/web/handlers"
	"github.com/good-yellow-bee/anfrage/internal/web/middleware"
)

// Routes returns the admin routes. Mount it at the root.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/admin", s.handler.ShowAdmin)

	r.Route(handlers.DashboardPath, func(r chi.Router) {
		r.Use(markPlaintext)
		r.Use(csrf.Protect(
			s.csrfKey,
			csrf.Secure(s.useSecureCookies),
			csrf.Path(handlers.DashboardPath),
			csrf.SameSite(csrf.SameSiteLaxMode),
		))

		// Public routes
		r.Get("/login", s.handler.ShowLogin)
		r.With(apimw.RateLimit(s.loginLimiter, "login")).Post("/login", s.handler.HandleLogin)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireSession(s.sessions))

			r.Get("/", s.handler.ShowDashboard)
			r.Get("/export", s.handler.Export)
			r.Post("/logout", s.handler.HandleLogout)
		})
	})

	return r
}

// markPlaintext flags non-TLS requests for the CSRF origin check.
func markPlaintext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !apimw.IsRequestSecure(r) {
			r = csrf.PlaintextHTTPRequest(r)
		}
		next.ServeHTTP(w, r)
	})
}
