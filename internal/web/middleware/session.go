// Package middleware guards the dashboard routes.
package middleware

import (
	"context"
	"net/http"

	"github.com/good-yellow-bee/anfrage/internal/web/handlers"
	"github.com/good-yellow-bee/anfrage/internal/web/session"
)

// RequireSession redirects to the login page unless the request carries a
// live session cookie.
func RequireSession(store *session.Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(handlers.SessionCookie)
			if err != nil {
				http.Redirect(w, r, handlers.LoginPath, http.StatusFound)
				return
			}

			sess, ok := store.Get(cookie.Value)
			if !ok {
				// Clear invalid cookie
				http.SetCookie(w, &http.Cookie{
					Name:   handlers.SessionCookie,
					Value:  "",
					Path:   handlers.DashboardPath,
					MaxAge: -1,
				})
				http.Redirect(w, r, handlers.LoginPath, http.StatusFound)
				return
			}

			ctx := context.WithValue(r.Context(), handlers.SessionContextKey, sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
