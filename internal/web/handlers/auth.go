package handlers

import (
	"log"
	"net/http"
	"strings"

	"github.com/gorilla/csrf"
	"golang.org/x/crypto/bcrypt"

	"github.com/good-yellow-bee/anfrage/internal/api/middleware"
	"github.com/good-yellow-bee/anfrage/internal/metrics"
	"github.com/good-yellow-bee/anfrage/internal/web/templates/pages"
)

// Login warnings.
const (
	MsgPasswordRequired = "Bitte Passwort eingeben."
	MsgWrongPassword    = "Falsches Passwort."
	MsgLoginDisabled    = "Dashboard nicht konfiguriert."
	MsgSessionFailed    = "Anmeldung fehlgeschlagen."
)

// The dashboard gate is a convenience lock for a single operator, not a
// security boundary. Anyone holding the shared password gets full read
// access; there are no accounts, roles or audit trail.

func (h *Handler) ShowLogin(w http.ResponseWriter, r *http.Request) {
	if h.currentSession(r) {
		http.Redirect(w, r, DashboardPath, http.StatusFound)
		return
	}
	renderLogin(w, r, http.StatusOK, "")
}

func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	if h.config.PasswordHash == "" {
		renderLogin(w, r, http.StatusServiceUnavailable, MsgLoginDisabled)
		return
	}

	if err := r.ParseForm(); err != nil {
		renderLogin(w, r, http.StatusBadRequest, MsgPasswordRequired)
		return
	}

	password := strings.TrimSpace(r.FormValue("password"))
	if password == "" {
		renderLogin(w, r, http.StatusBadRequest, MsgPasswordRequired)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(h.config.PasswordHash), []byte(password)); err != nil {
		metrics.AuthAttemptsTotal.WithLabelValues("dashboard", "failure").Inc()
		renderLogin(w, r, http.StatusUnauthorized, MsgWrongPassword)
		return
	}
	metrics.AuthAttemptsTotal.WithLabelValues("dashboard", "success").Inc()

	// Invalidate any existing session to prevent session fixation
	if cookie, err := r.Cookie(SessionCookie); err == nil {
		h.sessions.Delete(cookie.Value)
	}

	sess, err := h.sessions.Create()
	if err != nil {
		log.Printf("dashboard: create session: %v", err)
		renderLogin(w, r, http.StatusInternalServerError, MsgSessionFailed)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    sess.ID,
		Path:     DashboardPath,
		HttpOnly: true,
		Secure:   middleware.IsRequestSecure(r),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(h.sessions.TTL().Seconds()),
	})

	http.Redirect(w, r, DashboardPath, http.StatusFound)
}

func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(SessionCookie); err == nil {
		h.sessions.Delete(cookie.Value)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     DashboardPath,
		HttpOnly: true,
		MaxAge:   -1,
	})

	http.Redirect(w, r, LoginPath, http.StatusFound)
}

func (h *Handler) currentSession(r *http.Request) bool {
	cookie, err := r.Cookie(SessionCookie)
	if err != nil {
		return false
	}
	_, ok := h.sessions.Get(cookie.Value)
	return ok
}

func renderLogin(w http.ResponseWriter, r *http.Request, status int, warning string) {
	setHTML(w, status)
	pages.Login(csrf.Token(r), warning).Render(r.Context(), w)
}
