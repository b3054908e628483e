package handlers

import (
	"crypto/subtle"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/good-yellow-bee/anfrage/internal/metrics"
	"github.com/good-yellow-bee/anfrage/internal/models"
	"github.com/good-yellow-bee/anfrage/internal/web/templates/pages"
)

// AdminListLimit caps the admin list.
const AdminListLimit = 100

// JSON messages of the admin list.
const (
	MsgAdminNotConfigured = "Admin nicht konfiguriert"
	MsgUnauthorized       = "Nicht autorisiert"
)

// AdminListResponse is the JSON form of the admin list.
type AdminListResponse struct {
	Requests []*models.ProjectRequest `json:"requests"`
	Error    string                   `json:"error,omitempty"`
}

// ShowAdmin handles GET /admin. The token comes from ?token= or a bearer
// header. Clients that accept application/json get the list as JSON.
func (h *Handler) ShowAdmin(w http.ResponseWriter, r *http.Request) {
	wantsJSON := strings.Contains(r.Header.Get("Accept"), "application/json")

	if h.config.AdminToken == "" {
		if wantsJSON {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"message": MsgAdminNotConfigured})
			return
		}
		setHTML(w, http.StatusServiceUnavailable)
		pages.AdminNotConfigured().Render(r.Context(), w)
		return
	}

	if !h.validAdminToken(adminToken(r)) {
		metrics.AuthAttemptsTotal.WithLabelValues("admin", "failure").Inc()
		if wantsJSON {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": MsgUnauthorized})
			return
		}
		setHTML(w, http.StatusUnauthorized)
		pages.AdminUnauthorized().Render(r.Context(), w)
		return
	}
	metrics.AuthAttemptsTotal.WithLabelValues("admin", "success").Inc()

	start := time.Now()
	rows, err := h.requests.ListRecent(r.Context(), AdminListLimit)
	metrics.StorageQueryDuration.WithLabelValues("list", h.config.Backend).Observe(time.Since(start).Seconds())

	var loadErr string
	if err != nil {
		metrics.StorageErrors.WithLabelValues("list", h.config.Backend).Inc()
		log.Printf("admin: list requests: %v", err)
		loadErr = err.Error()
		rows = nil
	}

	if wantsJSON {
		if rows == nil {
			rows = []*models.ProjectRequest{}
		}
		writeJSON(w, http.StatusOK, AdminListResponse{Requests: rows, Error: loadErr})
		return
	}
	setHTML(w, http.StatusOK)
	pages.Admin(rows, AdminListLimit, loadErr).Render(r.Context(), w)
}

func (h *Handler) validAdminToken(token string) bool {
	if token == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(h.config.AdminToken)) == 1
}

func adminToken(r *http.Request) string {
	if token := r.URL.Query().Get("token"); token != "" {
		return token
	}
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return ""
}
