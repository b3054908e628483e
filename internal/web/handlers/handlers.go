// Package handlers serves the admin list and the dashboard pages.
package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/good-yellow-bee/anfrage/internal/models"
	"github.com/good-yellow-bee/anfrage/internal/storage"
	"github.com/good-yellow-bee/anfrage/internal/web/session"
)

// Paths the handlers redirect to.
const (
	LoginPath     = "/dashboard/login"
	DashboardPath = "/dashboard"
)

// SessionCookie names the dashboard session cookie.
const SessionCookie = "session_id"

// LocalReader reads the dashboard's local store.
type LocalReader interface {
	Snapshot() ([]models.LocalRequest, []models.PageView)
}

// Config holds the shared secrets of the admin surfaces. Empty values
// disable the corresponding page.
type Config struct {
	AdminToken   string // GET /admin?token=
	PasswordHash string // bcrypt hash for /dashboard/login
	Backend      string // storage driver name for metrics
}

type Handler struct {
	requests storage.RequestRepository
	local    LocalReader
	sessions *session.Store
	config   Config
	now      func() time.Time
}

func NewHandler(requests storage.RequestRepository, local LocalReader, sessions *session.Store, config Config) *Handler {
	if sessions == nil {
		sessions = session.NewStore(session.DefaultTTL)
	}
	if config.Backend == "" {
		config.Backend = storage.DriverSQLite
	}
	return &Handler{
		requests: requests,
		local:    local,
		sessions: sessions,
		config:   config,
		now:      time.Now,
	}
}

// Helper to get session from context
type contextKey string

const SessionContextKey contextKey = "session"

func GetSession(r *http.Request) *session.Session {
	if s, ok := r.Context().Value(SessionContextKey).(*session.Session); ok {
		return s
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("json encode error: %v", err)
	}
}

func setHTML(w http.ResponseWriter, status int) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
}
