// Package web serves the admin viewer: the token-gated request list and the
// password-gated dashboard over the local store.
package web

import (
	"crypto/rand"
	"log"

	"github.com/good-yellow-bee/anfrage/internal/ratelimit"
	"github.com/good-yellow-bee/anfrage/internal/storage"
	"github.com/good-yellow-bee/anfrage/internal/web/handlers"
	"github.com/good-yellow-bee/anfrage/internal/web/session"
)

// Config configures the admin viewer.
type Config struct {
	handlers.Config
	CSRFKey          string            // 32 bytes; a random key is used when empty
	UseSecureCookies bool              // force the Secure flag on the CSRF cookie
	LoginLimiter     ratelimit.Limiter // default: in-memory, 5 per minute
}

type Server struct {
	handler          *handlers.Handler
	sessions         *session.Store
	csrfKey          []byte
	useSecureCookies bool
	loginLimiter     ratelimit.Limiter
}

// NewServer creates the admin viewer. sessions may be nil.
func NewServer(requests storage.RequestRepository, local handlers.LocalReader, sessions *session.Store, cfg Config) *Server {
	if sessions == nil {
		sessions = session.NewStore(session.DefaultTTL)
	}
	if cfg.LoginLimiter == nil {
		cfg.LoginLimiter = ratelimit.NewMemory(ratelimit.DefaultLimit, ratelimit.DefaultWindow)
	}
	return &Server{
		handler:          handlers.NewHandler(requests, local, sessions, cfg.Config),
		sessions:         sessions,
		csrfKey:          csrfKey(cfg.CSRFKey),
		useSecureCookies: cfg.UseSecureCookies,
		loginLimiter:     cfg.LoginLimiter,
	}
}

func csrfKey(key string) []byte {
	if key != "" {
		return []byte(key)
	}
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		log.Printf("warning: failed to generate CSRF key: %v", err)
	}
	log.Printf("warning: CSRF_KEY not set, using a random key; dashboard forms break across restarts")
	return b
}

func (s *Server) Sessions() *session.Store {
	return s.sessions
}

func (s *Server) Handler() *handlers.Handler {
	return s.handler
}

func (s *Server) CSRFKey() []byte {
	return s.csrfKey
}

// Close stops the session sweep.
func (s *Server) Close() {
	s.sessions.Close()
}
