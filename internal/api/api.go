// Package api provides the HTTP server for the intake endpoints, telemetry,
// health probes and the admin viewer.
package api

import (
	"context"
	"crypto/tls"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/good-yellow-bee/anfrage/internal/api/health"
	"github.com/good-yellow-bee/anfrage/internal/api/telemetry"
	"github.com/good-yellow-bee/anfrage/internal/intake"
	"github.com/good-yellow-bee/anfrage/internal/metrics"
	"github.com/good-yellow-bee/anfrage/internal/ratelimit"
	"github.com/good-yellow-bee/anfrage/internal/storage"
	"github.com/good-yellow-bee/anfrage/internal/web"
	"github.com/good-yellow-bee/anfrage/internal/web/handlers"
)

// Rate limit scopes. Each scope has its own keyspace.
const (
	ScopeFull      = "full"
	ScopeLite      = "lite"
	ScopeTelemetry = "telemetry"
	ScopeLogin     = "login"
)

// Config contains HTTP server configuration.
type Config struct {
	Address          string
	Backend          string // storage driver name, for metrics
	HTTPTLSEnabled   bool
	HTTPTLSCertFile  string
	HTTPTLSKeyFile   string
	RateLimit        int           // submissions per client and window
	RateLimitWindow  time.Duration // fixed window length
	TelemetryLimit   int           // page views per client and window
	SweepInterval    time.Duration // how often in-memory limiters drop stale keys
	NotifyTimeout    time.Duration // bound on the awaited relay call
	AdminToken       string
	PasswordHash     string // bcrypt hash for the dashboard
	CSRFKey          string
	UseSecureCookies bool
	Verbose          bool
}

// SetDefaults applies default values for missing configuration.
func (c *Config) SetDefaults() {
	if c.Address == "" {
		c.Address = ":8080"
	}
	if c.Backend == "" {
		c.Backend = storage.DriverSQLite
	}
	if c.RateLimit == 0 {
		c.RateLimit = ratelimit.DefaultLimit
	}
	if c.RateLimitWindow == 0 {
		c.RateLimitWindow = ratelimit.DefaultWindow
	}
	if c.TelemetryLimit == 0 {
		c.TelemetryLimit = 60
	}
	if c.SweepInterval == 0 {
		c.SweepInterval = 5 * time.Minute
	}
	if c.NotifyTimeout == 0 {
		c.NotifyTimeout = 10 * time.Second
	}
}

// Options carries optional collaborators.
type Options struct {
	// Redis backs the rate limiters when set, so that every instance shares
	// one window per client.
	Redis redis.UniversalClient
	// Notifier forwards stored requests to the relay. Nil skips notification.
	Notifier intake.Notifier
	// Relay, when set, is mounted at /functions/notify-project.
	Relay http.Handler
}

// Server is the HTTP server.
type Server struct {
	config        *Config
	storage       storage.Storage
	local         *storage.LocalStore
	options       Options
	server        *http.Server
	healthHandler *health.Handler
	intake        *intake.Handler
	telemetry     *telemetry.Handler
	web           *web.Server
	limiters      map[string]ratelimit.Limiter
	memLimiters   map[string]*ratelimit.Memory
}

// New creates a new server.
func New(cfg *Config, store storage.Storage, local *storage.LocalStore, opts Options) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if store == nil {
		return nil, fmt.Errorf("storage is required")
	}
	if local == nil {
		return nil, fmt.Errorf("local store is required")
	}

	cfg.SetDefaults()

	s := &Server{
		config:        cfg,
		storage:       store,
		local:         local,
		options:       opts,
		healthHandler: health.NewHandler(),
		limiters:      make(map[string]ratelimit.Limiter),
		memLimiters:   make(map[string]*ratelimit.Memory),
	}

	s.healthHandler.RegisterChecker(health.NewStorageChecker("database", store))
	if opts.Redis != nil {
		s.healthHandler.RegisterChecker(health.NewRedisChecker(opts.Redis))
	}

	s.intake = intake.NewHandler(store.Requests(), local, opts.Notifier, intake.Config{
		FullLimiter:   s.limiter(ScopeFull, cfg.RateLimit),
		LiteLimiter:   s.limiter(ScopeLite, cfg.RateLimit),
		NotifyTimeout: cfg.NotifyTimeout,
		Backend:       cfg.Backend,
	})
	s.telemetry = telemetry.NewHandler(local)
	s.limiter(ScopeTelemetry, cfg.TelemetryLimit)
	s.web = web.NewServer(store.Requests(), local, nil, web.Config{
		Config: handlers.Config{
			AdminToken:   cfg.AdminToken,
			PasswordHash: cfg.PasswordHash,
			Backend:      cfg.Backend,
		},
		CSRFKey:          cfg.CSRFKey,
		UseSecureCookies: cfg.UseSecureCookies,
		LoginLimiter:     s.limiter(ScopeLogin, cfg.RateLimit),
	})

	router := s.setupRouter()

	s.server = &http.Server{
		Addr:              cfg.Address,
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	if cfg.HTTPTLSEnabled {
		s.server.TLSConfig = &tls.Config{
			MinVersion: tls.VersionTLS13,
		}
	}

	return s, nil
}

// limiter returns the limiter for scope, shared through Redis when
// configured.
func (s *Server) limiter(scope string, limit int) ratelimit.Limiter {
	var l ratelimit.Limiter
	if s.options.Redis != nil {
		l = ratelimit.NewRedis(s.options.Redis, scope, limit, s.config.RateLimitWindow)
	} else {
		m := ratelimit.NewMemory(limit, s.config.RateLimitWindow)
		s.memLimiters[scope] = m
		l = m
	}
	s.limiters[scope] = l
	return l
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Run starts the HTTP server and blocks until context is canceled.
func (s *Server) Run(ctx context.Context) error {
	errChan := make(chan error, 1)

	sweepCtx, stopSweep := context.WithCancel(ctx)
	defer stopSweep()
	go s.sweepLimiters(sweepCtx)

	go func() {
		log.Printf("HTTP server listening on %s", s.config.Address)
		var err error
		if s.config.HTTPTLSEnabled {
			err = s.server.ListenAndServeTLS(s.config.HTTPTLSCertFile, s.config.HTTPTLSKeyFile)
		} else {
			err = s.server.ListenAndServe()
		}
		if err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Printf("shutting down HTTP server...")
		s.web.Close()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.server.Shutdown(shutdownCtx)
	case err := <-errChan:
		s.web.Close()
		return err
	}
}

// sweepLimiters drops expired in-memory windows and reports the key count.
func (s *Server) sweepLimiters(ctx context.Context) {
	if len(s.memLimiters) == 0 {
		return
	}
	ticker := time.NewTicker(s.config.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweepOnce()
		}
	}
}

func (s *Server) sweepOnce() {
	for scope, m := range s.memLimiters {
		m.Sweep()
		metrics.RateLimitKeys.WithLabelValues(scope).Set(float64(m.Len()))
	}
}

// Address returns the configured listen address.
func (s *Server) Address() string {
	return s.config.Address
}

// RegisterHealthChecker adds a health checker to the server.
func (s *Server) RegisterHealthChecker(c health.Checker) {
	if s.healthHandler != nil {
		s.healthHandler.RegisterChecker(c)
	}
}
