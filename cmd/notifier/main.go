package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/spf13/cobra"

	"github.com/good-yellow-bee/anfrage/internal/api"
	"github.com/good-yellow-bee/anfrage/internal/api/health"
	"github.com/good-yellow-bee/anfrage/internal/api/middleware"
	"github.com/good-yellow-bee/anfrage/internal/metrics"
	"github.com/good-yellow-bee/anfrage/internal/relay"
	"github.com/good-yellow-bee/anfrage/pkg/config"
)

var (
	envFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "anfrage-notifier",
	Short: "Anfrage Notifier - email relay for project requests",
	Long: `Anfrage Notifier receives request summaries from the gateway and
sends the operator notification and the applicant acknowledgment.`,
	RunE: runNotifier,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("anfrage-notifier %s\n", config.Version)
		fmt.Printf("  commit: %s\n", config.Commit)
		fmt.Printf("  built:  %s\n", config.BuildTime)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before the environment is read")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newRouter serves the relay next to the health probes and /metrics.
func newRouter(relayHandler http.Handler, verbose bool) *chi.Mux {
	healthHandler := health.NewHandler()

	r := chi.NewRouter()
	r.Use(middleware.RequestLogger(verbose))
	r.Use(middleware.Recoverer)
	r.Use(middleware.PrometheusMiddleware)

	r.Handle(api.RelayPath, relayHandler)
	r.Get("/health", healthHandler.Health)
	r.Get("/health/live", healthHandler.Live)
	r.Get("/health/ready", healthHandler.Ready)
	r.Handle("/metrics", metrics.Handler())
	return r
}

func runNotifier(cmd *cobra.Command, args []string) error {
	config.LoadDotEnv(envFile)

	cfg, err := LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	cfg.Verbose = cfg.Verbose || verbose

	service, sender, err := relay.NewServiceFromConfig(cfg.Email)
	if err != nil {
		return fmt.Errorf("create relay: %w", err)
	}
	if sender != nil {
		defer sender.Close()
		log.Printf("email provider: %s", sender.Name())
	} else {
		log.Printf("warning: no email provider configured (RESEND_API_KEY or SMTP_HOST)")
	}

	if cfg.ServiceKey == "" {
		log.Printf("warning: NOTIFY_SERVICE_KEY not set, relay accepts unauthenticated calls")
	}

	metrics.SetBuildInfo(config.Version, config.Commit, config.BuildTime)

	srv := &http.Server{
		Addr:              cfg.HTTPAddress,
		Handler:           newRouter(relay.NewHandler(service, cfg.ServiceKey), cfg.Verbose),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Printf("starting anfrage-notifier %s on %s", config.Version, cfg.HTTPAddress)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("run notifier: %w", err)
		}
	case <-ctx.Done():
		log.Printf("shutting down notifier")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
	}

	log.Printf("notifier stopped")
	return nil
}
