package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/good-yellow-bee/anfrage/internal/api"
	"github.com/good-yellow-bee/anfrage/internal/metrics"
	"github.com/good-yellow-bee/anfrage/internal/relay"
	"github.com/good-yellow-bee/anfrage/internal/storage"
	"github.com/good-yellow-bee/anfrage/pkg/config"
)

var (
	configFile string
	httpAddr   string
	envFile    string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "anfrage-server",
	Short: "Anfrage Server - project request gateway",
	Long: `Anfrage Server accepts project requests from the website forms,
stores them, forwards them to the notification relay and serves the
admin viewer and the local dashboard.`,
	RunE: runServer,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("anfrage-server %s\n", config.Version)
		fmt.Printf("  commit: %s\n", config.Commit)
		fmt.Printf("  built:  %s\n", config.BuildTime)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file path (optional)")
	rootCmd.PersistentFlags().StringVarP(&httpAddr, "address", "a", "", "HTTP listen address")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before the environment is read")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runServer(cmd *cobra.Command, args []string) error {
	config.LoadDotEnv(envFile)

	var (
		cfg *Config
		err error
	)
	if configFile != "" {
		cfg, err = LoadConfig(configFile)
	} else {
		cfg, err = DefaultConfig()
	}
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if httpAddr != "" {
		cfg.Server.HTTPAddress = httpAddr
	}
	cfg.Verbose = verbose

	if cfg.Store.Driver == storage.DriverSQLite {
		if err := os.MkdirAll(filepath.Dir(cfg.Store.SQLitePath), 0750); err != nil {
			return fmt.Errorf("create data directory: %w", err)
		}
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Store.LocalPath), 0750); err != nil {
		return fmt.Errorf("create local store directory: %w", err)
	}

	store, err := storage.New(cfg.Store.Driver, cfg.DSN())
	if err != nil {
		return err
	}
	if err := store.Open(); err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer store.Close()

	if err := store.Migrate(); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}
	log.Printf("%s store ready", cfg.Store.Driver)

	local := storage.NewLocalStore(cfg.Store.LocalPath)

	notifyTimeout, _ := cfg.NotifyTimeout()
	window, _ := cfg.RateLimitWindow()

	opts := api.Options{}

	if cfg.Redis.URL != "" {
		redisOpts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			return fmt.Errorf("parse REDIS_URL: %w", err)
		}
		rdb := redis.NewClient(redisOpts)
		defer rdb.Close()
		opts.Redis = rdb
		log.Printf("rate limits shared via redis at %s", redisOpts.Addr)
	}

	// Serve the relay in-process when an email provider is configured here.
	if cfg.Email.HasProvider() {
		service, sender, err := relay.NewServiceFromConfig(cfg.Email)
		if err != nil {
			return fmt.Errorf("create relay: %w", err)
		}
		if sender != nil {
			defer sender.Close()
		}
		opts.Relay = relay.NewHandler(service, cfg.Notify.ServiceKey)
		log.Printf("relay mounted at %s", api.RelayPath)
	}

	relayClient := relay.NewClient(relay.ClientConfig{
		URL:        cfg.Notify.FunctionURL,
		ServiceKey: cfg.Notify.ServiceKey,
		Timeout:    notifyTimeout,
	})
	if !relayClient.Configured() {
		log.Printf("warning: NOTIFY_FUNCTION_URL or NOTIFY_SERVICE_KEY missing, notifications are skipped")
	}
	opts.Notifier = relayClient

	apiCfg := &api.Config{
		Address:          cfg.Server.HTTPAddress,
		Backend:          cfg.Store.Driver,
		HTTPTLSEnabled:   cfg.Server.HTTPTLS.Enabled,
		HTTPTLSCertFile:  cfg.Server.HTTPTLS.CertFile,
		HTTPTLSKeyFile:   cfg.Server.HTTPTLS.KeyFile,
		RateLimit:        cfg.RateLimit.PerWindow,
		RateLimitWindow:  window,
		TelemetryLimit:   cfg.RateLimit.TelemetryLimit,
		NotifyTimeout:    notifyTimeout,
		AdminToken:       cfg.Admin.Token,
		PasswordHash:     cfg.Admin.PasswordHash,
		CSRFKey:          cfg.Admin.CSRFKey,
		UseSecureCookies: cfg.Admin.SecureCookies,
		Verbose:          cfg.Verbose,
	}
	if cfg.Admin.Token == "" {
		log.Printf("warning: ADMIN_DASHBOARD_TOKEN not set, /admin is disabled")
	}

	srv, err := api.New(apiCfg, store, local, opts)
	if err != nil {
		return fmt.Errorf("create server: %w", err)
	}

	metrics.SetBuildInfo(config.Version, config.Commit, config.BuildTime)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Printf("starting anfrage-server %s", config.Version)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Run(gctx)
	})

	if cfg.Metrics.Enabled {
		metricsSrv := metrics.NewServer(cfg.Metrics.Address)
		g.Go(func() error {
			return metricsSrv.Run(gctx)
		})
	}

	if err := g.Wait(); err != nil {
		return fmt.Errorf("run server: %w", err)
	}

	log.Printf("server stopped")
	return nil
}
