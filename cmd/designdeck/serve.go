package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jmorrow/designdeck/internal/config"
	"github.com/jmorrow/designdeck/internal/db"
	"github.com/jmorrow/designdeck/internal/metrics"
	"github.com/jmorrow/designdeck/internal/observability"
	"github.com/jmorrow/designdeck/internal/server"
)

var (
	serveConfigPath string
	serveListenAddr string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long: `Start an HTTP server that exposes REST endpoints for parsing responses,
listing artifacts and version history, approving artifact cascades, and
streaming live previews.

Configuration is read from a JSON file given with --config, overlaid with
environment variables (DATABASE_URL, JWT_SECRET, DESIGNDECK_*). Without
DATABASE_URL the server runs on an in-memory store.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveConfigPath, "config", "", "Path to config.json file (environment variables override file values)")
	serveCmd.Flags().StringVar(&serveListenAddr, "listen", "", "HTTP listen address (overrides config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	var cfg config.Config
	if serveConfigPath != "" {
		loaded, err := config.LoadConfig(serveConfigPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		cfg = *loaded
	}

	cfg.ApplyEnv()
	if cmd.Flags().Changed("listen") {
		cfg.ListenAddr = serveListenAddr
	}
	cfg = cfg.MergeWithDefaults(config.DefaultConfig())
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := observability.NewLogger(cfg.LogLevel, cfg.LogJSON)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck // stderr sync failure at exit is not actionable

	ctx := context.Background()

	var store db.Store
	if cfg.DatabaseURL != "" {
		pg, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		store = pg
		logger.Info("connected to postgres store")
	} else {
		store = db.NewMemory()
		logger.Warn("DATABASE_URL not set; artifacts will not survive a restart")
	}

	collector := metrics.NewCollector(cfg.MetricsNamespace, nil, logger)

	srv := server.New(server.Config{
		ListenAddr:      cfg.ListenAddr,
		JWTSecret:       cfg.JWTSecret,
		DefaultApprover: cfg.DefaultApprover,
	}, store, collector, logger)

	return srv.Start()
}
