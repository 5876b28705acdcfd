package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"sluice-hq/sluice/pkg/config"
	"sluice-hq/sluice/pkg/gateway"
	"sluice-hq/sluice/pkg/limits"
	"sluice-hq/sluice/pkg/telemetry/logging"
)

var runFlags struct {
	listenAddress string
	logLevel      string
	dryRun        bool
	watch         bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the Sluice gateway",
	Long: `Start the Sluice gateway with the specified configuration.

The gateway listens on the configured address and enforces per-key token
bucket rate limits on incoming requests.

Examples:
  # Start with default config
  sluice run

  # Start with custom config
  sluice run --config /etc/sluice/config.yaml

  # Override listen address
  sluice run --listen 0.0.0.0:8080

  # Reload profiles when the config file changes
  sluice run --watch

  # Validate config without starting the gateway
  sluice run --dry-run`,
	RunE: runGateway,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runFlags.listenAddress, "listen", "l", "", "override listen address")
	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate config without starting the gateway")
	runCmd.Flags().BoolVar(&runFlags.watch, "watch", false, "reload limit profiles when the config file changes")
}

func runGateway(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Apply flag overrides
	if runFlags.listenAddress != "" {
		cfg.Server.ListenAddress = runFlags.listenAddress
	}
	if runFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = runFlags.logLevel
	}
	if verbose {
		cfg.Telemetry.Logging.Level = "debug"
	}

	if _, err := logging.Setup(cfg.Telemetry.Logging, os.Stdout); err != nil {
		return fmt.Errorf("failed to configure logging: %w", err)
	}

	if runFlags.dryRun {
		fmt.Println("✓ Configuration valid")
		return nil
	}

	fmt.Printf("Sluice v%s\n", Version)
	fmt.Printf("Loading configuration from: %s\n", cfgFile)
	fmt.Println("✓ Configuration loaded")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Metrics registry; nil when disabled so the endpoint is not served.
	var registry *prometheus.Registry
	var metrics *limits.Metrics
	if !cfg.Telemetry.Metrics.Disabled {
		registry = prometheus.NewRegistry()
		metrics = limits.NewMetrics(registry)
	}

	manager := limits.NewManager(limits.Config{
		Profiles: cfg.Limits.ProfileSet(),
		Metrics:  metrics,
	})
	fmt.Printf("✓ Limit profiles loaded (%d profiles)\n", len(cfg.Limits.Profiles))

	// Idle bucket sweeping
	if cfg.Limits.Sweep.Schedule != "" {
		janitor := limits.NewJanitor(manager, cfg.Limits.Sweep.Schedule, cfg.Limits.Sweep.IdleTTL)
		if err := janitor.Start(ctx); err != nil {
			return fmt.Errorf("failed to start sweep scheduler: %w", err)
		}
		defer janitor.Stop()
		fmt.Printf("✓ Sweep scheduler started (%s)\n", cfg.Limits.Sweep.Schedule)
	}

	// Live profile reload
	if runFlags.watch {
		watcher := config.NewWatcher(cfgFile, 0)
		go func() {
			if err := watcher.Watch(ctx, func(newCfg *config.Config) {
				manager.ReloadProfiles(newCfg.Limits.ProfileSet())
				slog.Info("limit profiles reloaded", "profiles", len(newCfg.Limits.Profiles))
			}); err != nil {
				slog.Error("config watcher failed", "error", err)
			}
		}()
		fmt.Println("✓ Config watcher started")
	}

	srv := gateway.NewServer(cfg, manager, registry)

	fmt.Println()
	fmt.Printf("✓ Gateway listening on %s\n", cfg.Server.ListenAddress)
	fmt.Printf("✓ Health endpoint: http://%s/healthz\n", cfg.Server.ListenAddress)
	if registry != nil {
		fmt.Printf("✓ Metrics endpoint: http://%s%s\n", cfg.Server.ListenAddress, cfg.Telemetry.Metrics.Path)
	}
	fmt.Println("\nPress Ctrl+C to stop")

	// Blocks until a signal, context cancellation, or server error.
	return srv.Start(ctx)
}
