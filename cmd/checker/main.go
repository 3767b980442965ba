// Command checker polls Doctolib for appointment availability and pushes
// Pushover notifications when a slot opens up before the limit date.
//
// Usage:
//
//	doctolib-checker run --config config.yaml
//	doctolib-checker check --dry-run
//	doctolib-checker config validate
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/goccy/go-json"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/albapepper/doctolib-checker/internal/api"
	"github.com/albapepper/doctolib-checker/internal/config"
	"github.com/albapepper/doctolib-checker/internal/notifications"
	"github.com/albapepper/doctolib-checker/internal/poller"
	"github.com/albapepper/doctolib-checker/internal/provider/doctolib"
)

var logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

func main() {
	// Load .env if present
	_ = godotenv.Load(".env")

	if err := rootCmd().Execute(); err != nil {
		logFailure(err)
		os.Exit(1)
	}
}

// rootCmd builds the CLI. Errors are returned, not printed; main logs them once.
func rootCmd() *cobra.Command {
	var configPath string
	root := &cobra.Command{
		Use:           "doctolib-checker",
		Short:         "Doctolib availability poller with Pushover notifications",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLoop(configPath)
		},
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "Path to config.yaml (default $CHECKER_CONFIG or ./config.yaml)")

	root.AddCommand(runCmd(&configPath))
	root.AddCommand(checkCmd(&configPath))
	root.AddCommand(configCmd(&configPath))
	return root
}

func logFailure(err error) {
	var cfgErr *config.ConfigError
	if errors.As(err, &cfgErr) {
		logger.Error("Invalid configuration", "field", cfgErr.Field, "error", cfgErr.Err)
		return
	}
	logger.Error("Command failed", "error", err)
}

// --------------------------------------------------------------------------
// run command
// --------------------------------------------------------------------------

func runCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Poll until interrupted (or once if run_in_loop is false)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLoop(*configPath)
		},
	}
}

func runLoop(configPath string) error {
	return runChecker(configPath, false, func(ctx context.Context, cfg *config.Config, p *poller.Poller) error {
		if cfg.StatusAddr == "" {
			p.Run(ctx)
			return nil
		}

		srv := &http.Server{
			Addr:         cfg.StatusAddr,
			Handler:      api.NewRouter(p.Status(), cfg),
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		}
		go func() {
			logger.Info("Starting status server", "addr", cfg.StatusAddr)
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("Status server failed", "error", err)
			}
		}()

		p.Run(ctx)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Shutdown error", "error", err)
		}
		logger.Info("Status server stopped")
		return nil
	})
}

// --------------------------------------------------------------------------
// check command
// --------------------------------------------------------------------------

func checkCmd(configPath *string) *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Run a single poll cycle and print its result",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChecker(*configPath, dryRun, func(ctx context.Context, cfg *config.Config, p *poller.Poller) error {
				res := p.RunCycle(ctx)

				out := cmd.OutOrStdout()
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				if err := enc.Encode(p.Status().Snapshot().LastCycle); err != nil {
					return fmt.Errorf("encode result: %w", err)
				}
				if !res.OK() {
					return fmt.Errorf("cycle failed: %w", res.Err)
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Log notifications instead of sending them (Pushover credentials not required)")
	return cmd
}

// --------------------------------------------------------------------------
// config command
// --------------------------------------------------------------------------

func configCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Load and validate the configuration, then print it with secrets masked",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(config.Path(*configPath))
			if err != nil {
				return err
			}
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			defer enc.Close()
			return enc.Encode(cfg.Redacted())
		},
	})
	return cmd
}

// --------------------------------------------------------------------------
// Shared setup
// --------------------------------------------------------------------------

// runChecker loads config, configures logging, and wires the poller.
func runChecker(configPath string, dryRun bool, fn func(ctx context.Context, cfg *config.Config, p *poller.Poller) error) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var opts []config.LoadOption
	if dryRun {
		opts = append(opts, config.SkipCredentials())
	}
	cfg, err := config.Load(config.Path(configPath), opts...)
	if err != nil {
		return err
	}

	logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel()}))
	slog.SetDefault(logger)

	fetcher := doctolib.NewClient(cfg.FetchURL(), cfg.UserAgent, cfg.RequestTimeout(), cfg.MaxRequestsPerMinute, logger)

	var sender *notifications.PushoverSender
	if dryRun {
		logger.Info("Dry run: notifications will be logged, not sent")
	} else {
		sender = notifications.NewPushoverSender(cfg.PushoverURL, cfg.Pushover.APIToken, cfg.Pushover.UserKey, cfg.RequestTimeout(), logger)
	}

	p := poller.New(cfg, fetcher, sender, logger)
	return fn(ctx, cfg, p)
}
