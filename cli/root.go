// Package cli wires the capacitaciones command line: the development
// backend and the authoring client commands.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"capacitaciones/api"
	"capacitaciones/config"
	"capacitaciones/logger"
)

var (
	// Global flags
	logLevel string
	apiURL   string
	timeout  time.Duration

	log *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "capacitaciones",
	Short: "Authoring tool for trainings (capacitaciones)",
	Long: `capacitaciones builds training documents and pushes them to the backend.

Run "capacitaciones serve" for a local backend, then "login" and "push".`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.LoadConfig()
		if logLevel != "" {
			cfg.LogLevel = logLevel
		}
		if apiURL != "" {
			cfg.APIURL = apiURL
		}

		var err error
		log, err = logger.New(cfg.LogLevel)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		for _, w := range cfg.Warnings() {
			log.Warn(w)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if log != nil {
			_ = log.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error, dev); overrides LOG_LEVEL")
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "backend base URL; overrides API_URL")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Second, "per-request timeout")

	rootCmd.AddCommand(serveCmd, loginCmd, logoutCmd, pushCmd, fetchCmd, listCmd, deleteCmd, collaboratorsCmd)
}

// Execute runs the root command until it finishes or the process is
// interrupted.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

// newClient builds an API client with the stored session loaded.
func newClient() (*api.Client, error) {
	store := api.NewTokenStore(config.AppConfig.SessionFile)
	if err := store.Load(); err != nil {
		return nil, err
	}
	return api.NewClient(api.Config{
		BaseURL: config.AppConfig.APIURL,
		Timeout: timeout,
		Store:   store,
		Logger:  log,
	}), nil
}

// adminClient is newClient plus the admin role check.
func adminClient() (*api.Client, error) {
	c, err := newClient()
	if err != nil {
		return nil, err
	}
	if err := c.RequireAdmin(); err != nil {
		return nil, fmt.Errorf("%w (run \"capacitaciones login\")", err)
	}
	return c, nil
}
