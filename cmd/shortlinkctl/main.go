// Package main implements shortlinkctl, the operator CLI for
// provisioning domains and API tokens without going through the HTTP
// API (which requires a token to already exist).
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/shortlink/shortlink/internal/config"
	"github.com/shortlink/shortlink/internal/logging"
	"github.com/shortlink/shortlink/internal/store/postgres"
)

var rootCmd = &cobra.Command{
	Use:   "shortlinkctl",
	Short: "Operator CLI for the shortlink service",
	Long: `shortlinkctl provisions domains and API tokens directly against
the shortlink database, for use during bootstrap before any API
token exists.`,
}

func main() {
	rootCmd.AddCommand(tokenCmd, domainCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// withStore loads config, connects to the database, runs fn, and
// always closes the pool afterward.
func withStore(fn func(ctx context.Context, store *postgres.Store, cfg *config.Config, logger *slog.Logger) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := logging.New(cfg.LogLevel, cfg.LogFormat)

	ctx := context.Background()
	store, err := postgres.Open(ctx, cfg.DSN(), int32(cfg.DBMaxConnections))
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer store.Close()

	return fn(ctx, store, cfg, logger)
}
