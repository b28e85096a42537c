package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/shortlink/shortlink/internal/config"
	"github.com/shortlink/shortlink/internal/service"
	"github.com/shortlink/shortlink/internal/store/postgres"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Manage API bearer tokens",
}

var tokenCreateCmd = &cobra.Command{
	Use:   "create NAME",
	Short: "Issue a new API token",
	Long: `Issue a new API token and print the raw value once.

The raw token is never stored; only its HMAC-SHA256 hash is
persisted. Save the printed value now — it cannot be recovered later.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		return withStore(func(ctx context.Context, store *postgres.Store, cfg *config.Config, logger *slog.Logger) error {
			auth := service.NewAuthService(store.Tokens(), cfg.TokenSigningSecret, logger)
			raw, token, err := auth.Issue(ctx, name)
			if err != nil {
				return fmt.Errorf("issue token: %w", err)
			}
			fmt.Printf("id:    %s\n", token.ID)
			fmt.Printf("name:  %s\n", token.Name)
			fmt.Printf("token: %s\n", raw)
			return nil
		})
	},
}

var tokenListCmd = &cobra.Command{
	Use:   "list",
	Short: "List issued tokens",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(ctx context.Context, store *postgres.Store, cfg *config.Config, logger *slog.Logger) error {
			auth := service.NewAuthService(store.Tokens(), cfg.TokenSigningSecret, logger)
			tokens, err := auth.List(ctx)
			if err != nil {
				return fmt.Errorf("list tokens: %w", err)
			}
			for _, t := range tokens {
				status := "active"
				if t.RevokedAt != nil {
					status = "revoked"
				}
				fmt.Printf("%s\t%s\t%s\tcreated %s\n", t.ID, t.Name, status, t.CreatedAt.Format("2006-01-02"))
			}
			return nil
		})
	},
}

var tokenRevokeCmd = &cobra.Command{
	Use:   "revoke ID",
	Short: "Revoke a token by id",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id := args[0]
		return withStore(func(ctx context.Context, store *postgres.Store, cfg *config.Config, logger *slog.Logger) error {
			auth := service.NewAuthService(store.Tokens(), cfg.TokenSigningSecret, logger)
			if err := auth.Revoke(ctx, id); err != nil {
				return fmt.Errorf("revoke token: %w", err)
			}
			fmt.Printf("revoked %s\n", id)
			return nil
		})
	},
}

func init() {
	tokenCmd.AddCommand(tokenCreateCmd, tokenListCmd, tokenRevokeCmd)
}
