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

var domainCmd = &cobra.Command{
	Use:   "domain",
	Short: "Manage shortening domains",
}

var domainCreateDefault bool
var domainCreateDescription string

var domainCreateCmd = &cobra.Command{
	Use:   "create NAME",
	Short: "Register a new domain",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		return withStore(func(ctx context.Context, store *postgres.Store, cfg *config.Config, logger *slog.Logger) error {
			domains := service.NewDomainService(store.Domains())
			d, err := domains.Create(ctx, name, domainCreateDefault, domainCreateDescription)
			if err != nil {
				return fmt.Errorf("create domain: %w", err)
			}
			fmt.Printf("id:        %d\n", d.ID)
			fmt.Printf("name:      %s\n", d.Name)
			fmt.Printf("default:   %t\n", d.IsDefault)
			return nil
		})
	},
}

var domainListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered domains",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(ctx context.Context, store *postgres.Store, cfg *config.Config, logger *slog.Logger) error {
			domains := service.NewDomainService(store.Domains())
			list, err := domains.List(ctx)
			if err != nil {
				return fmt.Errorf("list domains: %w", err)
			}
			for _, d := range list {
				marker := ""
				if d.IsDefault {
					marker = " (default)"
				}
				fmt.Printf("%d\t%s%s\n", d.ID, d.Name, marker)
			}
			return nil
		})
	},
}

func init() {
	domainCreateCmd.Flags().BoolVar(&domainCreateDefault, "default", false, "make this the default domain")
	domainCreateCmd.Flags().StringVar(&domainCreateDescription, "description", "", "human-readable description")
	domainCmd.AddCommand(domainCreateCmd, domainListCmd)
}
