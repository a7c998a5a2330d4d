package cli

import (
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/mcoot/arcadebot/internal/api/response"
	"github.com/mcoot/arcadebot/internal/dependencies/clock"
	"github.com/mcoot/arcadebot/internal/services/auth"
)

func newAdminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Operator commands (require an admin token)",
	}

	cmd.AddCommand(newAdminTokenCmd())
	cmd.AddCommand(newAdminResetCmd())
	cmd.AddCommand(newAdminSweepCmd())

	return cmd
}

func newAdminTokenCmd() *cobra.Command {
	var secret, subject string
	var ttl time.Duration

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint an admin token locally from the shared secret",
		RunE: func(cmd *cobra.Command, args []string) error {
			if secret == "" {
				secret = os.Getenv("ARCADE_ADMIN_SECRET")
			}
			if secret == "" {
				return fmt.Errorf("--secret or ARCADE_ADMIN_SECRET is required")
			}

			token, err := auth.NewAdminTokens(secret, clock.New()).Mint(subject, auth.RoleAdmin, ttl)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&secret, "secret", "", "Signing secret (env: ARCADE_ADMIN_SECRET)")
	cmd.Flags().StringVar(&subject, "subject", "arcadectl", "Token subject")
	cmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "Token lifetime")

	return cmd
}

func newAdminResetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset <player-id>",
		Short: "Remove a player and all of their data",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.ResetResponse

			path := "/api/admin/players/" + url.PathEscape(args[0]) + "/reset"
			if err := client.Post(cmd.Context(), path, nil, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}

func newAdminSweepCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Delete expired handoff tokens",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.SweepResponse

			if err := client.Post(cmd.Context(), "/api/admin/tokens/sweep", nil, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}
