package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mcoot/arcadebot/internal/api/response"
)

func newAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Session commands",
	}

	cmd.AddCommand(newAuthVerifyCmd())

	return cmd
}

func newAuthVerifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify <token>",
		Short: "Redeem a handoff token from the bot and save the session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]string{"token": args[0]}
			var result response.VerifyResponse

			if err := client.Post(cmd.Context(), "/api/auth/verify", req, &result); err != nil {
				return err
			}

			// Save session
			if err := cfg.SaveSession(result.Session); err != nil {
				return fmt.Errorf("failed to save session: %w", err)
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}
