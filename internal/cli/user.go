package cli

import (
	"net/url"

	"github.com/spf13/cobra"

	"github.com/mcoot/arcadebot/internal/api/response"
)

func newUserCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "user",
		Short: "Show the session player's profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := cfg.RequireSession()
			if err != nil {
				return err
			}

			var result response.UserResponse
			if err := client.Get(cmd.Context(), "/api/user?session="+url.QueryEscape(session), &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show the session player's best score per game",
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := cfg.RequireSession()
			if err != nil {
				return err
			}

			var result response.LeaderboardResponse
			if err := client.Get(cmd.Context(), "/api/leaderboard?session="+url.QueryEscape(session), &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}

func newAchievementsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "achievements",
		Short: "List every achievement rule",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.AchievementsResponse
			if err := client.Get(cmd.Context(), "/api/achievements", &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}
