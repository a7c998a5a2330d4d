package cli

import (
	"github.com/spf13/cobra"

	"github.com/mcoot/arcadebot/internal/api/response"
)

func newScoreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "score",
		Short: "Score commands",
	}

	cmd.AddCommand(newScoreSubmitCmd())

	return cmd
}

func newScoreSubmitCmd() *cobra.Command {
	var gameID string
	var score int64

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Submit a finished game's score",
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := cfg.RequireSession()
			if err != nil {
				return err
			}

			req := map[string]any{
				"session": session,
				"game_id": gameID,
				"score":   score,
			}
			var result response.ScoreResponse

			if err := client.Post(cmd.Context(), "/api/game/score", req, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&gameID, "game", "", "Game id (required)")
	cmd.Flags().Int64Var(&score, "score", 0, "Score (required)")
	_ = cmd.MarkFlagRequired("game")
	_ = cmd.MarkFlagRequired("score")

	return cmd
}
