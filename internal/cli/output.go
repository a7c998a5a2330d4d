package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/mcoot/arcadebot/internal/api/response"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
	w      io.Writer
}

// NewOutput creates a new Output formatter writing to w
func NewOutput(format string, w io.Writer) *Output {
	return &Output{format: format, w: w}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		o.printJSON(map[string]string{"message": msg})
	} else {
		fmt.Fprintln(o.w, msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case response.VerifyResponse:
		fmt.Fprintf(o.w, "Logged in as %s\nSession: %s\n", v.Username, v.Session)
	case response.UserResponse:
		o.printUser(v)
	case response.ScoreResponse:
		o.printScore(v)
	case response.LeaderboardResponse:
		o.printLeaderboard(v)
	case response.AchievementsResponse:
		o.printCatalogue(v)
	case response.ResetResponse:
		fmt.Fprintf(o.w, "Player %s reset\n", v.PlayerID)
	case response.SweepResponse:
		fmt.Fprintf(o.w, "Removed %d expired tokens\n", v.Removed)
	case response.HealthResponse:
		fmt.Fprintf(o.w, "Status: %s\n", v.Status)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

func (o *Output) printUser(u response.UserResponse) {
	fmt.Fprintf(o.w, "Player: %s (%d)\n", u.Username, u.TelegramID)
	fmt.Fprintf(o.w, "Level: %d\n", u.Level)
	fmt.Fprintf(o.w, "Coins: %d\n", u.Coins)
	fmt.Fprintf(o.w, "XP: %d\n", u.XP)
	if len(u.Achievements) == 0 {
		fmt.Fprintln(o.w, "Achievements: none")
		return
	}
	fmt.Fprintf(o.w, "Achievements: %s\n", strings.Join(u.Achievements, ", "))
}

func (o *Output) printScore(s response.ScoreResponse) {
	fmt.Fprintf(o.w, "Earned %d coins and %d xp\n", s.EarnedCoins, s.EarnedXP)
	fmt.Fprintf(o.w, "Balance: %d coins, %d xp, level %d\n", s.Coins, s.XP, s.Level)
	for _, a := range s.NewAchievements {
		fmt.Fprintf(o.w, "Unlocked: %s - %s\n", a.Name, a.Description)
	}
}

func (o *Output) printLeaderboard(l response.LeaderboardResponse) {
	if len(l.Scores) == 0 {
		fmt.Fprintln(o.w, "No scores yet")
		return
	}
	for i, s := range l.Scores {
		fmt.Fprintf(o.w, "%2d. game %-4s %8d  %s\n", i+1, s.GameID, s.Score, s.CreatedAt.Format("2006-01-02 15:04"))
	}
}

func (o *Output) printCatalogue(c response.AchievementsResponse) {
	for _, a := range c.Achievements {
		fmt.Fprintf(o.w, "%-18s game %-3s >= %-6d %s\n", a.ID, a.GameID, a.Score, a.Name)
	}
}
