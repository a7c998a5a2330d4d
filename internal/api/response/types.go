package response

import (
	"time"

	"github.com/mcoot/arcadebot/internal/model"
	"github.com/mcoot/arcadebot/internal/services/ledger"
	"github.com/mcoot/arcadebot/internal/services/player"
)

// VerifyResponse is the response for a redeemed handoff token
type VerifyResponse struct {
	Success  bool   `json:"success"`
	Username string `json:"username"`
	Session  string `json:"session"`
}

// UserResponse is the profile shown by the web client
type UserResponse struct {
	Success      bool     `json:"success"`
	Username     string   `json:"username"`
	TelegramID   int64    `json:"tg_id"`
	Coins        int64    `json:"coins"`
	XP           int64    `json:"xp"`
	Level        int64    `json:"level"`
	Achievements []string `json:"achievements"`
	AvatarURL    string   `json:"avatar_url"`
}

// UserFromProfile converts a player profile
func UserFromProfile(p *player.Profile, avatarURL string) UserResponse {
	ids := make([]string, 0, len(p.Unlocked))
	for _, id := range p.UnlockedIDs() {
		ids = append(ids, string(id))
	}
	return UserResponse{
		Success:      true,
		Username:     p.Player.DisplayName,
		TelegramID:   int64(p.Player.ID),
		Coins:        p.Balance.Coins,
		XP:           p.Balance.XP,
		Level:        p.Balance.Level,
		Achievements: ids,
		AvatarURL:    avatarURL,
	}
}

// Achievement is a rule as the web client renders it
type Achievement struct {
	ID          string `json:"id"`
	GameID      string `json:"game_id,omitempty"`
	Score       int64  `json:"score,omitempty"`
	Name        string `json:"name"`
	Description string `json:"desc"`
}

// AchievementFromModel converts model.AchievementRule
func AchievementFromModel(r model.AchievementRule) Achievement {
	return Achievement{
		ID:          string(r.ID),
		Name:        r.Name,
		Description: r.Description,
	}
}

// CatalogueEntryFromModel converts model.AchievementRule including its threshold
func CatalogueEntryFromModel(r model.AchievementRule) Achievement {
	a := AchievementFromModel(r)
	a.GameID = string(r.GameID)
	a.Score = r.Threshold
	return a
}

// ScoreResponse is the response after a score submission
type ScoreResponse struct {
	Success         bool          `json:"success"`
	NewAchievements []Achievement `json:"new_achievements"`
	EarnedCoins     int64         `json:"earned_coins"`
	EarnedXP        int64         `json:"earned_xp"`
	Coins           int64         `json:"coins"`
	XP              int64         `json:"xp"`
	Level           int64         `json:"level"`
}

// ScoreFromResult converts a ledger result
func ScoreFromResult(res *ledger.Result) ScoreResponse {
	unlocked := make([]Achievement, 0, len(res.NewAchievements))
	for _, r := range res.NewAchievements {
		unlocked = append(unlocked, AchievementFromModel(r))
	}
	return ScoreResponse{
		Success:         true,
		NewAchievements: unlocked,
		EarnedCoins:     res.EarnedCoins,
		EarnedXP:        res.EarnedXP,
		Coins:           res.Balance.Coins,
		XP:              res.Balance.XP,
		Level:           res.Balance.Level,
	}
}

// BestScore is one leaderboard row
type BestScore struct {
	GameID    string    `json:"game_id"`
	Score     int64     `json:"score"`
	CreatedAt time.Time `json:"created_at"`
}

// LeaderboardResponse lists a player's best score per game
type LeaderboardResponse struct {
	Success bool        `json:"success"`
	Scores  []BestScore `json:"scores"`
}

// LeaderboardFromModel converts best score rows
func LeaderboardFromModel(scores []model.GameScore) LeaderboardResponse {
	rows := make([]BestScore, 0, len(scores))
	for _, s := range scores {
		rows = append(rows, BestScore{GameID: string(s.GameID), Score: s.Score, CreatedAt: s.CreatedAt})
	}
	return LeaderboardResponse{Success: true, Scores: rows}
}

// AchievementsResponse is the rule catalogue
type AchievementsResponse struct {
	Success      bool          `json:"success"`
	Achievements []Achievement `json:"achievements"`
}

// ResetResponse confirms an administrative reset
type ResetResponse struct {
	Success  bool   `json:"success"`
	PlayerID string `json:"player_id"`
}

// SweepResponse reports how many expired tokens were removed
type SweepResponse struct {
	Success bool `json:"success"`
	Removed int  `json:"removed"`
}

// HealthResponse is the health check body
type HealthResponse struct {
	Status string `json:"status"`
}
