package model

import "time"

// RuleID identifies an achievement rule
type RuleID string

// AchievementRule grants a one-time unlock for reaching Threshold in GameID
type AchievementRule struct {
	ID          RuleID `json:"id"`
	GameID      GameID `json:"game_id"`
	Threshold   int64  `json:"score"`
	Name        string `json:"name"`
	Description string `json:"desc"`
}

// Matches reports whether a score in a game qualifies for the rule
func (r AchievementRule) Matches(gameID GameID, score int64) bool {
	return r.GameID == gameID && score >= r.Threshold
}

// UnlockedAchievement records that a player has unlocked a rule
type UnlockedAchievement struct {
	PlayerID   PlayerID  `json:"player_id"`
	RuleID     RuleID    `json:"rule_id"`
	UnlockedAt time.Time `json:"unlocked_at"`
}
