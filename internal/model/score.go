package model

import "time"

// GameID identifies a game in the web library (e.g. "1" for 2048)
type GameID string

// GameScore is a single recorded play. Append-only.
type GameScore struct {
	PlayerID  PlayerID  `json:"player_id"`
	GameID    GameID    `json:"game_id"`
	Score     int64     `json:"score"`
	CreatedAt time.Time `json:"created_at"`
}

// MaxScore is the largest score accepted for a single play. It keeps the
// per-play reward far below the int64 range so balances cannot overflow.
const MaxScore int64 = 1_000_000_000

// Reward accrues from a score: 10% as coins and 50% as xp, at least 1 of each
type Reward struct {
	Coins int64
	XP    int64
}

// RewardForScore computes the coins and xp earned by a score
func RewardForScore(score int64) Reward {
	return Reward{
		Coins: max(1, score/10),
		XP:    max(1, score/2),
	}
}

// ScoreRecord is what a single submission writes
type ScoreRecord struct {
	Score      GameScore
	Reward     Reward
	Candidates []AchievementRule // rules the score qualifies for
}

// ScoreOutcome is the effect of a committed ScoreRecord
type ScoreOutcome struct {
	Balance  RewardBalance
	Unlocked []AchievementRule // subset of Candidates newly unlocked by this record
}
