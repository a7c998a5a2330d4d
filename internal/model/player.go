package model

import (
	"strconv"
	"time"
)

// PlayerID is the chat-platform (Telegram) user id. It is assigned by the
// platform and never changes.
type PlayerID int64

// String formats the id the way Telegram prints it
func (id PlayerID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

// ParsePlayerID parses a decimal Telegram user id
func ParsePlayerID(s string) (PlayerID, error) {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, err
	}
	return PlayerID(v), nil
}

// Player is a known chat identity. Created on first contact.
type Player struct {
	ID          PlayerID  `json:"id"`
	DisplayName string    `json:"display_name"`
	CreatedAt   time.Time `json:"created_at"`
}

// Levels are a flat XP curve
const XPPerLevel = 1000

// RewardBalance holds a player's accrued rewards. One per player, created
// lazily the first time it is needed.
type RewardBalance struct {
	PlayerID PlayerID `json:"player_id"`
	Coins    int64    `json:"coins"`
	XP       int64    `json:"xp"`
	Level    int64    `json:"level"`
}

// NewRewardBalance returns the starting balance for a player
func NewRewardBalance(id PlayerID) RewardBalance {
	return RewardBalance{PlayerID: id, Level: 1}
}

// LevelForXP returns the level reached with the given experience
func LevelForXP(xp int64) int64 {
	if xp < 0 {
		return 1
	}
	return 1 + xp/XPPerLevel
}
