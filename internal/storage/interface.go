package storage

import (
	"context"
	"time"

	"github.com/mcoot/arcadebot/internal/model"
)

// Storage defines the interface for data persistence.
//
// Every method is a single atomic unit: either all of its writes become
// visible or none do. Backends enforce uniqueness and player existence but
// hold no business rules; rewards, levels and candidate rules are computed
// by the services and handed in.
type Storage interface {
	// Player operations

	// SavePlayer creates the player or refreshes its display name.
	// CreatedAt of an existing player is preserved.
	SavePlayer(ctx context.Context, player *model.Player) error
	GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error)
	// DeletePlayer removes the player and every row that depends on it
	// (balance, scores, tokens, sessions, unlocks). Deleting an unknown
	// player is not an error.
	DeletePlayer(ctx context.Context, id model.PlayerID) error

	// GetBalance returns the player's balance, creating a zero balance at
	// level 1 if none exists yet.
	GetBalance(ctx context.Context, id model.PlayerID) (*model.RewardBalance, error)

	// Handoff token operations

	// SaveHandoffToken stores a new token. It returns ErrPlayerNotFound if
	// the player is unknown and ErrTokenCollision if the token string is
	// already present.
	SaveHandoffToken(ctx context.Context, token *model.HandoffToken) error
	// RedeemHandoffToken consumes the token and creates a session with the
	// given id. Unknown or already-consumed tokens yield ErrInvalidToken;
	// tokens past their expiry yield ErrTokenExpired and are left in place.
	RedeemHandoffToken(ctx context.Context, token string, sessionID string, now time.Time) (*model.Session, error)
	// DeleteExpiredHandoffTokens removes tokens whose expiry is before now
	// and returns how many were removed.
	DeleteExpiredHandoffTokens(ctx context.Context, now time.Time) (int, error)

	// Session operations
	GetSession(ctx context.Context, id string) (*model.Session, error)

	// Score operations

	// RecordScore appends the score, adds the reward to the balance and
	// unlocks every candidate rule the player does not already hold.
	// The outcome lists only the rules unlocked by this call.
	RecordScore(ctx context.Context, record *model.ScoreRecord) (*model.ScoreOutcome, error)
	// ListScores returns the player's scores in submission order.
	ListScores(ctx context.Context, id model.PlayerID) ([]model.GameScore, error)

	// Achievement operations
	ListUnlockedAchievements(ctx context.Context, id model.PlayerID) ([]model.UnlockedAchievement, error)

	// Ping checks that the backend is reachable
	Ping(ctx context.Context) error
}
