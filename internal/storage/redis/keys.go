package redis

import (
	"fmt"

	"github.com/mcoot/arcadebot/internal/model"
)

// Key layout. The Lua scripts derive per-player token and session index
// keys from the prefix, so playerTokensKey, playerSessionsKey, tokenKey and
// sessionKey must stay in step with scripts.go.
type keys struct {
	prefix string
}

// playerKey returns the HASH holding a Player
func (k keys) playerKey(id model.PlayerID) string {
	return fmt.Sprintf("%s:player:%s", k.prefix, id)
}

// playerTokensKey returns the SET of outstanding tokens for a player
func (k keys) playerTokensKey(id model.PlayerID) string {
	return fmt.Sprintf("%s:player:%s:tokens", k.prefix, id)
}

// playerSessionsKey returns the SET of session ids for a player
func (k keys) playerSessionsKey(id model.PlayerID) string {
	return fmt.Sprintf("%s:player:%s:sessions", k.prefix, id)
}

// balanceKey returns the HASH holding a RewardBalance
func (k keys) balanceKey(id model.PlayerID) string {
	return fmt.Sprintf("%s:balance:%s", k.prefix, id)
}

// scoresKey returns the LIST of a player's scores, oldest first
func (k keys) scoresKey(id model.PlayerID) string {
	return fmt.Sprintf("%s:scores:%s", k.prefix, id)
}

// achievementsKey returns the HASH of rule id -> unlock time for a player
func (k keys) achievementsKey(id model.PlayerID) string {
	return fmt.Sprintf("%s:achievements:%s", k.prefix, id)
}

// tokenKey returns the HASH holding a HandoffToken
func (k keys) tokenKey(token string) string {
	return fmt.Sprintf("%s:token:%s", k.prefix, token)
}

// tokenExpiryKey returns the ZSET of token -> expiry used for sweeping
func (k keys) tokenExpiryKey() string {
	return fmt.Sprintf("%s:idx:token_expiry", k.prefix)
}

// sessionKey returns the HASH holding a Session
func (k keys) sessionKey(id string) string {
	return fmt.Sprintf("%s:session:%s", k.prefix, id)
}
