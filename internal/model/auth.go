package model

import "time"

// HandoffToken is a short-lived single-use credential bridging a chat
// identity to a web session
type HandoffToken struct {
	Token     string    `json:"token"`
	PlayerID  PlayerID  `json:"player_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the token can no longer be redeemed at now
func (t *HandoffToken) Expired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}

// Session is a web-side credential. Sessions do not expire; they are removed
// only by an administrative reset of the owning player.
type Session struct {
	ID        string    `json:"id"`
	PlayerID  PlayerID  `json:"player_id"`
	CreatedAt time.Time `json:"created_at"`
}
