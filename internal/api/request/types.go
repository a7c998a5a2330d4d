package request

import (
	"encoding/json"
	"strconv"
	"strings"
)

// VerifyRequest is the request body for redeeming a handoff token
type VerifyRequest struct {
	Token string `json:"token"`
}

// ScoreRequest is the request body for submitting a score.
// Score is kept raw so a missing value can be told apart from zero.
type ScoreRequest struct {
	Session string          `json:"session"`
	GameID  json.RawMessage `json:"game_id"`
	Score   json.RawMessage `json:"score"`
}

// HasScore reports whether a score value was sent at all
func (r *ScoreRequest) HasScore() bool {
	return len(r.Score) > 0 && string(r.Score) != "null"
}

// GameIDString returns the game id. The web client sends it as either a
// string or a number.
func (r *ScoreRequest) GameIDString() string {
	return rawScalar(r.GameID)
}

// ParseScore returns the score as an integer. Numeric strings are accepted.
func (r *ScoreRequest) ParseScore() (int64, bool) {
	v, err := strconv.ParseInt(rawScalar(r.Score), 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func rawScalar(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(string(raw))
}
