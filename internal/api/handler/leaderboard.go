package handler

import (
	"net/http"

	"github.com/mcoot/arcadebot/internal/api/apierr"
	"github.com/mcoot/arcadebot/internal/api/response"
	"github.com/mcoot/arcadebot/internal/services/achievement"
	"github.com/mcoot/arcadebot/internal/services/leaderboard"
)

// LeaderboardHandler serves best scores and the achievement catalogue
type LeaderboardHandler struct {
	leaderboardService *leaderboard.Service
	rules              *achievement.Rules
}

// NewLeaderboardHandler creates a new leaderboard handler
func NewLeaderboardHandler(leaderboardService *leaderboard.Service, rules *achievement.Rules) *LeaderboardHandler {
	return &LeaderboardHandler{
		leaderboardService: leaderboardService,
		rules:              rules,
	}
}

// BestScores handles GET /api/leaderboard?session=<id>
func (h *LeaderboardHandler) BestScores(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := sessionParam(r)
	if !ok {
		WriteError(w, r, apierr.NewMissingFieldsError())
		return
	}

	scores, err := h.leaderboardService.BestScores(r.Context(), sessionID)
	if err != nil {
		WriteError(w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, response.LeaderboardFromModel(scores))
}

// Achievements handles GET /api/achievements
func (h *LeaderboardHandler) Achievements(w http.ResponseWriter, r *http.Request) {
	all := h.rules.All()
	out := make([]response.Achievement, 0, len(all))
	for _, rule := range all {
		out = append(out, response.CatalogueEntryFromModel(rule))
	}
	response.JSON(w, http.StatusOK, response.AchievementsResponse{Success: true, Achievements: out})
}
