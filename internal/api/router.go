package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/arcadebot/internal/api/handler"
	"github.com/mcoot/arcadebot/internal/api/middleware"
	"github.com/mcoot/arcadebot/internal/api/response"
	"github.com/mcoot/arcadebot/internal/services/achievement"
	"github.com/mcoot/arcadebot/internal/services/auth"
	"github.com/mcoot/arcadebot/internal/services/leaderboard"
	"github.com/mcoot/arcadebot/internal/services/ledger"
	"github.com/mcoot/arcadebot/internal/services/player"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger             *slog.Logger
	AuthService        *auth.Service
	AdminTokens        *auth.AdminTokens
	PlayerService      *player.Service
	LedgerService      *ledger.Service
	LeaderboardService *leaderboard.Service
	Rules              *achievement.Rules
	// DefaultAvatarURL is returned for every profile
	DefaultAvatarURL string
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Create handlers
	authHandler := handler.NewAuthHandler(cfg.AuthService)
	userHandler := handler.NewUserHandler(cfg.AuthService, cfg.PlayerService, cfg.DefaultAvatarURL)
	scoreHandler := handler.NewScoreHandler(cfg.LedgerService)
	leaderboardHandler := handler.NewLeaderboardHandler(cfg.LeaderboardService, cfg.Rules)
	adminHandler := handler.NewAdminHandler(cfg.AuthService, cfg.PlayerService)

	// Create middleware
	adminMiddleware := middleware.AdminAuth(cfg.AdminTokens)
	loggingMiddleware := middleware.Logging(cfg.Logger)
	recoveryMiddleware := middleware.Recovery(cfg.Logger)

	// API subrouter with common middleware
	api := r.PathPrefix("/api").Subrouter()
	api.Use(loggingMiddleware)
	api.Use(recoveryMiddleware)

	// Web client routes; the session id is the credential
	api.HandleFunc("/auth/verify", authHandler.Verify).Methods(http.MethodPost)
	api.HandleFunc("/user", userHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/game/score", scoreHandler.Submit).Methods(http.MethodPost)
	api.HandleFunc("/leaderboard", leaderboardHandler.BestScores).Methods(http.MethodGet)
	api.HandleFunc("/achievements", leaderboardHandler.Achievements).Methods(http.MethodGet)

	// Operator routes
	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(adminMiddleware)
	admin.HandleFunc("/players/{id}/reset", adminHandler.ResetPlayer).Methods(http.MethodPost)
	admin.HandleFunc("/tokens/sweep", adminHandler.SweepTokens).Methods(http.MethodPost)

	// Health check endpoint
	api.HandleFunc("/health", healthHandler).Methods(http.MethodGet)

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, response.HealthResponse{Status: "ok"})
}
