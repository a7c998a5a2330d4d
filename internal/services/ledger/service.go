// Package ledger records game results and turns them into rewards and
// achievement unlocks.
package ledger

import (
	"context"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/mcoot/arcadebot/internal/dependencies/clock"
	"github.com/mcoot/arcadebot/internal/model"
	"github.com/mcoot/arcadebot/internal/services/achievement"
	"github.com/mcoot/arcadebot/internal/storage"
	"github.com/mcoot/arcadebot/internal/telemetry"
)

var tracer = otel.Tracer("github.com/mcoot/arcadebot/internal/services/ledger")

// SessionResolver maps a web session to its player
type SessionResolver interface {
	Resolve(ctx context.Context, sessionID string) (*model.Player, error)
}

// Notifier is told about each unlock after it has been committed
type Notifier interface {
	AchievementUnlocked(ctx context.Context, playerID model.PlayerID, rule model.AchievementRule)
}

// Result is the outcome of a submission
type Result struct {
	NewAchievements []model.AchievementRule
	EarnedCoins     int64
	EarnedXP        int64
	Balance         model.RewardBalance
}

// Service is the score ledger
type Service struct {
	storage  storage.Storage
	sessions SessionResolver
	rules    *achievement.Rules
	notifier Notifier
	clock    clock.Clock
	logger   *slog.Logger
}

// New creates a new ledger Service
func New(
	storage storage.Storage,
	sessions SessionResolver,
	rules *achievement.Rules,
	notifier Notifier,
	clock clock.Clock,
	logger *slog.Logger,
) *Service {
	return &Service{
		storage:  storage,
		sessions: sessions,
		rules:    rules,
		notifier: notifier,
		clock:    clock,
		logger:   logger,
	}
}

// Submit records a score for the session's player. The score row, the
// reward and any unlocks commit together or not at all.
func (s *Service) Submit(ctx context.Context, sessionID string, gameID model.GameID, score int64) (*Result, error) {
	ctx, span := tracer.Start(ctx, "ledger.Submit")
	defer span.End()
	span.SetAttributes(
		attribute.String("game.id", string(gameID)),
		attribute.Int64("game.score", score),
	)

	if strings.TrimSpace(string(gameID)) == "" {
		return nil, model.NewValidationError("game_id", "must not be empty")
	}
	if score < 0 {
		return nil, model.NewValidationError("score", "must not be negative")
	}
	if score > model.MaxScore {
		return nil, model.NewValidationError("score", "exceeds maximum")
	}

	player, err := s.sessions.Resolve(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int64("player.id", int64(player.ID)))

	reward := model.RewardForScore(score)
	outcome, err := s.storage.RecordScore(ctx, &model.ScoreRecord{
		Score: model.GameScore{
			PlayerID:  player.ID,
			GameID:    gameID,
			Score:     score,
			CreatedAt: s.clock.Now(),
		},
		Reward:     reward,
		Candidates: s.rules.Candidates(gameID, score),
	})
	if err != nil {
		telemetry.RecordError(span, err)
		s.logger.Error("failed to record score",
			slog.String("player_id", player.ID.String()),
			slog.String("game_id", string(gameID)),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	s.logger.Info("score recorded",
		slog.String("player_id", player.ID.String()),
		slog.String("game_id", string(gameID)),
		slog.Int64("score", score),
		slog.Int("unlocked", len(outcome.Unlocked)),
	)

	for _, rule := range outcome.Unlocked {
		s.notifier.AchievementUnlocked(ctx, player.ID, rule)
	}

	unlocked := outcome.Unlocked
	if unlocked == nil {
		unlocked = []model.AchievementRule{}
	}
	return &Result{
		NewAchievements: unlocked,
		EarnedCoins:     reward.Coins,
		EarnedXP:        reward.XP,
		Balance:         outcome.Balance,
	}, nil
}
