package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/mcoot/arcadebot/internal/dependencies/clock"
	"github.com/mcoot/arcadebot/internal/dependencies/random"
	"github.com/mcoot/arcadebot/internal/model"
	"github.com/mcoot/arcadebot/internal/storage"
	"github.com/mcoot/arcadebot/internal/telemetry"
)

var tracer = otel.Tracer("github.com/mcoot/arcadebot/internal/services/auth")

// Redemption is the result of consuming a handoff token
type Redemption struct {
	Session model.Session
	Player  model.Player
}

// Service issues handoff tokens and turns them into web sessions
type Service struct {
	storage storage.Storage
	clock   clock.Clock
	random  random.Random
	logger  *slog.Logger

	tokenTTL    time.Duration
	tokenLength int
}

// Config holds configuration for the auth service
type Config struct {
	// TokenTTL is how long a handoff token stays redeemable
	TokenTTL time.Duration
	// TokenLength is the number of base64url characters in a token
	TokenLength int
}

// DefaultConfig returns default auth configuration.
// 43 base64url characters carry 258 bits, the encoding of 32 random bytes.
func DefaultConfig() Config {
	return Config{
		TokenTTL:    10 * time.Minute,
		TokenLength: 43,
	}
}

// maxIssueAttempts bounds regeneration after a token collision
const maxIssueAttempts = 3

// New creates a new auth Service
func New(storage storage.Storage, clock clock.Clock, random random.Random, cfg Config, logger *slog.Logger) *Service {
	defaults := DefaultConfig()
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = defaults.TokenTTL
	}
	if cfg.TokenLength <= 0 {
		cfg.TokenLength = defaults.TokenLength
	}
	return &Service{
		storage:     storage,
		clock:       clock,
		random:      random,
		logger:      logger,
		tokenTTL:    cfg.TokenTTL,
		tokenLength: cfg.TokenLength,
	}
}

// TokenTTL returns how long issued tokens stay redeemable
func (s *Service) TokenTTL() time.Duration {
	return s.tokenTTL
}

// Issue creates a handoff token for a known player. Several outstanding
// tokens per player are allowed.
func (s *Service) Issue(ctx context.Context, playerID model.PlayerID) (*model.HandoffToken, error) {
	ctx, span := tracer.Start(ctx, "auth.Issue")
	defer span.End()
	span.SetAttributes(attribute.Int64("player.id", int64(playerID)))

	for attempt := 1; ; attempt++ {
		token := &model.HandoffToken{
			Token:     s.random.String(s.tokenLength, random.URLSafeAlphabet),
			PlayerID:  playerID,
			ExpiresAt: s.clock.Now().Add(s.tokenTTL),
		}
		err := s.storage.SaveHandoffToken(ctx, token)
		if err == nil {
			s.logger.Info("handoff token issued",
				slog.String("player_id", playerID.String()),
				slog.Time("expires_at", token.ExpiresAt),
			)
			return token, nil
		}
		if errors.Is(err, model.ErrTokenCollision) && attempt < maxIssueAttempts {
			s.logger.Warn("handoff token collision, regenerating",
				slog.String("player_id", playerID.String()),
				slog.Int("attempt", attempt),
			)
			continue
		}
		telemetry.RecordError(span, err)
		return nil, err
	}
}

// Redeem consumes a handoff token and opens a session for its player
func (s *Service) Redeem(ctx context.Context, token string) (*Redemption, error) {
	ctx, span := tracer.Start(ctx, "auth.Redeem")
	defer span.End()

	if token == "" {
		return nil, model.ErrInvalidToken
	}

	session, err := s.storage.RedeemHandoffToken(ctx, token, s.random.UUID(), s.clock.Now())
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	player, err := s.storage.GetPlayer(ctx, session.PlayerID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("load player for session: %w", err)
	}

	span.SetAttributes(attribute.Int64("player.id", int64(player.ID)))
	s.logger.Info("session opened",
		slog.String("player_id", player.ID.String()),
	)
	return &Redemption{Session: *session, Player: *player}, nil
}

// Resolve maps a session id to its player
func (s *Service) Resolve(ctx context.Context, sessionID string) (*model.Player, error) {
	if sessionID == "" {
		return nil, model.ErrInvalidSession
	}
	session, err := s.storage.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	player, err := s.storage.GetPlayer(ctx, session.PlayerID)
	if errors.Is(err, model.ErrPlayerNotFound) {
		return nil, model.ErrInvalidSession
	}
	return player, err
}

// SweepExpiredTokens deletes handoff tokens past their expiry
func (s *Service) SweepExpiredTokens(ctx context.Context) (int, error) {
	n, err := s.storage.DeleteExpiredHandoffTokens(ctx, s.clock.Now())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.logger.Info("expired handoff tokens removed", slog.Int("count", n))
	}
	return n, nil
}
