// Package player manages chat identities and their profiles.
package player

import (
	"context"
	"log/slog"
	"strings"

	"github.com/mcoot/arcadebot/internal/dependencies/clock"
	"github.com/mcoot/arcadebot/internal/model"
	"github.com/mcoot/arcadebot/internal/storage"
)

// Profile is everything shown about a player
type Profile struct {
	Player   model.Player
	Balance  model.RewardBalance
	Unlocked []model.UnlockedAchievement
}

// UnlockedIDs returns the ids of the unlocked rules in unlock order
func (p *Profile) UnlockedIDs() []model.RuleID {
	ids := make([]model.RuleID, 0, len(p.Unlocked))
	for _, u := range p.Unlocked {
		ids = append(ids, u.RuleID)
	}
	return ids
}

// Service handles player registration and profiles
type Service struct {
	storage storage.Storage
	clock   clock.Clock
	logger  *slog.Logger
}

// New creates a new player Service
func New(storage storage.Storage, clock clock.Clock, logger *slog.Logger) *Service {
	return &Service{storage: storage, clock: clock, logger: logger}
}

// Register records a chat identity on contact. Known players keep their
// creation time and get their display name refreshed.
func (s *Service) Register(ctx context.Context, id model.PlayerID, displayName string) (*model.Player, error) {
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		displayName = "Player " + id.String()
	}
	if err := s.storage.SavePlayer(ctx, &model.Player{
		ID:          id,
		DisplayName: displayName,
		CreatedAt:   s.clock.Now(),
	}); err != nil {
		return nil, err
	}
	p, err := s.storage.GetPlayer(ctx, id)
	if err != nil {
		return nil, err
	}
	s.logger.Info("player registered",
		slog.String("player_id", id.String()),
		slog.String("display_name", p.DisplayName),
	)
	return p, nil
}

// Get returns a player
func (s *Service) Get(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	return s.storage.GetPlayer(ctx, id)
}

// Profile loads a player with balance and unlocks
func (s *Service) Profile(ctx context.Context, id model.PlayerID) (*Profile, error) {
	p, err := s.storage.GetPlayer(ctx, id)
	if err != nil {
		return nil, err
	}
	balance, err := s.storage.GetBalance(ctx, id)
	if err != nil {
		return nil, err
	}
	unlocked, err := s.storage.ListUnlockedAchievements(ctx, id)
	if err != nil {
		return nil, err
	}
	return &Profile{Player: *p, Balance: *balance, Unlocked: unlocked}, nil
}

// Reset removes a player and everything that depends on it
func (s *Service) Reset(ctx context.Context, id model.PlayerID) error {
	if _, err := s.storage.GetPlayer(ctx, id); err != nil {
		return err
	}
	if err := s.storage.DeletePlayer(ctx, id); err != nil {
		s.logger.Error("failed to reset player",
			slog.String("player_id", id.String()),
			slog.String("error", err.Error()),
		)
		return err
	}
	s.logger.Warn("player reset", slog.String("player_id", id.String()))
	return nil
}
