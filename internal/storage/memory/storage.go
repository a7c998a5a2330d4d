package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/mcoot/arcadebot/internal/model"
	"github.com/mcoot/arcadebot/internal/storage"
)

// Storage is an in-memory implementation of the storage interface.
// A single mutex makes every operation an atomic unit.
type Storage struct {
	mu sync.RWMutex

	players  map[model.PlayerID]*model.Player
	balances map[model.PlayerID]*model.RewardBalance
	scores   map[model.PlayerID][]model.GameScore
	tokens   map[string]*model.HandoffToken
	sessions map[string]*model.Session
	unlocks  map[model.PlayerID][]model.UnlockedAchievement
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		players:  make(map[model.PlayerID]*model.Player),
		balances: make(map[model.PlayerID]*model.RewardBalance),
		scores:   make(map[model.PlayerID][]model.GameScore),
		tokens:   make(map[string]*model.HandoffToken),
		sessions: make(map[string]*model.Session),
		unlocks:  make(map[model.PlayerID][]model.UnlockedAchievement),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Player operations

func (s *Storage) SavePlayer(ctx context.Context, player *model.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := *player
	if existing, ok := s.players[player.ID]; ok {
		stored.CreatedAt = existing.CreatedAt
	}
	s.players[player.ID] = &stored
	return nil
}

func (s *Storage) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	player, ok := s.players[id]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	p := *player
	return &p, nil
}

func (s *Storage) DeletePlayer(ctx context.Context, id model.PlayerID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.players, id)
	delete(s.balances, id)
	delete(s.scores, id)
	delete(s.unlocks, id)
	for token, t := range s.tokens {
		if t.PlayerID == id {
			delete(s.tokens, token)
		}
	}
	for sid, sess := range s.sessions {
		if sess.PlayerID == id {
			delete(s.sessions, sid)
		}
	}
	return nil
}

func (s *Storage) GetBalance(ctx context.Context, id model.PlayerID) (*model.RewardBalance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.players[id]; !ok {
		return nil, model.ErrPlayerNotFound
	}
	b := *s.balanceLocked(id)
	return &b, nil
}

// balanceLocked returns the stored balance, creating it if needed. Caller holds mu.
func (s *Storage) balanceLocked(id model.PlayerID) *model.RewardBalance {
	b, ok := s.balances[id]
	if !ok {
		nb := model.NewRewardBalance(id)
		b = &nb
		s.balances[id] = b
	}
	return b
}

// Handoff token operations

func (s *Storage) SaveHandoffToken(ctx context.Context, token *model.HandoffToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.players[token.PlayerID]; !ok {
		return model.ErrPlayerNotFound
	}
	if _, ok := s.tokens[token.Token]; ok {
		return model.ErrTokenCollision
	}
	t := *token
	s.tokens[token.Token] = &t
	return nil
}

func (s *Storage) RedeemHandoffToken(ctx context.Context, token string, sessionID string, now time.Time) (*model.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tokens[token]
	if !ok {
		return nil, model.ErrInvalidToken
	}
	if t.Expired(now) {
		return nil, model.ErrTokenExpired
	}
	delete(s.tokens, token)
	session := &model.Session{ID: sessionID, PlayerID: t.PlayerID, CreatedAt: now}
	s.sessions[sessionID] = session
	out := *session
	return &out, nil
}

func (s *Storage) DeleteExpiredHandoffTokens(ctx context.Context, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for token, t := range s.tokens {
		if t.Expired(now) {
			delete(s.tokens, token)
			removed++
		}
	}
	return removed, nil
}

// Session operations

func (s *Storage) GetSession(ctx context.Context, id string) (*model.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[id]
	if !ok {
		return nil, model.ErrInvalidSession
	}
	out := *session
	return &out, nil
}

// Score operations

func (s *Storage) RecordScore(ctx context.Context, record *model.ScoreRecord) (*model.ScoreOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	playerID := record.Score.PlayerID
	if _, ok := s.players[playerID]; !ok {
		return nil, model.ErrPlayerNotFound
	}

	s.scores[playerID] = append(s.scores[playerID], record.Score)

	b := s.balanceLocked(playerID)
	b.Coins += record.Reward.Coins
	b.XP += record.Reward.XP
	b.Level = model.LevelForXP(b.XP)

	outcome := &model.ScoreOutcome{Balance: *b}
	for _, rule := range record.Candidates {
		if s.hasUnlockLocked(playerID, rule.ID) {
			continue
		}
		s.unlocks[playerID] = append(s.unlocks[playerID], model.UnlockedAchievement{
			PlayerID:   playerID,
			RuleID:     rule.ID,
			UnlockedAt: record.Score.CreatedAt,
		})
		outcome.Unlocked = append(outcome.Unlocked, rule)
	}
	return outcome, nil
}

func (s *Storage) hasUnlockLocked(id model.PlayerID, rule model.RuleID) bool {
	return slices.ContainsFunc(s.unlocks[id], func(u model.UnlockedAchievement) bool {
		return u.RuleID == rule
	})
}

func (s *Storage) ListScores(ctx context.Context, id model.PlayerID) ([]model.GameScore, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.scores[id]), nil
}

// Achievement operations

func (s *Storage) ListUnlockedAchievements(ctx context.Context, id model.PlayerID) ([]model.UnlockedAchievement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.unlocks[id]), nil
}

func (s *Storage) Ping(ctx context.Context) error {
	return nil
}
