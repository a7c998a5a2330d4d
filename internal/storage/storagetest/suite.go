// Package storagetest holds a conformance suite run against every storage
// backend.
package storagetest

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/arcadebot/internal/model"
	"github.com/mcoot/arcadebot/internal/storage"
)

// Suite exercises the storage.Storage contract. Backends embed it or run it
// directly with their own constructor:
//
//	suite.Run(t, &storagetest.Suite{NewStorage: func(t *testing.T) storage.Storage { return memory.New() }})
type Suite struct {
	suite.Suite

	// NewStorage returns an empty backend for a single test
	NewStorage func(t *testing.T) storage.Storage

	store storage.Storage
	ctx   context.Context
	now   time.Time
}

func (s *Suite) SetupTest() {
	s.store = s.NewStorage(s.T())
	s.ctx = context.Background()
	s.now = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
}

func (s *Suite) savePlayer(id model.PlayerID, name string) *model.Player {
	p := &model.Player{ID: id, DisplayName: name, CreatedAt: s.now}
	s.Require().NoError(s.store.SavePlayer(s.ctx, p))
	return p
}

func (s *Suite) saveToken(token string, id model.PlayerID, expires time.Time) {
	s.Require().NoError(s.store.SaveHandoffToken(s.ctx, &model.HandoffToken{
		Token:     token,
		PlayerID:  id,
		ExpiresAt: expires,
	}))
}

func (s *Suite) record(id model.PlayerID, game model.GameID, score int64, at time.Time, candidates ...model.AchievementRule) *model.ScoreOutcome {
	out, err := s.store.RecordScore(s.ctx, &model.ScoreRecord{
		Score:      model.GameScore{PlayerID: id, GameID: game, Score: score, CreatedAt: at},
		Reward:     model.RewardForScore(score),
		Candidates: candidates,
	})
	s.Require().NoError(err)
	return out
}

var rule2048 = model.AchievementRule{ID: "2048_1000", GameID: "1", Threshold: 1000, Name: "Tile Apprentice", Description: "Score 1000 in 2048"}
var ruleSnake = model.AchievementRule{ID: "snake_50", GameID: "2", Threshold: 50, Name: "Hungry Snake", Description: "Score 50 in Snake"}

// Player tests

func (s *Suite) TestSaveAndGetPlayer() {
	s.savePlayer(42, "Alice")

	p, err := s.store.GetPlayer(s.ctx, 42)
	s.Require().NoError(err)
	s.Equal(model.PlayerID(42), p.ID)
	s.Equal("Alice", p.DisplayName)
	s.True(s.now.Equal(p.CreatedAt))
}

func (s *Suite) TestGetPlayerNotFound() {
	_, err := s.store.GetPlayer(s.ctx, 404)
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *Suite) TestSavePlayerRefreshesNameKeepsCreatedAt() {
	s.savePlayer(42, "Alice")

	later := s.now.Add(time.Hour)
	s.Require().NoError(s.store.SavePlayer(s.ctx, &model.Player{ID: 42, DisplayName: "Alicia", CreatedAt: later}))

	p, err := s.store.GetPlayer(s.ctx, 42)
	s.Require().NoError(err)
	s.Equal("Alicia", p.DisplayName)
	s.True(s.now.Equal(p.CreatedAt))
}

// Balance tests

func (s *Suite) TestGetBalanceCreatesLazily() {
	s.savePlayer(42, "Alice")

	b, err := s.store.GetBalance(s.ctx, 42)
	s.Require().NoError(err)
	s.Equal(model.RewardBalance{PlayerID: 42, Coins: 0, XP: 0, Level: 1}, *b)
}

func (s *Suite) TestGetBalanceUnknownPlayer() {
	_, err := s.store.GetBalance(s.ctx, 404)
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

// Handoff token tests

func (s *Suite) TestSaveTokenUnknownPlayer() {
	err := s.store.SaveHandoffToken(s.ctx, &model.HandoffToken{Token: "t", PlayerID: 404, ExpiresAt: s.now})
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *Suite) TestSaveTokenCollision() {
	s.savePlayer(1, "Alice")
	s.savePlayer(2, "Bob")
	s.saveToken("tok", 1, s.now.Add(10*time.Minute))

	err := s.store.SaveHandoffToken(s.ctx, &model.HandoffToken{Token: "tok", PlayerID: 2, ExpiresAt: s.now.Add(10 * time.Minute)})
	s.ErrorIs(err, model.ErrTokenCollision)

	// the original owner is untouched
	session, err := s.store.RedeemHandoffToken(s.ctx, "tok", "sess-1", s.now)
	s.Require().NoError(err)
	s.Equal(model.PlayerID(1), session.PlayerID)
}

func (s *Suite) TestRedeemCreatesSessionAndConsumesToken() {
	s.savePlayer(42, "Alice")
	s.saveToken("tok", 42, s.now.Add(10*time.Minute))

	session, err := s.store.RedeemHandoffToken(s.ctx, "tok", "sess-1", s.now.Add(time.Minute))
	s.Require().NoError(err)
	s.Equal("sess-1", session.ID)
	s.Equal(model.PlayerID(42), session.PlayerID)

	got, err := s.store.GetSession(s.ctx, "sess-1")
	s.Require().NoError(err)
	s.Equal(model.PlayerID(42), got.PlayerID)

	_, err = s.store.RedeemHandoffToken(s.ctx, "tok", "sess-2", s.now.Add(time.Minute))
	s.ErrorIs(err, model.ErrInvalidToken)
	_, err = s.store.GetSession(s.ctx, "sess-2")
	s.ErrorIs(err, model.ErrInvalidSession)
}

func (s *Suite) TestRedeemUnknownToken() {
	_, err := s.store.RedeemHandoffToken(s.ctx, "nope", "sess-1", s.now)
	s.ErrorIs(err, model.ErrInvalidToken)
}

func (s *Suite) TestRedeemExpiredTokenKeepsRow() {
	s.savePlayer(42, "Alice")
	expiry := s.now.Add(10 * time.Minute)
	s.saveToken("tok", 42, expiry)

	_, err := s.store.RedeemHandoffToken(s.ctx, "tok", "sess-1", expiry.Add(time.Second))
	s.ErrorIs(err, model.ErrTokenExpired)
	_, err = s.store.GetSession(s.ctx, "sess-1")
	s.ErrorIs(err, model.ErrInvalidSession)

	// the row is still there; only the clock made it unusable
	_, err = s.store.RedeemHandoffToken(s.ctx, "tok", "sess-2", expiry.Add(time.Second))
	s.ErrorIs(err, model.ErrTokenExpired)
}

func (s *Suite) TestRedeemAtExactExpiry() {
	s.savePlayer(42, "Alice")
	expiry := s.now.Add(10 * time.Minute)
	s.saveToken("tok", 42, expiry)

	_, err := s.store.RedeemHandoffToken(s.ctx, "tok", "sess-1", expiry)
	s.NoError(err)
}

func (s *Suite) TestConcurrentRedeemHasOneWinner() {
	s.savePlayer(42, "Alice")
	s.saveToken("tok", 42, s.now.Add(10*time.Minute))

	const attempts = 8
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := range attempts {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = s.store.RedeemHandoffToken(s.ctx, "tok", "sess-"+string(rune('a'+i)), s.now)
		}(i)
	}
	wg.Wait()

	wins := 0
	for _, err := range errs {
		if err == nil {
			wins++
			continue
		}
		s.ErrorIs(err, model.ErrInvalidToken)
	}
	s.Equal(1, wins)
}

func (s *Suite) TestDeleteExpiredTokens() {
	s.savePlayer(42, "Alice")
	s.saveToken("old", 42, s.now.Add(-time.Minute))
	s.saveToken("fresh", 42, s.now.Add(time.Minute))

	n, err := s.store.DeleteExpiredHandoffTokens(s.ctx, s.now)
	s.Require().NoError(err)
	s.Equal(1, n)

	_, err = s.store.RedeemHandoffToken(s.ctx, "old", "sess-1", s.now.Add(-2*time.Minute))
	s.ErrorIs(err, model.ErrInvalidToken)
	_, err = s.store.RedeemHandoffToken(s.ctx, "fresh", "sess-2", s.now)
	s.NoError(err)
}

// Score tests

func (s *Suite) TestRecordScoreAccruesRewards() {
	s.savePlayer(42, "Alice")

	out := s.record(42, "1", 1000, s.now)
	s.Equal(model.RewardBalance{PlayerID: 42, Coins: 100, XP: 500, Level: 1}, out.Balance)
	s.Empty(out.Unlocked)

	out = s.record(42, "1", 1200, s.now.Add(time.Second))
	s.Equal(model.RewardBalance{PlayerID: 42, Coins: 220, XP: 1100, Level: 2}, out.Balance)

	b, err := s.store.GetBalance(s.ctx, 42)
	s.Require().NoError(err)
	s.Equal(out.Balance, *b)
}

func (s *Suite) TestRecordScoreUnknownPlayerWritesNothing() {
	_, err := s.store.RecordScore(s.ctx, &model.ScoreRecord{
		Score:      model.GameScore{PlayerID: 404, GameID: "1", Score: 1000, CreatedAt: s.now},
		Reward:     model.RewardForScore(1000),
		Candidates: []model.AchievementRule{rule2048},
	})
	s.ErrorIs(err, model.ErrPlayerNotFound)

	scores, err := s.store.ListScores(s.ctx, 404)
	s.Require().NoError(err)
	s.Empty(scores)
	unlocked, err := s.store.ListUnlockedAchievements(s.ctx, 404)
	s.Require().NoError(err)
	s.Empty(unlocked)
}

func (s *Suite) TestRecordScoreUnlocksOnce() {
	s.savePlayer(42, "Alice")

	out := s.record(42, "1", 1000, s.now, rule2048)
	s.Require().Len(out.Unlocked, 1)
	s.Equal(rule2048.ID, out.Unlocked[0].ID)

	out = s.record(42, "1", 1200, s.now.Add(time.Second), rule2048)
	s.Empty(out.Unlocked)

	unlocked, err := s.store.ListUnlockedAchievements(s.ctx, 42)
	s.Require().NoError(err)
	s.Require().Len(unlocked, 1)
	s.Equal(rule2048.ID, unlocked[0].RuleID)
	s.True(s.now.Equal(unlocked[0].UnlockedAt))
}

func (s *Suite) TestRecordScoreUnlocksSeveral() {
	s.savePlayer(42, "Alice")

	out := s.record(42, "2", 60, s.now, rule2048, ruleSnake)
	s.Len(out.Unlocked, 2)
}

func (s *Suite) TestConcurrentSubmissionsUnlockOnce() {
	s.savePlayer(42, "Alice")

	const submissions = 10
	var wg sync.WaitGroup
	outcomes := make([]*model.ScoreOutcome, submissions)
	errs := make([]error, submissions)
	for i := range submissions {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			outcomes[i], errs[i] = s.store.RecordScore(s.ctx, &model.ScoreRecord{
				Score:      model.GameScore{PlayerID: 42, GameID: "1", Score: 1000, CreatedAt: s.now},
				Reward:     model.RewardForScore(1000),
				Candidates: []model.AchievementRule{rule2048},
			})
		}(i)
	}
	wg.Wait()

	unlocks := 0
	for i := range submissions {
		s.Require().NoError(errs[i])
		unlocks += len(outcomes[i].Unlocked)
	}
	s.Equal(1, unlocks)

	b, err := s.store.GetBalance(s.ctx, 42)
	s.Require().NoError(err)
	s.Equal(int64(submissions*100), b.Coins)
	s.Equal(int64(submissions*500), b.XP)
	s.Equal(int64(6), b.Level)

	scores, err := s.store.ListScores(s.ctx, 42)
	s.Require().NoError(err)
	s.Len(scores, submissions)
}

func (s *Suite) TestListScoresInSubmissionOrder() {
	s.savePlayer(42, "Alice")
	s.savePlayer(7, "Bob")
	s.record(42, "1", 10, s.now)
	s.record(42, "2", 20, s.now.Add(time.Second))
	s.record(7, "1", 99, s.now)
	s.record(42, "1", 30, s.now.Add(2*time.Second))

	scores, err := s.store.ListScores(s.ctx, 42)
	s.Require().NoError(err)
	s.Require().Len(scores, 3)
	s.Equal([]int64{10, 20, 30}, []int64{scores[0].Score, scores[1].Score, scores[2].Score})
	s.Equal(model.GameID("2"), scores[1].GameID)
	s.True(s.now.Add(time.Second).Equal(scores[1].CreatedAt))
	s.Equal(model.PlayerID(42), scores[2].PlayerID)
}

// Reset tests

func (s *Suite) TestDeletePlayerRemovesDependents() {
	s.savePlayer(42, "Alice")
	s.savePlayer(7, "Bob")
	s.saveToken("pending", 42, s.now.Add(time.Minute))
	s.saveToken("login", 42, s.now.Add(time.Minute))
	s.saveToken("bob", 7, s.now.Add(time.Minute))
	_, err := s.store.RedeemHandoffToken(s.ctx, "login", "sess-1", s.now)
	s.Require().NoError(err)
	s.record(42, "1", 1000, s.now, rule2048)

	s.Require().NoError(s.store.DeletePlayer(s.ctx, 42))

	_, err = s.store.GetPlayer(s.ctx, 42)
	s.ErrorIs(err, model.ErrPlayerNotFound)
	_, err = s.store.GetBalance(s.ctx, 42)
	s.ErrorIs(err, model.ErrPlayerNotFound)
	_, err = s.store.GetSession(s.ctx, "sess-1")
	s.ErrorIs(err, model.ErrInvalidSession)
	_, err = s.store.RedeemHandoffToken(s.ctx, "pending", "sess-2", s.now)
	s.ErrorIs(err, model.ErrInvalidToken)
	scores, err := s.store.ListScores(s.ctx, 42)
	s.Require().NoError(err)
	s.Empty(scores)
	unlocked, err := s.store.ListUnlockedAchievements(s.ctx, 42)
	s.Require().NoError(err)
	s.Empty(unlocked)

	// other players are untouched
	_, err = s.store.RedeemHandoffToken(s.ctx, "bob", "sess-3", s.now)
	s.NoError(err)

	// a reset player starts again from scratch
	s.savePlayer(42, "Alice")
	b, err := s.store.GetBalance(s.ctx, 42)
	s.Require().NoError(err)
	s.Equal(int64(1), b.Level)
	s.Zero(b.Coins)
}

func (s *Suite) TestDeleteUnknownPlayer() {
	s.NoError(s.store.DeletePlayer(s.ctx, 404))
}

func (s *Suite) TestPing() {
	s.NoError(s.store.Ping(s.ctx))
}
