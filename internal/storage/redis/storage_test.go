package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/arcadebot/internal/model"
	"github.com/mcoot/arcadebot/internal/storage"
	"github.com/mcoot/arcadebot/internal/storage/storagetest"
)

func newTestStorage(t *testing.T) (*Storage, *miniredis.Miniredis) {
	mini := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{
		Addr: mini.Addr(),
	})
	s := NewWithClient(client, DefaultConfig())
	t.Cleanup(func() { _ = s.Close() })
	return s, mini
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, &storagetest.Suite{
		NewStorage: func(t *testing.T) storage.Storage {
			s, _ := newTestStorage(t)
			return s
		},
	})
}

type KeyLayoutSuite struct {
	suite.Suite
	mini    *miniredis.Miniredis
	storage *Storage
	ctx     context.Context
	now     time.Time
}

func TestKeyLayoutSuite(t *testing.T) {
	suite.Run(t, new(KeyLayoutSuite))
}

func (s *KeyLayoutSuite) SetupTest() {
	s.storage, s.mini = newTestStorage(s.T())
	s.ctx = context.Background()
	s.now = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	s.Require().NoError(s.storage.SavePlayer(s.ctx, &model.Player{ID: 42, DisplayName: "Alice", CreatedAt: s.now}))
}

func (s *KeyLayoutSuite) TestTokenIsIndexed() {
	s.Require().NoError(s.storage.SaveHandoffToken(s.ctx, &model.HandoffToken{
		Token: "tok", PlayerID: 42, ExpiresAt: s.now.Add(time.Minute),
	}))

	s.True(s.mini.Exists("arcade:token:tok"))
	members, err := s.mini.Members("arcade:player:42:tokens")
	s.Require().NoError(err)
	s.Equal([]string{"tok"}, members)
	score, err := s.mini.ZScore("arcade:idx:token_expiry", "tok")
	s.Require().NoError(err)
	s.Equal(float64(s.now.Add(time.Minute).UnixMilli()), score)
}

func (s *KeyLayoutSuite) TestRedeemMovesTokenToSession() {
	s.Require().NoError(s.storage.SaveHandoffToken(s.ctx, &model.HandoffToken{
		Token: "tok", PlayerID: 42, ExpiresAt: s.now.Add(time.Minute),
	}))
	_, err := s.storage.RedeemHandoffToken(s.ctx, "tok", "sess-1", s.now)
	s.Require().NoError(err)

	s.False(s.mini.Exists("arcade:token:tok"))
	s.True(s.mini.Exists("arcade:session:sess-1"))
	s.Equal("42", s.mini.HGet("arcade:session:sess-1", "player_id"))
	members, err := s.mini.Members("arcade:player:42:sessions")
	s.Require().NoError(err)
	s.Equal([]string{"sess-1"}, members)
}

func (s *KeyLayoutSuite) TestDeletePlayerLeavesNoKeys() {
	s.Require().NoError(s.storage.SaveHandoffToken(s.ctx, &model.HandoffToken{
		Token: "tok", PlayerID: 42, ExpiresAt: s.now.Add(time.Minute),
	}))
	_, err := s.storage.RecordScore(s.ctx, &model.ScoreRecord{
		Score:  model.GameScore{PlayerID: 42, GameID: "1", Score: 10, CreatedAt: s.now},
		Reward: model.RewardForScore(10),
	})
	s.Require().NoError(err)

	s.Require().NoError(s.storage.DeletePlayer(s.ctx, 42))

	for _, key := range []string{
		"arcade:player:42",
		"arcade:balance:42",
		"arcade:scores:42",
		"arcade:player:42:tokens",
		"arcade:token:tok",
	} {
		s.False(s.mini.Exists(key), key)
	}
	_, err = s.mini.ZScore("arcade:idx:token_expiry", "tok")
	s.Error(err)
}

func (s *KeyLayoutSuite) TestCustomPrefix() {
	cfg := DefaultConfig()
	cfg.KeyPrefix = "test"
	other := NewWithClient(redis.NewClient(&redis.Options{Addr: s.mini.Addr()}), cfg)
	defer other.Close()

	s.Require().NoError(other.SavePlayer(s.ctx, &model.Player{ID: 7, DisplayName: "Bob", CreatedAt: s.now}))
	s.True(s.mini.Exists("test:player:7"))

	_, err := s.storage.GetPlayer(s.ctx, 7)
	s.ErrorIs(err, model.ErrPlayerNotFound)
}
