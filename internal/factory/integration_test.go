package factory

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/arcadebot/internal/model"
	"github.com/mcoot/arcadebot/internal/services/auth"
)

type IntegrationSuite struct {
	suite.Suite
	app *TestApp
	ctx context.Context
}

func TestIntegrationSuite(t *testing.T) {
	suite.Run(t, new(IntegrationSuite))
}

func (s *IntegrationSuite) SetupTest() {
	s.app = NewTestApp()
	s.ctx = context.Background()
}

// Test: a failing notification sink never fails the submission
func (s *IntegrationSuite) TestSinkFailureDoesNotFailSubmit() {
	s.app.MockSink.Err = errors.New("bot blocked by user")
	s.app.MockRandom.QueueUUID("session-err")

	_, err := s.app.PlayerService.Register(s.ctx, 7, "Grace")
	s.Require().NoError(err)
	tok, err := s.app.AuthService.Issue(s.ctx, 7)
	s.Require().NoError(err)
	_, err = s.app.AuthService.Redeem(s.ctx, tok.Token)
	s.Require().NoError(err)

	res, err := s.app.LedgerService.Submit(s.ctx, "session-err", "1", 1500)
	s.Require().NoError(err)
	s.Require().Len(res.NewAchievements, 1)

	s.app.Notifier.Wait()
	s.Empty(s.app.MockSink.Sent())

	profile, err := s.app.PlayerService.Profile(s.ctx, 7)
	s.Require().NoError(err)
	s.Equal([]model.RuleID{"2048_1000"}, profile.UnlockedIDs())
	s.Equal(int64(150), profile.Balance.Coins)
}

// Test: chat registration through to a ranked score on the web side
func (s *IntegrationSuite) TestHandoffToLeaderboardFlow() {
	s.app.MockRandom.QueueString("handoff-token")
	s.app.MockRandom.QueueUUID("session-1")

	// Step 1: first contact from the chat front end
	p, err := s.app.PlayerService.Register(s.ctx, 42, "Ada")
	s.Require().NoError(err)
	s.Equal("Ada", p.DisplayName)

	// Step 2: /games issues a handoff token
	tok, err := s.app.AuthService.Issue(s.ctx, 42)
	s.Require().NoError(err)
	s.Equal("handoff-token", tok.Token)
	s.Equal(s.app.MockClock.Now().Add(10*time.Minute), tok.ExpiresAt)

	// Step 3: the browser redeems it
	red, err := s.app.AuthService.Redeem(s.ctx, tok.Token)
	s.Require().NoError(err)
	s.Equal("session-1", red.Session.ID)
	s.Equal("Ada", red.Player.DisplayName)

	// The token is single use
	_, err = s.app.AuthService.Redeem(s.ctx, tok.Token)
	s.ErrorIs(err, model.ErrInvalidToken)

	// Step 4: play 2048 twice
	res, err := s.app.LedgerService.Submit(s.ctx, "session-1", "1", 1200)
	s.Require().NoError(err)
	s.Equal(int64(120), res.EarnedCoins)
	s.Equal(int64(600), res.EarnedXP)
	s.Require().Len(res.NewAchievements, 1)
	s.Equal(model.RuleID("2048_1000"), res.NewAchievements[0].ID)

	s.app.MockClock.Advance(time.Minute)
	res, err = s.app.LedgerService.Submit(s.ctx, "session-1", "1", 800)
	s.Require().NoError(err)
	s.Empty(res.NewAchievements)
	s.Equal(int64(200), res.Balance.Coins)
	s.Equal(int64(1000), res.Balance.XP)
	s.Equal(int64(2), res.Balance.Level)

	// And snake once
	_, err = s.app.LedgerService.Submit(s.ctx, "session-1", "2", 30)
	s.Require().NoError(err)

	// Step 5: the unlock was announced
	s.app.Notifier.Wait()
	sent := s.app.MockSink.Sent()
	s.Require().Len(sent, 1)
	s.Equal(model.PlayerID(42), sent[0].PlayerID)
	s.Contains(sent[0].Text, "Tile Apprentice")

	// Step 6: best scores, one per game, highest first
	best, err := s.app.LeaderboardService.BestScores(s.ctx, "session-1")
	s.Require().NoError(err)
	s.Require().Len(best, 2)
	s.Equal(model.GameID("1"), best[0].GameID)
	s.Equal(int64(1200), best[0].Score)
	s.Equal(model.GameID("2"), best[1].GameID)

	profile, err := s.app.PlayerService.Profile(s.ctx, 42)
	s.Require().NoError(err)
	s.Equal([]model.RuleID{"2048_1000"}, profile.UnlockedIDs())

	// Step 7: administrative reset invalidates the session
	s.Require().NoError(s.app.PlayerService.Reset(s.ctx, 42))
	_, err = s.app.LedgerService.Submit(s.ctx, "session-1", "1", 10)
	s.ErrorIs(err, model.ErrInvalidSession)
}

// Test: an expired token cannot be redeemed and is swept later
func (s *IntegrationSuite) TestExpiredTokenIsSwept() {
	_, err := s.app.PlayerService.Register(s.ctx, 7, "Bob")
	s.Require().NoError(err)

	tok, err := s.app.AuthService.Issue(s.ctx, 7)
	s.Require().NoError(err)

	s.app.MockClock.Advance(11 * time.Minute)
	_, err = s.app.AuthService.Redeem(s.ctx, tok.Token)
	s.ErrorIs(err, model.ErrTokenExpired)

	n, err := s.app.AuthService.SweepExpiredTokens(s.ctx)
	s.Require().NoError(err)
	s.Equal(1, n)

	_, err = s.app.AuthService.Redeem(s.ctx, tok.Token)
	s.ErrorIs(err, model.ErrInvalidToken)
}

// Test: admin tokens minted by the app verify against the same app
func (s *IntegrationSuite) TestAdminTokenRoundTrip() {
	s.True(s.app.AdminTokens.Enabled())
	token, err := s.app.AdminTokens.Mint("ops", auth.RoleAdmin, time.Hour)
	s.Require().NoError(err)

	claims, err := s.app.AdminTokens.Verify(token)
	s.Require().NoError(err)
	s.Equal("ops", claims.Subject)
}

func TestNewRejectsUnknownStorage(t *testing.T) {
	_, err := New(context.Background(), Config{StorageType: "mongo"})
	if err == nil {
		t.Fatal("expected error for unknown storage type")
	}
}

func TestNewRequiresRedisConfig(t *testing.T) {
	_, err := New(context.Background(), Config{StorageType: StorageTypeRedis})
	if err == nil {
		t.Fatal("expected error without RedisConfig")
	}
}

func TestNewWithSQLite(t *testing.T) {
	ctx := context.Background()
	app, err := New(ctx, Config{
		StorageType: StorageTypeSQLite,
		SQLitePath:  filepath.Join(t.TempDir(), "arcade.db"),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer func() { _ = app.Close() }()

	if err := app.Storage.Ping(ctx); err != nil {
		t.Fatalf("Ping: %v", err)
	}
	if app.AdminTokens.Enabled() {
		t.Fatal("admin tokens should be disabled without a secret")
	}
}
