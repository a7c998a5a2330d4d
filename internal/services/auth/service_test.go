package auth

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/arcadebot/internal/dependencies/mocks"
	"github.com/mcoot/arcadebot/internal/model"
	"github.com/mcoot/arcadebot/internal/storage/memory"
	"github.com/mcoot/arcadebot/internal/testutil"
)

type ServiceSuite struct {
	suite.Suite
	storage *memory.Storage
	clock   *mocks.MockClock
	random  *mocks.MockRandom
	service *Service
	ctx     context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.storage = memory.New()
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.random = mocks.NewMockRandom()
	s.service = New(s.storage, s.clock, s.random, DefaultConfig(), testutil.NopLogger())
	s.ctx = context.Background()

	s.Require().NoError(s.storage.SavePlayer(s.ctx, &model.Player{ID: 42, DisplayName: "Alice", CreatedAt: s.clock.Now()}))
}

// Issue tests

func (s *ServiceSuite) TestIssueSetsExpiry() {
	s.random.QueueString("tok-1")

	token, err := s.service.Issue(s.ctx, 42)
	s.Require().NoError(err)
	s.Equal("tok-1", token.Token)
	s.Equal(model.PlayerID(42), token.PlayerID)
	s.Equal(s.clock.Now().Add(10*time.Minute), token.ExpiresAt)
}

func (s *ServiceSuite) TestIssueUnknownPlayer() {
	_, err := s.service.Issue(s.ctx, 404)
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *ServiceSuite) TestIssueAllowsSeveralOutstandingTokens() {
	s.random.QueueString("tok-1", "tok-2")

	_, err := s.service.Issue(s.ctx, 42)
	s.Require().NoError(err)
	_, err = s.service.Issue(s.ctx, 42)
	s.Require().NoError(err)

	_, err = s.service.Redeem(s.ctx, "tok-1")
	s.NoError(err)
	_, err = s.service.Redeem(s.ctx, "tok-2")
	s.NoError(err)
}

func (s *ServiceSuite) TestIssueRetriesOnCollision() {
	s.random.QueueString("dup", "dup", "fresh")

	_, err := s.service.Issue(s.ctx, 42)
	s.Require().NoError(err)

	token, err := s.service.Issue(s.ctx, 42)
	s.Require().NoError(err)
	s.Equal("fresh", token.Token)
}

func (s *ServiceSuite) TestIssueGivesUpAfterRepeatedCollisions() {
	s.random.QueueString("dup", "dup", "dup", "dup")

	_, err := s.service.Issue(s.ctx, 42)
	s.Require().NoError(err)

	_, err = s.service.Issue(s.ctx, 42)
	s.ErrorIs(err, model.ErrTokenCollision)
}

func (s *ServiceSuite) TestDefaultTokenLength() {
	svc := New(s.storage, s.clock, s.random, Config{}, testutil.NopLogger())
	s.Equal(10*time.Minute, svc.TokenTTL())
	s.Equal(43, svc.tokenLength)
}

// Redeem tests

func (s *ServiceSuite) TestRedeemReturnsSessionAndName() {
	s.random.QueueString("tok")
	s.random.QueueUUID("sess-1")
	_, err := s.service.Issue(s.ctx, 42)
	s.Require().NoError(err)

	s.clock.Advance(9 * time.Minute)
	r, err := s.service.Redeem(s.ctx, "tok")
	s.Require().NoError(err)
	s.Equal("sess-1", r.Session.ID)
	s.Equal("Alice", r.Player.DisplayName)

	player, err := s.service.Resolve(s.ctx, "sess-1")
	s.Require().NoError(err)
	s.Equal(model.PlayerID(42), player.ID)
}

func (s *ServiceSuite) TestRedeemTwiceFails() {
	s.random.QueueString("tok")
	_, err := s.service.Issue(s.ctx, 42)
	s.Require().NoError(err)

	_, err = s.service.Redeem(s.ctx, "tok")
	s.Require().NoError(err)
	_, err = s.service.Redeem(s.ctx, "tok")
	s.ErrorIs(err, model.ErrInvalidToken)
}

func (s *ServiceSuite) TestRedeemExpired() {
	s.random.QueueString("tok")
	_, err := s.service.Issue(s.ctx, 42)
	s.Require().NoError(err)

	s.clock.Advance(10*time.Minute + time.Second)
	_, err = s.service.Redeem(s.ctx, "tok")
	s.ErrorIs(err, model.ErrTokenExpired)
}

func (s *ServiceSuite) TestRedeemEmptyToken() {
	_, err := s.service.Redeem(s.ctx, "")
	s.ErrorIs(err, model.ErrInvalidToken)
}

func (s *ServiceSuite) TestConcurrentRedeemSingleWinner() {
	s.random.QueueString("tok")
	_, err := s.service.Issue(s.ctx, 42)
	s.Require().NoError(err)

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for range 2 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.service.Redeem(s.ctx, "tok")
			if err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
				return
			}
			s.ErrorIs(err, model.ErrInvalidToken)
		}()
	}
	wg.Wait()
	s.Equal(1, wins)
}

// Resolve tests

func (s *ServiceSuite) TestResolveUnknownSession() {
	_, err := s.service.Resolve(s.ctx, "nope")
	s.ErrorIs(err, model.ErrInvalidSession)
	_, err = s.service.Resolve(s.ctx, "")
	s.ErrorIs(err, model.ErrInvalidSession)
}

func (s *ServiceSuite) TestResolveAfterReset() {
	s.random.QueueString("tok")
	s.random.QueueUUID("sess-1")
	_, err := s.service.Issue(s.ctx, 42)
	s.Require().NoError(err)
	_, err = s.service.Redeem(s.ctx, "tok")
	s.Require().NoError(err)

	s.Require().NoError(s.storage.DeletePlayer(s.ctx, 42))

	_, err = s.service.Resolve(s.ctx, "sess-1")
	s.ErrorIs(err, model.ErrInvalidSession)
}

// Sweep tests

func (s *ServiceSuite) TestSweepExpiredTokens() {
	s.random.QueueString("old", "new")
	_, err := s.service.Issue(s.ctx, 42)
	s.Require().NoError(err)
	s.clock.Advance(5 * time.Minute)
	_, err = s.service.Issue(s.ctx, 42)
	s.Require().NoError(err)

	s.clock.Advance(6 * time.Minute)
	n, err := s.service.SweepExpiredTokens(s.ctx)
	s.Require().NoError(err)
	s.Equal(1, n)

	_, err = s.service.Redeem(s.ctx, "new")
	s.NoError(err)
}

// Sweeper tests

func (s *ServiceSuite) TestRunSweeperRemovesExpiredTokens() {
	s.random.QueueString("old")
	_, err := s.service.Issue(s.ctx, 42)
	s.Require().NoError(err)
	s.clock.Advance(11 * time.Minute)

	ctx, cancel := context.WithCancel(s.ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		s.service.RunSweeper(ctx, 5*time.Millisecond)
	}()

	// Redeem reports expired while the row exists and invalid once swept
	s.Eventually(func() bool {
		_, err := s.service.Redeem(s.ctx, "old")
		return errors.Is(err, model.ErrInvalidToken)
	}, time.Second, 10*time.Millisecond)

	cancel()
	<-done
}

func (s *ServiceSuite) TestRunSweeperDisabled() {
	// Returns immediately instead of blocking
	s.service.RunSweeper(s.ctx, 0)
}
