package telegram

import (
	"context"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/arcadebot/internal/dependencies/mocks"
	"github.com/mcoot/arcadebot/internal/model"
	"github.com/mcoot/arcadebot/internal/services/achievement"
	"github.com/mcoot/arcadebot/internal/services/auth"
	"github.com/mcoot/arcadebot/internal/services/leaderboard"
	"github.com/mcoot/arcadebot/internal/services/player"
	"github.com/mcoot/arcadebot/internal/storage/memory"
	"github.com/mcoot/arcadebot/internal/testutil"
)

type fakeBot struct {
	mu       sync.Mutex
	sent     []tgbotapi.Chattable
	requests []tgbotapi.Chattable
	updates  chan tgbotapi.Update
	stopped  bool
}

func newFakeBot() *fakeBot {
	return &fakeBot{updates: make(chan tgbotapi.Update, 10)}
}

func (f *fakeBot) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, c)
	return tgbotapi.Message{MessageID: len(f.sent)}, nil
}

func (f *fakeBot) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeBot) GetUpdatesChan(tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return f.updates
}

func (f *fakeBot) StopReceivingUpdates() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopped = true
}

func (f *fakeBot) lastMessage() tgbotapi.MessageConfig {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sent[len(f.sent)-1].(tgbotapi.MessageConfig)
}

func user(id int64, first string) *tgbotapi.User {
	return &tgbotapi.User{ID: id, FirstName: first}
}

func commandUpdate(from *tgbotapi.User, text string) tgbotapi.Update {
	cmd := strings.SplitN(text, " ", 2)[0]
	return tgbotapi.Update{Message: &tgbotapi.Message{
		From:     from,
		Chat:     &tgbotapi.Chat{ID: from.ID},
		Text:     text,
		Entities: []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(cmd)}},
	}}
}

func textUpdate(from *tgbotapi.User, text string) tgbotapi.Update {
	return tgbotapi.Update{Message: &tgbotapi.Message{
		From: from,
		Chat: &tgbotapi.Chat{ID: from.ID},
		Text: text,
	}}
}

func callbackUpdate(from *tgbotapi.User, chatID int64, data string) tgbotapi.Update {
	return tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID:      "cb-1",
		From:    from,
		Data:    data,
		Message: &tgbotapi.Message{MessageID: 7, Chat: &tgbotapi.Chat{ID: chatID}},
	}}
}

type HandlerSuite struct {
	suite.Suite
	storage *memory.Storage
	clock   *mocks.MockClock
	random  *mocks.MockRandom
	bot     *fakeBot
	handler *Handler
	ctx     context.Context
	alice   *tgbotapi.User
	bob     *tgbotapi.User
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	s.storage = memory.New()
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.random = mocks.NewMockRandom()
	s.bot = newFakeBot()
	logger := testutil.NopLogger()

	authSvc := auth.New(s.storage, s.clock, s.random, auth.DefaultConfig(), logger)
	s.handler = NewHandler(
		s.bot,
		player.New(s.storage, s.clock, logger),
		authSvc,
		leaderboard.New(s.storage, authSvc),
		achievement.DefaultRules(),
		Config{WebAppURL: "https://arcade.example/app?lang=en"},
		logger,
	)
	s.ctx = context.Background()
	s.alice = user(42, "Alice")
	s.bob = user(7, "Bob")
}

func (s *HandlerSuite) handle(update tgbotapi.Update) {
	s.Require().NoError(s.handler.Handle(s.ctx, update))
}

func (s *HandlerSuite) recordScore(id model.PlayerID, game model.GameID, score int64) {
	_, err := s.storage.RecordScore(s.ctx, &model.ScoreRecord{
		Score:  model.GameScore{PlayerID: id, GameID: game, Score: score, CreatedAt: s.clock.Now()},
		Reward: model.RewardForScore(score),
	})
	s.Require().NoError(err)
}

func (s *HandlerSuite) TestStartRegistersPlayer() {
	s.handle(commandUpdate(s.alice, "/start"))

	p, err := s.storage.GetPlayer(s.ctx, 42)
	s.Require().NoError(err)
	s.Equal("Alice", p.DisplayName)

	msg := s.bot.lastMessage()
	s.Equal(int64(42), msg.ChatID)
	s.Contains(msg.Text, "Alice")
	s.IsType(tgbotapi.ReplyKeyboardMarkup{}, msg.ReplyMarkup)
}

func (s *HandlerSuite) TestGamesIssuesLink() {
	s.handle(commandUpdate(s.alice, "/start"))
	s.random.QueueString("tok-abc")

	s.handle(commandUpdate(s.alice, "/games"))

	msg := s.bot.lastMessage()
	s.Contains(msg.Text, "10 minutes")
	markup, ok := msg.ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)
	s.Require().True(ok)
	link := *markup.InlineKeyboard[0][0].URL
	u, err := url.Parse(link)
	s.Require().NoError(err)
	s.Equal("tok-abc", u.Query().Get("token"))
	s.Equal("en", u.Query().Get("lang"))

	_, err = s.storage.RedeemHandoffToken(s.ctx, "tok-abc", "sess", s.clock.Now())
	s.NoError(err)
}

func (s *HandlerSuite) TestGamesBeforeStart() {
	s.handle(commandUpdate(s.alice, "/games"))
	s.Contains(s.bot.lastMessage().Text, "/start")
}

func (s *HandlerSuite) TestMenuLabelDispatches() {
	s.handle(commandUpdate(s.alice, "/start"))
	s.handle(textUpdate(s.alice, "👤 Profile"))

	msg := s.bot.lastMessage()
	s.Contains(msg.Text, "Coins: 0")
	s.Contains(msg.Text, "level 1")
}

func (s *HandlerSuite) TestPlainTextIgnored() {
	s.handle(textUpdate(s.alice, "hello there"))
	s.Empty(s.bot.sent)
}

func (s *HandlerSuite) TestUnknownCommandShowsHelp() {
	s.handle(commandUpdate(s.alice, "/dance"))
	s.Contains(s.bot.lastMessage().Text, "/stats")
}

func (s *HandlerSuite) TestAchievementsListsUnlocked() {
	s.handle(commandUpdate(s.alice, "/start"))
	_, err := s.storage.RecordScore(s.ctx, &model.ScoreRecord{
		Score:      model.GameScore{PlayerID: 42, GameID: "1", Score: 1000, CreatedAt: s.clock.Now()},
		Reward:     model.RewardForScore(1000),
		Candidates: achievement.DefaultRules().Candidates("1", 1000),
	})
	s.Require().NoError(err)

	s.handle(commandUpdate(s.alice, "/achievements"))

	text := s.bot.lastMessage().Text
	s.Contains(text, "✅ <b>Tile Apprentice</b>")
	s.Contains(text, "🔒 <b>Tile Master</b>")
}

func (s *HandlerSuite) TestStatsWithoutScores() {
	s.handle(commandUpdate(s.alice, "/start"))
	s.handle(commandUpdate(s.alice, "/stats"))
	s.Equal(noStatsText, s.bot.lastMessage().Text)
}

func (s *HandlerSuite) TestStatsFirstPage() {
	s.handle(commandUpdate(s.alice, "/start"))
	s.recordScore(42, "1", 1200)
	s.recordScore(42, "2", 300)

	s.handle(commandUpdate(s.alice, "/stats"))

	msg := s.bot.lastMessage()
	s.Contains(msg.Text, "2048")
	s.Contains(msg.Text, "Game 1 of 2")
	markup := msg.ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)
	s.Equal(StatsCallbackData(1, 42), *markup.InlineKeyboard[0][0].CallbackData)
	s.Equal(StatsCallbackData(1, 42), *markup.InlineKeyboard[0][2].CallbackData)
}

func (s *HandlerSuite) TestStatsPageEditsMessage() {
	s.handle(commandUpdate(s.alice, "/start"))
	s.recordScore(42, "1", 1200)
	s.recordScore(42, "2", 300)

	s.handle(callbackUpdate(s.alice, 42, StatsCallbackData(-1, 42)))

	s.Require().Len(s.bot.requests, 2)
	edit, ok := s.bot.requests[0].(tgbotapi.EditMessageTextConfig)
	s.Require().True(ok)
	s.Equal(7, edit.MessageID)
	s.Contains(edit.Text, "Snake")
	s.Contains(edit.Text, "Game 2 of 2")
	answer, ok := s.bot.requests[1].(tgbotapi.CallbackConfig)
	s.Require().True(ok)
	s.Equal("cb-1", answer.CallbackQueryID)
}

func (s *HandlerSuite) TestStatsPageRejectsOtherUser() {
	s.handle(commandUpdate(s.alice, "/start"))
	s.recordScore(42, "1", 1200)

	s.handle(callbackUpdate(s.bob, 42, StatsCallbackData(0, 42)))

	s.Require().Len(s.bot.requests, 1)
	answer, ok := s.bot.requests[0].(tgbotapi.CallbackConfig)
	s.Require().True(ok)
	s.True(answer.ShowAlert)
	s.Contains(answer.Text, "someone else")
}

func (s *HandlerSuite) TestMalformedCallbackIgnored() {
	s.handle(callbackUpdate(s.alice, 42, "stats:x:42"))
	s.handle(callbackUpdate(s.alice, 42, "other:1:42"))
	s.Empty(s.bot.requests)
}

func (s *HandlerSuite) TestPollerDispatchesUntilCancelled() {
	poller := NewPoller(s.bot, s.handler, 1, testutil.NopLogger())
	ctx, cancel := context.WithCancel(s.ctx)
	done := make(chan struct{})
	go func() {
		poller.Run(ctx)
		close(done)
	}()

	s.bot.updates <- commandUpdate(s.alice, "/start")
	s.Eventually(func() bool {
		_, err := s.storage.GetPlayer(s.ctx, 42)
		return err == nil
	}, time.Second, 10*time.Millisecond)

	cancel()
	<-done
	s.True(s.bot.stopped)
}
