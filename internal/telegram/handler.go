// Package telegram is the chat front end: it turns bot updates into calls on
// the player, auth and leaderboard services.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/mcoot/arcadebot/internal/model"
	"github.com/mcoot/arcadebot/internal/services/achievement"
	"github.com/mcoot/arcadebot/internal/services/leaderboard"
	"github.com/mcoot/arcadebot/internal/services/player"
)

// Messenger is the part of tgbotapi.BotAPI used to reply
type Messenger interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Players registers chat identities and reads profiles
type Players interface {
	Register(ctx context.Context, id model.PlayerID, displayName string) (*model.Player, error)
	Profile(ctx context.Context, id model.PlayerID) (*player.Profile, error)
}

// TokenIssuer creates handoff tokens
type TokenIssuer interface {
	Issue(ctx context.Context, playerID model.PlayerID) (*model.HandoffToken, error)
	TokenTTL() time.Duration
}

// ScoreReader reads best scores
type ScoreReader interface {
	BestScoresForPlayer(ctx context.Context, playerID model.PlayerID) ([]model.GameScore, error)
}

// Config holds front-end settings
type Config struct {
	// WebAppURL is the game library address; the token is appended as ?token=
	WebAppURL string
}

// request is one update being handled
type request struct {
	update  tgbotapi.Update
	command Command
	from    *tgbotapi.User
	chatID  int64
}

type handlerFunc func(ctx context.Context, req *request) error

// Handler dispatches parsed commands through a fixed table
type Handler struct {
	bot         Messenger
	players     Players
	tokens      TokenIssuer
	leaderboard ScoreReader
	rules       *achievement.Rules
	cfg         Config
	logger      *slog.Logger

	table map[CommandID]handlerFunc
}

// NewHandler creates a Handler
func NewHandler(
	bot Messenger,
	players Players,
	tokens TokenIssuer,
	leaderboard ScoreReader,
	rules *achievement.Rules,
	cfg Config,
	logger *slog.Logger,
) *Handler {
	h := &Handler{
		bot:         bot,
		players:     players,
		tokens:      tokens,
		leaderboard: leaderboard,
		rules:       rules,
		cfg:         cfg,
		logger:      logger,
	}
	h.table = map[CommandID]handlerFunc{
		CmdStart:        h.handleStart,
		CmdGames:        h.handleGames,
		CmdProfile:      h.handleProfile,
		CmdAchievements: h.handleAchievements,
		CmdStats:        h.handleStats,
		CmdHelp:         h.handleHelp,
		CmdStatsPage:    h.handleStatsPage,
	}
	return h
}

// Handle processes a single update. Updates that carry no command are ignored.
func (h *Handler) Handle(ctx context.Context, update tgbotapi.Update) error {
	cmd, ok := ParseUpdate(update)
	if !ok {
		return nil
	}
	req := &request{update: update, command: cmd}
	if cq := update.CallbackQuery; cq != nil {
		req.from = cq.From
		if cq.Message != nil && cq.Message.Chat != nil {
			req.chatID = cq.Message.Chat.ID
		}
	} else {
		req.from = update.Message.From
		req.chatID = update.Message.Chat.ID
	}
	if req.from == nil {
		return nil
	}

	fn, ok := h.table[cmd.ID]
	if !ok {
		return fmt.Errorf("no handler for command %q", cmd.ID)
	}
	if err := fn(ctx, req); err != nil {
		h.logger.Error("chat command failed",
			slog.String("command", string(cmd.ID)),
			slog.Int64("user_id", req.from.ID),
			slog.String("error", err.Error()),
		)
		if req.chatID != 0 {
			_ = h.reply(req, "⚠️ Something went wrong. Please try again later.")
		}
		return err
	}
	return nil
}

func (h *Handler) reply(req *request, text string) error {
	msg := tgbotapi.NewMessage(req.chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	_, err := h.bot.Send(msg)
	return err
}

func displayName(u *tgbotapi.User) string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		name = u.UserName
	}
	return name
}

func (h *Handler) handleStart(ctx context.Context, req *request) error {
	p, err := h.players.Register(ctx, model.PlayerID(req.from.ID), displayName(req.from))
	if err != nil {
		return err
	}
	msg := tgbotapi.NewMessage(req.chatID, renderWelcome(p))
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = menuKeyboard()
	_, err = h.bot.Send(msg)
	return err
}

func (h *Handler) handleGames(ctx context.Context, req *request) error {
	token, err := h.tokens.Issue(ctx, model.PlayerID(req.from.ID))
	if errors.Is(err, model.ErrPlayerNotFound) {
		return h.reply(req, "Please send /start first.")
	}
	if err != nil {
		return err
	}
	link, err := h.gameLink(token.Token)
	if err != nil {
		return err
	}
	msg := tgbotapi.NewMessage(req.chatID, renderGamesLink(h.tokens.TokenTTL()))
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonURL("🎮 Open games", link),
	))
	_, err = h.bot.Send(msg)
	return err
}

// gameLink appends the token to the web app address as ?token=
func (h *Handler) gameLink(token string) (string, error) {
	u, err := url.Parse(h.cfg.WebAppURL)
	if err != nil {
		return "", fmt.Errorf("parse web app url: %w", err)
	}
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (h *Handler) loadProfile(ctx context.Context, req *request) (*player.Profile, bool, error) {
	p, err := h.players.Profile(ctx, model.PlayerID(req.from.ID))
	if errors.Is(err, model.ErrPlayerNotFound) {
		return nil, false, h.reply(req, "Please send /start first.")
	}
	if err != nil {
		return nil, false, err
	}
	return p, true, nil
}

func (h *Handler) handleProfile(ctx context.Context, req *request) error {
	p, ok, err := h.loadProfile(ctx, req)
	if !ok {
		return err
	}
	return h.reply(req, renderProfile(p, h.rules))
}

func (h *Handler) handleAchievements(ctx context.Context, req *request) error {
	p, ok, err := h.loadProfile(ctx, req)
	if !ok {
		return err
	}
	return h.reply(req, renderAchievements(p, h.rules))
}

func (h *Handler) handleHelp(ctx context.Context, req *request) error {
	return h.reply(req, helpText)
}

func (h *Handler) handleStats(ctx context.Context, req *request) error {
	requester := model.PlayerID(req.from.ID)
	scores, err := h.leaderboard.BestScoresForPlayer(ctx, requester)
	if err != nil {
		return err
	}
	view, err := leaderboard.Page(scores, 0)
	if errors.Is(err, leaderboard.ErrEmpty) {
		return h.reply(req, noStatsText)
	}
	if err != nil {
		return err
	}
	msg := tgbotapi.NewMessage(req.chatID, renderStatsPage(view))
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = statsKeyboard(view, requester)
	_, err = h.bot.Send(msg)
	return err
}

func (h *Handler) handleStatsPage(ctx context.Context, req *request) error {
	cq := req.update.CallbackQuery
	requester := req.command.Requester
	if model.PlayerID(req.from.ID) != requester {
		_, err := h.bot.Request(tgbotapi.NewCallbackWithAlert(cq.ID, "These stats belong to someone else. Send /stats to see yours."))
		return err
	}

	scores, err := h.leaderboard.BestScoresForPlayer(ctx, requester)
	if err != nil {
		return err
	}
	view, err := leaderboard.Page(scores, req.command.Page)
	if errors.Is(err, leaderboard.ErrEmpty) {
		_, err = h.bot.Request(tgbotapi.NewCallback(cq.ID, "No results yet"))
		return err
	}
	if err != nil {
		return err
	}

	if cq.Message != nil {
		edit := tgbotapi.NewEditMessageTextAndMarkup(req.chatID, cq.Message.MessageID, renderStatsPage(view), statsKeyboard(view, requester))
		edit.ParseMode = tgbotapi.ModeHTML
		if _, err := h.bot.Request(edit); err != nil {
			return err
		}
	}
	_, err = h.bot.Request(tgbotapi.NewCallback(cq.ID, ""))
	return err
}
