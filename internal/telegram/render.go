package telegram

import (
	"fmt"
	"html"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/mcoot/arcadebot/internal/model"
	"github.com/mcoot/arcadebot/internal/services/achievement"
	"github.com/mcoot/arcadebot/internal/services/leaderboard"
	"github.com/mcoot/arcadebot/internal/services/player"
)

const helpText = `<b>Commands</b>

/games - open the game library
/profile - coins, XP and level
/achievements - what you have unlocked
/stats - your best score in every game
/help - this message`

func menuKeyboard() tgbotapi.ReplyKeyboardMarkup {
	var rows [][]tgbotapi.KeyboardButton
	for i := 0; i < len(menu); i += 2 {
		row := []tgbotapi.KeyboardButton{tgbotapi.NewKeyboardButton(menu[i].Label)}
		if i+1 < len(menu) {
			row = append(row, tgbotapi.NewKeyboardButton(menu[i+1].Label))
		}
		rows = append(rows, row)
	}
	kb := tgbotapi.NewReplyKeyboard(rows...)
	kb.ResizeKeyboard = true
	return kb
}

func renderWelcome(p *model.Player) string {
	return fmt.Sprintf("👋 Hi, <b>%s</b>!\n\nWelcome to the arcade. Pick a game with /games or use the menu below.",
		html.EscapeString(p.DisplayName))
}

func renderGamesLink(ttl time.Duration) string {
	return fmt.Sprintf("🎮 Your personal link to the game library is ready.\n\n⏳ It is valid for %s and works once.",
		humanizeTTL(ttl))
}

func humanizeTTL(ttl time.Duration) string {
	if ttl%time.Minute == 0 {
		m := int(ttl / time.Minute)
		if m == 1 {
			return "1 minute"
		}
		return fmt.Sprintf("%d minutes", m)
	}
	return ttl.String()
}

func renderProfile(p *player.Profile, rules *achievement.Rules) string {
	var b strings.Builder
	fmt.Fprintf(&b, "👤 <b>%s</b>\n\n", html.EscapeString(p.Player.DisplayName))
	fmt.Fprintf(&b, "💰 Coins: %d\n", p.Balance.Coins)
	fmt.Fprintf(&b, "⭐ XP: %d (level %d)\n", p.Balance.XP, p.Balance.Level)
	fmt.Fprintf(&b, "🏆 Achievements: %d/%d", len(p.Unlocked), rules.Len())
	return b.String()
}

func renderAchievements(p *player.Profile, rules *achievement.Rules) string {
	unlocked := make(map[model.RuleID]bool, len(p.Unlocked))
	for _, u := range p.Unlocked {
		unlocked[u.RuleID] = true
	}

	var b strings.Builder
	fmt.Fprintf(&b, "🏆 <b>Achievements</b> (%d/%d)\n", len(p.Unlocked), rules.Len())
	for _, rule := range rules.All() {
		mark := "🔒"
		if unlocked[rule.ID] {
			mark = "✅"
		}
		fmt.Fprintf(&b, "\n%s <b>%s</b> - %s", mark, html.EscapeString(rule.Name), html.EscapeString(rule.Description))
	}
	return b.String()
}

const noStatsText = "📊 No results yet. Play something from /games first!"

func renderStatsPage(view leaderboard.PageView) string {
	e := view.Entry
	return fmt.Sprintf("📊 <b>Your best results</b>\n\n🎮 <b>%s</b>\n🏆 Score: %d\n📅 %s\n\nGame %d of %d",
		html.EscapeString(GameName(e.GameID)),
		e.Score,
		e.CreatedAt.UTC().Format("2006-01-02 15:04"),
		view.Index+1,
		view.Total,
	)
}

func statsKeyboard(view leaderboard.PageView, requester model.PlayerID) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("◀️", StatsCallbackData(view.Prev, requester)),
		tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("%d/%d", view.Index+1, view.Total), StatsCallbackData(view.Index, requester)),
		tgbotapi.NewInlineKeyboardButtonData("▶️", StatsCallbackData(view.Next, requester)),
	))
}
