package telegram

import (
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/mcoot/arcadebot/internal/model"
)

// CommandID names a chat action
type CommandID string

const (
	CmdStart        CommandID = "start"
	CmdGames        CommandID = "games"
	CmdProfile      CommandID = "profile"
	CmdAchievements CommandID = "achievements"
	CmdStats        CommandID = "stats"
	CmdHelp         CommandID = "help"
	// CmdStatsPage is the pager button callback, never typed by users
	CmdStatsPage CommandID = "stats_page"
)

// Command is a parsed update. Page and Requester are set for CmdStatsPage only.
type Command struct {
	ID        CommandID
	Page      int
	Requester model.PlayerID
}

// menuItem is a reply-keyboard button
type menuItem struct {
	Label   string
	Command CommandID
}

// menu is shown under the chat input, two buttons per row
var menu = []menuItem{
	{"🎮 Games", CmdGames},
	{"👤 Profile", CmdProfile},
	{"🏆 Achievements", CmdAchievements},
	{"📊 Stats", CmdStats},
	{"❓ Help", CmdHelp},
}

var typedCommands = map[string]CommandID{
	string(CmdStart):        CmdStart,
	string(CmdGames):        CmdGames,
	string(CmdProfile):      CmdProfile,
	string(CmdAchievements): CmdAchievements,
	string(CmdStats):        CmdStats,
	string(CmdHelp):         CmdHelp,
}

const statsCallbackPrefix = "stats"

// StatsCallbackData encodes a pager button for page index owned by requester
func StatsCallbackData(index int, requester model.PlayerID) string {
	return fmt.Sprintf("%s:%d:%s", statsCallbackPrefix, index, requester)
}

// parseStatsCallback decodes "stats:<index>:<requester>"
func parseStatsCallback(data string) (Command, bool) {
	parts := strings.Split(data, ":")
	if len(parts) != 3 || parts[0] != statsCallbackPrefix {
		return Command{}, false
	}
	index, err := strconv.Atoi(parts[1])
	if err != nil {
		return Command{}, false
	}
	requester, err := model.ParsePlayerID(parts[2])
	if err != nil {
		return Command{}, false
	}
	return Command{ID: CmdStatsPage, Page: index, Requester: requester}, true
}

// ParseUpdate maps an update to a command. Text that is neither a command
// nor a menu label is not a command.
func ParseUpdate(update tgbotapi.Update) (Command, bool) {
	if cq := update.CallbackQuery; cq != nil {
		return parseStatsCallback(cq.Data)
	}
	msg := update.Message
	if msg == nil || msg.From == nil {
		return Command{}, false
	}
	if msg.IsCommand() {
		id, ok := typedCommands[msg.Command()]
		if !ok {
			id = CmdHelp
		}
		return Command{ID: id}, true
	}
	text := strings.TrimSpace(msg.Text)
	for _, item := range menu {
		if item.Label == text {
			return Command{ID: item.Command}, true
		}
	}
	return Command{}, false
}
