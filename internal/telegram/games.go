package telegram

import "github.com/mcoot/arcadebot/internal/model"

// gameNames is the web library catalogue
var gameNames = map[model.GameID]string{
	"1": "2048",
	"2": "Snake",
	"3": "Dino Run",
	"4": "Clicker",
	"5": "Checkers",
	"6": "Minesweeper",
	"7": "Solitaire",
	"8": "Tetris",
	"9": "Paint",
}

// GameName returns the display name of a game id
func GameName(id model.GameID) string {
	if name, ok := gameNames[id]; ok {
		return name
	}
	return "Game " + string(id)
}
