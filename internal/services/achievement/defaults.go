package achievement

import "github.com/mcoot/arcadebot/internal/model"

// defaultRules ship with the binary. Game ids follow the web library
// catalogue ("1" is 2048, "2" Snake, and so on).
var defaultRules = []model.AchievementRule{
	{ID: "2048_1000", GameID: "1", Threshold: 1000, Name: "Tile Apprentice", Description: "Score 1000 points in 2048"},
	{ID: "2048_10000", GameID: "1", Threshold: 10000, Name: "Tile Master", Description: "Score 10000 points in 2048"},
	{ID: "snake_50", GameID: "2", Threshold: 50, Name: "Hungry Snake", Description: "Score 50 points in Snake"},
	{ID: "snake_200", GameID: "2", Threshold: 200, Name: "Anaconda", Description: "Score 200 points in Snake"},
	{ID: "dino_500", GameID: "3", Threshold: 500, Name: "Marathon Runner", Description: "Run 500 in Dino Run"},
	{ID: "clicker_1000", GameID: "4", Threshold: 1000, Name: "Clicker Addict", Description: "Click 1000 times"},
	{ID: "checkers_win", GameID: "5", Threshold: 1, Name: "Crowned", Description: "Win a game of checkers"},
	{ID: "minesweeper_100", GameID: "6", Threshold: 100, Name: "Sapper", Description: "Score 100 points in Minesweeper"},
	{ID: "solitaire_win", GameID: "7", Threshold: 1, Name: "Patience", Description: "Finish a game of solitaire"},
	{ID: "tetris_1000", GameID: "8", Threshold: 1000, Name: "Line Clearer", Description: "Score 1000 points in Tetris"},
	{ID: "tetris_10000", GameID: "8", Threshold: 10000, Name: "Tetris Legend", Description: "Score 10000 points in Tetris"},
}

// DefaultRules returns the built-in rule set
func DefaultRules() *Rules {
	r, err := NewRules(defaultRules)
	if err != nil {
		panic("achievement: invalid default rules: " + err.Error())
	}
	return r
}
