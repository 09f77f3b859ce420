package game

import "github.com/rocketscienceinc/tictactoe-mvc/internal/entity"

// Game is the board engine of a single session. Its state changes only through
// ApplyMove, EvaluateWinner, EvaluateDraw and Reset.
type Game struct {
	size  int
	state state
}

// state is replaced wholesale on Reset.
type state struct {
	board         entity.Board
	currentPlayer entity.Mark
	status        entity.Status
	winner        entity.Mark
	moveCount     int
}

func newState(size int) state {
	return state{
		board:         entity.NewBoard(size),
		currentPlayer: entity.FirstPlayer,
		status:        entity.StatusInProgress,
		winner:        entity.None,
	}
}
