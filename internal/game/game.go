package game

import (
	"fmt"
	"math"

	"github.com/rocketscienceinc/tictactoe-mvc/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-mvc/internal/entity"
)

// New creates an engine for a size x size board.
func New(size int) (*Game, error) {
	if size < 1 {
		return nil, fmt.Errorf("%w: got %d", apperror.ErrInvalidConfiguration, size)
	}

	return &Game{
		size:  size,
		state: newState(size),
	}, nil
}

// CheckSize validates a board size that arrived as an untyped number.
func CheckSize(value float64) (int, error) {
	if math.IsNaN(value) || math.IsInf(value, 0) || value != math.Trunc(value) || value < 1 || value > math.MaxInt32 {
		return 0, fmt.Errorf("%w: got %v", apperror.ErrInvalidConfiguration, value)
	}

	return int(value), nil
}

// ApplyMove places the current player's mark at row, col and advances the game.
func (that *Game) ApplyMove(row, col int) (entity.MoveResult, error) {
	if err := that.validateMove(row, col); err != nil {
		return entity.MoveResult{}, err
	}

	player := that.state.currentPlayer
	that.state.board[row][col] = player
	that.state.moveCount++

	if winner := that.EvaluateWinner(); winner != entity.None {
		return that.result(player), nil
	}

	if that.EvaluateDraw() {
		return that.result(player), nil
	}

	that.state.currentPlayer = player.Opponent()

	return that.result(player), nil
}

// IsMoveLegal reports whether ApplyMove(row, col) would succeed.
func (that *Game) IsMoveLegal(row, col int) bool {
	return that.validateMove(row, col) == nil
}

// EvaluateWinner scans rows, then columns, then the primary and secondary
// diagonals. The first complete line decides the winner.
func (that *Game) EvaluateWinner() entity.Mark {
	switch that.state.status {
	case entity.StatusWon:
		return that.state.winner
	case entity.StatusDraw:
		return entity.None
	}

	for _, line := range that.lines() {
		if mark := that.lineOwner(line); mark != entity.None {
			that.state.status = entity.StatusWon
			that.state.winner = mark
			that.state.currentPlayer = entity.None

			return mark
		}
	}

	return entity.None
}

// EvaluateDraw must run after EvaluateWinner found no winner: a full board with
// a completed line is won, not drawn.
func (that *Game) EvaluateDraw() bool {
	if that.state.status != entity.StatusInProgress {
		return false
	}

	if that.state.moveCount < that.size*that.size {
		return false
	}

	that.state.status = entity.StatusDraw
	that.state.currentPlayer = entity.None

	return true
}

// Snapshot returns a deep copy of the board.
func (that *Game) Snapshot() entity.Board {
	return that.state.board.Clone()
}

func (that *Game) Reset() {
	that.state = newState(that.size)
}

func (that *Game) Size() int {
	return that.size
}

func (that *Game) CurrentPlayer() entity.Mark {
	return that.state.currentPlayer
}

func (that *Game) Status() entity.Status {
	return that.state.status
}

func (that *Game) Winner() entity.Mark {
	return that.state.winner
}

func (that *Game) MoveCount() int {
	return that.state.moveCount
}

func (that *Game) IsFinished() bool {
	return that.state.status.IsTerminal()
}

// validateMove - checks the move preconditions in order: game still running,
// coordinates on the board, target cell empty.
func (that *Game) validateMove(row, col int) error {
	if that.IsFinished() {
		return apperror.ErrGameFinished
	}

	if !that.inBounds(row, col) {
		return apperror.ErrInvalidCoordinates
	}

	if that.state.board[row][col] != entity.None {
		return apperror.ErrCellOccupied
	}

	return nil
}

func (that *Game) inBounds(row, col int) bool {
	return row >= 0 && row < that.size && col >= 0 && col < that.size
}

func (that *Game) result(placedBy entity.Mark) entity.MoveResult {
	return entity.MoveResult{
		PlacedBy: placedBy,
		Status:   that.state.status,
		Winner:   that.state.winner,
	}
}

// cell is a board position.
type cell struct {
	row, col int
}

// lines returns every winning line in scan order.
func (that *Game) lines() [][]cell {
	lines := make([][]cell, 0, 2*that.size+2)

	for row := 0; row < that.size; row++ {
		line := make([]cell, that.size)
		for col := range line {
			line[col] = cell{row, col}
		}
		lines = append(lines, line)
	}

	for col := 0; col < that.size; col++ {
		line := make([]cell, that.size)
		for row := range line {
			line[row] = cell{row, col}
		}
		lines = append(lines, line)
	}

	primary := make([]cell, that.size)
	secondary := make([]cell, that.size)
	for i := 0; i < that.size; i++ {
		primary[i] = cell{i, i}
		secondary[i] = cell{i, that.size - 1 - i}
	}

	return append(lines, primary, secondary)
}

func (that *Game) lineOwner(line []cell) entity.Mark {
	first := that.state.board[line[0].row][line[0].col]
	if first == entity.None {
		return entity.None
	}

	for _, pos := range line[1:] {
		if that.state.board[pos.row][pos.col] != first {
			return entity.None
		}
	}

	return first
}
