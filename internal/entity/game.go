package entity

import (
	"encoding/json"
	"fmt"
)

// Mark is the symbol a player places on the board. None marks an empty cell,
// or the absence of a player once a game has ended.
type Mark string

const (
	PlayerX Mark = "X"
	PlayerO Mark = "O"
	None    Mark = ""
)

// FirstPlayer always opens a fresh game.
const FirstPlayer = PlayerX

type Status string

const (
	StatusInProgress Status = "in-progress"
	StatusWon        Status = "won"
	StatusDraw       Status = "draw"
)

// Board is a square grid of marks indexed as Board[row][col].
type Board [][]Mark

// MoveResult describes the game right after an accepted move.
type MoveResult struct {
	PlacedBy Mark   `json:"placedBy"`
	Status   Status `json:"status"`
	Winner   Mark   `json:"winner"`
}

// Opponent returns the other player's mark. None has no opponent.
func (that Mark) Opponent() Mark {
	switch that {
	case PlayerX:
		return PlayerO
	case PlayerO:
		return PlayerX
	default:
		return None
	}
}

func (that Mark) IsPlayer() bool {
	return that == PlayerX || that == PlayerO
}

// MarshalJSON encodes None as null, so empty cells and a missing winner read as
// "no mark" on the wire.
func (that Mark) MarshalJSON() ([]byte, error) {
	if that == None {
		return []byte("null"), nil
	}

	return json.Marshal(string(that))
}

func (that *Mark) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*that = None
		return nil
	}

	var value string
	if err := json.Unmarshal(data, &value); err != nil {
		return fmt.Errorf("failed to decode mark: %w", err)
	}

	switch mark := Mark(value); mark {
	case PlayerX, PlayerO, None:
		*that = mark
	default:
		return fmt.Errorf("unknown mark %q", value)
	}

	return nil
}

func (that Status) IsTerminal() bool {
	return that == StatusWon || that == StatusDraw
}

// NewBoard returns an empty size x size board.
func NewBoard(size int) Board {
	board := make(Board, size)
	for row := range board {
		board[row] = make([]Mark, size)
	}

	return board
}

// Clone returns a deep copy that shares no rows with the receiver.
func (that Board) Clone() Board {
	clone := make(Board, len(that))
	for row, cells := range that {
		clone[row] = append([]Mark(nil), cells...)
	}

	return clone
}

// Occupied counts the cells holding a player's mark.
func (that Board) Occupied() int {
	count := 0
	for _, cells := range that {
		for _, cell := range cells {
			if cell != None {
				count++
			}
		}
	}

	return count
}
