package websocket

import (
	"encoding/json"

	"github.com/rocketscienceinc/tictactoe-mvc/internal/entity"
)

// client -> server
const (
	ActionCell        = "cell"
	ActionNewGame     = "new_game"
	ActionResetScores = "reset_scores"
)

// server -> client
const (
	ActionSession        = "session"
	ActionRenderBoard    = "render_board"
	ActionCurrentPlayer  = "current_player"
	ActionGameResult     = "game_result"
	ActionError          = "error"
	ActionNewGameEnabled = "new_game_enabled"
	ActionResponse       = "response"
	ActionScore          = "score"
)

// Message represents a WebSocket message with an action type and a payload.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// CellPayload carries raw numbers so fractional coordinates reach the controller.
type CellPayload struct {
	Row *float64 `json:"row"`
	Col *float64 `json:"col"`
}

type SessionPayload struct {
	ID   string `json:"id"`
	Size int    `json:"size"`
}

type BoardPayload struct {
	Board entity.Board `json:"board"`
}

type PlayerPayload struct {
	Player entity.Mark `json:"player"`
}

// ResultPayload - a null result clears the result on the client.
type ResultPayload struct {
	Result *entity.MoveResult `json:"result"`
}

// ErrorPayload - an empty message clears the error on the client.
type ErrorPayload struct {
	Message string `json:"message"`
}

type NewGameEnabledPayload struct {
	Enabled bool `json:"enabled"`
}

type ScorePayload struct {
	X       int    `json:"x"`
	O       int    `json:"o"`
	Draws   int    `json:"draws"`
	Elapsed string `json:"elapsed"`
}
