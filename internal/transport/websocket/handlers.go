package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"math"

	"github.com/rocketscienceinc/tictactoe-mvc/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-mvc/internal/scoreboard"
	"github.com/rocketscienceinc/tictactoe-mvc/internal/tictactoe"
)

func (that *session) handleCell(_ context.Context, msg *Message) error {
	var payload CellPayload

	if len(msg.Payload) > 0 {
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			return fmt.Errorf("%w: %w", apperror.ErrMalformedMessage, err)
		}
	}

	response := that.controller.HandleRawCellActivated(coordinate(payload.Row), coordinate(payload.Col))
	that.respond(response)

	return nil
}

func (that *session) handleNewGame(_ context.Context, _ *Message) error {
	that.respond(that.tracker.HandleNewGame())

	return nil
}

func (that *session) handleResetScores(_ context.Context, _ *Message) error {
	that.respond(that.tracker.ResetScores())

	return nil
}

// respond queues the controller response followed by the current score.
func (that *session) respond(response tictactoe.Response) {
	that.view.push(ActionResponse, response)
	that.pushScore()
}

func (that *session) pushScore() {
	scores := that.tracker.Scores()

	that.view.push(ActionScore, ScorePayload{
		X:       scores.X,
		O:       scores.O,
		Draws:   scores.Draws,
		Elapsed: scoreboard.FormatElapsed(that.tracker.Elapsed()),
	})
}

// a missing coordinate is as invalid as a fractional one
func coordinate(value *float64) float64 {
	if value == nil {
		return math.NaN()
	}

	return *value
}
