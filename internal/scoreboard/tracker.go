package scoreboard

import (
	"fmt"
	"time"

	"golang.org/x/text/message"

	"github.com/rocketscienceinc/tictactoe-mvc/internal/entity"
	"github.com/rocketscienceinc/tictactoe-mvc/internal/tictactoe"
)

// Controller is the part of the game controller the tracker decorates.
type Controller interface {
	HandleNewGame() tictactoe.Response
}

// Clock returns the current time.
type Clock func() time.Time

// Scores - tallies of finished rounds.
type Scores struct {
	X     int `json:"x"`
	O     int `json:"o"`
	Draws int `json:"draws"`
}

// Tracker keeps score and times the current round.
type Tracker struct {
	controller Controller
	clock      Clock

	scores  Scores
	active  bool
	started time.Time
	stopped time.Time
}

func NewTracker(controller Controller, clock Clock) *Tracker {
	if clock == nil {
		clock = time.Now
	}

	return &Tracker{
		controller: controller,
		clock:      clock,
	}
}

// Middleware - observes every cell activation; the first accepted move of a round
// starts the timer and a finished round stops it and updates the tallies.
func (that *Tracker) Middleware() tictactoe.Middleware {
	return func(next tictactoe.CellHandler) tictactoe.CellHandler {
		return func(row, col int) tictactoe.Response {
			response := next(row, col)
			if !response.Success {
				return response
			}

			if !that.active {
				that.active = true
				that.started = that.clock()
				that.stopped = time.Time{}
			}

			if result := response.Result; result != nil && result.Status.IsTerminal() {
				that.active = false
				that.stopped = that.clock()
				that.record(result)
			}

			return response
		}
	}
}

// HandleNewGame - delegates to the controller and clears the round timer.
func (that *Tracker) HandleNewGame() tictactoe.Response {
	response := that.controller.HandleNewGame()

	that.active = false
	that.started = time.Time{}
	that.stopped = time.Time{}

	return response
}

// ResetScores - zeroes every tally and starts a new game.
func (that *Tracker) ResetScores() tictactoe.Response {
	that.scores = Scores{}

	return that.HandleNewGame()
}

func (that *Tracker) Scores() Scores {
	return that.scores
}

// Elapsed reports the round duration in whole seconds. A finished round keeps
// its final time until the next new game.
func (that *Tracker) Elapsed() time.Duration {
	if that.started.IsZero() {
		return 0
	}

	end := that.stopped
	if that.active {
		end = that.clock()
	}

	return end.Sub(that.started).Truncate(time.Second)
}

// Summary renders the tallies for the score line.
func (that *Tracker) Summary(printer *message.Printer) string {
	return printer.Sprintf("X: %d | O: %d | Draws: %d", that.scores.X, that.scores.O, that.scores.Draws)
}

func (that *Tracker) record(result *entity.MoveResult) {
	switch {
	case result.Status == entity.StatusDraw:
		that.scores.Draws++
	case result.Winner == entity.PlayerX:
		that.scores.X++
	case result.Winner == entity.PlayerO:
		that.scores.O++
	}
}

// FormatElapsed renders a duration as mm:ss. Negative durations show as 00:00.
func FormatElapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}

	seconds := int(d / time.Second)

	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
