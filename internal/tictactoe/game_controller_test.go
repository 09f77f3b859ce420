package tictactoe

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-mvc/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-mvc/internal/entity"
	"github.com/rocketscienceinc/tictactoe-mvc/internal/game"
)

type call struct {
	method string
	arg    any
}

// recordingView keeps every callback in order.
type recordingView struct {
	calls   []call
	handler CellHandler
}

func (that *recordingView) RenderBoard(board entity.Board) {
	that.calls = append(that.calls, call{"RenderBoard", board})
}

func (that *recordingView) UpdateCurrentPlayer(mark entity.Mark) {
	that.calls = append(that.calls, call{"UpdateCurrentPlayer", mark})
}

func (that *recordingView) ShowGameResult(result *entity.MoveResult) {
	that.calls = append(that.calls, call{"ShowGameResult", result})
}

func (that *recordingView) ShowError(message string) {
	that.calls = append(that.calls, call{"ShowError", message})
}

func (that *recordingView) EnableNewGameButton(enabled bool) {
	that.calls = append(that.calls, call{"EnableNewGameButton", enabled})
}

func (that *recordingView) BindCellActivationEvents(handler CellHandler) {
	that.calls = append(that.calls, call{"BindCellActivationEvents", nil})
	that.handler = handler
}

func (that *recordingView) methods() []string {
	methods := make([]string, 0, len(that.calls))
	for _, c := range that.calls {
		methods = append(methods, c.method)
	}

	return methods
}

func (that *recordingView) last(method string) (any, bool) {
	for i := len(that.calls) - 1; i >= 0; i-- {
		if that.calls[i].method == method {
			return that.calls[i].arg, true
		}
	}

	return nil, false
}

func (that *recordingView) reset() {
	that.calls = nil
}

// spyEngine counts engine calls on top of a real game.
type spyEngine struct {
	*game.Game
	applied int
}

func (that *spyEngine) ApplyMove(row, col int) (entity.MoveResult, error) {
	that.applied++
	return that.Game.ApplyMove(row, col)
}

func newController(t *testing.T) (*GameController, *spyEngine, *recordingView) {
	t.Helper()

	board, err := game.New(3)
	require.NoError(t, err)

	engine := &spyEngine{Game: board}
	view := &recordingView{}
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))

	controller, err := NewGameController(logger, engine, view)
	require.NoError(t, err)

	return controller, engine, view
}

func TestNewGameController(t *testing.T) {
	t.Run("Requires an engine and a view", func(t *testing.T) {
		logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
		board, err := game.New(3)
		require.NoError(t, err)

		_, err = NewGameController(logger, nil, &recordingView{})
		assert.ErrorIs(t, err, apperror.ErrMissingCollaborator)

		_, err = NewGameController(logger, board, nil)
		assert.ErrorIs(t, err, apperror.ErrMissingCollaborator)
	})
}

func TestGameController_InitGame(t *testing.T) {
	// Given: a fresh controller
	controller, _, view := newController(t)
	require.False(t, controller.IsInitialized())

	// When: the game is initialised
	controller.InitGame()

	// Then: the whole view is refreshed and the cell handler bound
	require.True(t, controller.IsInitialized())
	assert.Equal(t, []string{
		"RenderBoard",
		"UpdateCurrentPlayer",
		"ShowGameResult",
		"EnableNewGameButton",
		"ShowError",
		"ShowGameResult",
		"EnableNewGameButton",
		"BindCellActivationEvents",
	}, view.methods())
	assert.Equal(t, entity.NewBoard(3), view.calls[0].arg)
	assert.Equal(t, entity.PlayerX, view.calls[1].arg)
	assert.Equal(t, "", view.calls[4].arg)
	assert.Equal(t, true, view.calls[6].arg)
	require.NotNil(t, view.handler)
}

func TestGameController_Uninitialized(t *testing.T) {
	// Given: a controller that was never initialised
	controller, engine, view := newController(t)

	// When: events arrive
	cell := controller.HandleCellActivated(0, 0)
	raw := controller.HandleRawCellActivated(0, 0)
	newGame := controller.HandleNewGame()

	// Then: they fail fast without touching the engine or the view
	for _, response := range []Response{cell, raw, newGame} {
		assert.False(t, response.Success)
		assert.Equal(t, "Game is not initialized", response.Error)
	}
	assert.Zero(t, engine.applied)
	assert.Empty(t, view.calls)
}

func TestGameController_HandleCellActivated(t *testing.T) {
	t.Run("Successful move", func(t *testing.T) {
		// Given: an initialised game
		controller, _, view := newController(t)
		controller.InitGame()
		view.reset()

		// When: X activates the centre through the bound handler
		response := view.handler(1, 1)

		// Then: the move succeeds and the view is refreshed
		require.True(t, response.Success)
		assert.Equal(t, &entity.MoveResult{PlacedBy: entity.PlayerX, Status: entity.StatusInProgress}, response.Result)
		assert.Equal(t, []string{
			"ShowError",
			"RenderBoard",
			"UpdateCurrentPlayer",
			"ShowGameResult",
			"EnableNewGameButton",
		}, view.methods())

		board, _ := view.last("RenderBoard")
		assert.Equal(t, entity.PlayerX, board.(entity.Board)[1][1])
		player, _ := view.last("UpdateCurrentPlayer")
		assert.Equal(t, entity.PlayerO, player)
		result, _ := view.last("ShowGameResult")
		assert.Nil(t, result)
	})

	t.Run("Invalid coordinates never reach the engine", func(t *testing.T) {
		// Given: an initialised game
		controller, engine, view := newController(t)
		controller.InitGame()
		view.reset()

		for _, cell := range [][2]int{{-1, 0}, {0, -1}, {3, 0}, {0, 3}} {
			// When: an out-of-range cell is activated
			response := controller.HandleCellActivated(cell[0], cell[1])

			// Then: an error is reported and the engine is untouched
			assert.False(t, response.Success)
			assert.Equal(t, "Invalid coordinates", response.Error)
		}

		assert.Zero(t, engine.applied)
		assert.Zero(t, engine.MoveCount())
		msg, _ := view.last("ShowError")
		assert.Equal(t, "Invalid coordinates", msg)
		assert.NotContains(t, view.methods(), "RenderBoard")
	})

	t.Run("Occupied cell", func(t *testing.T) {
		// Given: X has played 0,0
		controller, _, view := newController(t)
		controller.InitGame()
		require.True(t, controller.HandleCellActivated(0, 0).Success)
		view.reset()

		// When: O activates the same cell
		response := controller.HandleCellActivated(0, 0)

		// Then: the engine message is forwarded and no refresh happens mid-game
		assert.Equal(t, Response{Success: false, Error: "Cell is already occupied"}, response)
		assert.Equal(t, []string{"ShowError"}, view.methods())
		assert.Equal(t, "Cell is already occupied", view.calls[0].arg)
	})

	t.Run("Winning move shows the move result", func(t *testing.T) {
		// Given: X is one move from the top row
		controller, _, view := newController(t)
		controller.InitGame()
		for _, cell := range [][2]int{{0, 0}, {1, 0}, {0, 1}, {1, 1}} {
			require.True(t, controller.HandleCellActivated(cell[0], cell[1]).Success)
		}
		view.reset()

		// When: X completes the row
		response := controller.HandleCellActivated(0, 2)

		// Then: the result reaches the caller and the view
		expected := &entity.MoveResult{PlacedBy: entity.PlayerX, Status: entity.StatusWon, Winner: entity.PlayerX}
		require.True(t, response.Success)
		assert.Equal(t, expected, response.Result)

		result, _ := view.last("ShowGameResult")
		assert.Equal(t, expected, result)
		player, _ := view.last("UpdateCurrentPlayer")
		assert.Equal(t, entity.None, player)
		enabled, _ := view.last("EnableNewGameButton")
		assert.Equal(t, true, enabled)
	})

	t.Run("Draw", func(t *testing.T) {
		controller, _, view := newController(t)
		controller.InitGame()

		var response Response
		for _, cell := range [][2]int{{0, 0}, {0, 1}, {0, 2}, {1, 1}, {1, 0}, {1, 2}, {2, 1}, {2, 0}, {2, 2}} {
			response = controller.HandleCellActivated(cell[0], cell[1])
			require.True(t, response.Success)
		}

		expected := &entity.MoveResult{PlacedBy: entity.PlayerX, Status: entity.StatusDraw, Winner: entity.None}
		assert.Equal(t, expected, response.Result)
		result, _ := view.last("ShowGameResult")
		assert.Equal(t, expected, result)
	})

	t.Run("Move after the game finished refreshes the finished view", func(t *testing.T) {
		// Given: a won game
		controller, _, view := newController(t)
		controller.InitGame()
		for _, cell := range [][2]int{{0, 0}, {1, 0}, {0, 1}, {1, 1}, {0, 2}} {
			require.True(t, controller.HandleCellActivated(cell[0], cell[1]).Success)
		}
		view.reset()

		// When: another cell is activated
		response := controller.HandleCellActivated(2, 2)

		// Then: the error is shown and the view re-synced with a synthesised result
		assert.Equal(t, Response{Success: false, Error: "Game is already finished"}, response)
		assert.Equal(t, []string{
			"ShowError",
			"RenderBoard",
			"UpdateCurrentPlayer",
			"ShowGameResult",
			"EnableNewGameButton",
		}, view.methods())
		result, _ := view.last("ShowGameResult")
		assert.Equal(t, &entity.MoveResult{Status: entity.StatusWon, Winner: entity.PlayerX}, result)
	})
}

func TestGameController_HandleRawCellActivated(t *testing.T) {
	t.Run("Fractional coordinates", func(t *testing.T) {
		// Given: an initialised game
		controller, engine, view := newController(t)
		controller.InitGame()
		view.reset()

		// When: a fractional coordinate arrives
		response := controller.HandleRawCellActivated(1.5, 0)

		// Then: it is rejected like an out-of-range one
		assert.Equal(t, Response{Success: false, Error: "Invalid coordinates"}, response)
		assert.Zero(t, engine.applied)
		assert.Equal(t, []string{"ShowError"}, view.methods())
		assert.Equal(t, "Invalid coordinates", view.calls[0].arg)
	})

	t.Run("Whole numbers are forwarded", func(t *testing.T) {
		controller, engine, _ := newController(t)
		controller.InitGame()

		response := controller.HandleRawCellActivated(2, 1)

		require.True(t, response.Success)
		assert.Equal(t, 1, engine.applied)
		assert.Equal(t, entity.PlayerX, engine.Snapshot()[2][1])
	})
}

func TestGameController_HandleNewGame(t *testing.T) {
	// Given: a game with a couple of moves
	controller, engine, view := newController(t)
	controller.InitGame()
	require.True(t, controller.HandleCellActivated(0, 0).Success)
	require.True(t, controller.HandleCellActivated(1, 1).Success)
	view.reset()

	// When: a new game is requested
	response := controller.HandleNewGame()

	// Then: the engine is reset and the view cleared
	assert.Equal(t, Response{Success: true, Status: entity.StatusInProgress}, response)
	assert.Zero(t, engine.MoveCount())
	assert.Equal(t, []string{
		"ShowError",
		"ShowGameResult",
		"RenderBoard",
		"UpdateCurrentPlayer",
		"ShowGameResult",
		"EnableNewGameButton",
		"EnableNewGameButton",
	}, view.methods())
	board, _ := view.last("RenderBoard")
	assert.Equal(t, entity.NewBoard(3), board)
	player, _ := view.last("UpdateCurrentPlayer")
	assert.Equal(t, entity.PlayerX, player)
}

func TestGameController_Use(t *testing.T) {
	// Given: two middlewares recording their order
	controller, _, view := newController(t)
	var order []string
	trace := func(name string) Middleware {
		return func(next CellHandler) CellHandler {
			return func(row, col int) Response {
				order = append(order, name+":before")
				response := next(row, col)
				order = append(order, name+":after")
				return response
			}
		}
	}
	controller.Use(trace("outer"), trace("inner"))
	controller.InitGame()

	// When: the bound handler runs
	response := view.handler(0, 0)

	// Then: the first middleware wraps the rest
	require.True(t, response.Success)
	assert.Equal(t, []string{"outer:before", "inner:before", "inner:after", "outer:after"}, order)

	// When: a raw activation arrives
	order = nil
	response = controller.HandleRawCellActivated(1, 1)

	// Then: it passes through the same chain
	require.True(t, response.Success)
	assert.Equal(t, []string{"outer:before", "inner:before", "inner:after", "outer:after"}, order)
}
