package tictactoe

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"unicode"
	"unicode/utf8"

	"github.com/rocketscienceinc/tictactoe-mvc/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-mvc/internal/entity"
)

// Engine is the part of the board engine the controller drives.
type Engine interface {
	Size() int
	ApplyMove(row, col int) (entity.MoveResult, error)
	Snapshot() entity.Board
	CurrentPlayer() entity.Mark
	Status() entity.Status
	Winner() entity.Mark
	Reset()
}

// CellHandler reacts to a cell being activated by the user.
type CellHandler func(row, col int) Response

// Middleware wraps cell activation with extra side effects, e.g. score keeping.
type Middleware func(next CellHandler) CellHandler

// View is the rendering collaborator. An empty message clears the error and a
// nil result clears the game result.
type View interface {
	RenderBoard(board entity.Board)
	UpdateCurrentPlayer(mark entity.Mark)
	ShowGameResult(result *entity.MoveResult)
	ShowError(message string)
	EnableNewGameButton(enabled bool)
	BindCellActivationEvents(handler CellHandler)
}

// Response is what every inbound operation reports back to its caller.
type Response struct {
	Success bool               `json:"success"`
	Error   string             `json:"error,omitempty"`
	Result  *entity.MoveResult `json:"result,omitempty"`
	Status  entity.Status      `json:"status,omitempty"`
}

type GameController struct {
	logger      *slog.Logger
	engine      Engine
	view        View
	middlewares []Middleware
	bound       CellHandler
	initialized bool
}

func NewGameController(logger *slog.Logger, engine Engine, view View) (*GameController, error) {
	if engine == nil || view == nil {
		return nil, apperror.ErrMissingCollaborator
	}

	return &GameController{
		logger: logger.With("component", "game_controller"),
		engine: engine,
		view:   view,
	}, nil
}

// Use appends middlewares around cell activation. They take effect on the next InitGame.
func (that *GameController) Use(middlewares ...Middleware) {
	that.middlewares = append(that.middlewares, middlewares...)
}

// InitGame - resets the engine, refreshes the whole view and binds cell activation.
func (that *GameController) InitGame() {
	that.engine.Reset()
	that.updateView(nil)
	that.view.ShowError("")
	that.view.ShowGameResult(nil)
	that.view.EnableNewGameButton(true)
	that.bound = that.cellHandler()
	that.view.BindCellActivationEvents(that.bound)

	that.initialized = true

	that.logger.Debug("game initialized", "size", that.engine.Size())
}

func (that *GameController) IsInitialized() bool {
	return that.initialized
}

// HandleCellActivated - validates the coordinates, applies the move and refreshes the view.
func (that *GameController) HandleCellActivated(row, col int) Response {
	log := that.logger.With("method", "HandleCellActivated", "row", row, "col", col)

	if !that.initialized {
		return failure(apperror.ErrNotInitialized)
	}

	if err := that.validateCoordinates(row, col); err != nil {
		that.view.ShowError(message(err))
		return failure(err)
	}

	result, err := that.engine.ApplyMove(row, col)
	if err != nil {
		log.Debug("move rejected", "error", err)

		that.view.ShowError(message(err))
		if that.engine.Status().IsTerminal() {
			that.updateView(nil)
		}

		return failure(err)
	}

	that.view.ShowError("")
	that.updateView(&result)

	log.Debug("move applied", "placed_by", result.PlacedBy, "status", result.Status)

	return Response{Success: true, Result: &result}
}

// HandleRawCellActivated accepts coordinates from untyped sources; anything that
// is not a whole number is reported as invalid coordinates. Whole numbers go
// through the same middlewares as view activations.
func (that *GameController) HandleRawCellActivated(row, col float64) Response {
	if !that.initialized {
		return failure(apperror.ErrNotInitialized)
	}

	if !isWhole(row) || !isWhole(col) {
		that.view.ShowError(message(apperror.ErrInvalidCoordinates))
		return failure(apperror.ErrInvalidCoordinates)
	}

	return that.bound(int(row), int(col))
}

// HandleNewGame - starts a fresh round at the same board size.
func (that *GameController) HandleNewGame() Response {
	if !that.initialized {
		return failure(apperror.ErrNotInitialized)
	}

	that.engine.Reset()
	that.view.ShowError("")
	that.view.ShowGameResult(nil)
	that.updateView(nil)
	that.view.EnableNewGameButton(true)

	that.logger.Debug("new game started")

	return Response{Success: true, Status: that.engine.Status()}
}

// updateView pushes the full engine state to the view. The move result is
// reused for the game result when it describes the current status.
func (that *GameController) updateView(moveResult *entity.MoveResult) {
	that.view.RenderBoard(that.engine.Snapshot())
	that.view.UpdateCurrentPlayer(that.engine.CurrentPlayer())

	status := that.engine.Status()
	if status == entity.StatusInProgress {
		that.view.ShowGameResult(nil)
		that.view.EnableNewGameButton(true)
		return
	}

	payload := entity.MoveResult{
		Status: status,
		Winner: that.engine.Winner(),
	}
	if moveResult != nil {
		if moveResult.Status == status {
			payload = *moveResult
		} else {
			payload.PlacedBy = moveResult.PlacedBy
		}
	}

	that.view.ShowGameResult(&payload)
	that.view.EnableNewGameButton(true)
}

func (that *GameController) cellHandler() CellHandler {
	var handler CellHandler = that.HandleCellActivated
	for i := len(that.middlewares) - 1; i >= 0; i-- {
		handler = that.middlewares[i](handler)
	}

	return handler
}

// validateCoordinates duplicates the engine range check so malformed input
// never reaches the engine.
func (that *GameController) validateCoordinates(row, col int) error {
	size := that.engine.Size()
	if size < 1 {
		return fmt.Errorf("%w: board size %d", apperror.ErrNotInitialized, size)
	}

	if row < 0 || row >= size || col < 0 || col >= size {
		return apperror.ErrInvalidCoordinates
	}

	return nil
}

func failure(err error) Response {
	return Response{Success: false, Error: message(err)}
}

// message strips wrapping context down to the sentinel and shows it to players
// as a sentence, e.g. "Invalid coordinates".
func message(err error) string {
	text := err.Error()
	for _, sentinel := range []error{
		apperror.ErrInvalidCoordinates,
		apperror.ErrCellOccupied,
		apperror.ErrGameFinished,
		apperror.ErrNotInitialized,
	} {
		if errors.Is(err, sentinel) {
			text = sentinel.Error()
			break
		}
	}

	first, size := utf8.DecodeRuneInString(text)
	if size == 0 {
		return text
	}

	return string(unicode.ToUpper(first)) + text[size:]
}

func isWhole(value float64) bool {
	return !math.IsNaN(value) && !math.IsInf(value, 0) && value == math.Trunc(value) &&
		value >= math.MinInt32 && value <= math.MaxInt32
}
