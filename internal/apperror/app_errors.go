package apperror

import "errors"

var (
	ErrInvalidConfiguration = errors.New("board size must be a positive integer")
	ErrInvalidCoordinates   = errors.New("invalid coordinates")
	ErrCellOccupied         = errors.New("cell is already occupied")
	ErrGameFinished         = errors.New("game is already finished")
	ErrNotInitialized       = errors.New("game is not initialized")
	ErrMissingCollaborator  = errors.New("game controller requires both an engine and a view")

	ErrUnknownAction    = errors.New("unknown action")
	ErrMalformedMessage = errors.New("malformed message")
	ErrUnknownUIMode    = errors.New("unknown ui mode")
)
