package apperror

import "errors"

var (
	ErrInvalidCell     = errors.New("invalid cell")
	ErrCellOccupied    = errors.New("cell is already occupied")
	ErrGameAlreadyOver = errors.New("game is already over")
	ErrGameNotFound    = errors.New("game not found")
)
