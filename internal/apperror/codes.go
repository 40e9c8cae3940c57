package apperror

import "errors"

const (
	CodeInvalidCell  = "invalid_cell"
	CodeCellOccupied = "cell_occupied"
	CodeGameOver     = "game_over"
	CodeGameNotFound = "game_not_found"
	CodeInternal     = "internal"
)

// Code names the sentinel wrapped by err, CodeInternal if there is none.
func Code(err error) string {
	switch {
	case errors.Is(err, ErrInvalidCell):
		return CodeInvalidCell
	case errors.Is(err, ErrCellOccupied):
		return CodeCellOccupied
	case errors.Is(err, ErrGameAlreadyOver):
		return CodeGameOver
	case errors.Is(err, ErrGameNotFound):
		return CodeGameNotFound
	default:
		return CodeInternal
	}
}
