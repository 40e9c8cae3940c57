package entity

import (
	"fmt"
	"strings"

	"github.com/rocketscienceinc/tictactoe-hotseat/internal/apperror"
)

// CellID names a grid position as r<row>c<column>, rows and columns 1-3.
type CellID string

const (
	R1C1 CellID = "r1c1"
	R1C2 CellID = "r1c2"
	R1C3 CellID = "r1c3"
	R2C1 CellID = "r2c1"
	R2C2 CellID = "r2c2"
	R2C3 CellID = "r2c3"
	R3C1 CellID = "r3c1"
	R3C2 CellID = "r3c2"
	R3C3 CellID = "r3c3"
)

// Cells lists every cell in row-major order. Board indexes follow the same order.
var Cells = [9]CellID{R1C1, R1C2, R1C3, R2C1, R2C2, R2C3, R3C1, R3C2, R3C3}

// WinConditions holds the rows, then the columns, then the two diagonals.
var WinConditions = [8][3]CellID{
	{R1C1, R1C2, R1C3},
	{R2C1, R2C2, R2C3},
	{R3C1, R3C2, R3C3},
	{R1C1, R2C1, R3C1},
	{R1C2, R2C2, R3C2},
	{R1C3, R2C3, R3C3},
	{R1C1, R2C2, R3C3},
	{R1C3, R2C2, R3C1},
}

var cellIndex = func() map[CellID]int {
	index := make(map[CellID]int, len(Cells))
	for i, cell := range Cells {
		index[cell] = i
	}
	return index
}()

// Index returns the board position of the cell.
func (that CellID) Index() (int, error) {
	i, ok := cellIndex[that]
	if !ok {
		return 0, fmt.Errorf("%w: %q", apperror.ErrInvalidCell, string(that))
	}
	return i, nil
}

func (that CellID) Valid() bool {
	_, ok := cellIndex[that]
	return ok
}

// ParseCellID accepts "r2c3" in any letter case and surrounding spaces.
func ParseCellID(raw string) (CellID, error) {
	cell := CellID(strings.ToLower(strings.TrimSpace(raw)))
	if !cell.Valid() {
		return "", fmt.Errorf("%w: %q", apperror.ErrInvalidCell, raw)
	}
	return cell, nil
}

// Board holds one mark per cell, indexed like Cells.
type Board [9]Mark

func (that *Board) At(cell CellID) Mark {
	i, err := cell.Index()
	if err != nil {
		return EmptyCell
	}
	return that[i]
}

func (that *Board) IsFull() bool {
	for _, mark := range that {
		if mark == EmptyCell {
			return false
		}
	}
	return true
}

// Line reports whether the three cells are occupied by the same mark.
func (that *Board) Line(condition [3]CellID) (Mark, bool) {
	a, b, c := that.At(condition[0]), that.At(condition[1]), that.At(condition[2])
	if a != EmptyCell && a == b && b == c {
		return a, true
	}
	return EmptyCell, false
}
