package entity

import (
	"errors"
	"fmt"

	"github.com/rocketscienceinc/tictactoe-hotseat/internal/apperror"
)

type Status string

const (
	StatusInProgress Status = "in_progress"
	StatusWon        Status = "won"
	StatusDraw       Status = "draw"
)

var ErrUnknownGameStatus = errors.New("unknown game status")

// MinMovesToWin is the earliest move count at which a line can be complete.
const MinMovesToWin = 5

type Game struct {
	ID        string `json:"id"`
	Board     Board  `json:"board"`
	Turn      Mark   `json:"turn"`
	MoveCount int    `json:"move_count"`
	Winner    Mark   `json:"winner"`
	Status    Status `json:"status"`
}

// MoveResult describes what a successful ApplyMove changed.
type MoveResult struct {
	Cell CellID
	Mark Mark
	Next Mark

	Won  bool
	Draw bool
}

// NewGame returns an in-progress game with an empty board and a random first player.
func NewGame(id string, rng Randomizer) *Game {
	game := &Game{ID: id}
	game.Reset(rng)

	return game
}

// ChooseStartingPlayer sets Turn to a uniformly random player and returns it.
func (that *Game) ChooseStartingPlayer(rng Randomizer) Mark {
	that.Turn = RandomMark(rng)
	return that.Turn
}

// ApplyMove puts the active player's mark on the cell. A failed move leaves the game untouched.
func (that *Game) ApplyMove(cell CellID) (MoveResult, error) {
	i, err := cell.Index()
	if err != nil {
		return MoveResult{}, err
	}

	switch {
	case that.IsFinished():
		return MoveResult{}, fmt.Errorf("%w: %s", apperror.ErrGameAlreadyOver, that.Status)
	case !that.IsInProgress() || !that.Turn.IsPlayer():
		return MoveResult{}, fmt.Errorf("%w: %q", ErrUnknownGameStatus, that.Status)
	}

	if that.Board[i] != EmptyCell {
		return MoveResult{}, fmt.Errorf("%w: %s", apperror.ErrCellOccupied, cell)
	}

	mark := that.Turn
	that.Board[i] = mark
	that.MoveCount++
	that.Turn = mark.Opponent()

	result := MoveResult{
		Cell: cell,
		Mark: mark,
		Next: that.Turn,
	}

	if that.MoveCount >= MinMovesToWin {
		_, result.Won = that.CheckWinner()
	}

	if !result.Won && that.MoveCount == len(that.Board) {
		that.Status = StatusDraw
		result.Draw = true
	}

	return result, nil
}

// CheckWinner scans the win conditions in order. Winner is set at most once per game.
func (that *Game) CheckWinner() (Mark, bool) {
	if that.Winner != EmptyCell {
		return that.Winner, true
	}

	for _, condition := range WinConditions {
		if mark, ok := that.Board.Line(condition); ok {
			that.Winner = mark
			that.Status = StatusWon
			return mark, true
		}
	}

	return EmptyCell, false
}

// WinningLine returns the first complete line, if any.
func (that *Game) WinningLine() ([3]CellID, bool) {
	for _, condition := range WinConditions {
		if _, ok := that.Board.Line(condition); ok {
			return condition, true
		}
	}
	return [3]CellID{}, false
}

// Reset clears the board and picks a new starting player.
func (that *Game) Reset(rng Randomizer) Mark {
	that.Board = Board{}
	that.Winner = EmptyCell
	that.MoveCount = 0
	that.Status = StatusInProgress

	return that.ChooseStartingPlayer(rng)
}

func (that *Game) IsFinished() bool {
	return that.Status == StatusWon || that.Status == StatusDraw
}

func (that *Game) IsInProgress() bool {
	return that.Status == StatusInProgress
}

// Clone returns an independent copy.
func (that *Game) Clone() *Game {
	clone := *that
	return &clone
}
