package tictactoe

import (
	"fmt"
	"sync"

	"github.com/rocketscienceinc/tictactoe-hotseat/internal/entity"
)

// Presenter shows the game to the players.
type Presenter interface {
	StartingPlayerChosen(mark entity.Mark)
	CellMarked(cell entity.CellID, mark entity.Mark)
	TurnChanged(mark entity.Mark)
	GameWon(mark entity.Mark)
	GameDrawn()
	BoardReset()
}

// InputGate controls which cells the players may still select.
type InputGate interface {
	DisableCell(cell entity.CellID)
	DisableAll()
	EnableAll()
}

// GameController binds one game to its presentation and input collaborators.
// All methods are safe for concurrent use.
type GameController struct {
	mu sync.Mutex

	game      *entity.Game
	presenter Presenter
	input     InputGate
	rng       entity.Randomizer
}

func NewGameController(game *entity.Game, presenter Presenter, input InputGate, rng entity.Randomizer) *GameController {
	if rng == nil {
		rng = entity.DefaultRandomizer
	}

	return &GameController{
		game:      game,
		presenter: presenter,
		input:     input,
		rng:       rng,
	}
}

// Start begins a fresh round on the bound game.
func (that *GameController) Start() entity.Mark {
	that.mu.Lock()
	defer that.mu.Unlock()

	first := that.game.Reset(that.rng)

	that.presenter.StartingPlayerChosen(first)
	that.input.EnableAll()

	return first
}

// SelectCell applies the active player's move. On error nothing is presented.
func (that *GameController) SelectCell(cell entity.CellID) (entity.MoveResult, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	result, err := that.game.ApplyMove(cell)
	if err != nil {
		return entity.MoveResult{}, fmt.Errorf("failed to select cell: %w", err)
	}

	that.presenter.CellMarked(result.Cell, result.Mark)
	that.input.DisableCell(result.Cell)
	that.presenter.TurnChanged(result.Next)

	switch {
	case result.Won:
		that.presenter.GameWon(that.game.Winner)
		that.input.DisableAll()
	case result.Draw:
		that.presenter.GameDrawn()
		that.input.DisableAll()
	}

	return result, nil
}

// Reset clears the board and starts a new round.
func (that *GameController) Reset() entity.Mark {
	that.mu.Lock()
	defer that.mu.Unlock()

	first := that.game.Reset(that.rng)

	that.presenter.BoardReset()
	that.presenter.StartingPlayerChosen(first)
	that.input.EnableAll()

	return first
}

// State returns a copy of the bound game.
func (that *GameController) State() *entity.Game {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.game.Clone()
}
