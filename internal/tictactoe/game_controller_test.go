package tictactoe

import (
	"sync"
	"testing"

	"github.com/rocketscienceinc/tictactoe-hotseat/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-hotseat/internal/entity"
	"github.com/rocketscienceinc/tictactoe-hotseat/internal/msgcat"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type fixedRandomizer int

func (that fixedRandomizer) Intn(int) int {
	return int(that)
}

type presenterMock struct {
	mock.Mock
}

func (that *presenterMock) StartingPlayerChosen(mark entity.Mark) { that.Called(mark) }

func (that *presenterMock) CellMarked(cell entity.CellID, mark entity.Mark) { that.Called(cell, mark) }

func (that *presenterMock) TurnChanged(mark entity.Mark) { that.Called(mark) }

func (that *presenterMock) GameWon(mark entity.Mark) { that.Called(mark) }

func (that *presenterMock) GameDrawn() { that.Called() }

func (that *presenterMock) BoardReset() { that.Called() }

type inputGateMock struct {
	mock.Mock
}

func (that *inputGateMock) DisableCell(cell entity.CellID) { that.Called(cell) }

func (that *inputGateMock) DisableAll() { that.Called() }

func (that *inputGateMock) EnableAll() { that.Called() }

func newStartedController(t *testing.T, rng entity.Randomizer) (*GameController, *EventLog) {
	t.Helper()

	log := NewEventLog(msgcat.MustNew())
	controller := NewGameController(&entity.Game{ID: "123"}, log, log, rng)
	controller.Start()
	log.Drain()

	return controller, log
}

func TestGameController_Start(t *testing.T) {
	// Given: a controller around an empty game where O is drawn first
	log := NewEventLog(msgcat.MustNew())
	controller := NewGameController(&entity.Game{ID: "123"}, log, log, fixedRandomizer(1))

	// When: the game is started
	first := controller.Start()

	// Then: O is announced and input is enabled
	assert.Equal(t, entity.MarkO, first)
	assert.Equal(t, []Event{
		{Kind: EventStartingPlayer, Mark: entity.MarkO, Message: "O goes first!"},
		{Kind: EventInputEnabled},
	}, log.Events())

	state := controller.State()
	assert.Equal(t, entity.StatusInProgress, state.Status)
	assert.Equal(t, entity.MarkO, state.Turn)
}

func TestGameController_SelectCell(t *testing.T) {
	t.Run("Move is presented and the cell disabled", func(t *testing.T) {
		// Given: a started game where X moves first
		presenter := &presenterMock{}
		input := &inputGateMock{}
		game := entity.NewGame("123", fixedRandomizer(0))
		controller := NewGameController(game, presenter, input, fixedRandomizer(0))

		presenter.On("CellMarked", entity.R2C2, entity.MarkX).Once()
		presenter.On("TurnChanged", entity.MarkO).Once()
		input.On("DisableCell", entity.R2C2).Once()

		// When: X selects the center
		result, err := controller.SelectCell(entity.R2C2)

		// Then: the collaborators are notified exactly once
		require.NoError(t, err)
		assert.Equal(t, entity.MarkX, result.Mark)
		presenter.AssertExpectations(t)
		input.AssertExpectations(t)
		input.AssertNotCalled(t, "DisableAll")
	})

	t.Run("Winning move disables all input", func(t *testing.T) {
		// Given: a started game where X moves first
		controller, log := newStartedController(t, fixedRandomizer(0))

		// When: X completes the top row
		for _, cell := range []entity.CellID{entity.R1C1, entity.R2C1, entity.R1C2, entity.R2C2} {
			_, err := controller.SelectCell(cell)
			require.NoError(t, err)
		}
		log.Drain()

		result, err := controller.SelectCell(entity.R1C3)
		require.NoError(t, err)

		// Then: game over is shown and input is disabled
		assert.True(t, result.Won)
		assert.Equal(t, []Event{
			{Kind: EventCellMarked, Cell: entity.R1C3, Mark: entity.MarkX},
			{Kind: EventCellDisabled, Cell: entity.R1C3},
			{Kind: EventTurnChanged, Mark: entity.MarkO, Message: "The current player is now: O"},
			{Kind: EventGameWon, Mark: entity.MarkX, Message: "Game Over! X is the winner!"},
			{Kind: EventInputDisabled},
		}, log.Events())
	})

	t.Run("Draw disables all input", func(t *testing.T) {
		// Given: a started game where X moves first
		controller, log := newStartedController(t, fixedRandomizer(0))

		// When: the board fills without a line
		cells := []entity.CellID{
			entity.R1C1, entity.R1C2, entity.R1C3,
			entity.R2C2, entity.R2C1, entity.R2C3,
			entity.R3C2, entity.R3C1, entity.R3C3,
		}
		for _, cell := range cells {
			_, err := controller.SelectCell(cell)
			require.NoError(t, err)
		}

		// Then: the last events announce the draw
		events := log.Events()
		require.GreaterOrEqual(t, len(events), 2)
		assert.Equal(t, []Event{
			{Kind: EventGameDrawn, Message: "Game Over! It's a draw."},
			{Kind: EventInputDisabled},
		}, events[len(events)-2:])
		assert.Equal(t, entity.StatusDraw, controller.State().Status)
	})

	t.Run("Rejected moves are not presented", func(t *testing.T) {
		// Given: a started game with r1c1 taken
		controller, log := newStartedController(t, fixedRandomizer(0))
		_, err := controller.SelectCell(entity.R1C1)
		require.NoError(t, err)
		log.Drain()
		before := controller.State()

		// When: an occupied and an invalid cell are selected
		_, occupiedErr := controller.SelectCell(entity.R1C1)
		_, invalidErr := controller.SelectCell("r5c5")

		// Then: typed errors come back and nothing is presented
		require.ErrorIs(t, occupiedErr, apperror.ErrCellOccupied)
		require.ErrorIs(t, invalidErr, apperror.ErrInvalidCell)
		assert.Empty(t, log.Events())
		assert.Equal(t, before, controller.State())
	})

	t.Run("Concurrent selections never lose a move", func(t *testing.T) {
		// Given: a started game
		controller, _ := newStartedController(t, fixedRandomizer(0))

		// When: all nine cells are selected at once
		var wg sync.WaitGroup
		for _, cell := range entity.Cells {
			wg.Add(1)
			go func(cell entity.CellID) {
				defer wg.Done()
				_, _ = controller.SelectCell(cell)
			}(cell)
		}
		wg.Wait()

		// Then: the move count equals the marks on the board
		state := controller.State()
		marks := 0
		for _, mark := range state.Board {
			if mark != entity.EmptyCell {
				marks++
			}
		}
		assert.Equal(t, state.MoveCount, marks)
		assert.True(t, state.IsFinished())
	})
}

func TestGameController_Reset(t *testing.T) {
	// Given: a game X has won
	controller, log := newStartedController(t, fixedRandomizer(0))
	for _, cell := range []entity.CellID{entity.R1C1, entity.R2C1, entity.R1C2, entity.R2C2, entity.R1C3} {
		_, err := controller.SelectCell(cell)
		require.NoError(t, err)
	}
	log.Drain()

	// When: the game is reset
	first := controller.Reset()

	// Then: the board is cleared, a reset is shown and input comes back
	assert.Equal(t, entity.MarkX, first)
	assert.Equal(t, []Event{
		{Kind: EventBoardReset, Message: "Game has been reset!"},
		{Kind: EventStartingPlayer, Mark: entity.MarkX, Message: "X goes first!"},
		{Kind: EventInputEnabled},
	}, log.Events())

	state := controller.State()
	assert.Equal(t, entity.Board{}, state.Board)
	assert.Equal(t, 0, state.MoveCount)
	assert.Equal(t, entity.EmptyCell, state.Winner)
	assert.Equal(t, entity.StatusInProgress, state.Status)
}
