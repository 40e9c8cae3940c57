package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/rocketscienceinc/tictactoe-hotseat/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-hotseat/internal/entity"
	"github.com/rocketscienceinc/tictactoe-hotseat/internal/pkg"
	"github.com/rocketscienceinc/tictactoe-hotseat/internal/tictactoe"
)

type gameRepo interface {
	CreateOrUpdate(ctx context.Context, game *entity.Game) error
	GetByID(ctx context.Context, id string) (*entity.Game, error)
	DeleteByID(ctx context.Context, id string) error
}

type resultRepo interface {
	Save(ctx context.Context, result entity.Result) error
	Summary(ctx context.Context) (entity.Summary, error)
}

type catalog interface {
	Render(key string, data any) (string, error)
}

// publisher forwards game updates to whoever watches the game.
type publisher interface {
	Publish(game *entity.Game, events []tictactoe.Event)
	Forget(gameID string)
}

type GameManager struct {
	logger *slog.Logger

	gameRepo   gameRepo
	resultRepo resultRepo
	publisher  publisher
	catalog    catalog

	rng entity.Randomizer
	now func() time.Time

	locks *gameLocks
}

// NewGameManager wires the game use case. publisher may be nil; rng must be safe for concurrent use.
func NewGameManager(
	logger *slog.Logger,
	gameRepo gameRepo,
	resultRepo resultRepo,
	publisher publisher,
	catalog catalog,
	rng entity.Randomizer,
) *GameManager {
	if rng == nil {
		rng = entity.DefaultRandomizer
	}

	return &GameManager{
		logger: logger.With("component", "game_manager"),

		gameRepo:   gameRepo,
		resultRepo: resultRepo,
		publisher:  publisher,
		catalog:    catalog,

		rng: rng,
		now: time.Now,

		locks: newGameLocks(),
	}
}

// NewGame creates and stores a game with a random first player.
func (that *GameManager) NewGame(ctx context.Context) (*entity.Game, []tictactoe.Event, error) {
	log := that.logger.With("method", "NewGame")

	game := &entity.Game{ID: pkg.GenerateGameID()}
	events := tictactoe.NewEventLog(that.catalog)
	controller := tictactoe.NewGameController(game, events, events, that.rng)
	controller.Start()

	if err := that.updateGame(ctx, game); err != nil {
		return nil, nil, fmt.Errorf("failed to create game: %w", err)
	}

	log.Info("game created", "gameID", game.ID, "first", game.Turn)

	return that.publish(controller.State(), events.Drain())
}

func (that *GameManager) GetGame(ctx context.Context, id string) (*entity.Game, error) {
	return that.getGameByID(ctx, id)
}

// SelectCell applies the active player's move to the game. Moves on one game are serialized.
func (that *GameManager) SelectCell(ctx context.Context, id string, cell entity.CellID) (*entity.Game, []tictactoe.Event, error) {
	log := that.logger.With("method", "SelectCell", "gameID", id)

	unlock := that.locks.lock(id)
	defer unlock()

	game, err := that.getGameByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	events := tictactoe.NewEventLog(that.catalog)
	controller := tictactoe.NewGameController(game, events, events, that.rng)

	result, err := controller.SelectCell(cell)
	if err != nil {
		return nil, nil, fmt.Errorf("game %s: %w", id, err)
	}

	if err = that.updateGame(ctx, game); err != nil {
		return nil, nil, err
	}

	if result.Won || result.Draw {
		that.recordResult(ctx, game)
		log.Info("game finished", "status", game.Status, "winner", game.Winner)
	}

	return that.publish(controller.State(), events.Drain())
}

// ResetGame clears the board of an existing game.
func (that *GameManager) ResetGame(ctx context.Context, id string) (*entity.Game, []tictactoe.Event, error) {
	log := that.logger.With("method", "ResetGame", "gameID", id)

	unlock := that.locks.lock(id)
	defer unlock()

	game, err := that.getGameByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	events := tictactoe.NewEventLog(that.catalog)
	controller := tictactoe.NewGameController(game, events, events, that.rng)
	controller.Reset()

	if err = that.updateGame(ctx, game); err != nil {
		return nil, nil, err
	}

	log.Info("game reset", "first", game.Turn)

	return that.publish(controller.State(), events.Drain())
}

func (that *GameManager) DeleteGame(ctx context.Context, id string) error {
	unlock := that.locks.lock(id)
	defer unlock()

	if err := that.gameRepo.DeleteByID(ctx, id); err != nil {
		return fmt.Errorf("failed to delete game: %w", err)
	}

	if that.publisher != nil {
		that.publisher.Forget(id)
	}

	that.logger.Info("game deleted", "method", "DeleteGame", "gameID", id)

	return nil
}

// Stats summarizes every finished round.
func (that *GameManager) Stats(ctx context.Context) (entity.Summary, error) {
	summary, err := that.resultRepo.Summary(ctx)
	if err != nil {
		return entity.Summary{}, fmt.Errorf("failed to get summary: %w", err)
	}

	return summary, nil
}

func (that *GameManager) recordResult(ctx context.Context, game *entity.Game) {
	result, ok := entity.NewResult(game, that.now())
	if !ok {
		return
	}

	// the move is already stored, a lost result only skews the stats
	if err := that.resultRepo.Save(ctx, result); err != nil {
		that.logger.Error("failed to save result", "method", "recordResult", "gameID", game.ID, "error", err)
	}
}

func (that *GameManager) publish(game *entity.Game, events []tictactoe.Event) (*entity.Game, []tictactoe.Event, error) {
	if that.publisher != nil {
		that.publisher.Publish(game, events)
	}

	return game, events, nil
}

func (that *GameManager) getGameByID(ctx context.Context, id string) (*entity.Game, error) {
	if !pkg.IsGameID(id) {
		return nil, fmt.Errorf("%w: %s", apperror.ErrGameNotFound, id)
	}

	existingGame, err := that.gameRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	return existingGame, nil
}

func (that *GameManager) updateGame(ctx context.Context, game *entity.Game) error {
	if err := that.gameRepo.CreateOrUpdate(ctx, game); err != nil {
		return fmt.Errorf("failed to update game: %w", err)
	}

	return nil
}

// gameLocks hands out one mutex per game ID and forgets it once nobody holds it.
type gameLocks struct {
	mu    sync.Mutex
	locks map[string]*gameLock
}

type gameLock struct {
	sync.Mutex
	refs int
}

func newGameLocks() *gameLocks {
	return &gameLocks{
		locks: make(map[string]*gameLock),
	}
}

func (that *gameLocks) lock(id string) func() {
	that.mu.Lock()
	entry, ok := that.locks[id]
	if !ok {
		entry = &gameLock{}
		that.locks[id] = entry
	}
	entry.refs++
	that.mu.Unlock()

	entry.Lock()

	return func() {
		entry.Unlock()

		that.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(that.locks, id)
		}
		that.mu.Unlock()
	}
}

func (that *gameLocks) size() int {
	that.mu.Lock()
	defer that.mu.Unlock()

	return len(that.locks)
}
