package repository

import (
	"context"
	"fmt"
	"sync"

	"github.com/rocketscienceinc/tictactoe-hotseat/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-hotseat/internal/entity"
)

// memGame keeps games in process memory, used when no Redis is configured.
type memGame struct {
	mu    sync.RWMutex
	games map[string]*entity.Game
}

func NewMemoryGameRepository() GameRepository {
	return &memGame{
		games: make(map[string]*entity.Game),
	}
}

func (that *memGame) CreateOrUpdate(_ context.Context, game *entity.Game) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.games[game.ID] = game.Clone()

	return nil
}

func (that *memGame) GetByID(_ context.Context, id string) (*entity.Game, error) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	game, ok := that.games[id]
	if !ok {
		return &entity.Game{}, fmt.Errorf("%w: %s", apperror.ErrGameNotFound, id)
	}

	return game.Clone(), nil
}

func (that *memGame) DeleteByID(_ context.Context, id string) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	if _, ok := that.games[id]; !ok {
		return fmt.Errorf("%w: %s", apperror.ErrGameNotFound, id)
	}

	delete(that.games, id)

	return nil
}
