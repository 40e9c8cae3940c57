package repository

import (
	"context"
	"testing"
	"time"

	"github.com/rocketscienceinc/tictactoe-hotseat/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-hotseat/internal/entity"
	"github.com/rocketscienceinc/tictactoe-hotseat/testing/suite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedRandomizer int

func (that fixedRandomizer) Intn(int) int {
	return int(that)
}

func playedGame(t *testing.T) *entity.Game {
	t.Helper()

	game := entity.NewGame("123", fixedRandomizer(0))
	for _, cell := range []entity.CellID{entity.R1C1, entity.R2C2} {
		_, err := game.ApplyMove(cell)
		require.NoError(t, err)
	}

	return game
}

// testGameRepository runs the behavior every GameRepository must share.
func testGameRepository(ctx context.Context, t *testing.T, newRepo func() GameRepository) {
	t.Run("GetByID_Success", func(t *testing.T) {
		gameRepo := newRepo()

		// Given: a stored game with two moves
		game := playedGame(t)
		require.NoError(t, gameRepo.CreateOrUpdate(ctx, game))

		// When: GetByID is called with existing ID
		retrievedGame, err := gameRepo.GetByID(ctx, game.ID)

		// Then: the retrieved game should match the saved game
		require.NoError(t, err)
		assert.Equal(t, game, retrievedGame)
	})

	t.Run("CreateOrUpdate_Overwrites", func(t *testing.T) {
		gameRepo := newRepo()

		// Given: a stored game
		game := playedGame(t)
		require.NoError(t, gameRepo.CreateOrUpdate(ctx, game))

		// When: the game changes and is stored again
		_, err := game.ApplyMove(entity.R3C3)
		require.NoError(t, err)
		require.NoError(t, gameRepo.CreateOrUpdate(ctx, game))

		// Then: the latest state is returned
		retrievedGame, err := gameRepo.GetByID(ctx, game.ID)
		require.NoError(t, err)
		assert.Equal(t, 3, retrievedGame.MoveCount)
		assert.Equal(t, entity.MarkX, retrievedGame.Board.At(entity.R3C3))
	})

	t.Run("GetByID_NotFound", func(t *testing.T) {
		gameRepo := newRepo()

		// When: GetByID is called with non-existent ID
		retrievedGame, err := gameRepo.GetByID(ctx, "9999999")

		// Then: an ErrGameNotFound error should be returned
		require.ErrorIs(t, err, apperror.ErrGameNotFound)
		assert.Empty(t, retrievedGame.ID)
		assert.Empty(t, retrievedGame.Status)
	})

	t.Run("DeleteByID_Success", func(t *testing.T) {
		gameRepo := newRepo()

		// Given: a stored game
		game := playedGame(t)
		require.NoError(t, gameRepo.CreateOrUpdate(ctx, game))

		// When: DeleteByID is called with existing ID
		err := gameRepo.DeleteByID(ctx, game.ID)

		// Then: the game is gone
		require.NoError(t, err)

		_, err = gameRepo.GetByID(ctx, game.ID)
		require.ErrorIs(t, err, apperror.ErrGameNotFound)
	})

	t.Run("DeleteByID_NotFound", func(t *testing.T) {
		gameRepo := newRepo()

		// When: DeleteByID is called with non-existent ID
		err := gameRepo.DeleteByID(ctx, "9999999")

		// Then: an ErrGameNotFound error should be returned
		require.ErrorIs(t, err, apperror.ErrGameNotFound)
	})
}

func TestGameRepository_Redis(t *testing.T) {
	ctx, st := suite.New(t)

	testGameRepository(ctx, t, func() GameRepository {
		require.NoError(t, st.Storage.FlushDB(ctx).Err())
		return NewGameRepository(st.Storage, 0)
	})
}

func TestGameRepository_RedisTTL(t *testing.T) {
	ctx, st := suite.New(t)

	gameRepo := NewGameRepository(st.Storage, time.Hour)

	// Given: a game stored with a one hour TTL
	game := playedGame(t)
	require.NoError(t, gameRepo.CreateOrUpdate(ctx, game))
	assert.Equal(t, time.Hour, st.Miniredis.TTL("game:"+game.ID))

	// When: more than an hour passes
	st.Miniredis.FastForward(time.Hour + time.Second)

	// Then: the game has expired
	_, err := gameRepo.GetByID(ctx, game.ID)
	require.ErrorIs(t, err, apperror.ErrGameNotFound)
}

func TestGameRepository_RedisContainer(t *testing.T) {
	if testing.Short() {
		t.Skip("container test")
	}

	ctx, st := suite.NewRedisContainer(t)

	testGameRepository(ctx, t, func() GameRepository {
		require.NoError(t, st.Storage.FlushDB(ctx).Err())
		return NewGameRepository(st.Storage, time.Minute)
	})
}

func TestGameRepository_Memory(t *testing.T) {
	testGameRepository(context.Background(), t, NewMemoryGameRepository)

	t.Run("Stored games are copies", func(t *testing.T) {
		ctx := context.Background()
		gameRepo := NewMemoryGameRepository()

		// Given: a stored game
		game := playedGame(t)
		require.NoError(t, gameRepo.CreateOrUpdate(ctx, game))

		// When: the caller keeps mutating its value
		_, err := game.ApplyMove(entity.R3C3)
		require.NoError(t, err)

		// Then: the stored game is unaffected
		retrievedGame, err := gameRepo.GetByID(ctx, game.ID)
		require.NoError(t, err)
		assert.Equal(t, 2, retrievedGame.MoveCount)
	})
}
