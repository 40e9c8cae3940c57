package repository

import (
	"context"
	"testing"
	"time"

	"github.com/rocketscienceinc/tictactoe-hotseat/internal/entity"
	"github.com/rocketscienceinc/tictactoe-hotseat/testing/suite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testResultRepository(ctx context.Context, t *testing.T, resultRepo ResultRepository) {
	t.Helper()

	// Given: an empty repository
	summary, err := resultRepo.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, entity.Summary{}, summary)

	// When: two X wins, one O win and one draw are saved
	finishedAt := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	results := []entity.Result{
		{GameID: "a", Outcome: entity.StatusWon, Winner: entity.MarkX, MoveCount: 5, FinishedAt: finishedAt},
		{GameID: "a", Outcome: entity.StatusWon, Winner: entity.MarkX, MoveCount: 7, FinishedAt: finishedAt},
		{GameID: "b", Outcome: entity.StatusWon, Winner: entity.MarkO, MoveCount: 6, FinishedAt: finishedAt},
		{GameID: "c", Outcome: entity.StatusDraw, MoveCount: 9, FinishedAt: finishedAt},
	}
	for _, result := range results {
		require.NoError(t, resultRepo.Save(ctx, result))
	}

	// Then: the summary counts every outcome
	summary, err = resultRepo.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, entity.Summary{XWins: 2, OWins: 1, Draws: 1, Total: 4}, summary)
}

func TestResultRepository_Memory(t *testing.T) {
	testResultRepository(context.Background(), t, NewMemoryResultRepository())
}

func TestResultRepository_Postgres(t *testing.T) {
	if testing.Short() {
		t.Skip("container test")
	}

	ctx, db := suite.NewPostgres(t)

	testResultRepository(ctx, t, NewResultRepository(db))
}
