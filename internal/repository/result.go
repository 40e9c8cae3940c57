package repository

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/rocketscienceinc/tictactoe-hotseat/internal/entity"
)

type ResultRepository interface {
	Save(ctx context.Context, result entity.Result) error
	Summary(ctx context.Context) (entity.Summary, error)
}

type dbResult struct {
	db *sql.DB
}

// NewResultRepository writes to the game_results table, see storage.PostgresStorage.Init.
func NewResultRepository(db *sql.DB) ResultRepository {
	return &dbResult{
		db: db,
	}
}

func (that *dbResult) Save(ctx context.Context, result entity.Result) error {
	const query = `INSERT INTO game_results (game_id, outcome, winner, move_count, finished_at)
VALUES ($1, $2, $3, $4, $5)`

	_, err := that.db.ExecContext(ctx, query,
		result.GameID,
		string(result.Outcome),
		string(result.Winner),
		result.MoveCount,
		result.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert result: %w", err)
	}

	return nil
}

func (that *dbResult) Summary(ctx context.Context) (entity.Summary, error) {
	const query = `SELECT
	COUNT(*) FILTER (WHERE outcome = 'won' AND winner = 'X'),
	COUNT(*) FILTER (WHERE outcome = 'won' AND winner = 'O'),
	COUNT(*) FILTER (WHERE outcome = 'draw'),
	COUNT(*)
FROM game_results`

	var summary entity.Summary

	err := that.db.QueryRowContext(ctx, query).Scan(&summary.XWins, &summary.OWins, &summary.Draws, &summary.Total)
	if err != nil {
		return entity.Summary{}, fmt.Errorf("failed to query summary: %w", err)
	}

	return summary, nil
}

type memResult struct {
	mu      sync.RWMutex
	results []entity.Result
}

func NewMemoryResultRepository() ResultRepository {
	return &memResult{}
}

func (that *memResult) Save(_ context.Context, result entity.Result) error {
	that.mu.Lock()
	that.results = append(that.results, result)
	that.mu.Unlock()

	return nil
}

func (that *memResult) Summary(_ context.Context) (entity.Summary, error) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	var summary entity.Summary
	for _, result := range that.results {
		summary.Add(result)
	}

	return summary, nil
}
