package storage

import (
	"context"
	"database/sql"
	"fmt"

	// import the PostgreSQL driver to register it with the database/sql package.
	_ "github.com/lib/pq"
)

type PostgresStorage struct {
	Connection *sql.DB
}

func NewPostgresStorage(ctx context.Context, dsn string) (*PostgresStorage, error) {
	conn, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("can't open database: %w", err)
	}

	if err = conn.PingContext(ctx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("can't connect to database: %w", err)
	}

	return &PostgresStorage{Connection: conn}, nil
}

// Init creates the tables used by the repositories.
func (that *PostgresStorage) Init(ctx context.Context) error {
	const query = `CREATE TABLE IF NOT EXISTS game_results (
	id          BIGSERIAL PRIMARY KEY,
	game_id     TEXT        NOT NULL,
	outcome     TEXT        NOT NULL,
	winner      TEXT        NOT NULL DEFAULT '',
	move_count  INTEGER     NOT NULL,
	finished_at TIMESTAMPTZ NOT NULL
)`

	if _, err := that.Connection.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("can't create table: %w", err)
	}

	return nil
}

func (that *PostgresStorage) Close() error {
	return that.Connection.Close()
}
