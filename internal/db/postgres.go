// Package db provides database connection helpers and the schema the
// service keeps in PostgreSQL.
package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Querier is the subset of *pgxpool.Pool the repositories use.
// pgxmock pools satisfy it in tests.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// NewPostgresPool creates and verifies a pgxpool connection pool.
func NewPostgresPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("pgxpool.New: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping failed: %w", err)
	}

	return pool, nil
}

// schema is applied on every start; each statement is idempotent.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS kv_entries (
	   key        TEXT PRIMARY KEY,
	   value      TEXT NOT NULL,
	   updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	 )`,
	`CREATE TABLE IF NOT EXISTS job_feed (
	   id          BIGSERIAL PRIMARY KEY,
	   source_key  TEXT NOT NULL UNIQUE,
	   company     TEXT NOT NULL,
	   job_title   TEXT NOT NULL,
	   raw_data    JSONB NOT NULL,
	   page        INT,
	   created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
	 )`,
	`CREATE INDEX IF NOT EXISTS job_feed_created_at_idx ON job_feed (created_at DESC)`,
}

// Migrate creates the tables used by store.Postgres and feed.Repository.
func Migrate(ctx context.Context, q Querier) error {
	for i, stmt := range schema {
		if _, err := q.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate step %d: %w", i+1, err)
		}
	}
	return nil
}
