package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/Khootz/hkustjob/internal/db"
)

// Postgres is a KV backed by the kv_entries table (see db.Migrate).
type Postgres struct {
	q db.Querier
}

func NewPostgres(q db.Querier) *Postgres {
	return &Postgres{q: q}
}

func (p *Postgres) Get(ctx context.Context, key string) (string, error) {
	var v string
	err := p.q.QueryRow(ctx, `SELECT value FROM kv_entries WHERE key = $1`, key).Scan(&v)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("kv get %s: %w", key, err)
	}
	return v, nil
}

func (p *Postgres) Set(ctx context.Context, key, value string) error {
	_, err := p.q.Exec(ctx,
		`INSERT INTO kv_entries (key, value, updated_at)
		 VALUES ($1, $2, NOW())
		 ON CONFLICT (key) DO UPDATE
		 SET value = EXCLUDED.value, updated_at = NOW()`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("kv set %s: %w", key, err)
	}
	return nil
}

func (p *Postgres) Delete(ctx context.Context, key string) error {
	if _, err := p.q.Exec(ctx, `DELETE FROM kv_entries WHERE key = $1`, key); err != nil {
		return fmt.Errorf("kv delete %s: %w", key, err)
	}
	return nil
}
