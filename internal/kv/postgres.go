package kv

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS babel_kv (
	partition  text        NOT NULL,
	key        text        NOT NULL,
	value      bytea       NOT NULL,
	updated_at timestamptz NOT NULL DEFAULT now(),
	PRIMARY KEY (partition, key)
)`

type Postgres struct {
	pool *pgxpool.Pool
}

func NewPostgres(ctx context.Context, databaseURL string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migrate babel_kv: %w", err)
	}
	return &Postgres{pool: pool}, nil
}

func (s *Postgres) Get(ctx context.Context, partition, key string) ([]byte, error) {
	var value []byte
	err := s.pool.QueryRow(ctx, `
		SELECT value FROM babel_kv
		WHERE partition = $1 AND key = $2`,
		partition, key,
	).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select value: %w", err)
	}
	return value, nil
}

func (s *Postgres) Put(ctx context.Context, partition, key string, value []byte) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO babel_kv (partition, key, value, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (partition, key)
		DO UPDATE SET value = $3, updated_at = now()`,
		partition, key, value,
	)
	if err != nil {
		return fmt.Errorf("upsert value: %w", err)
	}
	return nil
}

func (s *Postgres) Close() error {
	s.pool.Close()
	return nil
}
