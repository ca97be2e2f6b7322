// Package kv provides the partitioned key-value storage that backs session state.
// Every backend keeps values opaque; callers own the encoding.
package kv

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotFound is returned by Get when the key has never been written in the partition.
var ErrNotFound = errors.New("kv: key not found")

// Store is a partitioned get/put store. A partition is an independent keyspace.
type Store interface {
	Get(ctx context.Context, partition, key string) ([]byte, error)
	Put(ctx context.Context, partition, key string, value []byte) error
	Close() error
}

// Backend names accepted by Open.
const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
	BackendBolt     = "bolt"
	BackendSQLite   = "sqlite"
)

type Options struct {
	Backend       string
	DatabaseURL   string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	BoltPath      string
	SQLitePath    string
}

// Open connects the configured backend.
func Open(ctx context.Context, opts Options) (Store, error) {
	switch opts.Backend {
	case "", BackendMemory:
		return NewMemory(), nil
	case BackendPostgres:
		if opts.DatabaseURL == "" {
			return nil, fmt.Errorf("kv: postgres backend requires DATABASE_URL")
		}
		return NewPostgres(ctx, opts.DatabaseURL)
	case BackendRedis:
		return NewRedis(ctx, opts.RedisAddr, opts.RedisPassword, opts.RedisDB)
	case BackendBolt:
		return OpenBolt(opts.BoltPath)
	case BackendSQLite:
		return OpenSQLite(ctx, opts.SQLitePath)
	default:
		return nil, fmt.Errorf("kv: unknown backend %q", opts.Backend)
	}
}
