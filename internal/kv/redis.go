package kv

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Redis stores each partition as a hash under "babel:<partition>".
type Redis struct {
	client *redis.Client
}

func NewRedis(ctx context.Context, addr, password string, db int) (*Redis, error) {
	if addr == "" {
		return nil, fmt.Errorf("kv: redis backend requires REDIS_ADDR")
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &Redis{client: client}, nil
}

func redisKey(partition string) string {
	return "babel:" + partition
}

func (s *Redis) Get(ctx context.Context, partition, key string) ([]byte, error) {
	v, err := s.client.HGet(ctx, redisKey(partition), key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis hget: %w", err)
	}
	return v, nil
}

func (s *Redis) Put(ctx context.Context, partition, key string, value []byte) error {
	if err := s.client.HSet(ctx, redisKey(partition), key, value).Err(); err != nil {
		return fmt.Errorf("redis hset: %w", err)
	}
	return nil
}

func (s *Redis) Close() error {
	return s.client.Close()
}
