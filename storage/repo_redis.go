package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var _ Repo = (*RedisRepo)(nil)

// RedisRepo keeps each browser's storage in one Redis hash that expires after ttl of inactivity.
type RedisRepo struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisRepo(client *redis.Client, ttl time.Duration) *RedisRepo {
	return &RedisRepo{
		client: client,
		prefix: "portal:storage:",
		ttl:    ttl,
	}
}

func (r *RedisRepo) key(browserID string) string {
	return r.prefix + browserID
}

func (r *RedisRepo) Get(ctx context.Context, browserID, key string) (string, bool, error) {
	if browserID == "" {
		return "", false, fmt.Errorf("browserID is required")
	}
	k := r.key(browserID)
	var get *redis.StringCmd
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		get = pipe.HGet(ctx, k, key)
		if r.ttl > 0 {
			pipe.Expire(ctx, k, r.ttl)
		}
		return nil
	})
	if err != nil && !errors.Is(err, redis.Nil) {
		return "", false, fmt.Errorf("failed to read client storage: %w", err)
	}
	v, err := get.Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read client storage: %w", err)
	}
	return v, true, nil
}

func (r *RedisRepo) Set(ctx context.Context, browserID string, values map[string]string) error {
	if browserID == "" {
		return fmt.Errorf("browserID is required")
	}
	if len(values) == 0 {
		return nil
	}
	key := r.key(browserID)
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, values)
		if r.ttl > 0 {
			pipe.Expire(ctx, key, r.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to write client storage: %w", err)
	}
	return nil
}

func (r *RedisRepo) Delete(ctx context.Context, browserID string, keys ...string) error {
	if browserID == "" {
		return fmt.Errorf("browserID is required")
	}
	if len(keys) == 0 {
		return nil
	}
	if err := r.client.HDel(ctx, r.key(browserID), keys...).Err(); err != nil {
		return fmt.Errorf("failed to delete from client storage: %w", err)
	}
	return nil
}
