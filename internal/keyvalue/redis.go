package keyvalue

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-redis/redis/v8"
)

// Redis is a Store backed by a Redis instance. Keys are namespaced with a
// prefix so one instance can serve multiple oracles.
type Redis struct {
	client *redis.Client
	prefix string
}

// NewRedis creates a Redis-backed store. prefix may be empty.
func NewRedis(client *redis.Client, prefix string) *Redis {
	return &Redis{client: client, prefix: prefix}
}

func (r *Redis) key(key string) string {
	if r.prefix == "" {
		return key
	}
	return r.prefix + ":" + key
}

// Get retrieves the value stored under key.
func (r *Redis) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := r.client.Get(ctx, r.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrKeyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	return value, nil
}

// Set stores value under key without expiry.
func (r *Redis) Set(ctx context.Context, key string, value []byte) error {
	if err := r.client.Set(ctx, r.key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// Apply commits all staged writes in a single transactional pipeline.
func (r *Redis) Apply(ctx context.Context, batch *Batch) error {
	pipe := r.client.TxPipeline()
	for _, op := range batch.Ops() {
		pipe.Set(ctx, r.key(op.Key), op.Value, 0)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis apply batch: %w", err)
	}
	return nil
}
