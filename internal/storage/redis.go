package storage

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisPrefix namespaces every redis key the backend touches.
const DefaultRedisPrefix = "folio:"

// Redis stores each document as a string value and keeps a sorted set of
// document keys for listing. Apply runs inside MULTI/EXEC.
type Redis struct {
	client *redis.Client
	prefix string
}

// NewRedis connects to redisURL and verifies the connection.
func NewRedis(redisURL, prefix string) (*Redis, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return NewRedisWithClient(client, prefix), nil
}

// NewRedisWithClient creates a backend from an existing client.
func NewRedisWithClient(client *redis.Client, prefix string) *Redis {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &Redis{client: client, prefix: prefix}
}

func (r *Redis) docKey(key string) string {
	return r.prefix + "doc:" + key
}

func (r *Redis) indexKey() string {
	return r.prefix + "keys"
}

// Read returns the document at key.
func (r *Redis) Read(ctx context.Context, key string) ([]byte, error) {
	data, err := r.client.Get(ctx, r.docKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotExist
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	return data, nil
}

// Write stores data at key and records the key in the index.
func (r *Redis) Write(ctx context.Context, key string, data []byte) error {
	return r.Apply(ctx, []Op{WriteOp(key, data)})
}

// Delete removes key and its index entry.
func (r *Redis) Delete(ctx context.Context, key string) error {
	return r.Apply(ctx, []Op{DeleteOp(key)})
}

// ListKeys returns indexed keys under prefix, sorted.
func (r *Redis) ListKeys(ctx context.Context, prefix string) ([]string, error) {
	members, err := r.client.ZRange(ctx, r.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("list %q: %w", prefix, err)
	}

	keys := make([]string, 0, len(members))
	for _, m := range members {
		if strings.HasPrefix(m, prefix) {
			keys = append(keys, m)
		}
	}
	slices.Sort(keys)
	return keys, nil
}

// Apply queues every op in one MULTI/EXEC transaction.
func (r *Redis) Apply(ctx context.Context, ops []Op) error {
	if err := validateOps(ops); err != nil {
		return err
	}
	if len(ops) == 0 {
		return nil
	}

	pipe := r.client.TxPipeline()
	for _, op := range ops {
		switch op.Kind {
		case OpWrite:
			pipe.Set(ctx, r.docKey(op.Key), op.Data, 0)
			pipe.ZAdd(ctx, r.indexKey(), redis.Z{Score: 0, Member: op.Key})
		case OpDelete:
			pipe.Del(ctx, r.docKey(op.Key))
			pipe.ZRem(ctx, r.indexKey(), op.Key)
		}
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("apply batch: %w", err)
	}
	return nil
}

// Ping checks if redis is reachable.
func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close closes the redis connection.
func (r *Redis) Close() error {
	return r.client.Close()
}
