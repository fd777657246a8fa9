package storage

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/redis/go-redis/v9"
)

// RedisBackend stores each key as a plain Redis string under prefix + ":".
// The prefix keeps Keys and Clear from touching data that belongs to other
// applications sharing the database.
type RedisBackend struct {
	rdb    *redis.Client
	prefix string
}

// NewRedisBackend binds a backend to rdb.  An empty prefix defaults to
// "daybook".
func NewRedisBackend(rdb *redis.Client, prefix string) *RedisBackend {
	if prefix == "" {
		prefix = "daybook"
	}
	return &RedisBackend{rdb: rdb, prefix: prefix + ":"}
}

func (r *RedisBackend) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := r.rdb.Get(ctx, r.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (r *RedisBackend) Set(ctx context.Context, key, value string) error {
	return r.rdb.Set(ctx, r.prefix+key, value, 0).Err()
}

func (r *RedisBackend) Keys(ctx context.Context) ([]string, error) {
	full, err := r.scan(ctx)
	if err != nil {
		return nil, err
	}
	return uniqueSorted(full, r.prefix), nil
}

// uniqueSorted strips prefix and drops the duplicates SCAN may return.
func uniqueSorted(full []string, prefix string) []string {
	seen := make(map[string]struct{}, len(full))
	keys := make([]string, 0, len(full))
	for _, k := range full {
		k = strings.TrimPrefix(k, prefix)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (r *RedisBackend) Clear(ctx context.Context) error {
	return r.Replace(ctx, nil)
}

// Replace deletes the namespace and writes entries inside one MULTI/EXEC
// block so readers see either the old or the new key space.
func (r *RedisBackend) Replace(ctx context.Context, entries map[string]string) error {
	existing, err := r.scan(ctx)
	if err != nil {
		return err
	}
	_, err = r.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		if len(existing) > 0 {
			pipe.Del(ctx, existing...)
		}
		for k, v := range entries {
			pipe.Set(ctx, r.prefix+k, v, 0)
		}
		return nil
	})
	return err
}

// scan walks the namespace with SCAN rather than KEYS to avoid blocking the
// server on large databases.
func (r *RedisBackend) scan(ctx context.Context) ([]string, error) {
	var keys []string
	iter := r.rdb.Scan(ctx, 0, r.prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return keys, nil
}
