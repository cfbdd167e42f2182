package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	redis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	applog "funkoshop/internal/log"
)

// Prefix scopes every catalog listing key; writes drop everything under it.
const Prefix = "catalog:"

// Cache stores serialized listing responses. Implementations swallow their
// own failures: a miss is always a safe answer.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, val []byte)
	Invalidate(ctx context.Context, prefix string)
}

type Noop struct{}

func (Noop) Get(context.Context, string) ([]byte, bool) { return nil, false }
func (Noop) Set(context.Context, string, []byte)        {}
func (Noop) Invalidate(context.Context, string)         {}

type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedis(addr, password string, db int, ttl time.Duration) *Redis {
	return &Redis{
		client: redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db}),
		ttl:    ttl,
	}
}

func (r *Redis) Ping(ctx context.Context) error { return r.client.Ping(ctx).Err() }

func (r *Redis) Close() error { return r.client.Close() }

func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool) {
	b, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			applog.L().Warn("cache get failed", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	return b, true
}

func (r *Redis) Set(ctx context.Context, key string, val []byte) {
	if err := r.client.Set(ctx, key, val, r.ttl).Err(); err != nil {
		applog.L().Warn("cache set failed", zap.String("key", key), zap.Error(err))
	}
}

// Invalidate deletes every key starting with prefix. SCAN keeps it from
// blocking the server the way KEYS would.
func (r *Redis) Invalidate(ctx context.Context, prefix string) {
	iter := r.client.Scan(ctx, 0, prefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		applog.L().Warn("cache scan failed", zap.String("prefix", prefix), zap.Error(err))
		return
	}
	if len(keys) == 0 {
		return
	}
	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		applog.L().Warn("cache invalidate failed", zap.String("prefix", prefix), zap.Error(err))
	}
}

// Load returns the cached value under key, or calls fetch and caches its
// result. A cache entry that no longer decodes is treated as a miss.
func Load[T any](ctx context.Context, c Cache, key string, fetch func() (T, error)) (T, error) {
	if b, ok := c.Get(ctx, key); ok {
		var v T
		if err := json.Unmarshal(b, &v); err == nil {
			return v, nil
		}
	}
	v, err := fetch()
	if err != nil {
		return v, err
	}
	if b, err := json.Marshal(v); err == nil {
		c.Set(ctx, key, b)
	}
	return v, nil
}
