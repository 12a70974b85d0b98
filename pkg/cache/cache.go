package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	pkglogger "github.com/campusloop/campusloop-backend/pkg/logger"
	"github.com/redis/go-redis/v9"
)

// 상품 목록 캐시
const (
	KeyProducts = "campusloop:products:all"
	TTLProducts = 30 * time.Second
)

// ErrMiss is returned by Get when nothing usable is cached under the key
var ErrMiss = errors.New("cache miss")

// Service caches JSON encoded values
type Service interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	IsAvailable() bool
}

type redisCache struct {
	client *redis.Client
}

// NewService wraps client. A nil client gives a cache that always misses and drops writes.
func NewService(client *redis.Client) Service {
	return &redisCache{client: client}
}

func (c *redisCache) IsAvailable() bool { return c.client != nil }

func (c *redisCache) Get(ctx context.Context, key string, dest interface{}) error {
	if c.client == nil {
		return ErrMiss
	}
	raw, err := c.client.Get(ctx, key).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		return ErrMiss
	case err != nil:
		return fmt.Errorf("cache get %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		// 깨진 값은 miss 로 취급
		return fmt.Errorf("%w: decode %s: %v", ErrMiss, key, err)
	}
	return nil
}

func (c *redisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if c.client == nil {
		return nil
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache encode %s: %w", key, err)
	}
	return c.client.Set(ctx, key, raw, ttl).Err()
}

func (c *redisCache) Delete(ctx context.Context, keys ...string) error {
	if c.client == nil || len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}

// Remember returns the cached value of key, or calls load and caches its result for ttl.
// Cache failures are logged and never fail the call; hit reports whether load was skipped.
func Remember[T any](ctx context.Context, svc Service, key string, ttl time.Duration, load func(context.Context) (T, error)) (value T, hit bool, err error) {
	err = svc.Get(ctx, key, &value)
	if err == nil {
		return value, true, nil
	}
	if !errors.Is(err, ErrMiss) {
		pkglogger.FromContext(ctx).Warn().Err(err).Str("key", key).Msg("cache read")
	}

	var zero T
	value, err = load(ctx)
	if err != nil {
		return zero, false, err
	}
	if err := svc.Set(ctx, key, value, ttl); err != nil {
		pkglogger.FromContext(ctx).Warn().Err(err).Str("key", key).Msg("cache write")
	}
	return value, false, nil
}
