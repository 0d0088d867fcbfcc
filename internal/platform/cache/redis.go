package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/chargeback-backend/internal/platform/logger"
)

type redisEntry struct {
	log *logger.Logger
	rdb goredis.UniversalClient
	key string
	ttl time.Duration
}

// NewRedis shares the entry between replicas; Redis expiry enforces the TTL.
func NewRedis(log *logger.Logger, rdb goredis.UniversalClient, key string, ttl time.Duration) (Entry, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if rdb == nil {
		return nil, fmt.Errorf("redis client required")
	}
	if key == "" {
		return nil, fmt.Errorf("cache key required")
	}
	return &redisEntry{log: log.With("cache", key), rdb: rdb, key: key, ttl: ttl}, nil
}

// Dial connects and pings, mirroring how the rest of the service opens Redis.
func Dial(ctx context.Context, addr string) (*goredis.Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}

func (e *redisEntry) Load(ctx context.Context) ([]byte, bool, error) {
	b, err := e.rdb.Get(ctx, e.key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get %s: %w", e.key, err)
	}
	return b, true, nil
}

func (e *redisEntry) Store(ctx context.Context, value []byte) error {
	if err := e.rdb.Set(ctx, e.key, value, e.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", e.key, err)
	}
	return nil
}

func (e *redisEntry) Clear(ctx context.Context) error {
	return e.rdb.Del(ctx, e.key).Err()
}
