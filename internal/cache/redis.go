// Package cache is a thin Redis layer for slow external lookups. A nil
// *Cache, or one whose server was unreachable at startup, behaves as a
// permanent miss so callers never branch on availability.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// PincodeKeyFmt is the key layout for cached pincode lookups.
const PincodeKeyFmt = "pincode:%s"

// Cache stores JSON values in Redis.
type Cache struct {
	client *redis.Client
	logger *zap.Logger
}

// Connect dials Redis and verifies it with a ping. On failure the returned
// cache is disabled and the error is reported for logging.
func Connect(ctx context.Context, addr, password string, db int, logger *zap.Logger) (*Cache, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Cache{logger: logger}
	if addr == "" {
		return c, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return c, fmt.Errorf("ping redis %s: %w", addr, err)
	}
	c.client = client
	return c, nil
}

// New wraps an existing client.
func New(client *redis.Client, logger *zap.Logger) *Cache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cache{client: client, logger: logger}
}

// Enabled reports whether a live Redis connection backs the cache.
func (c *Cache) Enabled() bool {
	return c != nil && c.client != nil
}

// GetJSON decodes the value at key into dst. It reports false on a miss,
// a decode failure or a disabled cache.
func (c *Cache) GetJSON(ctx context.Context, key string, dst any) bool {
	if !c.Enabled() {
		return false
	}
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Debug("cache get failed", zap.String("key", key), zap.Error(err))
		}
		return false
	}
	if err := json.Unmarshal(data, dst); err != nil {
		c.logger.Debug("cache decode failed", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

// SetJSON stores v at key for ttl. Failures are logged and swallowed.
func (c *Cache) SetJSON(ctx context.Context, key string, v any, ttl time.Duration) {
	if !c.Enabled() {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		c.logger.Debug("cache encode failed", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.client.Set(ctx, key, data, ttl).Err(); err != nil {
		c.logger.Debug("cache set failed", zap.String("key", key), zap.Error(err))
	}
}

// Invalidate removes keys.
func (c *Cache) Invalidate(ctx context.Context, keys ...string) {
	if !c.Enabled() || len(keys) == 0 {
		return
	}
	c.client.Del(ctx, keys...)
}

// Close releases the connection.
func (c *Cache) Close() error {
	if !c.Enabled() {
		return nil
	}
	return c.client.Close()
}
