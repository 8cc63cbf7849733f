package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/veilapp/veil-backend/internal/config"
)

// PresenceTTL is how long a presence/activity marker lives without refresh.
// Absence of the key means offline regardless of the durable DB flag.
const PresenceTTL = 300 * time.Second

type RedisCache struct {
	Client *redis.Client
}

// NewRedisCache initializes Redis client from config.
// Only Addr is mandatory, Password/DB are optional.
func NewRedisCache(cfg *config.Config) *RedisCache {
	opts := &redis.Options{
		Addr: cfg.Redis.Addr,
	}
	if cfg.Redis.Password != "" {
		opts.Password = cfg.Redis.Password
	}
	if cfg.Redis.DB != 0 {
		opts.DB = cfg.Redis.DB
	}
	return &RedisCache{Client: redis.NewClient(opts)}
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.Client.Ping(ctx).Err()
}

func (c *RedisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return c.Client.Set(ctx, key, value, ttl).Err()
}

func (c *RedisCache) Get(ctx context.Context, key string) (string, error) {
	return c.Client.Get(ctx, key).Result()
}

func (c *RedisCache) Del(ctx context.Context, keys ...string) error {
	return c.Client.Del(ctx, keys...).Err()
}

// KeyForPresence generates the Redis key marking a user as online.
func (c *RedisCache) KeyForPresence(userID string) string {
	return fmt.Sprintf("presence:%s", userID)
}

// KeyForActivity generates the Redis key holding a user's current activity.
func (c *RedisCache) KeyForActivity(userID string) string {
	return fmt.Sprintf("activity:%s", userID)
}

// SetPresence marks the user online for PresenceTTL.
func (c *RedisCache) SetPresence(ctx context.Context, userID string) error {
	return c.Client.Set(ctx, c.KeyForPresence(userID), "online", PresenceTTL).Err()
}

// ClearPresence removes the user's presence and activity markers immediately
// rather than waiting for TTL expiry.
func (c *RedisCache) ClearPresence(ctx context.Context, userID string) error {
	return c.Client.Del(ctx, c.KeyForPresence(userID), c.KeyForActivity(userID)).Err()
}

// IsOnline reports whether the user's presence marker is live.
func (c *RedisCache) IsOnline(ctx context.Context, userID string) (bool, error) {
	_, err := c.Client.Get(ctx, c.KeyForPresence(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	} else if err != nil {
		return false, err
	}
	return true, nil
}

// SetActivity stores the user's current activity text for PresenceTTL.
func (c *RedisCache) SetActivity(ctx context.Context, userID, activity string) error {
	return c.Client.Set(ctx, c.KeyForActivity(userID), activity, PresenceTTL).Err()
}

// GetActivity returns the user's current activity, or "" when none is live.
func (c *RedisCache) GetActivity(ctx context.Context, userID string) (string, error) {
	val, err := c.Client.Get(ctx, c.KeyForActivity(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	} else if err != nil {
		return "", err
	}
	return val, nil
}
