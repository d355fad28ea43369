package cache

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// RedisConfig configures the Redis-backed cache.
type RedisConfig struct {
	Addr       string
	Password   string
	DB         int
	KeyPrefix  string
	DefaultTTL time.Duration
	PoolSize   int
}

// DefaultRedisConfig returns the default Redis configuration.
func DefaultRedisConfig() *RedisConfig {
	return &RedisConfig{
		Addr:       "localhost:6379",
		KeyPrefix:  "daysbot:",
		DefaultTTL: 30 * time.Minute,
		PoolSize:   10,
	}
}

// RedisCache implements CacheService on Redis. It is used as the shared L2
// behind the in-process LRU.
type RedisCache struct {
	client     redis.UniversalClient
	keyPrefix  string
	defaultTTL time.Duration
}

// NewRedisCache connects to Redis and verifies the connection.
func NewRedisCache(ctx context.Context, config *RedisConfig) (*RedisCache, error) {
	if config == nil {
		config = DefaultRedisConfig()
	}

	client := redis.NewClient(&redis.Options{
		Addr:         config.Addr,
		Password:     config.Password,
		DB:           config.DB,
		PoolSize:     config.PoolSize,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrap(err, "failed to connect to Redis")
	}

	slog.Info("Redis cache connected", "addr", config.Addr, "db", config.DB)
	return NewRedisCacheWithClient(client, config.KeyPrefix, config.DefaultTTL), nil
}

// NewRedisCacheWithClient wraps an existing client.
func NewRedisCacheWithClient(client redis.UniversalClient, keyPrefix string, defaultTTL time.Duration) *RedisCache {
	if defaultTTL <= 0 {
		defaultTTL = 30 * time.Minute
	}
	return &RedisCache{client: client, keyPrefix: keyPrefix, defaultTTL: defaultTTL}
}

// Get retrieves a value. Redis errors are logged and reported as a miss.
func (r *RedisCache) Get(ctx context.Context, key string) ([]byte, bool) {
	data, err := r.client.Get(ctx, r.fullKey(key)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			slog.Warn("failed to get cache value", "key", key, "error", err)
		}
		return nil, false
	}
	return data, true
}

// Set stores a value.
func (r *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = r.defaultTTL
	}
	if err := r.client.Set(ctx, r.fullKey(key), value, ttl).Err(); err != nil {
		return errors.Wrapf(err, "failed to set cache value %s", key)
	}
	return nil
}

// Invalidate deletes one key, or scans and deletes a prefix.
func (r *RedisCache) Invalidate(ctx context.Context, pattern string) error {
	prefix, wildcard := strings.CutSuffix(pattern, "*")
	if !wildcard {
		return errors.Wrap(r.client.Del(ctx, r.fullKey(pattern)).Err(), "failed to delete cache value")
	}

	iter := r.client.Scan(ctx, 0, r.fullKey(prefix)+"*", 100).Iterator()
	keys := make([]string, 0, 100)
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
		if len(keys) >= 100 {
			if err := r.client.Del(ctx, keys...).Err(); err != nil {
				return errors.Wrap(err, "failed to delete cache values")
			}
			keys = keys[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return errors.Wrap(err, "failed to scan cache keys")
	}
	if len(keys) > 0 {
		if err := r.client.Del(ctx, keys...).Err(); err != nil {
			return errors.Wrap(err, "failed to delete cache values")
		}
	}
	return nil
}

// Close closes the underlying client.
func (r *RedisCache) Close() error {
	return r.client.Close()
}

func (r *RedisCache) fullKey(key string) string {
	return r.keyPrefix + key
}

var _ CacheService = (*RedisCache)(nil)
