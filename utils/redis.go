package utils

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/neiist-dev/activities-backend/config"
)

var RedisClient *redis.Client

// InitRedis connects the shared Redis client used by the rate limiter and the
// event-listing cache.
func InitRedis(cfg *config.Config) error {
	RedisClient = redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := RedisClient.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}

	log.Println("✅ Redis connected")
	return nil
}

// CacheSet stores a serialized value with a TTL. Failures are logged, not returned:
// the cache is best-effort.
func CacheSet(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if RedisClient == nil {
		return
	}
	if err := RedisClient.Set(ctx, key, value, ttl).Err(); err != nil {
		log.Printf("⚠️ Redis SET %s failed: %v", key, err)
	}
}

// CacheGet returns the cached value, or nil on miss or error.
func CacheGet(ctx context.Context, key string) []byte {
	if RedisClient == nil {
		return nil
	}
	data, err := RedisClient.Get(ctx, key).Bytes()
	if err != nil {
		return nil
	}
	return data
}

// CacheInvalidate drops a key after a write that makes it stale.
func CacheInvalidate(ctx context.Context, keys ...string) {
	if RedisClient == nil {
		return
	}
	if err := RedisClient.Del(ctx, keys...).Err(); err != nil {
		log.Printf("⚠️ Redis DEL failed: %v", err)
	}
}
