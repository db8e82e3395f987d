package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/atelier/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const defaultInFlightPrefix = "atelier:inflight:"

// releaseScript deletes the key only while it still holds the caller's token
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisInFlightStore implements InFlightStore using Redis, so several
// server processes share the same claims
type RedisInFlightStore struct {
	client    *redis.Client
	keyPrefix string
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// NewRedisInFlightStore connects to Redis and creates the store
func NewRedisInFlightStore(cfg RedisConfig) (*RedisInFlightStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisInFlightStoreWithClient(client, ""), nil
}

// NewRedisInFlightStoreWithClient creates a store with an existing Redis client
func NewRedisInFlightStoreWithClient(client *redis.Client, keyPrefix string) *RedisInFlightStore {
	if keyPrefix == "" {
		keyPrefix = defaultInFlightPrefix
	}
	return &RedisInFlightStore{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

// Acquire claims key with SETNX and a TTL, atomically. The stored value is
// the claim token.
func (s *RedisInFlightStore) Acquire(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	token := uuid.NewString()
	ok, err := s.client.SetNX(ctx, s.keyPrefix+key, token, ttl).Result()
	if err != nil {
		return "", false, fmt.Errorf("failed to acquire in-flight key: %w", err)
	}
	if !ok {
		return "", false, nil
	}
	return token, true, nil
}

// Release deletes the claim with a compare-and-delete script
func (s *RedisInFlightStore) Release(ctx context.Context, key, token string) error {
	if err := releaseScript.Run(ctx, s.client, []string{s.keyPrefix + key}, token).Err(); err != nil {
		return fmt.Errorf("failed to release in-flight key: %w", err)
	}
	return nil
}

// Close closes the Redis client
func (s *RedisInFlightStore) Close() error {
	return s.client.Close()
}

var _ shared.InFlightStore = (*RedisInFlightStore)(nil)
