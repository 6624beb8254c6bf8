package dedup

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
)

const redisKeyPrefix = "alphascan:seen:"

// RedisStore is a Redis-backed seen set for deployments where alert
// suppression must survive restarts or be shared between instances.
// Keys always carry a TTL to bound the keyspace.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore connects to Redis at addr. A non-positive TTL defaults to
// 72h, the widest window in which a pair can still pass the age filter.
func NewRedisStore(addr, password string, db int, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = 72 * time.Hour
	}
	return &RedisStore{
		client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
			DB:       db,
		}),
		ttl: ttl,
	}
}

// Ping verifies connectivity, called once at startup.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Seen reports whether id is present.
func (s *RedisStore) Seen(ctx context.Context, id string) (bool, error) {
	n, err := s.client.Exists(ctx, redisKeyPrefix+id).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// MarkSeen records id with the store TTL. SetNX keeps the first-seen
// deadline when two instances race on the same pair.
func (s *RedisStore) MarkSeen(ctx context.Context, id string) error {
	return s.client.SetNX(ctx, redisKeyPrefix+id, 1, s.ttl).Err()
}

// Close releases the connection pool.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
