package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore backs the result cache with a Redis instance.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore connects to Redis. The connection is verified with a short
// ping so a bad address surfaces at startup rather than on the first search.
func NewRedisStore(addr, password string, db int) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &RedisStore{client: client}, nil
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		cacheMissesTotal.WithLabelValues("redis").Inc()
		return nil, false, nil
	}
	if err != nil {
		cacheErrorsTotal.WithLabelValues("redis", "get").Inc()
		return nil, false, err
	}
	cacheHitsTotal.WithLabelValues("redis").Inc()
	return val, true, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := s.client.Set(ctx, key, value, ttl).Err(); err != nil {
		cacheErrorsTotal.WithLabelValues("redis", "set").Inc()
		return err
	}
	return nil
}

// DeleteByPrefix walks the keyspace with SCAN and deletes in batches. SCAN is
// used instead of KEYS so a large invalidation doesn't block the server.
func (s *RedisStore) DeleteByPrefix(ctx context.Context, prefix string) error {
	var cursor uint64
	for {
		keys, next, err := s.client.Scan(ctx, cursor, prefix+"*", 500).Result()
		if err != nil {
			cacheErrorsTotal.WithLabelValues("redis", "delete_by_prefix").Inc()
			return err
		}
		if len(keys) > 0 {
			if err := s.client.Del(ctx, keys...).Err(); err != nil {
				cacheErrorsTotal.WithLabelValues("redis", "delete_by_prefix").Inc()
				return err
			}
		}
		cursor = next
		if cursor == 0 {
			return nil
		}
	}
}

// Close releases the underlying connection pool.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
