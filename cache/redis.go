package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/redis/go-redis/v9"
)

// RedisStore adapts a go-redis client to the Store interface. Values
// are stored as JSON.
type RedisStore struct {
	client *redis.Client
}

var _ Store = (*RedisStore)(nil)

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to encode cache value")
	}

	if err := s.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return errors.Wrap(err, errors.CategoryOperation, "redis set failed").
			WithMetadata(map[string]any{"key": key})
	}

	return nil
}

func (s *RedisStore) Get(ctx context.Context, key string, out any) (bool, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, errors.Wrap(err, errors.CategoryOperation, "redis get failed").
			WithMetadata(map[string]any{"key": key})
	}

	if out == nil {
		return true, nil
	}

	if err := json.Unmarshal(data, out); err != nil {
		return false, errors.Wrap(err, errors.CategoryInternal, "failed to decode cache value").
			WithMetadata(map[string]any{"key": key})
	}

	return true, nil
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return errors.Wrap(err, errors.CategoryOperation, "redis del failed").
			WithMetadata(map[string]any{"key": key})
	}
	return nil
}

func (s *RedisStore) Exists(ctx context.Context, key string) (bool, error) {
	n, err := s.client.Exists(ctx, key).Result()
	if err != nil {
		return false, errors.Wrap(err, errors.CategoryOperation, "redis exists failed").
			WithMetadata(map[string]any{"key": key})
	}
	return n > 0, nil
}

func (s *RedisStore) TTL(ctx context.Context, key string) (time.Duration, bool, error) {
	ttl, err := s.client.TTL(ctx, key).Result()
	if err != nil {
		return 0, false, errors.Wrap(err, errors.CategoryOperation, "redis ttl failed").
			WithMetadata(map[string]any{"key": key})
	}

	// go-redis reports -2s for a missing key and -1s for no expiry.
	switch {
	case ttl == -2*time.Second:
		return 0, false, nil
	case ttl < 0:
		return 0, true, nil
	}

	return ttl, true, nil
}

func (s *RedisStore) Increment(ctx context.Context, key string) (int64, error) {
	n, err := s.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, errors.Wrap(err, errors.CategoryOperation, "redis incr failed").
			WithMetadata(map[string]any{"key": key})
	}
	return n, nil
}

func (s *RedisStore) IncrementWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	n, err := s.Increment(ctx, key)
	if err != nil {
		return 0, err
	}

	if n == 1 && ttl > 0 {
		if err := s.client.Expire(ctx, key, ttl).Err(); err != nil {
			return n, errors.Wrap(err, errors.CategoryOperation, "redis expire failed").
				WithMetadata(map[string]any{"key": key})
		}
	}

	return n, nil
}
