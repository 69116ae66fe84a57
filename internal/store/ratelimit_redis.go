package store

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const rateLimitKeyPrefix = "ratelimit:"

// RateLimitRedisStore is a Redis implementation of ratelimit.Store using
// a sorted set of attempt timestamps per key.
type RateLimitRedisStore struct {
	client *redis.Client
}

// NewRateLimitRedisStore creates a new Redis-backed rate limit store.
func NewRateLimitRedisStore(client *redis.Client) *RateLimitRedisStore {
	return &RateLimitRedisStore{client: client}
}

func (s *RateLimitRedisStore) Record(ctx context.Context, key string, window time.Duration, limit int64) (bool, error) {
	redisKey := rateLimitKeyPrefix + key
	now := time.Now()
	cutoff := now.Add(-window)

	if err := s.client.ZRemRangeByScore(ctx, redisKey,
		"-inf", strconv.FormatInt(cutoff.UnixNano(), 10)).Err(); err != nil {
		return false, err
	}

	count, err := s.client.ZCard(ctx, redisKey).Result()
	if err != nil {
		return false, err
	}

	if count >= limit {
		return false, nil
	}

	pipe := s.client.Pipeline()
	pipe.ZAdd(ctx, redisKey, redis.Z{
		Score:  float64(now.UnixNano()),
		Member: fmt.Sprintf("%d", now.UnixNano()),
	})
	pipe.Expire(ctx, redisKey, window)

	if _, err := pipe.Exec(ctx); err != nil {
		return false, err
	}

	return true, nil
}

func (s *RateLimitRedisStore) Reset(ctx context.Context, key string) error {
	return s.client.Del(ctx, rateLimitKeyPrefix+key).Err()
}
