package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// KeyPrefix namespaces persisted cache entries.
const KeyPrefix = "cache_"

// RedisTier is the persistent cache tier. Entries are stored as JSON
// under prefixed keys with a server-side TTL matching the entry expiry.
type RedisTier struct {
	client *redis.Client
}

// NewRedisTier creates a Redis-backed cache tier.
func NewRedisTier(client *redis.Client) *RedisTier {
	return &RedisTier{client: client}
}

func (r *RedisTier) Get(ctx context.Context, key string) (*Entry, error) {
	raw, err := r.client.Get(ctx, KeyPrefix+key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}

		return nil, err
	}

	var entry Entry
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		return nil, err
	}

	if entry.Expired(time.Now()) {
		_ = r.client.Del(ctx, KeyPrefix+key).Err()

		return nil, nil
	}

	return &entry, nil
}

func (r *RedisTier) Set(ctx context.Context, key string, entry *Entry) error {
	raw, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	ttl := time.Until(entry.ExpiresAt)
	if ttl <= 0 {
		return nil
	}

	return r.client.Set(ctx, KeyPrefix+key, raw, ttl).Err()
}

func (r *RedisTier) Remove(ctx context.Context, key string) error {
	return r.client.Del(ctx, KeyPrefix+key).Err()
}

func (r *RedisTier) Clear(ctx context.Context) error {
	iter := r.client.Scan(ctx, 0, KeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		if err := r.client.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}

	return iter.Err()
}
