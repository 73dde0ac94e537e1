package state

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const (
	fieldWebhookID = "webhook_id"
	fieldBlogID    = "blog_id"
)

// RedisBackend stores each subscription as one hash.
type RedisBackend struct {
	rdb *redis.Client
}

func NewRedisBackend(rdb *redis.Client) *RedisBackend {
	return &RedisBackend{rdb: rdb}
}

func (b *RedisBackend) Store(nodeID string) SubscriptionStore {
	return &RedisStore{rdb: b.rdb, key: subscriptionKey(nodeID)}
}

func subscriptionKey(nodeID string) string {
	return fmt.Sprintf("dropinblog:node:%s:subscription", nodeID)
}

// RedisStore is a SubscriptionStore backed by a redis hash.
type RedisStore struct {
	rdb *redis.Client
	key string
}

func (s *RedisStore) Load(ctx context.Context) (*Subscription, error) {
	fields, err := s.rdb.HGetAll(ctx, s.key).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load subscription %q: %w", s.key, err)
	}
	if fields[fieldWebhookID] == "" {
		return nil, nil
	}

	return &Subscription{
		WebhookID: fields[fieldWebhookID],
		BlogID:    fields[fieldBlogID],
	}, nil
}

// Save writes both fields with a single HSET.
func (s *RedisStore) Save(ctx context.Context, sub Subscription) error {
	if err := sub.validate(); err != nil {
		return err
	}

	err := s.rdb.HSet(ctx, s.key,
		fieldWebhookID, sub.WebhookID,
		fieldBlogID, sub.BlogID,
	).Err()
	if err != nil {
		return fmt.Errorf("failed to save subscription %q: %w", s.key, err)
	}
	return nil
}

func (s *RedisStore) Clear(ctx context.Context) error {
	if err := s.rdb.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("failed to clear subscription %q: %w", s.key, err)
	}
	return nil
}
