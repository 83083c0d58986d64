package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// KeyValueStore implements progress.KeyValueStore on Redis. Progress data
// is durable, so entries are written without expiry.
type KeyValueStore struct {
	client *redis.Client
}

func NewKeyValueStore(client *redis.Client) *KeyValueStore {
	return &KeyValueStore{client: client}
}

func (s *KeyValueStore) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis get %s: %w", key, err)
	}
	return value, true, nil
}

func (s *KeyValueStore) Set(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, key, value, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}
