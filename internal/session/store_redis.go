package session

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "regflow:sess:"

// RedisManager keeps session identities in Redis so multiple instances share
// one view of which identities are live.
type RedisManager struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisManager(client *redis.Client, ttl time.Duration) *RedisManager {
	return &RedisManager{client: client, ttl: ttl}
}

func (m *RedisManager) Touch(ctx context.Context, id string) error {
	return m.client.Set(ctx, keyPrefix+id, "1", m.ttl).Err()
}

// Regenerate installs the new identity and removes the old one in a single
// pipeline, so the old identity is gone before any redirect built on the new
// one is issued.
func (m *RedisManager) Regenerate(ctx context.Context, oldID string) (string, error) {
	newID := NewID()
	pipe := m.client.TxPipeline()
	pipe.Set(ctx, keyPrefix+newID, "1", m.ttl)
	pipe.Del(ctx, keyPrefix+oldID)
	if _, err := pipe.Exec(ctx); err != nil {
		return "", err
	}
	return newID, nil
}

// Live reports whether an identity key currently exists.
func (m *RedisManager) Live(ctx context.Context, id string) (bool, error) {
	n, err := m.client.Exists(ctx, keyPrefix+id).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
