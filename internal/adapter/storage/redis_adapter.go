package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	tokenKeyPrefix = "session:token:"
	tokenTTL       = 30 * 24 * time.Hour
)

// RedisAdapter caches session tokens by user id. The cookie remains the
// authoritative store; entries here are always rewritten from it, so the
// TTL only bounds garbage, not session lifetime.
type RedisAdapter struct {
	client *redis.Client
}

func NewRedisAdapter(client *redis.Client) *RedisAdapter {
	return &RedisAdapter{client: client}
}

func (r *RedisAdapter) Save(ctx context.Context, userID, token string) error {
	if err := r.client.Set(ctx, tokenKeyPrefix+userID, token, tokenTTL).Err(); err != nil {
		return fmt.Errorf("cache token: %w", err)
	}
	return nil
}

func (r *RedisAdapter) Get(ctx context.Context, userID string) (string, error) {
	token, err := r.client.Get(ctx, tokenKeyPrefix+userID).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read cached token: %w", err)
	}
	return token, nil
}

func (r *RedisAdapter) Delete(ctx context.Context, userID string) error {
	if err := r.client.Del(ctx, tokenKeyPrefix+userID).Err(); err != nil {
		return fmt.Errorf("drop cached token: %w", err)
	}
	return nil
}
