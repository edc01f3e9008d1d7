package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisSessionRepository stores the admin bearer token in Redis so it survives console restarts
// and can be shared by console replicas serving the same admin.
type RedisSessionRepository struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

// NewRedisSessionRepository constructs the store. A zero ttl keeps the token until cleared.
func NewRedisSessionRepository(client *redis.Client, key string, ttl time.Duration) *RedisSessionRepository {
	return &RedisSessionRepository{client: client, key: key, ttl: ttl}
}

// Token returns the stored token or "" when absent.
func (r *RedisSessionRepository) Token(ctx context.Context) (string, error) {
	token, err := r.client.Get(ctx, r.key).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("redis get %s: %w", r.key, err)
	}
	return token, nil
}

// SetToken stores token with the configured ttl.
func (r *RedisSessionRepository) SetToken(ctx context.Context, token string) error {
	if err := r.client.Set(ctx, r.key, token, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", r.key, err)
	}
	return nil
}

// Clear removes the token.
func (r *RedisSessionRepository) Clear(ctx context.Context) error {
	if err := r.client.Del(ctx, r.key).Err(); err != nil {
		return fmt.Errorf("redis delete %s: %w", r.key, err)
	}
	return nil
}
