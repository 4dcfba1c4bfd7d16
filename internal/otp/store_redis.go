package otp

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"kycgate/internal/platform/redis"
	"kycgate/pkg/platform/sentinel"
)

const codeKeyPrefix = "otp:case:"

// RedisStore persists one-time codes in Redis with the TTL enforced by the
// server. Expiry needs no sweeper: the key simply disappears.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a Redis-backed code store.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func codeKey(caseID string) string {
	return codeKeyPrefix + caseID
}

func (s *RedisStore) SaveCode(ctx context.Context, caseID, code string, ttl time.Duration) error {
	if err := s.client.Set(ctx, codeKey(caseID), code, ttl).Err(); err != nil {
		return fmt.Errorf("save otp code: %w", err)
	}
	return nil
}

func (s *RedisStore) ConsumeCode(ctx context.Context, caseID string) (string, error) {
	code, err := s.client.GetDel(ctx, codeKey(caseID)).Result()
	if errors.Is(err, goredis.Nil) {
		return "", sentinel.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("consume otp code: %w", err)
	}
	return code, nil
}
