package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sirpyerre/library-tracker/internal/core/ports"
)

const idempotencyTTL = 24 * time.Hour

var _ ports.IdempotencyStore = (*IdempotencyStore)(nil)

// IdempotencyStore remembers which book an add-book request created.
// Key format: idempotency:book:<Idempotency-Key>
type IdempotencyStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewIdempotencyStore creates an IdempotencyStore wrapping the given Redis client.
func NewIdempotencyStore(client *redis.Client) *IdempotencyStore {
	return &IdempotencyStore{client: client, ttl: idempotencyTTL}
}

// Lookup returns the book id recorded for key, if any.
func (s *IdempotencyStore) Lookup(ctx context.Context, key string) (string, bool, error) {
	id, err := s.client.Get(ctx, s.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("idempotency lookup: %w", err)
	}
	return id, true, nil
}

// Remember records bookID under key (expires after the configured TTL).
func (s *IdempotencyStore) Remember(ctx context.Context, key, bookID string) error {
	if err := s.client.Set(ctx, s.key(key), bookID, s.ttl).Err(); err != nil {
		return fmt.Errorf("idempotency remember: %w", err)
	}
	return nil
}

// Ping reports whether Redis is reachable.
func (s *IdempotencyStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *IdempotencyStore) key(key string) string {
	return fmt.Sprintf("idempotency:book:%s", key)
}
