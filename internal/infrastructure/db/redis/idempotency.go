package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/99minutos/campaign-system/internal/core/ports"
)

const (
	defaultIdempotencyTTL = 24 * time.Hour
	// reservationTTL bounds how long a crashed create can hold a key.
	reservationTTL = 30 * time.Second
)

// IdempotencyStore maps creation keys to the campaign they produced.
// Key format: idem:campaign:<owner_id>:<key>
type IdempotencyStore struct {
	client *redis.Client
	ttl    time.Duration
}

var _ ports.IdempotencyStore = (*IdempotencyStore)(nil)

// NewIdempotencyStore wraps client. Keys expire after ttl (24h when ttl <= 0).
func NewIdempotencyStore(client *redis.Client, ttl time.Duration) *IdempotencyStore {
	if ttl <= 0 {
		ttl = defaultIdempotencyTTL
	}
	return &IdempotencyStore{client: client, ttl: ttl}
}

// Lookup returns the campaign ID recorded for key, if any.
func (s *IdempotencyStore) Lookup(ctx context.Context, ownerID int64, key string) (int64, bool, error) {
	val, err := s.client.Get(ctx, idempotencyKey(ownerID, key)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("idempotency lookup: %w", err)
	}
	id, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("idempotency lookup: corrupt value %q: %w", val, err)
	}
	return id, true, nil
}

// Reserve claims key with a placeholder ID of 0. It returns false when the
// key is already claimed or mapped.
func (s *IdempotencyStore) Reserve(ctx context.Context, ownerID int64, key string) (bool, error) {
	ok, err := s.client.SetNX(ctx, idempotencyKey(ownerID, key), 0, reservationTTL).Result()
	if err != nil {
		return false, fmt.Errorf("idempotency reserve: %w", err)
	}
	return ok, nil
}

// Remember records campaignID for key, replacing the reservation.
func (s *IdempotencyStore) Remember(ctx context.Context, ownerID int64, key string, campaignID int64) error {
	if err := s.client.Set(ctx, idempotencyKey(ownerID, key), campaignID, s.ttl).Err(); err != nil {
		return fmt.Errorf("idempotency remember: %w", err)
	}
	return nil
}

// Release drops the reservation so the client can retry with the same key.
func (s *IdempotencyStore) Release(ctx context.Context, ownerID int64, key string) error {
	if err := s.client.Del(ctx, idempotencyKey(ownerID, key)).Err(); err != nil {
		return fmt.Errorf("idempotency release: %w", err)
	}
	return nil
}

func idempotencyKey(ownerID int64, key string) string {
	return fmt.Sprintf("idem:campaign:%d:%s", ownerID, key)
}
