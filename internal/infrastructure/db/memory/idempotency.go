package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/99minutos/campaign-system/internal/core/ports"
)

const (
	defaultIdempotencyTTL = 24 * time.Hour
	reservationTTL        = 30 * time.Second
	cleanupInterval       = 10 * time.Minute
)

// IdempotencyStore is the in-process stand-in for the Redis store, used when
// Redis is disabled. Mappings are lost on restart.
type IdempotencyStore struct {
	cache *cache.Cache
}

var _ ports.IdempotencyStore = (*IdempotencyStore)(nil)

func NewIdempotencyStore(ttl time.Duration) *IdempotencyStore {
	if ttl <= 0 {
		ttl = defaultIdempotencyTTL
	}
	return &IdempotencyStore{cache: cache.New(ttl, cleanupInterval)}
}

func (s *IdempotencyStore) Lookup(_ context.Context, ownerID int64, key string) (int64, bool, error) {
	v, ok := s.cache.Get(idempotencyKey(ownerID, key))
	if !ok {
		return 0, false, nil
	}
	id, ok := v.(int64)
	if !ok {
		return 0, false, fmt.Errorf("idempotency lookup: unexpected value %T", v)
	}
	return id, true, nil
}

// Reserve claims key with a placeholder ID of 0. go-cache's Add is atomic,
// so only one caller wins.
func (s *IdempotencyStore) Reserve(_ context.Context, ownerID int64, key string) (bool, error) {
	return s.cache.Add(idempotencyKey(ownerID, key), int64(0), reservationTTL) == nil, nil
}

func (s *IdempotencyStore) Remember(_ context.Context, ownerID int64, key string, campaignID int64) error {
	s.cache.Set(idempotencyKey(ownerID, key), campaignID, cache.DefaultExpiration)
	return nil
}

func (s *IdempotencyStore) Release(_ context.Context, ownerID int64, key string) error {
	s.cache.Delete(idempotencyKey(ownerID, key))
	return nil
}

func idempotencyKey(ownerID int64, key string) string {
	return fmt.Sprintf("%d:%s", ownerID, key)
}
