package redis

import (
	"testing"
	"time"
)

func TestIdempotencyKey(t *testing.T) {
	if got := idempotencyKey(42, "abc-123"); got != "idem:campaign:42:abc-123" {
		t.Errorf("idempotencyKey = %q", got)
	}
	if idempotencyKey(1, "k") == idempotencyKey(2, "k") {
		t.Error("keys must be scoped per owner")
	}
}

func TestNewIdempotencyStore_DefaultTTL(t *testing.T) {
	s := NewIdempotencyStore(nil, 0)
	if s.ttl != defaultIdempotencyTTL {
		t.Errorf("ttl = %v, want %v", s.ttl, defaultIdempotencyTTL)
	}
	s = NewIdempotencyStore(nil, time.Minute)
	if s.ttl != time.Minute {
		t.Errorf("ttl = %v, want 1m", s.ttl)
	}
}
