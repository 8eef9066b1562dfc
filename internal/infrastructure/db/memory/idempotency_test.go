package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdempotencyStore_RememberAndLookup(t *testing.T) {
	ctx := context.Background()
	s := NewIdempotencyStore(time.Hour)

	_, found, err := s.Lookup(ctx, 1, "k")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, s.Remember(ctx, 1, "k", 42))

	id, found, err := s.Lookup(ctx, 1, "k")
	require.NoError(t, err)
	assert.True(t, found)
	assert.EqualValues(t, 42, id)

	_, found, err = s.Lookup(ctx, 2, "k")
	require.NoError(t, err)
	assert.False(t, found, "keys are scoped per owner")
}

func TestIdempotencyStore_Expires(t *testing.T) {
	ctx := context.Background()
	s := NewIdempotencyStore(20 * time.Millisecond)

	require.NoError(t, s.Remember(ctx, 1, "k", 7))
	time.Sleep(40 * time.Millisecond)

	_, found, err := s.Lookup(ctx, 1, "k")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestIdempotencyStore_ReserveOnce(t *testing.T) {
	ctx := context.Background()
	s := NewIdempotencyStore(time.Hour)

	ok, err := s.Reserve(ctx, 1, "k")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.Reserve(ctx, 1, "k")
	require.NoError(t, err)
	assert.False(t, ok, "second claim must lose")

	id, found, err := s.Lookup(ctx, 1, "k")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Zero(t, id, "pending claim has no campaign yet")

	require.NoError(t, s.Remember(ctx, 1, "k", 42))
	id, _, err = s.Lookup(ctx, 1, "k")
	require.NoError(t, err)
	assert.EqualValues(t, 42, id)

	ok, err = s.Reserve(ctx, 1, "k")
	require.NoError(t, err)
	assert.False(t, ok, "a remembered key cannot be reserved again")
}

func TestIdempotencyStore_ReleaseFreesKey(t *testing.T) {
	ctx := context.Background()
	s := NewIdempotencyStore(time.Hour)

	ok, err := s.Reserve(ctx, 1, "k")
	require.NoError(t, err)
	require.True(t, ok)
	require.NoError(t, s.Release(ctx, 1, "k"))

	_, found, err := s.Lookup(ctx, 1, "k")
	require.NoError(t, err)
	assert.False(t, found)

	ok, err = s.Reserve(ctx, 1, "k")
	require.NoError(t, err)
	assert.True(t, ok)
}
