package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/99minutos/campaign-system/internal/core/domain"
)

func TestAccountRepository_Uniqueness(t *testing.T) {
	r := NewAccountRepository()
	ctx := context.Background()

	require.NoError(t, r.Create(ctx, &domain.Account{Username: "ana", Email: "ana@x.io", IsActive: true}))

	err := r.Create(ctx, &domain.Account{Username: "ana", Email: "other@x.io"})
	assert.True(t, errors.Is(err, domain.ErrDuplicateIdentity))

	err = r.Create(ctx, &domain.Account{Username: "other", Email: "ana@x.io"})
	assert.True(t, errors.Is(err, domain.ErrDuplicateIdentity))
}

func TestAccountRepository_InactiveStillCountsForUniqueness(t *testing.T) {
	r := NewAccountRepository()
	ctx := context.Background()

	require.NoError(t, r.Create(ctx, &domain.Account{Username: "old", Email: "old@x.io", IsActive: false}))

	_, err := r.FindActiveByEmail(ctx, "old@x.io")
	assert.True(t, errors.Is(err, domain.ErrAccountNotFound))

	exists, err := r.ExistsByEmail(ctx, "old@x.io")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = r.ExistsByUsername(ctx, "old")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestAccountRepository_TouchLastLogin(t *testing.T) {
	r := NewAccountRepository()
	ctx := context.Background()

	a := &domain.Account{Username: "ana", Email: "ana@x.io", IsActive: true}
	require.NoError(t, r.Create(ctx, a))

	at := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, r.TouchLastLogin(ctx, a.ID, at))

	got, err := r.FindActiveByEmail(ctx, "ana@x.io")
	require.NoError(t, err)
	require.NotNil(t, got.LastLoginAt)
	assert.True(t, got.LastLoginAt.Equal(at))

	assert.True(t, errors.Is(r.TouchLastLogin(ctx, 404, at), domain.ErrAccountNotFound))
}
