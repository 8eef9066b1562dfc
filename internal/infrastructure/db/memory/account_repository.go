// Package memory implements in-memory account and campaign repositories for
// development (STORE_DRIVER=memory) and testing.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/99minutos/campaign-system/internal/core/domain"
	"github.com/99minutos/campaign-system/internal/core/ports"
)

// AccountRepository keeps accounts in a map guarded by a mutex.
type AccountRepository struct {
	mu        sync.Mutex
	accounts  map[int64]*domain.Account
	idCounter int64
}

var _ ports.AccountRepository = (*AccountRepository)(nil)

func NewAccountRepository() *AccountRepository {
	return &AccountRepository{accounts: make(map[int64]*domain.Account)}
}

func (r *AccountRepository) FindActiveByEmail(_ context.Context, email string) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, a := range r.accounts {
		if a.Email == email && a.IsActive {
			cp := *a
			return &cp, nil
		}
	}
	return nil, domain.ErrAccountNotFound
}

func (r *AccountRepository) ExistsByEmail(_ context.Context, email string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.any(func(a *domain.Account) bool { return a.Email == email }), nil
}

func (r *AccountRepository) ExistsByUsername(_ context.Context, username string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.any(func(a *domain.Account) bool { return a.Username == username }), nil
}

// Create enforces email and username uniqueness the way the unique indexes of
// the database-backed stores do.
func (r *AccountRepository) Create(_ context.Context, account *domain.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.any(func(a *domain.Account) bool {
		return a.Email == account.Email || a.Username == account.Username
	}) {
		return domain.ErrDuplicateIdentity
	}

	r.idCounter++
	account.ID = r.idCounter
	cp := *account
	r.accounts[cp.ID] = &cp
	return nil
}

func (r *AccountRepository) TouchLastLogin(_ context.Context, accountID int64, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.accounts[accountID]
	if !ok {
		return domain.ErrAccountNotFound
	}
	at = at.UTC()
	a.LastLoginAt = &at
	return nil
}

// any must be called with r.mu held.
func (r *AccountRepository) any(match func(*domain.Account) bool) bool {
	for _, a := range r.accounts {
		if match(a) {
			return true
		}
	}
	return false
}
