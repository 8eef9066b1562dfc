package ports

import (
	"context"
	"time"

	"github.com/99minutos/campaign-system/internal/core/domain"
)

// AccountRepository defines persistence for accounts. Lookups are exact-match;
// uniqueness of email and username is enforced by the store itself.
type AccountRepository interface {
	// FindActiveByEmail returns domain.ErrAccountNotFound when no active account matches.
	FindActiveByEmail(ctx context.Context, email string) (*domain.Account, error)
	// ExistsByEmail and ExistsByUsername consider active and inactive accounts.
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	// Create assigns the account ID. A uniqueness violation is reported as
	// domain.ErrDuplicateIdentity.
	Create(ctx context.Context, account *domain.Account) error
	TouchLastLogin(ctx context.Context, accountID int64, at time.Time) error
}
