package ports

import (
	"context"
	"time"

	"github.com/99minutos/campaign-system/internal/core/domain"
)

// RegisterInput is the DTO passed from the transport layer to AuthService.Register.
type RegisterInput struct {
	Username    string
	Email       string
	Password    string
	DisplayName string
}

type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*domain.Session, error)
	Login(ctx context.Context, email, password string) (*domain.Session, error)
}

// TokenIssuer signs session tokens for an account.
type TokenIssuer interface {
	Issue(account *domain.Account) (token string, expiresAt time.Time, err error)
}

// TokenValidator verifies a bearer token and returns its claims. Every
// failure is reported as domain.ErrTokenInvalid.
type TokenValidator interface {
	Validate(token string) (*domain.Claims, error)
}

// PasswordHasher hashes and verifies passwords. Verify never fails loudly:
// a malformed hash simply does not match.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(plain, hash string) bool
}

// LoginRecorder records successful logins without blocking the caller.
type LoginRecorder interface {
	Record(accountID int64, at time.Time)
}
