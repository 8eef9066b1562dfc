package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/99minutos/campaign-system/internal/core/domain"
	"github.com/99minutos/campaign-system/internal/core/ports"
	"github.com/99minutos/campaign-system/internal/pkg/validate"
)

// registerFields mirrors ports.RegisterInput for validation. bcrypt ignores
// bytes past 72, so longer passwords are rejected up front.
type registerFields struct {
	Username    string `json:"username" validate:"required,min=3,max=100"`
	Email       string `json:"email" validate:"required,email,max=255"`
	Password    string `json:"password" validate:"required,min=8,max=72"`
	DisplayName string `json:"display_name" validate:"max=100"`
}

// AuthService implements registration and login.
type AuthService struct {
	repo         ports.AccountRepository
	hasher       ports.PasswordHasher
	tokens       ports.TokenIssuer
	recorder     ports.LoginRecorder
	validator    *validate.Validator
	revealFields bool
	log          zerolog.Logger
}

// AuthOption configures optional AuthService behaviour.
type AuthOption func(*AuthService)

// WithLoginRecorder makes Login hand last-login updates to r.
func WithLoginRecorder(r ports.LoginRecorder) AuthOption {
	return func(s *AuthService) { s.recorder = r }
}

// WithDuplicateFieldDisclosure makes Register report which identity field collided.
func WithDuplicateFieldDisclosure(enabled bool) AuthOption {
	return func(s *AuthService) { s.revealFields = enabled }
}

func NewAuthService(
	repo ports.AccountRepository,
	hasher ports.PasswordHasher,
	tokens ports.TokenIssuer,
	log zerolog.Logger,
	opts ...AuthOption,
) *AuthService {
	s := &AuthService{
		repo:      repo,
		hasher:    hasher,
		tokens:    tokens,
		validator: validate.New(),
		log:       log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Login authenticates by exact email. Unknown, inactive and wrong-password
// cases all return domain.ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.Session, error) {
	if email == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	account, err := s.repo.FindActiveByEmail(ctx, email)
	if errors.Is(err, domain.ErrAccountNotFound) {
		s.hasher.Verify(password, "")
		return nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("login: find account: %w", err)
	}

	if !s.hasher.Verify(password, account.PasswordHash) {
		return nil, domain.ErrInvalidCredentials
	}

	if s.recorder != nil {
		s.recorder.Record(account.ID, time.Now().UTC())
	}

	return s.newSession(account)
}

// Register creates a User-role account and logs it in. Callers cannot choose
// the role.
func (s *AuthService) Register(ctx context.Context, input ports.RegisterInput) (*domain.Session, error) {
	fields := registerFields{
		Username:    strings.TrimSpace(input.Username),
		Email:       strings.TrimSpace(input.Email),
		Password:    input.Password,
		DisplayName: strings.TrimSpace(input.DisplayName),
	}
	if err := s.validator.Struct(fields); err != nil {
		return nil, err
	}

	exists, err := s.repo.ExistsByEmail(ctx, fields.Email)
	if err != nil {
		return nil, fmt.Errorf("register: check email: %w", err)
	}
	if exists {
		return nil, s.duplicate("email")
	}

	exists, err = s.repo.ExistsByUsername(ctx, fields.Username)
	if err != nil {
		return nil, fmt.Errorf("register: check username: %w", err)
	}
	if exists {
		return nil, s.duplicate("username")
	}

	hash, err := s.hasher.Hash(fields.Password)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}

	displayName := fields.DisplayName
	if displayName == "" {
		displayName = fields.Username
	}

	account := &domain.Account{
		Username:     fields.Username,
		Email:        fields.Email,
		PasswordHash: hash,
		DisplayName:  displayName,
		Role:         domain.RoleUser,
		IsActive:     true,
		CreatedAt:    time.Now().UTC(),
	}

	// The store's unique indexes are authoritative; a concurrent registration
	// that slipped past the checks above lands here.
	if err := s.repo.Create(ctx, account); err != nil {
		if errors.Is(err, domain.ErrDuplicateIdentity) {
			return nil, s.duplicate("")
		}
		return nil, fmt.Errorf("register: create account: %w", err)
	}

	s.log.Info().Int64("account_id", account.ID).Str("username", account.Username).Msg("account registered")

	return s.newSession(account)
}

func (s *AuthService) duplicate(field string) error {
	if !s.revealFields || field == "" {
		return domain.ErrDuplicateIdentity
	}
	return &domain.DuplicateIdentityError{Field: field}
}

func (s *AuthService) newSession(account *domain.Account) (*domain.Session, error) {
	token, expiresAt, err := s.tokens.Issue(account)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &domain.Session{
		Token:     token,
		AccountID: account.ID,
		Username:  account.Username,
		Email:     account.Email,
		Role:      account.Role,
		ExpiresAt: expiresAt,
	}, nil
}
