package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/99minutos/campaign-system/internal/core/domain"
	"github.com/99minutos/campaign-system/internal/core/ports"
	"github.com/99minutos/campaign-system/internal/pkg/password"
)

// ---------------------------------------------------------------------------
// Stubs
// ---------------------------------------------------------------------------

type stubAccountRepo struct {
	accounts map[int64]*domain.Account
	nextID   int64

	// createErr, when set, is returned by Create after the existence checks
	// pass, simulating a concurrent registration hitting the unique index.
	createErr error
	findErr   error
}

func newStubAccountRepo() *stubAccountRepo {
	return &stubAccountRepo{accounts: make(map[int64]*domain.Account)}
}

func cloneAccount(a *domain.Account) *domain.Account {
	if a == nil {
		return nil
	}
	clone := *a
	return &clone
}

func (r *stubAccountRepo) FindActiveByEmail(_ context.Context, email string) (*domain.Account, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	for _, a := range r.accounts {
		if a.Email == email && a.IsActive {
			return cloneAccount(a), nil
		}
	}
	return nil, domain.ErrAccountNotFound
}

func (r *stubAccountRepo) ExistsByEmail(_ context.Context, email string) (bool, error) {
	for _, a := range r.accounts {
		if a.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (r *stubAccountRepo) ExistsByUsername(_ context.Context, username string) (bool, error) {
	for _, a := range r.accounts {
		if a.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (r *stubAccountRepo) Create(_ context.Context, account *domain.Account) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.nextID++
	account.ID = r.nextID
	r.accounts[account.ID] = cloneAccount(account)
	return nil
}

func (r *stubAccountRepo) TouchLastLogin(_ context.Context, id int64, at time.Time) error {
	if a, ok := r.accounts[id]; ok {
		a.LastLoginAt = &at
	}
	return nil
}

type recordedLogin struct {
	accountID int64
	at        time.Time
}

type stubRecorder struct {
	mu     sync.Mutex
	logins []recordedLogin
}

func (r *stubRecorder) Record(accountID int64, at time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logins = append(r.logins, recordedLogin{accountID, at})
}

func newTestAuthService(t *testing.T, repo *stubAccountRepo, opts ...AuthOption) (*AuthService, *TokenService) {
	t.Helper()
	hasher, err := password.NewHasher(bcrypt.MinCost)
	if err != nil {
		t.Fatalf("NewHasher: %v", err)
	}
	tokens := newTestTokenService(t)
	return NewAuthService(repo, hasher, tokens, zerolog.Nop(), opts...), tokens
}

func registerInput(username, email string) ports.RegisterInput {
	return ports.RegisterInput{
		Username: username,
		Email:    email,
		Password: "Secret#1",
	}
}

// ---------------------------------------------------------------------------
// Register
// ---------------------------------------------------------------------------

func TestAuthService_Register_Success(t *testing.T) {
	repo := newStubAccountRepo()
	svc, tokens := newTestAuthService(t, repo)

	session, err := svc.Register(context.Background(), registerInput("alice", "alice@example.com"))
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if session.Token == "" {
		t.Fatal("expected an auto-login token")
	}
	if session.Role != domain.RoleUser {
		t.Errorf("role = %s, want User", session.Role)
	}

	stored := repo.accounts[session.AccountID]
	if stored == nil {
		t.Fatal("account not persisted")
	}
	if stored.PasswordHash == "Secret#1" {
		t.Fatal("expected password to be hashed")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("Secret#1")); err != nil {
		t.Fatalf("stored hash does not match password: %v", err)
	}
	if !stored.IsActive {
		t.Error("new accounts must be active")
	}
	if stored.DisplayName != "alice" {
		t.Errorf("display name = %q, want username fallback", stored.DisplayName)
	}

	claims, err := tokens.Validate(session.Token)
	if err != nil {
		t.Fatalf("issued token does not validate: %v", err)
	}
	if claims.AccountID != session.AccountID || claims.Role != domain.RoleUser {
		t.Errorf("unexpected claims: %+v", claims)
	}
}

func TestAuthService_Register_Validation(t *testing.T) {
	repo := newStubAccountRepo()
	svc, _ := newTestAuthService(t, repo)

	cases := []ports.RegisterInput{
		{Username: "al", Email: "al@example.com", Password: "Secret#1"},
		{Username: "alice", Email: "not-an-email", Password: "Secret#1"},
		{Username: "alice", Email: "alice@example.com", Password: "short"},
		{Username: "", Email: "", Password: ""},
	}
	for _, in := range cases {
		_, err := svc.Register(context.Background(), in)
		var ve *domain.ValidationError
		if !errors.As(err, &ve) {
			t.Errorf("Register(%+v): expected ValidationError, got %v", in, err)
		}
	}
	if len(repo.accounts) != 0 {
		t.Errorf("no account should be created, got %d", len(repo.accounts))
	}
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	repo := newStubAccountRepo()
	svc, _ := newTestAuthService(t, repo)

	if _, err := svc.Register(context.Background(), registerInput("bob", "bob@example.com")); err != nil {
		t.Fatalf("first register failed: %v", err)
	}
	_, err := svc.Register(context.Background(), registerInput("bobby", "bob@example.com"))
	if !errors.Is(err, domain.ErrDuplicateIdentity) {
		t.Fatalf("expected ErrDuplicateIdentity, got %v", err)
	}
	var die *domain.DuplicateIdentityError
	if errors.As(err, &die) {
		t.Error("field must not be revealed by default")
	}
	if len(repo.accounts) != 1 {
		t.Errorf("accounts = %d, want 1", len(repo.accounts))
	}
}

func TestAuthService_Register_DuplicateUsernameRevealed(t *testing.T) {
	repo := newStubAccountRepo()
	svc, _ := newTestAuthService(t, repo, WithDuplicateFieldDisclosure(true))

	_, _ = svc.Register(context.Background(), registerInput("bob", "bob@example.com"))
	_, err := svc.Register(context.Background(), registerInput("bob", "robert@example.com"))

	var die *domain.DuplicateIdentityError
	if !errors.As(err, &die) || die.Field != "username" {
		t.Fatalf("expected username DuplicateIdentityError, got %v", err)
	}
}

func TestAuthService_Register_StoreUniquenessViolation(t *testing.T) {
	repo := newStubAccountRepo()
	repo.createErr = domain.ErrDuplicateIdentity
	svc, _ := newTestAuthService(t, repo)

	_, err := svc.Register(context.Background(), registerInput("race", "race@example.com"))
	if !errors.Is(err, domain.ErrDuplicateIdentity) {
		t.Fatalf("expected ErrDuplicateIdentity, got %v", err)
	}
}

func TestAuthService_Register_StoreFailurePropagates(t *testing.T) {
	repo := newStubAccountRepo()
	boom := errors.New("connection reset")
	repo.createErr = boom
	svc, _ := newTestAuthService(t, repo)

	_, err := svc.Register(context.Background(), registerInput("eve", "eve@example.com"))
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped store error, got %v", err)
	}
	if errors.Is(err, domain.ErrDuplicateIdentity) {
		t.Fatal("store failure must not be reported as a duplicate")
	}
}

// ---------------------------------------------------------------------------
// Login
// ---------------------------------------------------------------------------

func TestAuthService_Login_Success(t *testing.T) {
	repo := newStubAccountRepo()
	rec := &stubRecorder{}
	svc, tokens := newTestAuthService(t, repo, WithLoginRecorder(rec))

	reg, err := svc.Register(context.Background(), registerInput("carol", "carol@example.com"))
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	before := time.Now()
	session, err := svc.Login(context.Background(), "carol@example.com", "Secret#1")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if session.AccountID != reg.AccountID || session.Username != "carol" {
		t.Fatalf("unexpected session: %+v", session)
	}
	if d := session.ExpiresAt.Sub(before.Add(60 * time.Minute)); d < -2*time.Second || d > 2*time.Second {
		t.Errorf("expires_at off by %v", d)
	}
	if _, err := tokens.Validate(session.Token); err != nil {
		t.Fatalf("token invalid: %v", err)
	}
	if len(rec.logins) != 1 || rec.logins[0].accountID != reg.AccountID {
		t.Errorf("expected one recorded login for %d, got %+v", reg.AccountID, rec.logins)
	}
}

func TestAuthService_Login_InvalidPassword(t *testing.T) {
	repo := newStubAccountRepo()
	rec := &stubRecorder{}
	svc, _ := newTestAuthService(t, repo, WithLoginRecorder(rec))

	_, _ = svc.Register(context.Background(), registerInput("dave", "dave@example.com"))
	if _, err := svc.Login(context.Background(), "dave@example.com", "badpass1"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if len(rec.logins) != 0 {
		t.Error("failed login must not touch last-login")
	}
}

func TestAuthService_Login_UnknownAndInactiveLookTheSame(t *testing.T) {
	repo := newStubAccountRepo()
	svc, _ := newTestAuthService(t, repo)

	_, _ = svc.Register(context.Background(), registerInput("frank", "frank@example.com"))
	for _, a := range repo.accounts {
		a.IsActive = false
	}

	for _, email := range []string{"ghost@example.com", "frank@example.com", ""} {
		if _, err := svc.Login(context.Background(), email, "Secret#1"); !errors.Is(err, domain.ErrInvalidCredentials) {
			t.Errorf("Login(%q): expected ErrInvalidCredentials, got %v", email, err)
		}
	}
}

func TestAuthService_Login_EmailIsExactMatch(t *testing.T) {
	repo := newStubAccountRepo()
	svc, _ := newTestAuthService(t, repo)

	_, _ = svc.Register(context.Background(), registerInput("gina", "gina@example.com"))
	if _, err := svc.Login(context.Background(), "GINA@example.com", "Secret#1"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_Login_StoreFailurePropagates(t *testing.T) {
	repo := newStubAccountRepo()
	boom := errors.New("timeout")
	repo.findErr = boom
	svc, _ := newTestAuthService(t, repo)

	_, err := svc.Login(context.Background(), "x@example.com", "Secret#1")
	if !errors.Is(err, boom) {
		t.Fatalf("expected store error, got %v", err)
	}
	if errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatal("store failure must not look like bad credentials")
	}
}
