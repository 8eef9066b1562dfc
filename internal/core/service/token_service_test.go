package service

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/99minutos/campaign-system/internal/core/domain"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newTestTokenService(t *testing.T) *TokenService {
	t.Helper()
	svc, err := NewTokenService(TokenConfig{
		Secret:   testSecret,
		Issuer:   "campaign-system",
		Audience: "campaign-system-clients",
		TTL:      60 * time.Minute,
	})
	require.NoError(t, err)
	return svc
}

func testAccount() *domain.Account {
	return &domain.Account{
		ID:          42,
		Username:    "ana",
		Email:       "ana@example.com",
		DisplayName: "Ana",
		Role:        domain.RoleUser,
		IsActive:    true,
	}
}

func TestNewTokenService_RejectsShortSecret(t *testing.T) {
	for _, secret := range []string{"", "short", strings.Repeat("x", 31)} {
		_, err := NewTokenService(TokenConfig{Secret: secret})
		assert.True(t, errors.Is(err, domain.ErrMissingSigningSecret), "secret len %d", len(secret))
	}
}

func TestTokenService_RoundTrip(t *testing.T) {
	svc := newTestTokenService(t)

	before := time.Now()
	token, expiresAt, err := svc.Issue(testAccount())
	require.NoError(t, err)

	assert.WithinDuration(t, before.Add(60*time.Minute), expiresAt, 2*time.Second)

	claims, err := svc.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.AccountID)
	assert.Equal(t, "ana@example.com", claims.Email)
	assert.Equal(t, "ana", claims.Username)
	assert.Equal(t, "Ana", claims.DisplayName)
	assert.Equal(t, domain.RoleUser, claims.Role)
	assert.NotEmpty(t, claims.TokenID)
	assert.True(t, claims.ExpiresAt.Equal(expiresAt))
}

func TestTokenService_UniqueTokenIDs(t *testing.T) {
	svc := newTestTokenService(t)

	a, _, err := svc.Issue(testAccount())
	require.NoError(t, err)
	b, _, err := svc.Issue(testAccount())
	require.NoError(t, err)

	ca, err := svc.Validate(a)
	require.NoError(t, err)
	cb, err := svc.Validate(b)
	require.NoError(t, err)
	assert.NotEqual(t, ca.TokenID, cb.TokenID)
}

func TestTokenService_Expired(t *testing.T) {
	svc := newTestTokenService(t)
	issuedAt := time.Now().Add(-2 * time.Hour)
	svc.now = func() time.Time { return issuedAt }

	token, expiresAt, err := svc.Issue(testAccount())
	require.NoError(t, err)

	svc.now = func() time.Time { return expiresAt.Add(time.Second) }
	_, err = svc.Validate(token)
	assert.True(t, errors.Is(err, domain.ErrTokenInvalid))

	svc.now = func() time.Time { return expiresAt.Add(-time.Second) }
	_, err = svc.Validate(token)
	assert.NoError(t, err)
}

func TestTokenService_Tampered(t *testing.T) {
	svc := newTestTokenService(t)
	token, _, err := svc.Issue(testAccount())
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)

	sig := []byte(parts[2])
	if sig[0] == 'A' {
		sig[0] = 'B'
	} else {
		sig[0] = 'A'
	}
	tampered := parts[0] + "." + parts[1] + "." + string(sig)

	_, err = svc.Validate(tampered)
	assert.True(t, errors.Is(err, domain.ErrTokenInvalid))
}

func TestTokenService_WrongIssuerOrAudience(t *testing.T) {
	svc := newTestTokenService(t)

	for _, cfg := range []TokenConfig{
		{Secret: testSecret, Issuer: "someone-else", Audience: "campaign-system-clients"},
		{Secret: testSecret, Issuer: "campaign-system", Audience: "another-app"},
	} {
		other, err := NewTokenService(cfg)
		require.NoError(t, err)

		token, _, err := other.Issue(testAccount())
		require.NoError(t, err)

		_, err = svc.Validate(token)
		assert.True(t, errors.Is(err, domain.ErrTokenInvalid), "issuer=%s audience=%s", cfg.Issuer, cfg.Audience)
	}
}

func TestTokenService_WrongSecret(t *testing.T) {
	svc := newTestTokenService(t)
	other, err := NewTokenService(TokenConfig{
		Secret:   strings.Repeat("z", 32),
		Issuer:   "campaign-system",
		Audience: "campaign-system-clients",
	})
	require.NoError(t, err)

	token, _, err := other.Issue(testAccount())
	require.NoError(t, err)

	_, err = svc.Validate(token)
	assert.True(t, errors.Is(err, domain.ErrTokenInvalid))
}

func TestTokenService_RejectsOtherAlgorithms(t *testing.T) {
	svc := newTestTokenService(t)
	claims := jwt.RegisteredClaims{
		Subject:   "42",
		Issuer:    "campaign-system",
		Audience:  jwt.ClaimStrings{"campaign-system-clients"},
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}

	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	_, err = svc.Validate(hs512)
	assert.True(t, errors.Is(err, domain.ErrTokenInvalid), "HS512 must be rejected")

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = svc.Validate(none)
	assert.True(t, errors.Is(err, domain.ErrTokenInvalid), "alg=none must be rejected")
}

func TestTokenService_RejectsUnknownRoleAndMissingExpiry(t *testing.T) {
	svc := newTestTokenService(t)

	sign := func(c sessionClaims) string {
		s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString([]byte(testSecret))
		require.NoError(t, err)
		return s
	}
	registered := jwt.RegisteredClaims{
		Subject:   "42",
		Issuer:    "campaign-system",
		Audience:  jwt.ClaimStrings{"campaign-system-clients"},
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}

	_, err := svc.Validate(sign(sessionClaims{Role: "Root", RegisteredClaims: registered}))
	assert.True(t, errors.Is(err, domain.ErrTokenInvalid), "unknown role")

	noExp := registered
	noExp.ExpiresAt = nil
	_, err = svc.Validate(sign(sessionClaims{Role: "User", RegisteredClaims: noExp}))
	assert.True(t, errors.Is(err, domain.ErrTokenInvalid), "missing exp")

	badSub := registered
	badSub.Subject = "not-a-number"
	_, err = svc.Validate(sign(sessionClaims{Role: "User", RegisteredClaims: badSub}))
	assert.True(t, errors.Is(err, domain.ErrTokenInvalid), "non-numeric subject")
}

func TestTokenService_Garbage(t *testing.T) {
	svc := newTestTokenService(t)
	for _, tok := range []string{"", "abc", "a.b.c"} {
		_, err := svc.Validate(tok)
		assert.True(t, errors.Is(err, domain.ErrTokenInvalid), "token %q", tok)
	}
}
