package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/campaign-system/internal/core/domain"
)

func runRBAC(t *testing.T, claims *domain.Claims, allowed ...domain.Role) (int, bool) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if claims != nil {
		c.Set(ClaimsKey, claims)
	}

	called := false
	if err := RBAC(allowed...)(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return rec.Code, called
}

func TestRBAC_Allowed(t *testing.T) {
	code, called := runRBAC(t, &domain.Claims{Role: domain.RoleUser}, domain.RoleAdmin, domain.RoleUser)
	if !called || code != http.StatusOK {
		t.Fatalf("expected pass-through, got %d", code)
	}
}

func TestRBAC_Forbidden(t *testing.T) {
	code, called := runRBAC(t, &domain.Claims{Role: domain.RoleUser}, domain.RoleAdmin)
	if called {
		t.Fatal("handler should not be called")
	}
	if code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", code)
	}
}

func TestRBAC_NoClaims(t *testing.T) {
	code, called := runRBAC(t, nil, domain.RoleAdmin, domain.RoleUser)
	if called || code != http.StatusForbidden {
		t.Fatalf("expected 403 without claims, got %d", code)
	}
}
