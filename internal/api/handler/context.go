package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/campaign-system/internal/api/middleware"
	"github.com/99minutos/campaign-system/internal/core/domain"
)

// ctxClaims extracts the claims injected by the Auth middleware. A zero
// account id means the token was structurally valid but carried no identity.
func ctxClaims(c echo.Context) (*domain.Claims, error) {
	claims, ok := middleware.ClaimsFrom(c)
	if !ok || claims.AccountID == 0 {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return claims, nil
}
