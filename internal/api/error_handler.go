package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/99minutos/campaign-system/internal/api/handler"
	"github.com/99minutos/campaign-system/internal/core/domain"
)

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their HTTP status codes.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders a consistent JSON envelope: {"error": "<message>", "details": [...]}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, body := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, body)
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, handler.ErrorBody) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, handler.ErrorBody{Error: fmt.Sprintf("%v", he.Message)}
	}

	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		return http.StatusUnprocessableEntity, handler.ErrorBody{Error: "validation failed", Details: ve.Errors}
	}

	// A named duplicate only reaches here when field disclosure is enabled.
	var de *domain.DuplicateIdentityError
	if errors.As(err, &de) {
		return http.StatusConflict, handler.ErrorBody{Error: de.Error()}
	}

	switch {
	case errors.Is(err, domain.ErrCampaignNotFound):
		return http.StatusNotFound, handler.ErrorBody{Error: "campaign not found"}
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, handler.ErrorBody{Error: "access forbidden"}
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, handler.ErrorBody{Error: "authentication failed"}
	case errors.Is(err, domain.ErrTokenInvalid):
		return http.StatusUnauthorized, handler.ErrorBody{Error: "invalid token"}
	case errors.Is(err, domain.ErrIdempotencyInFlight):
		return http.StatusConflict, handler.ErrorBody{Error: "request with this idempotency key is still in progress"}
	case errors.Is(err, domain.ErrDuplicateIdentity):
		return http.StatusConflict, handler.ErrorBody{Error: "account already exists"}
	case errors.Is(err, domain.ErrAccountNotFound):
		return http.StatusNotFound, handler.ErrorBody{Error: "account not found"}
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, handler.ErrorBody{Error: "internal server error"}
}
