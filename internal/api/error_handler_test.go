package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/99minutos/campaign-system/internal/api/handler"
	"github.com/99minutos/campaign-system/internal/core/domain"
)

func renderError(t *testing.T, err error) (*httptest.ResponseRecorder, handler.ErrorBody, *bytes.Buffer) {
	t.Helper()
	var logs bytes.Buffer
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/campaigns", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	NewHTTPErrorHandler(zerolog.New(&logs))(err, c)

	var body handler.ErrorBody
	if decodeErr := json.Unmarshal(rec.Body.Bytes(), &body); decodeErr != nil {
		t.Fatalf("decode body: %v (%s)", decodeErr, rec.Body.String())
	}
	return rec, body, &logs
}

func TestHTTPErrorHandler_StatusMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
		msg  string
	}{
		{"not found", domain.ErrCampaignNotFound, http.StatusNotFound, "campaign not found"},
		{"wrapped not found", fmt.Errorf("find: %w", domain.ErrCampaignNotFound), http.StatusNotFound, "campaign not found"},
		{"forbidden", domain.ErrForbidden, http.StatusForbidden, "access forbidden"},
		{"bad credentials", domain.ErrInvalidCredentials, http.StatusUnauthorized, "authentication failed"},
		{"bad token", domain.ErrTokenInvalid, http.StatusUnauthorized, "invalid token"},
		{"duplicate", domain.ErrDuplicateIdentity, http.StatusConflict, "account already exists"},
		{"idempotency in flight", domain.ErrIdempotencyInFlight, http.StatusConflict, "request with this idempotency key is still in progress"},
		{"named duplicate", &domain.DuplicateIdentityError{Field: "username"}, http.StatusConflict, "username already registered"},
		{"echo error", echo.NewHTTPError(http.StatusBadRequest, "invalid payload"), http.StatusBadRequest, "invalid payload"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec, body, _ := renderError(t, tc.err)
			if rec.Code != tc.code {
				t.Errorf("expected %d, got %d", tc.code, rec.Code)
			}
			if body.Error != tc.msg {
				t.Errorf("expected message %q, got %q", tc.msg, body.Error)
			}
		})
	}
}

func TestHTTPErrorHandler_ValidationDetails(t *testing.T) {
	err := domain.NewValidationError("name is required", "amount must be greater than 0")

	rec, body, _ := renderError(t, err)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
	if len(body.Details) != 2 || body.Details[0] != "name is required" {
		t.Errorf("unexpected details: %v", body.Details)
	}
}

func TestHTTPErrorHandler_UnexpectedErrorIsHidden(t *testing.T) {
	rec, body, logs := renderError(t, errors.New("connection refused: 10.0.0.3:27017"))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if body.Error != "internal server error" {
		t.Errorf("internal cause leaked: %q", body.Error)
	}
	if !bytes.Contains(logs.Bytes(), []byte("connection refused")) {
		t.Error("expected the real cause to be logged")
	}
}
