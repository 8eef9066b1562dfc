package domain

import (
	"errors"
	"strings"
)

var ErrInvalidCredentials = errors.New("authentication failed")
var ErrDuplicateIdentity = errors.New("account already exists")
var ErrTokenInvalid = errors.New("invalid token")
var ErrCampaignNotFound = errors.New("campaign not found")
var ErrAccountNotFound = errors.New("account not found")
var ErrForbidden = errors.New("access forbidden")
var ErrIdempotencyInFlight = errors.New("a request with this idempotency key is still in progress")
var ErrMissingSigningSecret = errors.New("signing secret missing or shorter than 32 bytes")

// DuplicateIdentityError names the identity field that collided. It is only
// surfaced when field disclosure is enabled; it always matches ErrDuplicateIdentity.
type DuplicateIdentityError struct {
	Field string
}

func (e *DuplicateIdentityError) Error() string {
	return e.Field + " already registered"
}

func (e *DuplicateIdentityError) Is(target error) bool {
	return target == ErrDuplicateIdentity
}

// ValidationError carries one human-readable message per failing field.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Errors, "; ")
}

// NewValidationError builds a ValidationError from the given messages.
func NewValidationError(msgs ...string) *ValidationError {
	return &ValidationError{Errors: msgs}
}
