package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Category roots. Every error the core returns wraps exactly one of these so
// the transport layer can map it to a status code with errors.Is.
var (
	ErrValidation   = errors.New("validation failed")
	ErrConflict     = errors.New("conflict")
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("access forbidden")
	ErrTransient    = errors.New("temporarily unavailable")
	ErrInternal     = errors.New("internal error")
)

var (
	ErrWeakCredential  = fmt.Errorf("%w: password does not satisfy policy", ErrValidation)
	ErrInvalidRoleName = fmt.Errorf("%w: role name cannot be empty", ErrValidation)
	ErrInvalidProduct  = fmt.Errorf("%w: invalid product", ErrValidation)

	ErrDuplicateEmail    = fmt.Errorf("%w: email already registered", ErrConflict)
	ErrRoleAlreadyExists = fmt.Errorf("%w: role already exists", ErrConflict)

	ErrUserNotFound    = fmt.Errorf("%w: user not found", ErrNotFound)
	ErrRoleNotFound    = fmt.Errorf("%w: role not found", ErrNotFound)
	ErrProductNotFound = fmt.Errorf("%w: product not found", ErrNotFound)

	// ErrInvalidCredentials is returned for every login failure, whether the
	// email is unknown or the password is wrong.
	ErrInvalidCredentials = fmt.Errorf("%w: email or password incorrect", ErrUnauthorized)
	ErrAccountLocked      = fmt.Errorf("%w: too many failed login attempts", ErrUnauthorized)

	ErrBadSignature     = fmt.Errorf("%w: token signature is invalid", ErrUnauthorized)
	ErrTokenExpired     = fmt.Errorf("%w: token is expired", ErrUnauthorized)
	ErrIssuerMismatch   = fmt.Errorf("%w: token issuer mismatch", ErrUnauthorized)
	ErrAudienceMismatch = fmt.Errorf("%w: token audience mismatch", ErrUnauthorized)
	ErrTokenMalformed   = fmt.Errorf("%w: token is malformed", ErrUnauthorized)
)

// ValidationError carries field-level detail for a rejected input.
type ValidationError struct {
	Cause  error
	Fields map[string]string
}

// NewValidationError builds a ValidationError wrapping cause, which should be
// ErrValidation or one of its descendants.
func NewValidationError(cause error, fields map[string]string) *ValidationError {
	if cause == nil {
		cause = ErrValidation
	}
	return &ValidationError{Cause: cause, Fields: fields}
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Cause.Error()
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return e.Cause.Error() + " (" + strings.Join(parts, "; ") + ")"
}

func (e *ValidationError) Unwrap() error {
	return e.Cause
}
