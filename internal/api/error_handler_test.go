package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/99minutos/catalog-api/internal/core/domain"
)

func TestHTTPErrorHandler_StatusMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
		msg  string
	}{
		{"validation", domain.NewValidationError(domain.ErrWeakCredential, map[string]string{"password": "too short"}), http.StatusBadRequest, domain.ErrWeakCredential.Error()},
		{"invalid role", domain.ErrInvalidRoleName, http.StatusBadRequest, domain.ErrInvalidRoleName.Error()},
		{"credentials", domain.ErrInvalidCredentials, http.StatusUnauthorized, domain.ErrInvalidCredentials.Error()},
		{"expired token", domain.ErrTokenExpired, http.StatusUnauthorized, domain.ErrTokenExpired.Error()},
		{"locked", domain.ErrAccountLocked, http.StatusTooManyRequests, domain.ErrAccountLocked.Error()},
		{"forbidden", domain.ErrForbidden, http.StatusForbidden, domain.ErrForbidden.Error()},
		{"user not found", domain.ErrUserNotFound, http.StatusNotFound, domain.ErrUserNotFound.Error()},
		{"duplicate", domain.ErrDuplicateEmail, http.StatusConflict, domain.ErrDuplicateEmail.Error()},
		{"role exists", domain.ErrRoleAlreadyExists, http.StatusConflict, domain.ErrRoleAlreadyExists.Error()},
		{"transient", domain.ErrTransient, http.StatusServiceUnavailable, "service temporarily unavailable"},
		{"internal", domain.ErrInternal, http.StatusInternalServerError, "internal server error"},
		{"raw", fmt.Errorf("mongo: socket closed"), http.StatusInternalServerError, "internal server error"},
		{"echo", echo.NewHTTPError(http.StatusMethodNotAllowed, "method not allowed"), http.StatusMethodNotAllowed, "method not allowed"},
	}

	handler := NewHTTPErrorHandler(zerolog.Nop())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

			handler(tt.err, c)

			if rec.Code != tt.code {
				t.Fatalf("expected %d, got %d", tt.code, rec.Code)
			}
			var body errorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("invalid json: %v", err)
			}
			if body.Error != tt.msg {
				t.Fatalf("expected message %q, got %q", tt.msg, body.Error)
			}
		})
	}
}

func TestHTTPErrorHandler_Fields(t *testing.T) {
	handler := NewHTTPErrorHandler(zerolog.Nop())
	e := echo.New()

	rec := httptest.NewRecorder()
	handler(domain.NewValidationError(domain.ErrValidation, map[string]string{"email": "is required"}),
		e.NewContext(httptest.NewRequest(http.MethodPost, "/", nil), rec))

	var body errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if body.Fields["email"] != "is required" {
		t.Fatalf("expected field detail, got %+v", body)
	}
}
