package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/catalog-api/internal/core/domain"
)

func rbacContext(roles ...string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if roles != nil {
		c.Set(claimsKey, &domain.Claims{Subject: "user-1", Roles: roles})
	}
	return c, rec
}

func TestRequireRoles_Allows(t *testing.T) {
	c, rec := rbacContext("User")

	called := false
	handler := RequireRoles(domain.RoleAdmin, domain.RoleUser)(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next handler not called")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestRequireRoles_CaseInsensitive(t *testing.T) {
	c, _ := rbacContext("admin")
	handler := RequireRoles(domain.RoleAdmin)(func(c echo.Context) error { return nil })
	if err := handler(c); err != nil {
		t.Fatalf("expected admin to match Admin, got %v", err)
	}
}

func TestRequireRoles_Forbids(t *testing.T) {
	c, _ := rbacContext("User")

	handler := RequireRoles(domain.RoleAdmin)(func(c echo.Context) error {
		t.Fatalf("should not reach next handler")
		return nil
	})

	if err := handler(c); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestRequireRoles_NoRequirement(t *testing.T) {
	c, _ := rbacContext()
	c.Set(claimsKey, &domain.Claims{Subject: "user-1"})

	handler := RequireRoles()(func(c echo.Context) error { return nil })
	if err := handler(c); err != nil {
		t.Fatalf("expected any authenticated caller to pass, got %v", err)
	}
}

func TestRequireRoles_WithoutAuth(t *testing.T) {
	c, _ := rbacContext()

	handler := RequireRoles(domain.RoleUser)(func(c echo.Context) error {
		t.Fatalf("should not reach next handler")
		return nil
	})
	if err := handler(c); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}
