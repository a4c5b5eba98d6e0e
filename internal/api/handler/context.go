package handler

import (
	"fmt"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/catalog-api/internal/api/middleware"
	"github.com/99minutos/catalog-api/internal/core/domain"
)

// ctxClaims returns the claims injected by the Auth middleware. A route
// mounted without it fails closed with 401.
func ctxClaims(c echo.Context) (*domain.Claims, error) {
	claims, ok := middleware.Claims(c)
	if !ok || claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing authentication claims", domain.ErrUnauthorized)
	}
	return claims, nil
}

// bindAndValidate decodes the body into req and runs struct validation.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return domain.NewValidationError(domain.ErrValidation, map[string]string{"body": "invalid payload"})
	}
	return c.Validate(req)
}
