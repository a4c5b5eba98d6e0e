package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/catalog-api/internal/api/metrics"
	"github.com/99minutos/catalog-api/internal/core/domain"
	"github.com/99minutos/catalog-api/internal/core/ports"
)

const claimsKey = "claims"

var errMissingToken = fmt.Errorf("%w: missing bearer token", domain.ErrUnauthorized)

// Auth validates the bearer token and stores its claims in the context.
func Auth(validator ports.TokenValidator) echo.MiddlewareFunc {
	return AuthWithClock(validator, time.Now)
}

// AuthWithClock is Auth with an explicit time source.
func AuthWithClock(validator ports.TokenValidator, now func() time.Time) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, ok := bearerToken(c.Request())
			if !ok {
				metrics.TokenValidationsTotal.WithLabelValues("missing").Inc()
				return challenge(c, errMissingToken)
			}

			claims, err := validator.Validate(raw, now())
			if err != nil {
				metrics.TokenValidationsTotal.WithLabelValues(failureReason(err)).Inc()
				if errors.Is(err, domain.ErrTokenMalformed) {
					err = domain.ErrTokenMalformed
				}
				return challenge(c, err)
			}

			metrics.TokenValidationsTotal.WithLabelValues("valid").Inc()
			c.Set(claimsKey, claims)
			return next(c)
		}
	}
}

// Claims returns the claims stored by Auth.
func Claims(c echo.Context) (*domain.Claims, bool) {
	claims, ok := c.Get(claimsKey).(*domain.Claims)
	return claims, ok && claims != nil
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get(echo.HeaderAuthorization)
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

func challenge(c echo.Context, err error) error {
	c.Response().Header().Set(echo.HeaderWWWAuthenticate, `Bearer error="invalid_token"`)
	return err
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrTokenExpired):
		return "expired"
	case errors.Is(err, domain.ErrBadSignature):
		return "bad_signature"
	case errors.Is(err, domain.ErrIssuerMismatch):
		return "issuer"
	case errors.Is(err, domain.ErrAudienceMismatch):
		return "audience"
	default:
		return "malformed"
	}
}
