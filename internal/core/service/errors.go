package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/99minutos/catalog-api/internal/core/domain"
)

// translateStoreError maps whatever a collaborator returned onto the domain
// taxonomy. Raw storage detail is logged here and never returned.
func translateStoreError(log zerolog.Logger, op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrConflict),
		errors.Is(err, domain.ErrNotFound),
		errors.Is(err, domain.ErrUnauthorized),
		errors.Is(err, domain.ErrForbidden):
		return err
	case errors.Is(err, domain.ErrTransient),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		log.Warn().Err(err).Str("op", op).Msg("store unavailable")
		return domain.ErrTransient
	default:
		log.Error().Err(err).Str("op", op).Msg("store failure")
		return domain.ErrInternal
	}
}
