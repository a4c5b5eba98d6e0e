package ports

import (
	"context"

	"github.com/99minutos/catalog-api/internal/core/domain"
)

// UserRepository persists identities. Implementations must enforce uniqueness
// of NormalizedEmail and return domain.ErrDuplicateEmail to the loser of a race.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByEmail(ctx context.Context, normalizedEmail string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	// Delete returns domain.ErrUserNotFound when no identity has the given id.
	Delete(ctx context.Context, id string) error
	AddRole(ctx context.Context, id, role string) error
	RemoveRole(ctx context.Context, id, role string) error
}
