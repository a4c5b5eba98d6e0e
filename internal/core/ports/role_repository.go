package ports

import (
	"context"

	"github.com/99minutos/catalog-api/internal/core/domain"
)

// RoleRepository persists role names. Create returns
// domain.ErrRoleAlreadyExists when NormalizedName is already taken.
type RoleRepository interface {
	Exists(ctx context.Context, normalizedName string) (bool, error)
	FindByName(ctx context.Context, normalizedName string) (*domain.Role, error)
	Create(ctx context.Context, role *domain.Role) (*domain.Role, error)
	List(ctx context.Context) ([]*domain.Role, error)
}
