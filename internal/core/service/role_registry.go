package service

import (
	"context"
	"strings"
	"time"

	"github.com/99minutos/catalog-api/internal/core/domain"
	"github.com/99minutos/catalog-api/internal/core/ports"
)

// RoleRegistry holds the set of known role names.
type RoleRegistry struct {
	repo ports.RoleRepository
}

func NewRoleRegistry(repo ports.RoleRepository) *RoleRegistry {
	return &RoleRegistry{repo: repo}
}

func (r *RoleRegistry) Exists(ctx context.Context, name string) (bool, error) {
	key := domain.NormalizeRoleName(name)
	if key == "" {
		return false, nil
	}
	return r.repo.Exists(ctx, key)
}

// Find returns the stored role so callers use its canonical spelling.
func (r *RoleRegistry) Find(ctx context.Context, name string) (*domain.Role, error) {
	key := domain.NormalizeRoleName(name)
	if key == "" {
		return nil, domain.ErrInvalidRoleName
	}
	return r.repo.FindByName(ctx, key)
}

// Create fails with ErrInvalidRoleName for blank input and with
// ErrRoleAlreadyExists when the name is taken.
func (r *RoleRegistry) Create(ctx context.Context, name string) (*domain.Role, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return nil, domain.ErrInvalidRoleName
	}
	return r.repo.Create(ctx, &domain.Role{
		Name:           trimmed,
		NormalizedName: domain.NormalizeRoleName(trimmed),
		CreatedAt:      time.Now().UTC(),
	})
}

func (r *RoleRegistry) List(ctx context.Context) ([]*domain.Role, error) {
	return r.repo.List(ctx)
}
