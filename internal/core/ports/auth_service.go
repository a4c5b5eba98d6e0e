package ports

import (
	"context"

	"github.com/99minutos/catalog-api/internal/core/domain"
)

// RegisterInput carries the registration form. Role is optional.
type RegisterInput struct {
	Email    string
	Password string
	Role     string
}

// LoginInput carries the login form. Role is echoed back, not enforced.
type LoginInput struct {
	Email    string
	Password string
	Role     string
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*domain.User, error)
	Login(ctx context.Context, in LoginInput) (*domain.AuthResult, error)
	CreateRole(ctx context.Context, name string) (*domain.Role, error)
	ListRoles(ctx context.Context) ([]*domain.Role, error)
	DeleteUser(ctx context.Context, id string) error
	AssignRole(ctx context.Context, userID, role string) (*domain.User, error)
	RevokeRole(ctx context.Context, userID, role string) (*domain.User, error)
}
