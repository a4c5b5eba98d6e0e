package ports

import (
	"context"

	"github.com/99minutos/catalog-api/internal/core/domain"
)

// ProductRepository defines persistence operations for products.
type ProductRepository interface {
	List(ctx context.Context) ([]*domain.Product, error)
	FindByID(ctx context.Context, id string) (*domain.Product, error)
	Insert(ctx context.Context, p *domain.Product) error
	// Update and Delete return domain.ErrProductNotFound when nothing matched.
	Update(ctx context.Context, p *domain.Product) error
	Delete(ctx context.Context, id string) error
}
