package service

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/99minutos/catalog-api/internal/core/domain"
	"github.com/99minutos/catalog-api/internal/core/ports"
)

type ProductService struct {
	repo   ports.ProductRepository
	logger zerolog.Logger
}

func NewProductService(repo ports.ProductRepository, logger zerolog.Logger) *ProductService {
	return &ProductService{repo: repo, logger: logger}
}

func (s *ProductService) ListAll(ctx context.Context) ([]*domain.Product, error) {
	products, err := s.repo.List(ctx)
	if err != nil {
		return nil, translateStoreError(s.logger, "product.list", err)
	}
	return products, nil
}

func (s *ProductService) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, translateStoreError(s.logger, "product.get", err)
	}
	return p, nil
}

// Insert creates a product with a fresh id.
func (s *ProductService) Insert(ctx context.Context, in ports.ProductInput) (*domain.Product, error) {
	if err := validateProduct(in); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	p := &domain.Product{
		ID:        uuid.NewString(),
		Name:      strings.TrimSpace(in.Name),
		Price:     in.Price,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Insert(ctx, p); err != nil {
		return nil, translateStoreError(s.logger, "product.insert", err)
	}

	s.logger.Info().Str("product_id", p.ID).Msg("product created")
	return p, nil
}

// Update replaces name and price of an existing product.
func (s *ProductService) Update(ctx context.Context, id string, in ports.ProductInput) (*domain.Product, error) {
	if err := validateProduct(in); err != nil {
		return nil, err
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, translateStoreError(s.logger, "product.update.find", err)
	}

	existing.Name = strings.TrimSpace(in.Name)
	existing.Price = in.Price
	existing.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, existing); err != nil {
		return nil, translateStoreError(s.logger, "product.update", err)
	}
	return existing, nil
}

func (s *ProductService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return translateStoreError(s.logger, "product.delete", err)
	}
	s.logger.Info().Str("product_id", id).Msg("product deleted")
	return nil
}

func validateProduct(in ports.ProductInput) error {
	fields := map[string]string{}
	if strings.TrimSpace(in.Name) == "" {
		fields["name"] = "is required"
	}
	if in.Price < 0 || math.IsNaN(in.Price) || math.IsInf(in.Price, 0) {
		fields["price"] = "must be a non-negative number"
	}
	if len(fields) > 0 {
		return domain.NewValidationError(domain.ErrInvalidProduct, fields)
	}
	return nil
}
