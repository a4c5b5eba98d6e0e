package handler

import (
	"time"

	"github.com/99minutos/catalog-api/internal/core/domain"
	"github.com/99minutos/catalog-api/internal/core/ports"
)

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

type productRequest struct {
	Name  string   `json:"name"  validate:"required,max=200"`
	Price *float64 `json:"price" validate:"required,gte=0"`
}

type productLinks struct {
	Self string `json:"self"`
}

type productResponse struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	Price     float64      `json:"price"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
	Links     productLinks `json:"_links"`
}

func toProductInput(req productRequest) ports.ProductInput {
	in := ports.ProductInput{Name: req.Name}
	if req.Price != nil {
		in.Price = *req.Price
	}
	return in
}

func toProductResponse(p *domain.Product) productResponse {
	return productResponse{
		ID:        p.ID,
		Name:      p.Name,
		Price:     p.Price,
		CreatedAt: p.CreatedAt.UTC(),
		UpdatedAt: p.UpdatedAt.UTC(),
		Links:     productLinks{Self: "/api/product/" + p.ID},
	}
}

func toProductList(products []*domain.Product) []productResponse {
	out := make([]productResponse, len(products))
	for i, p := range products {
		out[i] = toProductResponse(p)
	}
	return out
}
