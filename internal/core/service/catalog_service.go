package service

import (
	"context"

	"github.com/novalo/storefront/internal/core/domain"
	"github.com/novalo/storefront/internal/port"
)

// CatalogService exposes the read-only product catalog. Pure delegation;
// the commerce API owns all catalog data.
type CatalogService struct {
	gateway port.CatalogGateway
}

func NewCatalogService(gateway port.CatalogGateway) *CatalogService {
	return &CatalogService{gateway: gateway}
}

func (s *CatalogService) Products(ctx context.Context, q domain.ProductQuery) ([]domain.Product, domain.Page, error) {
	return s.gateway.Products(ctx, q)
}

func (s *CatalogService) Product(ctx context.Context, id string) (domain.Product, error) {
	return s.gateway.Product(ctx, id)
}

func (s *CatalogService) Categories(ctx context.Context) ([]domain.Category, error) {
	return s.gateway.Categories(ctx)
}

func (s *CatalogService) Category(ctx context.Context, id string) (domain.Category, error) {
	return s.gateway.Category(ctx, id)
}

func (s *CatalogService) Subcategories(ctx context.Context, categoryID string) ([]domain.Category, error) {
	return s.gateway.Subcategories(ctx, categoryID)
}

func (s *CatalogService) Brands(ctx context.Context) ([]domain.Brand, error) {
	return s.gateway.Brands(ctx)
}

func (s *CatalogService) Brand(ctx context.Context, id string) (domain.Brand, error) {
	return s.gateway.Brand(ctx, id)
}
