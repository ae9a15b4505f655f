package service

import (
	"context"

	"github.com/novalo/storefront/internal/core/domain"
	"github.com/novalo/storefront/internal/port"
)

// WishlistService manages the authenticated user's wishlist. Unlike the
// cart there are no optimistic edits here: the UI toggles only after the
// server confirms.
type WishlistService struct {
	gateway port.WishlistGateway
}

func NewWishlistService(gateway port.WishlistGateway) *WishlistService {
	return &WishlistService{gateway: gateway}
}

func (s *WishlistService) List(ctx context.Context, token string) ([]domain.Product, error) {
	if token == "" {
		return nil, ErrNoCredential
	}
	return s.gateway.FetchWishlist(ctx, token)
}

func (s *WishlistService) Add(ctx context.Context, token, productID string) ([]string, error) {
	if token == "" {
		return nil, ErrNoCredential
	}
	return s.gateway.AddWishlistItem(ctx, token, productID)
}

func (s *WishlistService) Remove(ctx context.Context, token, productID string) ([]string, error) {
	if token == "" {
		return nil, ErrNoCredential
	}
	return s.gateway.RemoveWishlistItem(ctx, token, productID)
}
