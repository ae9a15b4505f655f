package commerce

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/novalo/storefront/internal/core/domain"
)

func (c *Client) FetchWishlist(ctx context.Context, token string) ([]domain.Product, error) {
	env, err := c.do(ctx, http.MethodGet, "/wishlist", nil, token, nil)
	if err != nil {
		return nil, err
	}
	if !env.succeeded() {
		return nil, env.failure()
	}
	var payload []productPayload
	if err := json.Unmarshal(env.Data, &payload); err != nil {
		return nil, fmt.Errorf("decode wishlist payload: %w", err)
	}
	products := make([]domain.Product, 0, len(payload))
	for _, pp := range payload {
		products = append(products, pp.toDomain())
	}
	return products, nil
}

// wishlistIDs decodes the id list that add/remove responses carry.
func wishlistIDs(env *envelope) ([]string, error) {
	if !env.succeeded() {
		return nil, env.failure()
	}
	var ids []string
	if err := json.Unmarshal(env.Data, &ids); err != nil {
		return nil, fmt.Errorf("decode wishlist ids: %w", err)
	}
	return ids, nil
}

func (c *Client) AddWishlistItem(ctx context.Context, token, productID string) ([]string, error) {
	env, err := c.do(ctx, http.MethodPost, "/wishlist", nil, token, map[string]string{"productId": productID})
	if err != nil {
		return nil, err
	}
	return wishlistIDs(env)
}

func (c *Client) RemoveWishlistItem(ctx context.Context, token, productID string) ([]string, error) {
	env, err := c.do(ctx, http.MethodDelete, "/wishlist/"+productID, nil, token, nil)
	if err != nil {
		return nil, err
	}
	return wishlistIDs(env)
}
