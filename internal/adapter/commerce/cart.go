package commerce

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/novalo/storefront/internal/core/domain"
)

// cartPayload is the cart shape under the envelope's data field.
type cartPayload struct {
	ID             string     `json:"_id"`
	Products       []cartItem `json:"products"`
	TotalCartPrice float64    `json:"totalCartPrice"`
}

type cartItem struct {
	Product productRef `json:"product"`
	Price   float64    `json:"price"`
	Count   int        `json:"count"`
}

// productRef decodes the line's product field, which the API emits either
// as a bare product-id string or as an embedded product object.
type productRef struct {
	ID       string
	Title    string
	ImageURL string
}

func (p *productRef) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		return json.Unmarshal(b, &p.ID)
	}
	var obj struct {
		ID         string `json:"_id"`
		Title      string `json:"title"`
		ImageCover string `json:"imageCover"`
	}
	if err := json.Unmarshal(b, &obj); err != nil {
		return err
	}
	p.ID = obj.ID
	p.Title = obj.Title
	p.ImageURL = obj.ImageCover
	return nil
}

func (cp cartPayload) toDomain() domain.CartSnapshot {
	snap := domain.CartSnapshot{
		ID:         cp.ID,
		Lines:      make([]domain.CartLine, 0, len(cp.Products)),
		TotalPrice: cp.TotalCartPrice,
	}
	for _, it := range cp.Products {
		snap.Lines = append(snap.Lines, domain.CartLine{
			ProductID: it.Product.ID,
			Title:     it.Product.Title,
			ImageURL:  it.Product.ImageURL,
			UnitPrice: it.Price,
			Quantity:  it.Count,
		})
	}
	return snap
}

func (c *Client) cartFromEnvelope(env *envelope) (domain.CartSnapshot, int, error) {
	if !env.succeeded() {
		return domain.CartSnapshot{}, 0, env.failure()
	}
	var cp cartPayload
	if err := json.Unmarshal(env.Data, &cp); err != nil {
		return domain.CartSnapshot{}, 0, fmt.Errorf("decode cart payload: %w", err)
	}
	return cp.toDomain(), env.NumOfCartItems, nil
}

func (c *Client) FetchCart(ctx context.Context, token string) (domain.CartSnapshot, int, error) {
	env, err := c.do(ctx, http.MethodGet, "/cart", nil, token, nil)
	if err != nil {
		return domain.CartSnapshot{}, 0, err
	}
	return c.cartFromEnvelope(env)
}

func (c *Client) AddCartItem(ctx context.Context, token, productID string) error {
	env, err := c.do(ctx, http.MethodPost, "/cart", nil, token, map[string]string{"productId": productID})
	if err != nil {
		return err
	}
	if !env.succeeded() {
		return env.failure()
	}
	return nil
}

func (c *Client) UpdateCartItem(ctx context.Context, token, productID string, quantity int) (domain.CartSnapshot, int, error) {
	env, err := c.do(ctx, http.MethodPut, "/cart/"+productID, nil, token, map[string]int{"count": quantity})
	if err != nil {
		return domain.CartSnapshot{}, 0, err
	}
	return c.cartFromEnvelope(env)
}

func (c *Client) RemoveCartItem(ctx context.Context, token, productID string) (domain.CartSnapshot, int, error) {
	env, err := c.do(ctx, http.MethodDelete, "/cart/"+productID, nil, token, nil)
	if err != nil {
		return domain.CartSnapshot{}, 0, err
	}
	return c.cartFromEnvelope(env)
}

func (c *Client) ClearCart(ctx context.Context, token string) error {
	env, err := c.do(ctx, http.MethodDelete, "/cart", nil, token, nil)
	if err != nil {
		return err
	}
	// The clear endpoint answers {"message": "success"} with no status.
	if !env.succeeded() && env.Message != "success" {
		return env.failure()
	}
	return nil
}
