package commerce

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/novalo/storefront/internal/core/domain"
)

func shippingBody(addr domain.ShippingAddress) map[string]map[string]string {
	return map[string]map[string]string{
		"shippingAddress": {
			"details": addr.Details,
			"city":    addr.City,
			"phone":   addr.Phone,
		},
	}
}

func (c *Client) CreateCashOrder(ctx context.Context, token, cartID string, addr domain.ShippingAddress) error {
	env, err := c.do(ctx, http.MethodPost, "/orders/"+cartID, nil, token, shippingBody(addr))
	if err != nil {
		return err
	}
	if !env.succeeded() {
		return env.failure()
	}
	return nil
}

func (c *Client) CreateCheckoutSession(ctx context.Context, token, cartID, returnURL string, addr domain.ShippingAddress) (string, error) {
	q := url.Values{"url": {returnURL}}
	env, err := c.do(ctx, http.MethodPost, "/orders/checkout-session/"+cartID, q, token, shippingBody(addr))
	if err != nil {
		return "", err
	}
	if !env.succeeded() || env.Session == nil || env.Session.URL == "" {
		return "", env.failure()
	}
	return env.Session.URL, nil
}

type orderPayload struct {
	ID                string     `json:"_id"`
	Number            int        `json:"id"`
	CartItems         []cartItem `json:"cartItems"`
	TotalOrderPrice   float64    `json:"totalOrderPrice"`
	PaymentMethodType string     `json:"paymentMethodType"`
	IsPaid            bool       `json:"isPaid"`
	IsDelivered       bool       `json:"isDelivered"`
	CreatedAt         time.Time  `json:"createdAt"`
}

// UserOrders lists a user's order history. Unlike the rest of the API this
// endpoint responds with a bare JSON array, not an envelope.
func (c *Client) UserOrders(ctx context.Context, userID string) ([]domain.Order, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/orders/user/"+userID, nil)
	if err != nil {
		return nil, fmt.Errorf("build orders request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("%w: orders lookup returned %s", ErrUpstream, resp.Status)
	}

	var payload []orderPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode orders response: %w", err)
	}

	orders := make([]domain.Order, 0, len(payload))
	for _, op := range payload {
		o := domain.Order{
			ID:            op.ID,
			Number:        op.Number,
			TotalPrice:    op.TotalOrderPrice,
			PaymentMethod: op.PaymentMethodType,
			Paid:          op.IsPaid,
			Delivered:     op.IsDelivered,
			CreatedAt:     op.CreatedAt,
			Items:         make([]domain.CartLine, 0, len(op.CartItems)),
		}
		for _, it := range op.CartItems {
			o.Items = append(o.Items, domain.CartLine{
				ProductID: it.Product.ID,
				Title:     it.Product.Title,
				ImageURL:  it.Product.ImageURL,
				UnitPrice: it.Price,
				Quantity:  it.Count,
			})
		}
		orders = append(orders, o)
	}
	return orders, nil
}
