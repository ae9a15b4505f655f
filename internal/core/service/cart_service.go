package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/novalo/storefront/internal/core/domain"
	"github.com/novalo/storefront/internal/port"
)

var (
	ErrNoCredential    = errors.New("no credential token")
	ErrEmptyCart       = errors.New("no active cart")
	ErrUnknownCheckout = errors.New("unknown checkout mode")
)

// CartService keeps one session's cart consistent with the commerce API
// while making mutations feel instantaneous. Remove and quantity updates
// apply locally first and roll back to the exact pre-call state if the
// server rejects them; every confirmed server response replaces local state
// wholesale.
//
// The lock protects state reads and writes only. It is never held across a
// network call, so overlapping mutations interleave last-response-wins.
type CartService struct {
	gateway port.CartGateway
	orders  port.OrderGateway
	log     *slog.Logger
	token   string

	mu        sync.Mutex
	snapshot  domain.CartSnapshot
	itemCount int
	loaded    bool
	subs      []chan struct{}
}

func NewCartService(gateway port.CartGateway, orders port.OrderGateway, log *slog.Logger, token string) *CartService {
	return &CartService{
		gateway: gateway,
		orders:  orders,
		log:     log,
		token:   token,
	}
}

// Snapshot returns a copy of the current cart state and the distinct-line
// count.
func (s *CartService) Snapshot() (domain.CartSnapshot, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot.Clone(), s.itemCount
}

// Loaded reports whether a server snapshot has been adopted yet.
func (s *CartService) Loaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loaded
}

// Subscribe registers a change listener. The channel receives a signal
// (coalesced, never blocking) every time adopted state changes.
func (s *CartService) Subscribe() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch := make(chan struct{}, 1)
	s.subs = append(s.subs, ch)
	return ch
}

// Unsubscribe removes a listener registered with Subscribe.
func (s *CartService) Unsubscribe(ch <-chan struct{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, sub := range s.subs {
		if sub == ch {
			s.subs = append(s.subs[:i], s.subs[i+1:]...)
			return
		}
	}
}

func (s *CartService) notifyLocked() {
	for _, ch := range s.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// Refresh re-fetches the cart and adopts the server state. Without a token
// it does nothing. A failed fetch is logged and swallowed; this is a read
// path, the prior state stays untouched.
func (s *CartService) Refresh(ctx context.Context) error {
	if s.token == "" {
		return nil
	}

	snap, count, err := s.gateway.FetchCart(ctx, s.token)
	if err != nil {
		s.log.Warn("cart refresh failed", "error", err)
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot = snap
	s.itemCount = count
	s.loaded = true
	s.notifyLocked()
	return nil
}

// Add asks the server to add one unit of a product. There is no optimistic
// insert: price and line identity are server-assigned, so success triggers
// a full refresh instead. On failure nothing is touched.
func (s *CartService) Add(ctx context.Context, productID string) error {
	if s.token == "" {
		return ErrNoCredential
	}
	if err := s.gateway.AddCartItem(ctx, s.token, productID); err != nil {
		return err
	}
	return s.Refresh(ctx)
}

// Remove deletes a line, optimistically: the line disappears, the total is
// recomputed and the counter decremented before the network call. Success
// adopts the server's authoritative snapshot; failure restores the saved
// pre-call state verbatim.
func (s *CartService) Remove(ctx context.Context, productID string) error {
	if s.token == "" {
		return ErrNoCredential
	}

	s.mu.Lock()
	prev := s.snapshot.Clone()
	prevCount := s.itemCount
	if s.loaded {
		kept := make([]domain.CartLine, 0, len(s.snapshot.Lines))
		removed := false
		for _, l := range s.snapshot.Lines {
			if l.ProductID == productID {
				removed = true
				continue
			}
			kept = append(kept, l)
		}
		if removed {
			s.snapshot.Lines = kept
			s.snapshot.TotalPrice = s.snapshot.Subtotal()
			s.itemCount--
			s.notifyLocked()
		}
	}
	s.mu.Unlock()

	snap, count, err := s.gateway.RemoveCartItem(ctx, s.token, productID)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.snapshot = prev
		s.itemCount = prevCount
		s.notifyLocked()
		return err
	}
	s.snapshot = snap
	s.itemCount = count
	s.loaded = true
	s.notifyLocked()
	return nil
}

// SetQuantity rewrites a line's quantity, optimistically. Quantities below
// one are rejected silently without a network call. The distinct-line
// counter is not touched: quantity changes do not change the number of
// lines. Failure restores the saved snapshot.
func (s *CartService) SetQuantity(ctx context.Context, productID string, quantity int) error {
	if quantity < 1 {
		return nil
	}
	if s.token == "" {
		return ErrNoCredential
	}

	s.mu.Lock()
	prev := s.snapshot.Clone()
	if s.loaded {
		for i := range s.snapshot.Lines {
			if s.snapshot.Lines[i].ProductID == productID {
				s.snapshot.Lines[i].Quantity = quantity
			}
		}
		s.snapshot.TotalPrice = s.snapshot.Subtotal()
		s.notifyLocked()
	}
	s.mu.Unlock()

	snap, count, err := s.gateway.UpdateCartItem(ctx, s.token, productID, quantity)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.snapshot = prev
		s.notifyLocked()
		return err
	}
	s.snapshot = snap
	s.itemCount = count
	s.loaded = true
	s.notifyLocked()
	return nil
}

// Clear deletes the whole cart. Clearing is destructive, so local state is
// reset only after the server confirms; a failed clear leaves it intact.
func (s *CartService) Clear(ctx context.Context) error {
	if s.token == "" {
		return ErrNoCredential
	}
	if err := s.gateway.ClearCart(ctx, s.token); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset()
	return nil
}

// Checkout submits the shipping address for the active cart. On success the
// order has consumed the cart and local state resets to empty. Online mode
// returns the hosted payment-session URL; navigation is the caller's job.
func (s *CartService) Checkout(ctx context.Context, mode domain.CheckoutMode, addr domain.ShippingAddress, returnURL string) (domain.CheckoutResult, error) {
	res := domain.CheckoutResult{Mode: mode}
	if s.token == "" {
		return res, ErrNoCredential
	}

	s.mu.Lock()
	cartID := s.snapshot.ID
	s.mu.Unlock()
	if cartID == "" {
		return res, ErrEmptyCart
	}

	switch mode {
	case domain.CheckoutOnline:
		url, err := s.orders.CreateCheckoutSession(ctx, s.token, cartID, returnURL, addr)
		if err != nil {
			return res, err
		}
		res.PaymentURL = url
	case domain.CheckoutCash:
		if err := s.orders.CreateCashOrder(ctx, s.token, cartID, addr); err != nil {
			return res, err
		}
	default:
		return res, ErrUnknownCheckout
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset()
	return res, nil
}

func (s *CartService) reset() {
	s.snapshot = domain.CartSnapshot{}
	s.itemCount = 0
	s.loaded = false
	s.notifyLocked()
}

// CartManager hands out one CartService per session token. Sessions are
// in-memory only; the cart is rebuilt from the server on first use.
type CartManager struct {
	gateway port.CartGateway
	orders  port.OrderGateway
	log     *slog.Logger

	mu       sync.Mutex
	sessions map[string]*CartService
}

func NewCartManager(gateway port.CartGateway, orders port.OrderGateway, log *slog.Logger) *CartManager {
	return &CartManager{
		gateway:  gateway,
		orders:   orders,
		log:      log,
		sessions: make(map[string]*CartService),
	}
}

// Session returns the cart bound to a token, creating it on first use.
func (m *CartManager) Session(token string) *CartService {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[token]; ok {
		return s
	}
	s := NewCartService(m.gateway, m.orders, m.log, token)
	m.sessions[token] = s
	return s
}

// Drop discards a session's cart state. Called on sign-out; nothing is
// persisted.
func (m *CartManager) Drop(token string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, token)
}
