package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/novalo/storefront/internal/core/domain"
)

var errRejected = errors.New("upstream rejected")

// fakeCommerce implements the cart and order gateways with assignable
// behavior, recording every upstream call.
type fakeCommerce struct {
	calls []string

	fetchSnap  domain.CartSnapshot
	fetchCount int
	fetchErr   error

	addErr error

	updateFn func() (domain.CartSnapshot, int, error)
	removeFn func() (domain.CartSnapshot, int, error)

	clearErr error

	cashErr    error
	sessionURL string
	sessionErr error
}

func (f *fakeCommerce) FetchCart(ctx context.Context, token string) (domain.CartSnapshot, int, error) {
	f.calls = append(f.calls, "fetch")
	return f.fetchSnap.Clone(), f.fetchCount, f.fetchErr
}

func (f *fakeCommerce) AddCartItem(ctx context.Context, token, productID string) error {
	f.calls = append(f.calls, "add "+productID)
	return f.addErr
}

func (f *fakeCommerce) UpdateCartItem(ctx context.Context, token, productID string, quantity int) (domain.CartSnapshot, int, error) {
	f.calls = append(f.calls, "update "+productID)
	if f.updateFn != nil {
		return f.updateFn()
	}
	return f.fetchSnap.Clone(), f.fetchCount, nil
}

func (f *fakeCommerce) RemoveCartItem(ctx context.Context, token, productID string) (domain.CartSnapshot, int, error) {
	f.calls = append(f.calls, "remove "+productID)
	if f.removeFn != nil {
		return f.removeFn()
	}
	return f.fetchSnap.Clone(), f.fetchCount, nil
}

func (f *fakeCommerce) ClearCart(ctx context.Context, token string) error {
	f.calls = append(f.calls, "clear")
	return f.clearErr
}

func (f *fakeCommerce) CreateCashOrder(ctx context.Context, token, cartID string, addr domain.ShippingAddress) error {
	f.calls = append(f.calls, "cash "+cartID)
	return f.cashErr
}

func (f *fakeCommerce) CreateCheckoutSession(ctx context.Context, token, cartID, returnURL string, addr domain.ShippingAddress) (string, error) {
	f.calls = append(f.calls, "session "+cartID)
	return f.sessionURL, f.sessionErr
}

func (f *fakeCommerce) UserOrders(ctx context.Context, userID string) ([]domain.Order, error) {
	f.calls = append(f.calls, "orders "+userID)
	return nil, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func seededCart(t *testing.T, fake *fakeCommerce) *CartService {
	t.Helper()
	svc := NewCartService(fake, fake, discardLogger(), "tok")
	require.NoError(t, svc.Refresh(context.Background()))
	fake.calls = nil
	return svc
}

func twoLineCart() domain.CartSnapshot {
	return domain.CartSnapshot{
		ID: "cart-1",
		Lines: []domain.CartLine{
			{ProductID: "P1", UnitPrice: 100, Quantity: 2},
			{ProductID: "P2", UnitPrice: 50, Quantity: 1},
		},
		TotalPrice: 250,
	}
}

func TestRefresh_NoTokenIsNoop(t *testing.T) {
	fake := &fakeCommerce{}
	svc := NewCartService(fake, fake, discardLogger(), "")

	require.NoError(t, svc.Refresh(context.Background()))
	assert.Empty(t, fake.calls)
}

func TestRefresh_AdoptsServerState(t *testing.T) {
	fake := &fakeCommerce{fetchSnap: twoLineCart(), fetchCount: 2}
	svc := NewCartService(fake, fake, discardLogger(), "tok")

	require.NoError(t, svc.Refresh(context.Background()))

	snap, count := svc.Snapshot()
	assert.Equal(t, twoLineCart(), snap)
	assert.Equal(t, 2, count)
	assert.True(t, svc.Loaded())
}

func TestRefresh_FailureSwallowedAndStateUntouched(t *testing.T) {
	fake := &fakeCommerce{fetchSnap: twoLineCart(), fetchCount: 2}
	svc := seededCart(t, fake)

	fake.fetchErr = errRejected
	require.NoError(t, svc.Refresh(context.Background()))

	snap, count := svc.Snapshot()
	assert.Equal(t, twoLineCart(), snap)
	assert.Equal(t, 2, count)
}

func TestAdd_SuccessTriggersRefetch(t *testing.T) {
	fake := &fakeCommerce{fetchSnap: twoLineCart(), fetchCount: 2}
	svc := NewCartService(fake, fake, discardLogger(), "tok")

	require.NoError(t, svc.Add(context.Background(), "P1"))
	assert.Equal(t, []string{"add P1", "fetch"}, fake.calls)
}

func TestAdd_FailureLeavesStateUntouched(t *testing.T) {
	fake := &fakeCommerce{fetchSnap: twoLineCart(), fetchCount: 2}
	svc := seededCart(t, fake)

	fake.addErr = errRejected
	err := svc.Add(context.Background(), "P3")
	require.ErrorIs(t, err, errRejected)

	snap, count := svc.Snapshot()
	assert.Equal(t, twoLineCart(), snap)
	assert.Equal(t, 2, count)
	assert.Equal(t, []string{"add P3"}, fake.calls)
}

func TestRemove_OptimisticThenServerStateWins(t *testing.T) {
	fake := &fakeCommerce{fetchSnap: twoLineCart(), fetchCount: 2}
	svc := seededCart(t, fake)

	authoritative := domain.CartSnapshot{
		ID:         "cart-1",
		Lines:      []domain.CartLine{{ProductID: "P2", UnitPrice: 50, Quantity: 1}},
		TotalPrice: 50,
	}

	var midFlight domain.CartSnapshot
	var midCount int
	fake.removeFn = func() (domain.CartSnapshot, int, error) {
		midFlight, midCount = svc.Snapshot()
		return authoritative.Clone(), 1, nil
	}

	require.NoError(t, svc.Remove(context.Background(), "P1"))

	// Before the server answered, the line was already gone, the total
	// recomputed from the remaining lines, and the counter decremented.
	require.Len(t, midFlight.Lines, 1)
	assert.Equal(t, "P2", midFlight.Lines[0].ProductID)
	assert.Equal(t, 50.0, midFlight.TotalPrice)
	assert.Equal(t, 1, midCount)

	// The confirmed response replaced local state wholesale.
	snap, count := svc.Snapshot()
	assert.Equal(t, authoritative, snap)
	assert.Equal(t, 1, count)
}

func TestRemove_RollbackRestoresExactPriorState(t *testing.T) {
	fake := &fakeCommerce{fetchSnap: twoLineCart(), fetchCount: 2}
	svc := seededCart(t, fake)

	fake.removeFn = func() (domain.CartSnapshot, int, error) {
		return domain.CartSnapshot{}, 0, errRejected
	}

	err := svc.Remove(context.Background(), "P1")
	require.ErrorIs(t, err, errRejected)

	snap, count := svc.Snapshot()
	assert.Equal(t, twoLineCart(), snap)
	assert.Equal(t, 2, count)
}

func TestSetQuantity_OptimisticUpdateAndRollback(t *testing.T) {
	seed := domain.CartSnapshot{
		ID:         "cart-1",
		Lines:      []domain.CartLine{{ProductID: "P1", UnitPrice: 100, Quantity: 2}},
		TotalPrice: 200,
	}
	fake := &fakeCommerce{fetchSnap: seed, fetchCount: 1}
	svc := seededCart(t, fake)

	var midFlight domain.CartSnapshot
	var midCount int
	fake.updateFn = func() (domain.CartSnapshot, int, error) {
		midFlight, midCount = svc.Snapshot()
		return domain.CartSnapshot{}, 0, errRejected
	}

	err := svc.SetQuantity(context.Background(), "P1", 3)
	require.ErrorIs(t, err, errRejected)

	// Mid-flight the quantity and total reflected the optimistic edit,
	// with the distinct-line counter untouched.
	require.Len(t, midFlight.Lines, 1)
	assert.Equal(t, 3, midFlight.Lines[0].Quantity)
	assert.Equal(t, 300.0, midFlight.TotalPrice)
	assert.Equal(t, 1, midCount)

	// The failure restored the pre-call snapshot verbatim.
	snap, count := svc.Snapshot()
	assert.Equal(t, seed, snap)
	assert.Equal(t, 1, count)
}

func TestSetQuantity_BelowOneIsSilentlyRejected(t *testing.T) {
	fake := &fakeCommerce{fetchSnap: twoLineCart(), fetchCount: 2}
	svc := seededCart(t, fake)

	for _, q := range []int{0, -1} {
		require.NoError(t, svc.SetQuantity(context.Background(), "P1", q))
	}

	snap, count := svc.Snapshot()
	assert.Equal(t, twoLineCart(), snap)
	assert.Equal(t, 2, count)
	assert.Empty(t, fake.calls, "no network call may be issued")
}

func TestClear_IsSuccessGated(t *testing.T) {
	fake := &fakeCommerce{fetchSnap: twoLineCart(), fetchCount: 2}
	svc := seededCart(t, fake)

	fake.clearErr = errRejected
	err := svc.Clear(context.Background())
	require.ErrorIs(t, err, errRejected)

	snap, count := svc.Snapshot()
	assert.Equal(t, twoLineCart(), snap)
	assert.Equal(t, 2, count)

	fake.clearErr = nil
	require.NoError(t, svc.Clear(context.Background()))

	snap, count = svc.Snapshot()
	assert.Empty(t, snap.Lines)
	assert.Zero(t, snap.TotalPrice)
	assert.Zero(t, count)
	assert.False(t, svc.Loaded())
}

func TestCheckout_CashConsumesCart(t *testing.T) {
	fake := &fakeCommerce{fetchSnap: twoLineCart(), fetchCount: 2}
	svc := seededCart(t, fake)

	res, err := svc.Checkout(context.Background(), domain.CheckoutCash, domain.ShippingAddress{City: "Cairo"}, "http://localhost")
	require.NoError(t, err)
	assert.Empty(t, res.PaymentURL)

	snap, count := svc.Snapshot()
	assert.Empty(t, snap.Lines)
	assert.Zero(t, count)
	assert.Equal(t, []string{"cash cart-1"}, fake.calls)
}

func TestCheckout_OnlineReturnsPaymentURL(t *testing.T) {
	fake := &fakeCommerce{fetchSnap: twoLineCart(), fetchCount: 2, sessionURL: "https://pay.example/s/42"}
	svc := seededCart(t, fake)

	res, err := svc.Checkout(context.Background(), domain.CheckoutOnline, domain.ShippingAddress{}, "http://localhost")
	require.NoError(t, err)
	assert.Equal(t, "https://pay.example/s/42", res.PaymentURL)

	snap, count := svc.Snapshot()
	assert.Empty(t, snap.Lines)
	assert.Zero(t, count)
}

func TestCheckout_FailureLeavesCartIntact(t *testing.T) {
	fake := &fakeCommerce{fetchSnap: twoLineCart(), fetchCount: 2, cashErr: errRejected}
	svc := seededCart(t, fake)

	_, err := svc.Checkout(context.Background(), domain.CheckoutCash, domain.ShippingAddress{}, "http://localhost")
	require.ErrorIs(t, err, errRejected)

	snap, count := svc.Snapshot()
	assert.Equal(t, twoLineCart(), snap)
	assert.Equal(t, 2, count)
}

func TestCheckout_RejectsUnknownModeAndEmptyCart(t *testing.T) {
	fake := &fakeCommerce{fetchSnap: twoLineCart(), fetchCount: 2}
	svc := seededCart(t, fake)

	_, err := svc.Checkout(context.Background(), "card", domain.ShippingAddress{}, "http://localhost")
	assert.ErrorIs(t, err, ErrUnknownCheckout)

	empty := NewCartService(fake, fake, discardLogger(), "tok")
	_, err = empty.Checkout(context.Background(), domain.CheckoutCash, domain.ShippingAddress{}, "http://localhost")
	assert.ErrorIs(t, err, ErrEmptyCart)
}

func TestMutationsRequireCredential(t *testing.T) {
	fake := &fakeCommerce{}
	svc := NewCartService(fake, fake, discardLogger(), "")

	assert.ErrorIs(t, svc.Add(context.Background(), "P1"), ErrNoCredential)
	assert.ErrorIs(t, svc.Remove(context.Background(), "P1"), ErrNoCredential)
	assert.ErrorIs(t, svc.SetQuantity(context.Background(), "P1", 2), ErrNoCredential)
	assert.ErrorIs(t, svc.Clear(context.Background()), ErrNoCredential)
	assert.Empty(t, fake.calls)
}

func TestSubscribe_NotifiesOnAdoptedChanges(t *testing.T) {
	fake := &fakeCommerce{fetchSnap: twoLineCart(), fetchCount: 2}
	svc := NewCartService(fake, fake, discardLogger(), "tok")

	updates := svc.Subscribe()
	require.NoError(t, svc.Refresh(context.Background()))

	select {
	case <-updates:
	default:
		t.Fatal("expected a change notification after refresh")
	}

	svc.Unsubscribe(updates)
	require.NoError(t, svc.Refresh(context.Background()))
	select {
	case <-updates:
		t.Fatal("unsubscribed channel must not receive")
	default:
	}
}

func TestCartManager_SessionsAreIsolatedAndDroppable(t *testing.T) {
	fake := &fakeCommerce{fetchSnap: twoLineCart(), fetchCount: 2}
	mgr := NewCartManager(fake, fake, discardLogger())

	a := mgr.Session("tok-a")
	b := mgr.Session("tok-b")
	assert.NotSame(t, a, b)
	assert.Same(t, a, mgr.Session("tok-a"))

	require.NoError(t, a.Refresh(context.Background()))
	mgr.Drop("tok-a")
	fresh := mgr.Session("tok-a")
	assert.NotSame(t, a, fresh)
	assert.False(t, fresh.Loaded())
}
