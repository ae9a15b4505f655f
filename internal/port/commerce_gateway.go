package port

import (
	"context"

	"github.com/novalo/storefront/internal/core/domain"
)

// CartGateway is the cart surface of the upstream commerce API. Mutations
// that return a snapshot carry the server's authoritative cart state and
// distinct-line count, which replace local state wholesale.
type CartGateway interface {
	// FetchCart retrieves the authenticated user's cart.
	FetchCart(ctx context.Context, token string) (domain.CartSnapshot, int, error)

	// AddCartItem adds one unit of a product; the caller re-fetches to
	// reconcile, since line identity and price are server-assigned.
	AddCartItem(ctx context.Context, token, productID string) error

	// UpdateCartItem sets the quantity of an existing line.
	UpdateCartItem(ctx context.Context, token, productID string, quantity int) (domain.CartSnapshot, int, error)

	// RemoveCartItem deletes a line.
	RemoveCartItem(ctx context.Context, token, productID string) (domain.CartSnapshot, int, error)

	// ClearCart deletes the whole cart server-side.
	ClearCart(ctx context.Context, token string) error
}

// OrderGateway creates and lists orders.
type OrderGateway interface {
	// CreateCashOrder places a cash-on-delivery order consuming the cart.
	CreateCashOrder(ctx context.Context, token, cartID string, addr domain.ShippingAddress) error

	// CreateCheckoutSession opens a hosted payment session and returns its
	// URL. returnURL is where the payment page sends the browser back.
	CreateCheckoutSession(ctx context.Context, token, cartID, returnURL string, addr domain.ShippingAddress) (string, error)

	// UserOrders lists the order history of a user.
	UserOrders(ctx context.Context, userID string) ([]domain.Order, error)
}

// AuthGateway is the account surface of the upstream commerce API.
type AuthGateway interface {
	SignIn(ctx context.Context, email, password string) (domain.Credentials, error)
	SignUp(ctx context.Context, reg domain.Registration) (domain.Credentials, error)

	// ForgotPassword requests a reset code; returns the upstream's
	// human-readable confirmation message.
	ForgotPassword(ctx context.Context, email string) (string, error)

	// VerifyResetCode confirms the emailed reset code.
	VerifyResetCode(ctx context.Context, code string) error

	// ResetPassword sets a new password and returns a fresh session token.
	ResetPassword(ctx context.Context, email, newPassword string) (string, error)
}

// WishlistGateway manages the authenticated user's wishlist. Add and Remove
// return the resulting set of wished product ids.
type WishlistGateway interface {
	FetchWishlist(ctx context.Context, token string) ([]domain.Product, error)
	AddWishlistItem(ctx context.Context, token, productID string) ([]string, error)
	RemoveWishlistItem(ctx context.Context, token, productID string) ([]string, error)
}

// CatalogGateway is the read-only product catalog.
type CatalogGateway interface {
	Products(ctx context.Context, q domain.ProductQuery) ([]domain.Product, domain.Page, error)
	Product(ctx context.Context, id string) (domain.Product, error)
	Categories(ctx context.Context) ([]domain.Category, error)
	Category(ctx context.Context, id string) (domain.Category, error)
	Subcategories(ctx context.Context, categoryID string) ([]domain.Category, error)
	Brands(ctx context.Context) ([]domain.Brand, error)
	Brand(ctx context.Context, id string) (domain.Brand, error)
}
