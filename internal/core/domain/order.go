package domain

import "time"

// CheckoutMode selects how an order is paid.
type CheckoutMode string

const (
	// CheckoutCash places a cash-on-delivery order.
	CheckoutCash CheckoutMode = "cash"

	// CheckoutOnline opens a hosted payment session; the caller redirects
	// the browser to the returned URL.
	CheckoutOnline CheckoutMode = "online"
)

// CheckoutResult reports a confirmed checkout. PaymentURL is set only for
// online mode.
type CheckoutResult struct {
	Mode       CheckoutMode
	PaymentURL string
}

// Order is a placed order as reported by the commerce API.
type Order struct {
	ID            string
	Number        int
	Items         []CartLine
	TotalPrice    float64
	PaymentMethod string
	Paid          bool
	Delivered     bool
	CreatedAt     time.Time
}
