package domain

// CartLine is one product entry in a cart.
type CartLine struct {
	ProductID string
	Title     string
	ImageURL  string
	UnitPrice float64
	Quantity  int
}

// CartSnapshot is the cart state as last confirmed by the commerce API,
// possibly carrying an optimistic local edit awaiting confirmation.
type CartSnapshot struct {
	ID         string
	Lines      []CartLine
	TotalPrice float64
}

// Clone returns a deep copy, safe to retain across later mutations.
func (s CartSnapshot) Clone() CartSnapshot {
	dup := s
	dup.Lines = make([]CartLine, len(s.Lines))
	copy(dup.Lines, s.Lines)
	return dup
}

// Subtotal recomputes the total from the lines. Used for optimistic local
// edits; the server total replaces it on the next confirmed response.
func (s CartSnapshot) Subtotal() float64 {
	var total float64
	for _, l := range s.Lines {
		total += l.UnitPrice * float64(l.Quantity)
	}
	return total
}

// ShippingAddress is the delivery address submitted at checkout.
type ShippingAddress struct {
	Details string
	City    string
	Phone   string
}
