package models

import "github.com/Aleksandergreg/storefront/pkg/collection"

// CartItem is one line in a cart. At most one line exists per product id;
// adding the same product again bumps Quantity instead of appending.
type CartItem struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"` // unit price captured at add time
	Quantity  int     `json:"quantity"`
	Thumbnail string  `json:"thumbnail,omitempty"`
}

// Cart holds the current line items for one owner.
type Cart struct {
	Items []CartItem `json:"items"`
}

// Total is the sum of price×quantity over all lines. It is recomputed on
// every call rather than cached — the cart is small and a stored total can
// drift from the lines it summarizes.
func (c Cart) Total() float64 {
	return collection.Sum(c.Items, func(i CartItem) float64 {
		return i.Price * float64(i.Quantity)
	})
}
