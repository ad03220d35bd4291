package models

// OrderItem is a line copied from the cart at completion time. Orders are
// immutable snapshots, so later catalog or cart changes never touch them.
type OrderItem struct {
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

// Order is an immutable record of one completed checkout.
type Order struct {
	ID        string      `json:"id"`   // timestamp-derived, unique per owner
	Date      string      `json:"date"` // display string shown in the app
	CreatedAt int64       `json:"created_at"`
	Items     []OrderItem `json:"items"`
	Total     float64     `json:"total"`
}
