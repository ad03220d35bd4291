package models

// WishlistItem is one saved product. Product ids are unique within a
// wishlist and the slice order is user-controlled (drag-and-drop reorder).
type WishlistItem struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Thumbnail string  `json:"thumbnail,omitempty"`
	AddedAt   int64   `json:"added_at"`
}
