package stores

import (
	"context"
	"fmt"

	"github.com/Aleksandergreg/storefront/app/models"
	"github.com/Aleksandergreg/storefront/pkg/event"
	"github.com/Aleksandergreg/storefront/pkg/kvstore"
	"github.com/Aleksandergreg/storefront/pkg/metrics"
)

// CartStore holds one cart per owner. Owners are user emails for logged-in
// sessions and "device:<id>" for guests, so a guest cart survives app
// restarts without an account.
type CartStore struct {
	kv       kvstore.Store
	versions *versionTable
}

func NewCartStore(kv kvstore.Store) *CartStore {
	return &CartStore{kv: kv, versions: newVersionTable()}
}

func (s *CartStore) key(owner string) string {
	return kvstore.UserKey(CollectionCart, owner)
}

// Get returns the owner's cart; a missing cart is an empty cart, not an error.
func (s *CartStore) Get(ctx context.Context, owner string) (models.Cart, error) {
	var cart models.Cart
	if _, err := s.kv.Get(ctx, s.key(owner), &cart); err != nil {
		return models.Cart{}, fmt.Errorf("stores: load cart: %w", err)
	}
	return cart, nil
}

// AddItem merges the item into the cart: an existing product id has its
// quantity incremented by the incoming quantity (default 1), anything else
// is appended. The unit price is captured as given and never refreshed from
// the catalog afterwards.
func (s *CartStore) AddItem(ctx context.Context, owner string, item models.CartItem) (models.Cart, error) {
	if item.Quantity <= 0 {
		item.Quantity = 1
	}

	cart, err := s.Get(ctx, owner)
	if err != nil {
		return models.Cart{}, err
	}

	merged := false
	for i := range cart.Items {
		if cart.Items[i].ID == item.ID {
			cart.Items[i].Quantity += item.Quantity
			merged = true
			break
		}
	}
	if !merged {
		cart.Items = append(cart.Items, item)
	}

	return cart, s.save(ctx, owner, cart)
}

// RemoveItem deletes the line with the given product id. Removing an absent
// id is a silent no-op, not an error.
func (s *CartStore) RemoveItem(ctx context.Context, owner, id string) (models.Cart, error) {
	cart, err := s.Get(ctx, owner)
	if err != nil {
		return models.Cart{}, err
	}

	kept := cart.Items[:0]
	for _, it := range cart.Items {
		if it.ID != id {
			kept = append(kept, it)
		}
	}
	if len(kept) == len(cart.Items) {
		return cart, nil // nothing removed, skip the write
	}
	cart.Items = kept

	return cart, s.save(ctx, owner, cart)
}

// Clear empties the cart.
func (s *CartStore) Clear(ctx context.Context, owner string) error {
	return s.save(ctx, owner, models.Cart{})
}

// Total recomputes the cart total on every call.
func (s *CartStore) Total(ctx context.Context, owner string) (float64, error) {
	cart, err := s.Get(ctx, owner)
	if err != nil {
		return 0, err
	}
	return cart.Total(), nil
}

// Version returns the owner's cart change counter.
func (s *CartStore) Version(owner string) uint64 {
	return s.versions.get(CollectionCart, owner)
}

func (s *CartStore) save(ctx context.Context, owner string, cart models.Cart) error {
	if err := s.kv.Set(ctx, s.key(owner), cart); err != nil {
		return fmt.Errorf("stores: save cart: %w", err)
	}
	metrics.RecordMutation(CollectionCart)
	v := s.versions.bump(CollectionCart, owner)
	event.Fire(event.CartUpdated, event.Change{Collection: CollectionCart, Owner: owner, Version: v})
	return nil
}
