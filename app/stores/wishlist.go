package stores

import (
	"context"
	"fmt"
	"time"

	"github.com/Aleksandergreg/storefront/app/models"
	"github.com/Aleksandergreg/storefront/pkg/collection"
	"github.com/Aleksandergreg/storefront/pkg/event"
	"github.com/Aleksandergreg/storefront/pkg/kvstore"
	"github.com/Aleksandergreg/storefront/pkg/metrics"
)

// WishlistStore keeps an ordered, user-controlled list of saved products per
// user. Wishlists belong to accounts only — anonymous devices get ErrNoSession.
type WishlistStore struct {
	kv       kvstore.Store
	versions *versionTable
}

func NewWishlistStore(kv kvstore.Store) *WishlistStore {
	return &WishlistStore{kv: kv, versions: newVersionTable()}
}

func (s *WishlistStore) key(owner string) string {
	return kvstore.UserKey(CollectionWishlist, owner)
}

// Items returns the user's wishlist in its saved order.
func (s *WishlistStore) Items(ctx context.Context, owner string) ([]models.WishlistItem, error) {
	if !IsUser(owner) {
		return nil, ErrNoSession
	}
	return s.load(ctx, owner)
}

// Add appends the item unless its product id is already present — duplicate
// adds are silent no-ops, so double-taps in the app cannot create two rows.
func (s *WishlistStore) Add(ctx context.Context, owner string, item models.WishlistItem) ([]models.WishlistItem, error) {
	if !IsUser(owner) {
		return nil, ErrNoSession
	}

	items, err := s.load(ctx, owner)
	if err != nil {
		return nil, err
	}

	exists := collection.Contains(items, func(it models.WishlistItem) bool { return it.ID == item.ID })
	if exists {
		return items, nil
	}

	if item.AddedAt == 0 {
		item.AddedAt = time.Now().UnixMilli()
	}
	items = append(items, item)

	return items, s.save(ctx, owner, items)
}

// Remove drops the item with the given product id; absent ids are no-ops.
func (s *WishlistStore) Remove(ctx context.Context, owner, id string) ([]models.WishlistItem, error) {
	if !IsUser(owner) {
		return nil, ErrNoSession
	}

	items, err := s.load(ctx, owner)
	if err != nil {
		return nil, err
	}

	kept := collection.Filter(items, func(it models.WishlistItem) bool { return it.ID != id })
	if len(kept) == len(items) {
		return items, nil
	}
	if kept == nil {
		kept = []models.WishlistItem{}
	}

	return kept, s.save(ctx, owner, kept)
}

// Reorder replaces the wishlist order with the given id sequence. The
// sequence must be an exact permutation of the current product ids —
// anything that adds, drops or duplicates an id is rejected with
// ErrNotPermutation and the stored order is left untouched.
func (s *WishlistStore) Reorder(ctx context.Context, owner string, ids []string) ([]models.WishlistItem, error) {
	if !IsUser(owner) {
		return nil, ErrNoSession
	}

	items, err := s.load(ctx, owner)
	if err != nil {
		return nil, err
	}

	if len(ids) != len(items) {
		return nil, ErrNotPermutation
	}

	byID := collection.KeyBy(items, func(it models.WishlistItem) string { return it.ID })
	reordered := make([]models.WishlistItem, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		it, ok := byID[id]
		if !ok || seen[id] {
			return nil, ErrNotPermutation
		}
		seen[id] = true
		reordered = append(reordered, it)
	}

	return reordered, s.save(ctx, owner, reordered)
}

// Version returns the user's wishlist change counter.
func (s *WishlistStore) Version(owner string) uint64 {
	return s.versions.get(CollectionWishlist, owner)
}

func (s *WishlistStore) load(ctx context.Context, owner string) ([]models.WishlistItem, error) {
	items := []models.WishlistItem{}
	if _, err := s.kv.Get(ctx, s.key(owner), &items); err != nil {
		return nil, fmt.Errorf("stores: load wishlist: %w", err)
	}
	return items, nil
}

func (s *WishlistStore) save(ctx context.Context, owner string, items []models.WishlistItem) error {
	if err := s.kv.Set(ctx, s.key(owner), items); err != nil {
		return fmt.Errorf("stores: save wishlist: %w", err)
	}
	metrics.RecordMutation(CollectionWishlist)
	v := s.versions.bump(CollectionWishlist, owner)
	event.Fire(event.WishlistUpdated, event.Change{Collection: CollectionWishlist, Owner: owner, Version: v})
	return nil
}
