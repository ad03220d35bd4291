package stores

import (
	"context"
	"fmt"

	"github.com/Aleksandergreg/storefront/app/models"
	"github.com/Aleksandergreg/storefront/pkg/event"
	"github.com/Aleksandergreg/storefront/pkg/kvstore"
	"github.com/Aleksandergreg/storefront/pkg/metrics"
)

// AddressStore keeps at most one shipping address per user, replaced
// wholesale on every save. Field validation is the controller's job — the
// store persists whatever it is handed.
type AddressStore struct {
	kv       kvstore.Store
	versions *versionTable
}

func NewAddressStore(kv kvstore.Store) *AddressStore {
	return &AddressStore{kv: kv, versions: newVersionTable()}
}

func (s *AddressStore) key(owner string) string {
	return kvstore.UserKey(CollectionAddress, owner)
}

// Get returns the user's saved address, with found=false when none exists.
func (s *AddressStore) Get(ctx context.Context, owner string) (models.ShippingAddress, bool, error) {
	if !IsUser(owner) {
		return models.ShippingAddress{}, false, ErrNoSession
	}

	var addr models.ShippingAddress
	found, err := s.kv.Get(ctx, s.key(owner), &addr)
	if err != nil {
		return models.ShippingAddress{}, false, fmt.Errorf("stores: load address: %w", err)
	}
	return addr, found, nil
}

// Save replaces any previously saved address.
func (s *AddressStore) Save(ctx context.Context, owner string, addr models.ShippingAddress) error {
	if !IsUser(owner) {
		return ErrNoSession
	}

	if err := s.kv.Set(ctx, s.key(owner), addr); err != nil {
		return fmt.Errorf("stores: save address: %w", err)
	}
	metrics.RecordMutation(CollectionAddress)
	v := s.versions.bump(CollectionAddress, owner)
	event.Fire(event.AddressUpdated, event.Change{Collection: CollectionAddress, Owner: owner, Version: v})
	return nil
}

// Clear removes the user's saved address.
func (s *AddressStore) Clear(ctx context.Context, owner string) error {
	if !IsUser(owner) {
		return ErrNoSession
	}

	if err := s.kv.Delete(ctx, s.key(owner)); err != nil {
		return fmt.Errorf("stores: clear address: %w", err)
	}
	metrics.RecordMutation(CollectionAddress)
	v := s.versions.bump(CollectionAddress, owner)
	event.Fire(event.AddressUpdated, event.Change{Collection: CollectionAddress, Owner: owner, Version: v})
	return nil
}

// Version returns the user's address change counter.
func (s *AddressStore) Version(owner string) uint64 {
	return s.versions.get(CollectionAddress, owner)
}
