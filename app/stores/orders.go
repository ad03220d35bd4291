package stores

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/Aleksandergreg/storefront/app/models"
	"github.com/Aleksandergreg/storefront/pkg/event"
	"github.com/Aleksandergreg/storefront/pkg/kvstore"
	"github.com/Aleksandergreg/storefront/pkg/metrics"
)

// flusher is implemented by KV stores that buffer writes (the write-behind
// wrapper). Flush blocks until all queued writes have reached durability.
type flusher interface {
	Flush(ctx context.Context) error
}

// OrderStore records immutable order snapshots, most-recent-first, keyed by
// the logged-in user's email. It never clears the cart — whether ordering
// happens before or after payment confirmation is the caller's call.
type OrderStore struct {
	kv       kvstore.Store
	cart     *CartStore
	locks    *lockTable
	versions *versionTable

	lastStamp atomic.Int64 // strictly increasing order-id clock (ms)
}

func NewOrderStore(kv kvstore.Store, cart *CartStore) *OrderStore {
	return &OrderStore{
		kv:       kv,
		cart:     cart,
		locks:    newLockTable(),
		versions: newVersionTable(),
	}
}

func (s *OrderStore) key(owner string) string {
	return kvstore.UserKey(CollectionOrders, owner)
}

// nextStamp returns a millisecond timestamp guaranteed to be strictly
// greater than any previously handed out, so order ids stay unique even
// when two completions land in the same millisecond.
func (s *OrderStore) nextStamp() int64 {
	for {
		now := time.Now().UnixMilli()
		last := s.lastStamp.Load()
		if now <= last {
			now = last + 1
		}
		if s.lastStamp.CompareAndSwap(last, now) {
			return now
		}
	}
}

// CompleteOrder snapshots the owner's cart into a new immutable order and
// prepends it to their history. It fails with ErrNoSession for anonymous
// owners and leaves the history untouched.
//
// The cart read and the order write happen under the owner's mutex so no
// cart mutation can interleave — the recorded total always equals the cart
// total at the moment of completion.
//
// With wait=true the call does not return until the updated history has
// reached the durable store; with wait=false the write races behind the
// response (a crash in that window loses the order, an accepted gap for
// cart-grade state).
func (s *OrderStore) CompleteOrder(ctx context.Context, owner string, wait bool) (models.Order, error) {
	if !IsUser(owner) {
		return models.Order{}, ErrNoSession
	}

	lock := s.locks.forOwner(owner)
	lock.Lock()
	defer lock.Unlock()

	cart, err := s.cart.Get(ctx, owner)
	if err != nil {
		return models.Order{}, err
	}

	stamp := s.nextStamp()
	created := time.UnixMilli(stamp)

	order := models.Order{
		ID:        fmt.Sprintf("ord_%d", stamp),
		Date:      created.Format("Jan 2, 2006"),
		CreatedAt: stamp,
		Items:     make([]models.OrderItem, 0, len(cart.Items)),
		Total:     cart.Total(),
	}
	for _, it := range cart.Items {
		order.Items = append(order.Items, models.OrderItem{
			Name:     it.Name,
			Quantity: it.Quantity,
			Price:    it.Price,
		})
	}

	history, err := s.load(ctx, owner)
	if err != nil {
		return models.Order{}, err
	}
	history = append([]models.Order{order}, history...)

	if err := s.kv.Set(ctx, s.key(owner), history); err != nil {
		return models.Order{}, fmt.Errorf("stores: save orders: %w", err)
	}
	if wait {
		if f, ok := s.kv.(flusher); ok {
			if err := f.Flush(ctx); err != nil {
				return models.Order{}, fmt.Errorf("stores: flush orders: %w", err)
			}
		}
	}

	metrics.RecordMutation(CollectionOrders)
	metrics.OrdersCompleted.Inc()
	v := s.versions.bump(CollectionOrders, owner)
	event.Fire(event.OrderCompleted, event.Change{Collection: CollectionOrders, Owner: owner, Version: v})

	return order, nil
}

// Orders returns the owner's history, most-recent-first. Logged-out callers
// get an empty list, not an error.
func (s *OrderStore) Orders(ctx context.Context, owner string) ([]models.Order, error) {
	if !IsUser(owner) {
		return []models.Order{}, nil
	}
	return s.load(ctx, owner)
}

// Version returns the owner's order-history refresh counter. It increases
// by exactly one per completed order, so views can detect new orders
// without re-reading the whole list.
func (s *OrderStore) Version(owner string) uint64 {
	return s.versions.get(CollectionOrders, owner)
}

func (s *OrderStore) load(ctx context.Context, owner string) ([]models.Order, error) {
	orders := []models.Order{}
	if _, err := s.kv.Get(ctx, s.key(owner), &orders); err != nil {
		return nil, fmt.Errorf("stores: load orders: %w", err)
	}
	return orders, nil
}
