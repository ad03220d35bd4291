// Package stores implements the storefront's client-state layer: cart,
// session, order history, wishlist and saved shipping address. Every store
// takes an injected kvstore.Store and keys its data per owner, so two users
// (or a user and an anonymous device) can never see each other's state.
//
// Mutations update the in-memory answer first and rely on the KV layer for
// durability; when the KV store is wrapped in a write-behind buffer the
// durable write races behind the response. Callers that need a durability
// barrier use the awaitable variants (CompleteOrder with wait=true).
package stores

import (
	"errors"
	"strings"
	"sync"
)

// Collection names used to build namespaced KV keys.
const (
	CollectionCart     = "cart"
	CollectionOrders   = "orders"
	CollectionWishlist = "wishlist"
	CollectionAddress  = "shipping_address"
	CollectionAccounts = "account"
)

var (
	// ErrNoSession is returned by operations that require a logged-in user.
	ErrNoSession = errors.New("stores: no user logged in")

	// ErrEmptyCredentials is returned when login/signup input is blank.
	ErrEmptyCredentials = errors.New("stores: email and password must be non-empty")

	// ErrInvalidCredentials is returned when the password does not match an
	// existing account.
	ErrInvalidCredentials = errors.New("stores: invalid credentials")

	// ErrAccountExists is returned by Signup for an already-registered email.
	ErrAccountExists = errors.New("stores: account already exists")

	// ErrNotPermutation is returned by Wishlist.Reorder when the proposed
	// order adds, drops or duplicates product ids.
	ErrNotPermutation = errors.New("stores: reorder must be a permutation of the current wishlist")
)

// IsUser reports whether owner names a logged-in user rather than an
// anonymous device. Device owners may hold carts but never orders,
// wishlists or addresses.
func IsUser(owner string) bool {
	return owner != "" && !strings.HasPrefix(owner, "device:")
}

// ─── Per-owner locking ────────────────────────────────────────────────────────

// lockTable hands out one mutex per owner. CompleteOrder holds the owner's
// lock across its read-snapshot-then-write sequence so a concurrent mutation
// cannot interleave between reading the cart and persisting the order.
type lockTable struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newLockTable() *lockTable {
	return &lockTable{locks: make(map[string]*sync.Mutex)}
}

func (t *lockTable) forOwner(owner string) *sync.Mutex {
	t.mu.Lock()
	defer t.mu.Unlock()

	if l, ok := t.locks[owner]; ok {
		return l
	}
	l := &sync.Mutex{}
	t.locks[owner] = l
	return l
}

// ─── Version counters ─────────────────────────────────────────────────────────

// versionTable tracks a monotonically increasing counter per collection and
// owner. Views poll (or receive pushes of) the counter as a cheap
// change-notification signal instead of a full event bus.
type versionTable struct {
	mu sync.RWMutex
	v  map[string]uint64
}

func newVersionTable() *versionTable {
	return &versionTable{v: make(map[string]uint64)}
}

func (t *versionTable) bump(collection, owner string) uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	key := collection + "|" + owner
	t.v[key]++
	return t.v[key]
}

func (t *versionTable) get(collection, owner string) uint64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.v[collection+"|"+owner]
}
