package stores

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aleksandergreg/storefront/app/models"
	"github.com/Aleksandergreg/storefront/pkg/kvstore"
)

type sessionFixture struct {
	kv       kvstore.Store
	cart     *CartStore
	orders   *OrderStore
	wishlist *WishlistStore
	address  *AddressStore
	session  *SessionStore
}

func newSessionFixture() sessionFixture {
	kv := kvstore.NewMemory()
	cart := NewCartStore(kv)
	wishlist := NewWishlistStore(kv)
	address := NewAddressStore(kv)
	return sessionFixture{
		kv:       kv,
		cart:     cart,
		orders:   NewOrderStore(kv, cart),
		wishlist: wishlist,
		address:  address,
		session:  NewSessionStore(kv, wishlist, address),
	}
}

func TestLoginRejectsEmptyCredentials(t *testing.T) {
	ctx := context.Background()
	f := newSessionFixture()

	_, err := f.session.Login(ctx, "", "secret")
	assert.ErrorIs(t, err, ErrEmptyCredentials)
	_, err = f.session.Login(ctx, "a@x.com", "")
	assert.ErrorIs(t, err, ErrEmptyCredentials)
	_, err = f.session.Login(ctx, "   ", "   ")
	assert.ErrorIs(t, err, ErrEmptyCredentials)
}

func TestLoginImplicitlyCreatesAccountThenEnforcesPassword(t *testing.T) {
	ctx := context.Background()
	f := newSessionFixture()

	sess, err := f.session.Login(ctx, "a@x.com", "secret")
	require.NoError(t, err)
	assert.NotEmpty(t, sess.Token)
	assert.Equal(t, "a@x.com", sess.Email)

	// Second login with the right password works.
	_, err = f.session.Login(ctx, "a@x.com", "secret")
	require.NoError(t, err)

	// Wrong password against the now-existing account fails.
	_, err = f.session.Login(ctx, "a@x.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginNormalizesEmail(t *testing.T) {
	ctx := context.Background()
	f := newSessionFixture()

	_, err := f.session.Login(ctx, "A@X.com ", "secret")
	require.NoError(t, err)

	// Same account, different casing.
	sess, err := f.session.Login(ctx, "a@x.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", sess.Email)
}

func TestSignupRefusesExistingAccount(t *testing.T) {
	ctx := context.Background()
	f := newSessionFixture()

	_, err := f.session.Signup(ctx, "a@x.com", "secret")
	require.NoError(t, err)

	_, err = f.session.Signup(ctx, "a@x.com", "other")
	assert.ErrorIs(t, err, ErrAccountExists)
}

func TestLogoutPreservesPersistedCollections(t *testing.T) {
	ctx := context.Background()
	f := newSessionFixture()

	_, err := f.session.Login(ctx, "a@x.com", "secret")
	require.NoError(t, err)

	_, err = f.wishlist.Add(ctx, "a@x.com", models.WishlistItem{ID: "p1", Name: "Mug"})
	require.NoError(t, err)
	addr := models.ShippingAddress{FullName: "Ada", Line1: "1 Way", City: "London", PostalCode: "N1", Country: "GB"}
	require.NoError(t, f.address.Save(ctx, "a@x.com", addr))

	f.session.Logout(ctx, "a@x.com")

	// Re-login restores wishlist and address unchanged.
	sess, err := f.session.Login(ctx, "a@x.com", "secret")
	require.NoError(t, err)
	require.Len(t, sess.Wishlist, 1)
	assert.Equal(t, "p1", sess.Wishlist[0].ID)
	require.NotNil(t, sess.Address)
	assert.Equal(t, addr, *sess.Address)
}

func TestDifferentUserNeverSeesPreviousUsersData(t *testing.T) {
	ctx := context.Background()
	f := newSessionFixture()

	_, err := f.session.Login(ctx, "a@x.com", "secret")
	require.NoError(t, err)
	_, err = f.wishlist.Add(ctx, "a@x.com", models.WishlistItem{ID: "p1"})
	require.NoError(t, err)
	_, err = f.cart.AddItem(ctx, "a@x.com", models.CartItem{ID: "p1", Price: 10})
	require.NoError(t, err)
	_, err = f.orders.CompleteOrder(ctx, "a@x.com", false)
	require.NoError(t, err)

	sess, err := f.session.Login(ctx, "b@x.com", "secret")
	require.NoError(t, err)
	assert.Empty(t, sess.Wishlist)
	assert.Nil(t, sess.Address)

	history, err := f.orders.Orders(ctx, "b@x.com")
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestBiometricResume(t *testing.T) {
	ctx := context.Background()
	f := newSessionFixture()

	// Nothing to resume before any login.
	_, err := f.session.ResumeBiometric(ctx)
	assert.ErrorIs(t, err, ErrNoSession)

	_, err = f.session.Login(ctx, "a@x.com", "secret")
	require.NoError(t, err)

	// Flag disabled: still no resume.
	_, err = f.session.ResumeBiometric(ctx)
	assert.ErrorIs(t, err, ErrNoSession)

	require.NoError(t, f.session.SetBiometrics(ctx, true))

	sess, err := f.session.ResumeBiometric(ctx)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", sess.Email)
	assert.NotEmpty(t, sess.Token)
}

// The end-to-end scenario: a@x.com adds P1 twice, completes an order,
// then wishlists P2 twice.
func TestStorefrontScenario(t *testing.T) {
	ctx := context.Background()
	f := newSessionFixture()

	_, err := f.session.Login(ctx, "a@x.com", "secret")
	require.NoError(t, err)

	p1 := models.CartItem{ID: "p1", Name: "P1", Price: 10}
	_, err = f.cart.AddItem(ctx, "a@x.com", p1)
	require.NoError(t, err)
	cart, err := f.cart.AddItem(ctx, "a@x.com", p1)
	require.NoError(t, err)

	require.Len(t, cart.Items, 1)
	assert.Equal(t, 2, cart.Items[0].Quantity)
	assert.Equal(t, 20.0, cart.Total())

	_, err = f.orders.CompleteOrder(ctx, "a@x.com", false)
	require.NoError(t, err)

	history, err := f.orders.Orders(ctx, "a@x.com")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, 20.0, history[0].Total)

	// Cart is unchanged by order completion.
	cart, err = f.cart.Get(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Len(t, cart.Items, 1)

	p2 := models.WishlistItem{ID: "p2", Name: "P2", Price: 5}
	_, err = f.wishlist.Add(ctx, "a@x.com", p2)
	require.NoError(t, err)
	items, err := f.wishlist.Add(ctx, "a@x.com", p2)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}
