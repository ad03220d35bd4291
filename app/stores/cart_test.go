package stores

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aleksandergreg/storefront/app/models"
	"github.com/Aleksandergreg/storefront/pkg/kvstore"
)

func TestCartAddMergesSameProduct(t *testing.T) {
	ctx := context.Background()
	cart := NewCartStore(kvstore.NewMemory())

	p1 := models.CartItem{ID: "p1", Name: "Mug", Price: 10}

	_, err := cart.AddItem(ctx, "a@x.com", p1)
	require.NoError(t, err)
	got, err := cart.AddItem(ctx, "a@x.com", p1)
	require.NoError(t, err)

	require.Len(t, got.Items, 1, "same product id must merge, not duplicate")
	assert.Equal(t, 2, got.Items[0].Quantity)
	assert.Equal(t, 20.0, got.Total())
}

func TestCartAddCapturesPriceAtAddTime(t *testing.T) {
	ctx := context.Background()
	cart := NewCartStore(kvstore.NewMemory())

	_, err := cart.AddItem(ctx, "a@x.com", models.CartItem{ID: "p1", Name: "Mug", Price: 10})
	require.NoError(t, err)

	// A later add of the same id with a new catalog price only bumps the
	// quantity; the captured unit price stays.
	got, err := cart.AddItem(ctx, "a@x.com", models.CartItem{ID: "p1", Name: "Mug", Price: 99})
	require.NoError(t, err)
	assert.Equal(t, 10.0, got.Items[0].Price)
}

func TestCartRemoveAbsentIsNoop(t *testing.T) {
	ctx := context.Background()
	cart := NewCartStore(kvstore.NewMemory())

	_, err := cart.AddItem(ctx, "a@x.com", models.CartItem{ID: "p1", Price: 10})
	require.NoError(t, err)

	got, err := cart.RemoveItem(ctx, "a@x.com", "nope")
	require.NoError(t, err)
	assert.Len(t, got.Items, 1)

	got, err = cart.RemoveItem(ctx, "a@x.com", "p1")
	require.NoError(t, err)
	assert.Empty(t, got.Items)
}

func TestCartTotalRecomputedAfterEveryMutation(t *testing.T) {
	ctx := context.Background()
	cart := NewCartStore(kvstore.NewMemory())

	_, err := cart.AddItem(ctx, "a@x.com", models.CartItem{ID: "p1", Price: 10, Quantity: 2})
	require.NoError(t, err)
	_, err = cart.AddItem(ctx, "a@x.com", models.CartItem{ID: "p2", Price: 5})
	require.NoError(t, err)

	total, err := cart.Total(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, 25.0, total)

	_, err = cart.RemoveItem(ctx, "a@x.com", "p1")
	require.NoError(t, err)

	total, err = cart.Total(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, 5.0, total)
}

func TestCartOwnersAreIsolated(t *testing.T) {
	ctx := context.Background()
	cart := NewCartStore(kvstore.NewMemory())

	_, err := cart.AddItem(ctx, "a@x.com", models.CartItem{ID: "p1", Price: 10})
	require.NoError(t, err)
	_, err = cart.AddItem(ctx, "device:ios-123", models.CartItem{ID: "p2", Price: 5})
	require.NoError(t, err)

	a, err := cart.Get(ctx, "a@x.com")
	require.NoError(t, err)
	require.Len(t, a.Items, 1)
	assert.Equal(t, "p1", a.Items[0].ID)

	guest, err := cart.Get(ctx, "device:ios-123")
	require.NoError(t, err)
	require.Len(t, guest.Items, 1)
	assert.Equal(t, "p2", guest.Items[0].ID)
}
