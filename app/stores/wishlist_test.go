package stores

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aleksandergreg/storefront/app/models"
	"github.com/Aleksandergreg/storefront/pkg/kvstore"
)

func TestWishlistAddIsIdempotent(t *testing.T) {
	ctx := context.Background()
	wl := NewWishlistStore(kvstore.NewMemory())

	p2 := models.WishlistItem{ID: "p2", Name: "Poster", Price: 5}

	items, err := wl.Add(ctx, "a@x.com", p2)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.NotZero(t, items[0].AddedAt)

	items, err = wl.Add(ctx, "a@x.com", p2)
	require.NoError(t, err)
	assert.Len(t, items, 1, "duplicate add must be a no-op")
}

func TestWishlistRemove(t *testing.T) {
	ctx := context.Background()
	wl := NewWishlistStore(kvstore.NewMemory())

	_, err := wl.Add(ctx, "a@x.com", models.WishlistItem{ID: "p1"})
	require.NoError(t, err)
	_, err = wl.Add(ctx, "a@x.com", models.WishlistItem{ID: "p2"})
	require.NoError(t, err)

	items, err := wl.Remove(ctx, "a@x.com", "p1")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "p2", items[0].ID)

	// Removing an absent id is a no-op.
	items, err = wl.Remove(ctx, "a@x.com", "p1")
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestWishlistReorderAppliesPermutation(t *testing.T) {
	ctx := context.Background()
	wl := NewWishlistStore(kvstore.NewMemory())

	for _, id := range []string{"p1", "p2", "p3"} {
		_, err := wl.Add(ctx, "a@x.com", models.WishlistItem{ID: id})
		require.NoError(t, err)
	}

	items, err := wl.Reorder(ctx, "a@x.com", []string{"p3", "p1", "p2"})
	require.NoError(t, err)

	ids := []string{items[0].ID, items[1].ID, items[2].ID}
	assert.Equal(t, []string{"p3", "p1", "p2"}, ids)

	// The new order is persisted.
	items, err = wl.Items(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, "p3", items[0].ID)
}

func TestWishlistReorderRejectsNonPermutations(t *testing.T) {
	ctx := context.Background()
	wl := NewWishlistStore(kvstore.NewMemory())

	for _, id := range []string{"p1", "p2"} {
		_, err := wl.Add(ctx, "a@x.com", models.WishlistItem{ID: id})
		require.NoError(t, err)
	}

	cases := [][]string{
		{"p1"},                 // drops an id
		{"p1", "p2", "p3"},     // adds an id
		{"p1", "p1"},           // duplicates
		{"p1", "unknown"},      // swaps in a foreign id
	}
	for _, ids := range cases {
		_, err := wl.Reorder(ctx, "a@x.com", ids)
		assert.ErrorIs(t, err, ErrNotPermutation, "ids=%v", ids)
	}

	// The stored order is untouched after rejections.
	items, err := wl.Items(ctx, "a@x.com")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "p1", items[0].ID)
}

func TestWishlistRequiresSession(t *testing.T) {
	ctx := context.Background()
	wl := NewWishlistStore(kvstore.NewMemory())

	_, err := wl.Add(ctx, "device:ios-123", models.WishlistItem{ID: "p1"})
	assert.ErrorIs(t, err, ErrNoSession)
	_, err = wl.Items(ctx, "")
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestWishlistUsersAreIsolated(t *testing.T) {
	ctx := context.Background()
	wl := NewWishlistStore(kvstore.NewMemory())

	_, err := wl.Add(ctx, "a@x.com", models.WishlistItem{ID: "p1"})
	require.NoError(t, err)

	items, err := wl.Items(ctx, "b@x.com")
	require.NoError(t, err)
	assert.Empty(t, items)
}
