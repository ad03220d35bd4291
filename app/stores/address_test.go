package stores

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aleksandergreg/storefront/app/models"
	"github.com/Aleksandergreg/storefront/pkg/kvstore"
)

func TestAddressSaveReplacesWholesale(t *testing.T) {
	ctx := context.Background()
	store := NewAddressStore(kvstore.NewMemory())

	first := models.ShippingAddress{
		FullName: "Ada Lovelace", Line1: "1 Analytical Way", Line2: "Floor 2",
		City: "London", PostalCode: "N1 9GU", Country: "GB", Phone: "+44 20 1234",
	}
	require.NoError(t, store.Save(ctx, "a@x.com", first))

	got, found, err := store.Get(ctx, "a@x.com")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, first, got)

	// Saving again replaces every field, including ones left empty now.
	second := models.ShippingAddress{
		FullName: "Ada Lovelace", Line1: "9 New Road",
		City: "Leeds", PostalCode: "LS1 1AA", Country: "GB",
	}
	require.NoError(t, store.Save(ctx, "a@x.com", second))

	got, found, err = store.Get(ctx, "a@x.com")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, second, got)
	assert.Empty(t, got.Line2, "wholesale replace drops the old line2")
}

func TestAddressClear(t *testing.T) {
	ctx := context.Background()
	store := NewAddressStore(kvstore.NewMemory())

	require.NoError(t, store.Save(ctx, "a@x.com", models.ShippingAddress{
		FullName: "Ada", Line1: "1 Way", City: "London", PostalCode: "N1", Country: "GB",
	}))
	require.NoError(t, store.Clear(ctx, "a@x.com"))

	_, found, err := store.Get(ctx, "a@x.com")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestAddressRequiresSession(t *testing.T) {
	ctx := context.Background()
	store := NewAddressStore(kvstore.NewMemory())

	err := store.Save(ctx, "device:ios-123", models.ShippingAddress{FullName: "X"})
	assert.ErrorIs(t, err, ErrNoSession)
	_, _, err = store.Get(ctx, "")
	assert.ErrorIs(t, err, ErrNoSession)
}
