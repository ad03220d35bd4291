package kvstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserKeyEscapesOwner(t *testing.T) {
	assert.Equal(t, "orders:a%40x.com", UserKey("orders", "a@x.com"))
	assert.Equal(t, "orders:a%40x.com", UserKey("orders", "  A@X.COM "), "owner is trimmed and lower-cased")

	// A hostile owner string must not be able to fake another collection.
	assert.NotEqual(t, UserKey("orders", "x:wishlist"), "orders:x:wishlist")
}

func TestMemoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	kv := NewMemory()

	type payload struct {
		Name  string  `json:"name"`
		Price float64 `json:"price"`
	}

	found, err := kv.Get(ctx, "missing", &payload{})
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, kv.Set(ctx, "k", payload{Name: "Mug", Price: 9.5}))

	var got payload
	found, err = kv.Get(ctx, "k", &got)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, payload{Name: "Mug", Price: 9.5}, got)

	require.NoError(t, kv.Delete(ctx, "k"))
	found, err = kv.Get(ctx, "k", &got)
	require.NoError(t, err)
	assert.False(t, found)

	// Deleting an absent key is a no-op, not an error.
	require.NoError(t, kv.Delete(ctx, "k"))
}

func TestDiskRoundTrip(t *testing.T) {
	ctx := context.Background()
	kv, err := NewDisk(t.TempDir())
	require.NoError(t, err)

	key := UserKey("wishlist", "a@x.com")
	require.NoError(t, kv.Set(ctx, key, []string{"p1", "p2"}))

	var got []string
	found, err := kv.Get(ctx, key, &got)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, []string{"p1", "p2"}, got)

	require.NoError(t, kv.Delete(ctx, key))
	found, err = kv.Get(ctx, key, &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestWriteBehindReadYourOwnWrite(t *testing.T) {
	ctx := context.Background()
	inner := NewMemory()
	kv := NewWriteBehind(inner)
	defer kv.Close()

	require.NoError(t, kv.Set(ctx, "k", 42))

	// The overlay must serve the value even before the durable write lands.
	var got int
	found, err := kv.Get(ctx, "k", &got)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, 42, got)
}

func TestWriteBehindFlushIsDurabilityBarrier(t *testing.T) {
	ctx := context.Background()
	inner := NewMemory()
	kv := NewWriteBehind(inner)
	defer kv.Close()

	for i := 0; i < 50; i++ {
		require.NoError(t, kv.Set(ctx, "counter", i))
	}
	require.NoError(t, kv.Flush(ctx))

	// After Flush the inner store holds the last write.
	var got int
	found, err := inner.Get(ctx, "counter", &got)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, 49, got)
}

func TestWriteBehindDelete(t *testing.T) {
	ctx := context.Background()
	inner := NewMemory()
	require.NoError(t, inner.Set(ctx, "k", "old"))

	kv := NewWriteBehind(inner)
	defer kv.Close()

	require.NoError(t, kv.Delete(ctx, "k"))

	// The tombstone hides the inner value immediately.
	var got string
	found, err := kv.Get(ctx, "k", &got)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, kv.Flush(ctx))
	found, err = inner.Get(ctx, "k", &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestWriteBehindSnapshotsValueAtSetTime(t *testing.T) {
	ctx := context.Background()
	inner := NewMemory()
	kv := NewWriteBehind(inner)
	defer kv.Close()

	items := []string{"p1"}
	require.NoError(t, kv.Set(ctx, "k", items))
	items[0] = "mutated-after-set"

	require.NoError(t, kv.Flush(ctx))

	var got []string
	found, err := inner.Get(ctx, "k", &got)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, []string{"p1"}, got)
}
