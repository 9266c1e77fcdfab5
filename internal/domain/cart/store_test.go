// internal/domain/cart/store_test.go
package cart

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)

	return NewStore(client, logger), mr
}

func TestStore_GetEmptyCart(t *testing.T) {
	store, _ := newTestStore(t)

	c, err := store.Get(context.Background(), 42)
	require.NoError(t, err)

	assert.Equal(t, uint(42), c.UserID)
	assert.True(t, c.IsEmpty())
	assert.Equal(t, int64(0), c.Subtotal())
}

func TestStore_AddItem(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	c, err := store.AddItem(ctx, 1, Item{
		ProductID:   10,
		UnitIndex:   0,
		ProductName: "Almonds",
		Unit:        "500g",
		Price:       45000,
		Quantity:    2,
	})
	require.NoError(t, err)

	require.Len(t, c.Items, 1)
	assert.Equal(t, 2, c.Items[0].Quantity)
	assert.Equal(t, int64(90000), c.Subtotal())
}

func TestStore_AddItem_DuplicateRejected(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	_, err := store.AddItem(ctx, 1, Item{ProductID: 10, UnitIndex: 0, Price: 45000, Quantity: 2})
	require.NoError(t, err)

	_, err = store.AddItem(ctx, 1, Item{ProductID: 10, UnitIndex: 0, Price: 45000, Quantity: 3})
	assert.ErrorIs(t, err, ErrDuplicateItem)

	// The existing line is untouched.
	c, err := store.Get(ctx, 1)
	require.NoError(t, err)
	require.Len(t, c.Items, 1)
	assert.Equal(t, 2, c.Items[0].Quantity)
}

func TestStore_AddItem_DistinctUnitsAreSeparateLines(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	_, err := store.AddItem(ctx, 1, Item{ProductID: 10, UnitIndex: 0, Price: 45000, Quantity: 1})
	require.NoError(t, err)

	c, err := store.AddItem(ctx, 1, Item{ProductID: 10, UnitIndex: 1, Price: 85000, Quantity: 1})
	require.NoError(t, err)

	assert.Len(t, c.Items, 2)
}

func TestStore_AddItem_RejectsNonPositiveQuantity(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.AddItem(context.Background(), 1, Item{ProductID: 10, UnitIndex: 0, Quantity: 0})
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = store.AddItem(context.Background(), 1, Item{ProductID: 10, UnitIndex: 0, Quantity: -3})
	assert.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestStore_AddItem_CapsQuantity(t *testing.T) {
	store, _ := newTestStore(t)

	c, err := store.AddItem(context.Background(), 1, Item{ProductID: 10, UnitIndex: 0, Quantity: 80})
	require.NoError(t, err)

	assert.Equal(t, MaxQuantityPerItem, c.Items[0].Quantity)
}

func TestStore_UpdateQuantity(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	_, err := store.AddItem(ctx, 1, Item{ProductID: 10, UnitIndex: 0, Price: 45000, Quantity: 2})
	require.NoError(t, err)

	c, err := store.UpdateQuantity(ctx, 1, 10, 0, 7)
	require.NoError(t, err)
	assert.Equal(t, 7, c.Items[0].Quantity)
}

func TestStore_UpdateQuantity_RejectsBelowOne(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	_, err := store.AddItem(ctx, 1, Item{ProductID: 10, UnitIndex: 0, Quantity: 2})
	require.NoError(t, err)

	_, err = store.UpdateQuantity(ctx, 1, 10, 0, 0)
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = store.UpdateQuantity(ctx, 1, 10, 0, -1)
	assert.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestStore_UpdateQuantity_MissingItem(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.UpdateQuantity(context.Background(), 1, 99, 0, 3)
	assert.ErrorIs(t, err, ErrItemNotFound)
}

func TestStore_RemoveItem(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	_, err := store.AddItem(ctx, 1, Item{ProductID: 10, UnitIndex: 0, Quantity: 2})
	require.NoError(t, err)
	_, err = store.AddItem(ctx, 1, Item{ProductID: 11, UnitIndex: 0, Quantity: 1})
	require.NoError(t, err)

	c, err := store.RemoveItem(ctx, 1, 10, 0)
	require.NoError(t, err)

	require.Len(t, c.Items, 1)
	assert.Equal(t, uint(11), c.Items[0].ProductID)
}

func TestStore_RemoveItem_Missing(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.RemoveItem(context.Background(), 1, 99, 2)
	assert.ErrorIs(t, err, ErrItemNotFound)
}

func TestStore_Clear(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	_, err := store.AddItem(ctx, 1, Item{ProductID: 10, UnitIndex: 0, Quantity: 2})
	require.NoError(t, err)

	require.NoError(t, store.Clear(ctx, 1))

	assert.False(t, mr.Exists("cart:user:1"))

	c, err := store.Get(ctx, 1)
	require.NoError(t, err)
	assert.True(t, c.IsEmpty())
}

func TestStore_CartsAreIsolatedPerUser(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	_, err := store.AddItem(ctx, 1, Item{ProductID: 10, UnitIndex: 0, Quantity: 2})
	require.NoError(t, err)

	c, err := store.Get(ctx, 2)
	require.NoError(t, err)
	assert.True(t, c.IsEmpty())
}

func TestStore_CorruptDocumentStartsFresh(t *testing.T) {
	store, mr := newTestStore(t)

	mr.Set("cart:user:1", "{not json")

	c, err := store.Get(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, c.IsEmpty())
}

func TestCart_ItemCount(t *testing.T) {
	c := &Cart{Items: []Item{
		{ProductID: 1, Quantity: 2},
		{ProductID: 2, Quantity: 3},
	}}
	assert.Equal(t, 5, c.ItemCount())
}
