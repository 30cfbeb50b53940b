package service

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/shopapi/internal/events"
	"github.com/Skotchmaster/shopapi/internal/transport"
)

func TestCart_AddTwiceGivesTwoLines(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	u := env.createUser(t)
	p := env.createProduct(t, "Apple", 0.5)

	require.NoError(t, env.Cart.Add(ctx, u.ID, p.ID))
	require.NoError(t, env.Cart.Add(ctx, u.ID, p.ID))

	lines, err := env.Cart.View(ctx, u.ID)
	require.NoError(t, err)

	want := []transport.CartLineItem{
		{ID: 1, UserID: u.ID, ProductID: p.ID, ProductName: "Apple", ProductPrice: 0.5},
		{ID: 2, UserID: u.ID, ProductID: p.ID, ProductName: "Apple", ProductPrice: 0.5},
	}
	if diff := cmp.Diff(want, lines); diff != "" {
		t.Errorf("cart lines mismatch (-want +got):\n%s", diff)
	}
}

func TestCart_AddUnknownProduct(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := env.createUser(t)

	err := env.Cart.Add(ctx, u.ID, 12345)
	assert.ErrorIs(t, err, ErrBadRequest)

	lines, err := env.Cart.View(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestCart_RemoveDeletesExactlyOne(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	u := env.createUser(t)
	p := env.randomProduct(t)
	for i := 0; i < 3; i++ {
		require.NoError(t, env.Cart.Add(ctx, u.ID, p.ID))
	}

	require.NoError(t, env.Cart.Remove(ctx, u.ID, p.ID))

	lines, err := env.Cart.View(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.EqualValues(t, 2, lines[0].ID)
	assert.EqualValues(t, 3, lines[1].ID)
}

func TestCart_RemoveAbsent(t *testing.T) {
	env := newTestEnv(t)
	u := env.createUser(t)
	p := env.randomProduct(t)

	err := env.Cart.Remove(context.Background(), u.ID, p.ID)
	assert.ErrorIs(t, err, ErrBadRequest)
}

func TestCart_CheckoutClearsOnlyOwner(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := env.createUser(t)
	bob := env.createUser(t)
	a := env.createProduct(t, "Pen", 9.99)
	b := env.createProduct(t, "Pad", 0.01)

	require.NoError(t, env.Cart.Add(ctx, alice.ID, a.ID))
	require.NoError(t, env.Cart.Add(ctx, alice.ID, a.ID))
	require.NoError(t, env.Cart.Add(ctx, alice.ID, b.ID))
	require.NoError(t, env.Cart.Add(ctx, bob.ID, a.ID))

	summary, err := env.Cart.Checkout(ctx, alice.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 3, summary.Items)
	assert.Equal(t, "19.99", summary.Total.StringFixed(2))
	assert.Equal(t, "USD", summary.Currency.String())

	lines, err := env.Cart.View(ctx, alice.ID)
	require.NoError(t, err)
	assert.Empty(t, lines)

	lines, err = env.Cart.View(ctx, bob.ID)
	require.NoError(t, err)
	assert.Len(t, lines, 1)
}

func TestCart_CheckoutEmptyCart(t *testing.T) {
	env := newTestEnv(t)
	u := env.createUser(t)

	summary, err := env.Cart.Checkout(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Zero(t, summary.Items)
	assert.Equal(t, "0.00", summary.Total.StringFixed(2))
}

func TestCart_ViewSkipsOrphans(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	u := env.createUser(t)
	keep := env.randomProduct(t)
	gone := env.randomProduct(t)
	require.NoError(t, env.Cart.Add(ctx, u.ID, keep.ID))
	require.NoError(t, env.Cart.Add(ctx, u.ID, gone.ID))

	// bypass the catalog so the cart row survives the product
	require.NoError(t, env.Repo.DB.Exec("PRAGMA foreign_keys = OFF").Error)
	require.NoError(t, env.Repo.DB.Exec("DELETE FROM products WHERE id = ?", gone.ID).Error)

	lines, err := env.Cart.View(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, keep.ID, lines[0].ProductID)
}

func TestCart_DeleteProductEmptiesCarts(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	u := env.createUser(t)
	p := env.randomProduct(t)
	require.NoError(t, env.Cart.Add(ctx, u.ID, p.ID))
	require.NoError(t, env.Catalog.DeleteProduct(ctx, p.ID))

	lines, err := env.Cart.View(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestCart_Events(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	u := env.createUser(t)
	p := env.randomProduct(t)
	require.NoError(t, env.Cart.Add(ctx, u.ID, p.ID))
	require.NoError(t, env.Cart.Remove(ctx, u.ID, p.ID))
	_, err := env.Cart.Checkout(ctx, u.ID)
	require.NoError(t, err)

	assert.Equal(t, []string{
		events.UserRegistered,
		events.ProductCreated,
		events.CartItemAdded,
		events.CartItemRemoved,
		events.CartCheckedOut,
	}, env.Events.types())
}
