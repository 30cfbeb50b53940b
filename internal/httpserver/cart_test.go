package httpserver

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/shopapi/internal/models"
	"github.com/Skotchmaster/shopapi/internal/transport"
)

func countCartRows(t *testing.T, env *testEnv) int64 {
	t.Helper()
	var n int64
	require.NoError(t, env.DB.Model(&models.CartItem{}).Count(&n).Error)
	return n
}

func TestCart_DuplicatesAndRemove(t *testing.T) {
	env := newTestEnv(t)
	ck := env.login(t)
	env.do(t, http.MethodPost, "/api/products/add", map[string]any{"name": "Sock", "price": 2.25}, ck)

	for i := 0; i < 2; i++ {
		rec := env.do(t, http.MethodPost, "/api/cart/add/1", nil, ck)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, "Item added to cart successfully", message(t, rec))
	}

	lines := decode[[]transport.CartLineItem](t, env.do(t, http.MethodGet, "/api/cart", nil, ck))
	require.Len(t, lines, 2)
	assert.Equal(t, lines[0].ProductName, lines[1].ProductName)
	assert.Equal(t, 2.25, lines[1].ProductPrice)
	assert.NotEqual(t, lines[0].ID, lines[1].ID)

	rec := env.do(t, http.MethodDelete, "/api/cart/remove/1", nil, ck)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Item removed from cart successfully", message(t, rec))

	lines = decode[[]transport.CartLineItem](t, env.do(t, http.MethodGet, "/api/cart", nil, ck))
	require.Len(t, lines, 1)
}

func TestCart_LineItemShape(t *testing.T) {
	env := newTestEnv(t)
	ck := env.login(t)
	env.do(t, http.MethodPost, "/api/products/add", map[string]any{"name": "Hat", "price": 15}, ck)
	env.do(t, http.MethodPost, "/api/cart/add/1", nil, ck)

	rec := env.do(t, http.MethodGet, "/api/cart", nil, ck)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[{"id":1,"user_id":1,"product_id":1,"product_name":"Hat","product_price":15}]`, rec.Body.String())
}

func TestCart_BadRequests(t *testing.T) {
	env := newTestEnv(t)
	ck := env.login(t)

	rec := env.do(t, http.MethodPost, "/api/cart/add/99", nil, ck)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodDelete, "/api/cart/remove/99", nil, ck)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Item not in cart", message(t, rec))

	rec = env.do(t, http.MethodPost, "/api/cart/add/abc", nil, ck)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	assert.Zero(t, countCartRows(t, env))
}

func TestCart_EmptyViewIsArray(t *testing.T) {
	env := newTestEnv(t)
	ck := env.login(t)

	rec := env.do(t, http.MethodGet, "/api/cart", nil, ck)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestCart_RequiresSession(t *testing.T) {
	env := newTestEnv(t)
	ck := env.login(t)
	env.do(t, http.MethodPost, "/api/products/add", map[string]any{"name": "Cap", "price": 5}, ck)
	env.do(t, http.MethodPost, "/api/cart/add/1", nil, ck)

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/api/cart"},
		{http.MethodPost, "/api/cart/add/1"},
		{http.MethodDelete, "/api/cart/remove/1"},
		{http.MethodPost, "/api/cart/checkout"},
	} {
		rec := env.do(t, tc.method, tc.path, nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, tc.path)
	}

	assert.EqualValues(t, 1, countCartRows(t, env))
}

func TestCart_CheckoutIsolation(t *testing.T) {
	env := newTestEnv(t)
	alice := env.login(t)

	rec := env.do(t, http.MethodPost, "/register", map[string]string{"username": "bob", "password": "pw"})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = env.do(t, http.MethodPost, "/login", map[string]string{"username": "bob", "password": "pw"})
	require.Equal(t, http.StatusOK, rec.Code)
	bob := rec.Result().Cookies()[0]

	env.do(t, http.MethodPost, "/api/products/add", map[string]any{"name": "Tea", "price": 4.2}, alice)
	env.do(t, http.MethodPost, "/api/cart/add/1", nil, alice)
	env.do(t, http.MethodPost, "/api/cart/add/1", nil, alice)
	env.do(t, http.MethodPost, "/api/cart/add/1", nil, bob)

	rec = env.do(t, http.MethodPost, "/api/cart/checkout", nil, alice)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Checkout successful","items":2,"total":"8.40","currency":"USD"}`, rec.Body.String())

	assert.JSONEq(t, `[]`, env.do(t, http.MethodGet, "/api/cart", nil, alice).Body.String())
	lines := decode[[]transport.CartLineItem](t, env.do(t, http.MethodGet, "/api/cart", nil, bob))
	assert.Len(t, lines, 1)
}
