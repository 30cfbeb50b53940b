package httpserver

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/shopapi/internal/transport"
)

func TestEndToEnd_BrowseBuyCheckout(t *testing.T) {
	env := newTestEnv(t)
	ck := env.login(t)

	rec := env.do(t, http.MethodPost, "/api/products/add", map[string]any{"name": "Widget", "price": 9.99}, ck)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	id := decode[transport.CreatedResponse](t, rec).ID

	list := decode[[]transport.ProductSummary](t, env.do(t, http.MethodGet, "/api/products", nil))
	assert.Contains(t, list, transport.ProductSummary{ID: id, Name: "Widget", Price: 9.99})

	rec = env.do(t, http.MethodPost, fmt.Sprintf("/api/cart/add/%d", id), nil, ck)
	require.Equal(t, http.StatusOK, rec.Code)

	lines := decode[[]transport.CartLineItem](t, env.do(t, http.MethodGet, "/api/cart", nil, ck))
	require.Len(t, lines, 1)
	assert.Equal(t, 9.99, lines[0].ProductPrice)
	assert.Equal(t, "Widget", lines[0].ProductName)

	rec = env.do(t, http.MethodPost, "/api/cart/checkout", nil, ck)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "9.99", decode[transport.CheckoutResponse](t, rec).Total)

	rec = env.do(t, http.MethodGet, "/api/cart", nil, ck)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}
