package hash

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashPassword_RoundTrip(t *testing.T) {
	Cost = bcrypt.MinCost

	h, err := HashPassword("password")
	require.NoError(t, err)
	assert.NotEqual(t, "password", h)

	assert.True(t, CheckPassword(h, "password"))
	assert.False(t, CheckPassword(h, "Password"))
	assert.False(t, CheckPassword("not-a-hash", "password"))
}

func TestHashPassword_Salted(t *testing.T) {
	Cost = bcrypt.MinCost

	a, err := HashPassword("same")
	require.NoError(t, err)
	b, err := HashPassword("same")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestHashPassword_TooLong(t *testing.T) {
	_, err := HashPassword(strings.Repeat("x", 73))
	assert.ErrorIs(t, err, ErrPasswordTooLong)
}

func TestHashPassword_Empty(t *testing.T) {
	_, err := HashPassword("")
	assert.ErrorIs(t, err, ErrEmptyPassword)
}
